package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// price is stored as NUMERIC and exchanged as its decimal text.
const productColumns = `id, description, price::text, quantity, is_active, seller_id`

// productRepository implements repository.ProductRepository for PostgreSQL.
type productRepository struct {
	db Querier
}

// NewProductRepository creates a new PostgreSQL product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db.Pool}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	product := &domain.Product{}
	var price string
	if err := row.Scan(&product.ID, &product.Description, &price, &product.Quantity, &product.IsActive, &product.SellerID); err != nil {
		return nil, err
	}

	var err error
	if product.Price, err = domain.ParsePrice(price); err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	return product, nil
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, description, price, quantity, is_active, seller_id)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Description,
		product.Price.String(),
		product.Quantity,
		product.IsActive,
		product.SellerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrSellerNotFound, product.SellerID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("product violates a constraint: %w", err)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

// Update updates description, price and quantity of a product.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET description = $1, price = $2::numeric, quantity = $3
		WHERE id = $4
	`

	tag, err := r.db.Exec(ctx, query,
		product.Description,
		product.Price.String(),
		product.Quantity,
		product.ID,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("product violates a constraint: %w", err)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List returns products in insertion order.
func (r *productRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY seq LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limitArg(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return &repository.ListResult[domain.Product]{
		Items:  products,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Ensure productRepository implements repository.ProductRepository.
var _ repository.ProductRepository = (*productRepository)(nil)
