package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

const productColumns = `id, description, price_cents, quantity, is_active, seller_id`

// productRepository implements repository.ProductRepository for SQLite.
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new SQLite product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var id, sellerID string
	var cents int64
	var isActive int

	if err := row.Scan(&id, &product.Description, &cents, &product.Quantity, &isActive, &sellerID); err != nil {
		return nil, err
	}

	var err error
	if product.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}
	if product.SellerID, err = uuid.Parse(sellerID); err != nil {
		return nil, fmt.Errorf("invalid seller id %q: %w", sellerID, err)
	}
	product.Price = domain.Price(cents)
	product.IsActive = isActive != 0
	return product, nil
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID.String(),
		product.Description,
		product.Price.Cents(),
		product.Quantity,
		boolToInt(product.IsActive),
		product.SellerID.String(),
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
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id.String()))
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
		SET description = ?, price_cents = ?, quantity = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Description,
		product.Price.Cents(),
		product.Quantity,
		product.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List returns products in insertion order.
func (r *productRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY rowid LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limitArg(opts.Limit), opts.Offset)
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
