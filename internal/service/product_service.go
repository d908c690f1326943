package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/permission"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/serializer"
)

// ProductService handles product listing and management.
type ProductService struct {
	productRepo repository.ProductRepository
	accountRepo repository.AccountRepository
	logger      zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	productRepo repository.ProductRepository,
	accountRepo repository.AccountRepository,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		accountRepo: accountRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// ProductOutput is a product together with its seller, as rendered by the
// detailed profile.
type ProductOutput struct {
	Product *domain.Product
	Seller  *domain.Account
}

// List returns a page of products in insertion order.
func (s *ProductService) List(ctx context.Context, actor *domain.Account, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	if err := permission.Authorize(actor, permission.ActionListProducts).Err(); err != nil {
		return nil, err
	}

	result, err := s.productRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return result, nil
}

// Create lists a new product sold by the actor.
func (s *ProductService) Create(ctx context.Context, actor *domain.Account, body []byte) (*ProductOutput, error) {
	if err := permission.Authorize(actor, permission.ActionCreateProduct).Err(); err != nil {
		return nil, err
	}
	if err := permission.AuthorizeObject(actor, permission.ActionCreateProduct, permission.Target{}).Err(); err != nil {
		return nil, err
	}

	in, err := serializer.DecodeProduct(serializer.ProductCreate, body)
	if err != nil {
		return nil, err
	}

	product := domain.NewProduct("", 0, 0, actor.ID)
	in.Apply(product)

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("seller_id", actor.ID.String()).Msg("failed to create product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("seller", actor.Username).
		Str("price", product.Price.String()).
		Int64("quantity", product.Quantity).
		Strs("discarded", in.Discarded).
		Msg("product created")

	return &ProductOutput{Product: product, Seller: actor}, nil
}

// Get retrieves a product and its seller.
func (s *ProductService) Get(ctx context.Context, actor *domain.Account, id uuid.UUID) (*ProductOutput, error) {
	if err := permission.Authorize(actor, permission.ActionRetrieveProduct).Err(); err != nil {
		return nil, err
	}

	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withSeller(ctx, product)
}

// Update applies a partial body to a product owned by the actor.
// The seller and is_active never change here.
func (s *ProductService) Update(ctx context.Context, actor *domain.Account, id uuid.UUID, body []byte) (*ProductOutput, error) {
	if err := permission.Authorize(actor, permission.ActionUpdateProduct).Err(); err != nil {
		return nil, err
	}

	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	target := permission.Target{Product: product}
	if err := permission.AuthorizeObject(actor, permission.ActionUpdateProduct, target).Err(); err != nil {
		return nil, err
	}

	in, err := serializer.DecodeProduct(serializer.ProductUpdate, body)
	if err != nil {
		return nil, err
	}
	in.Apply(product)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Strs("discarded", in.Discarded).
		Msg("product updated")

	return &ProductOutput{Product: product, Seller: actor}, nil
}

func (s *ProductService) load(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return product, nil
}

func (s *ProductService) withSeller(ctx context.Context, product *domain.Product) (*ProductOutput, error) {
	seller, err := s.accountRepo.GetByID(ctx, product.SellerID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to load seller")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return &ProductOutput{Product: product, Seller: seller}, nil
}
