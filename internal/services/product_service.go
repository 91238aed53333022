package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"
	"catalog/pkg/logger"
	"catalog/pkg/rabbitmq"
)

// ImageFetcher provisions an image URL for a new product.
type ImageFetcher interface {
	FetchImageURL(ctx context.Context) (string, error)
}

// EventPublisher publishes product change events.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event rabbitmq.ProductEvent) error
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithQueryTimeout bounds every individual store call.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *ProductService) {
		s.queryTimeout = d
	}
}

// WithEventPublisher enables product change events.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *ProductService) {
		s.events = p
	}
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo         repositories.ProductRepository
	images       ImageFetcher
	validator    *validation.ProductValidator
	events       EventPublisher
	queryTimeout time.Duration
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, images ImageFetcher, opts ...Option) *ProductService {
	s := &ProductService{
		repo:      repo,
		images:    images,
		validator: validation.NewProductValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseProductID converts a raw path segment into a product ID.
func ParseProductID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || uint64(uint(id)) != id {
		return 0, ErrInvalidProductID
	}
	return uint(id), nil
}

// ListProducts returns every product, possibly none.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns the product identified by rawID.
func (s *ProductService) GetProduct(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := ParseProductID(rawID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// CreateProduct validates input, provisions an image, stores the product and
// returns it as persisted. Nothing is stored when the image cannot be obtained.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	draft, err := s.validator.Validate(input)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.FetchImageURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}

	product := &models.Product{ImageURL: imageURL}
	draft.Apply(product)

	if err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, product)
	}); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	created, err := s.find(ctx, product.ID)
	if err != nil {
		// Not wrapped: a row deleted before the read-back is a failed create,
		// never a missing product.
		return nil, fmt.Errorf("failed to read back product %d: %v", product.ID, err)
	}

	s.publish(ctx, rabbitmq.EventProductCreated, created.ID, created)
	return created, nil
}

// UpdateProduct replaces the mutable fields of an existing product. The ID and
// image URL never change.
func (s *ProductService) UpdateProduct(ctx context.Context, rawID string, input models.ProductInput) (*models.Product, error) {
	id, err := ParseProductID(rawID)
	if err != nil {
		return nil, err
	}

	draft, err := s.validator.Validate(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	draft.Apply(existing)
	if err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, existing)
	}); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, rabbitmq.EventProductUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteProduct permanently removes the product identified by rawID.
func (s *ProductService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := ParseProductID(rawID)
	if err != nil {
		return err
	}

	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.publish(ctx, rabbitmq.EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) find(ctx context.Context, id uint) (*models.Product, error) {
	var product *models.Product
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) withStore(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return fn(ctx)
}

func (s *ProductService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// publish is best effort: a failed publish is logged and never fails the
// operation that triggered it.
func (s *ProductService) publish(ctx context.Context, eventType string, id uint, product *models.Product) {
	if s.events == nil {
		return
	}

	event := rabbitmq.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event", eventType).
			Uint("product_id", id).
			Msg("Failed to publish product event")
		return
	}

	logger.Debug(ctx).
		Str("event", eventType).
		Uint("product_id", id).
		Msg("Published product event")
}
