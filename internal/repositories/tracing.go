package repositories

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"catalog/internal/models"
)

var tracer = otel.Tracer("catalog/repositories")

// TracingProductRepository wraps a ProductRepository and records a span per call.
type TracingProductRepository struct {
	next ProductRepository
}

// NewTracingProductRepository decorates next with tracing.
func NewTracingProductRepository(next ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{next: next}
}

func (r *TracingProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.GetAll")
	defer span.End()

	products, err := r.next.GetAll(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (r *TracingProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.GetByID",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))),
	)
	defer span.End()

	product, err := r.next.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return product, nil
}

func (r *TracingProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("product.name", product.Name),
			attribute.String("product.price", product.Price.String()),
			attribute.Int("product.stock", product.Stock),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int64("product.id", int64(product.ID)))
	return nil
}

func (r *TracingProductRepository) Update(ctx context.Context, product *models.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(attribute.Int64("product.id", int64(product.ID))),
	)
	defer span.End()

	if err := r.next.Update(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *TracingProductRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))),
	)
	defer span.End()

	if err := r.next.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// recordError marks the span as failed. A missing row is an expected outcome
// and only tagged, not recorded as an error.
func recordError(span trace.Span, err error) {
	if errors.Is(err, ErrProductNotFound) {
		span.SetAttributes(attribute.Bool("product.not_found", true))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
