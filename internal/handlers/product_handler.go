package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/internal/validation"
	"catalog/pkg/logger"
)

const (
	msgInvalidProductID = "Invalid product ID"
	msgProductNotFound  = "Product not found"
	msgInvalidBody      = "Invalid request body"
	msgCreateFailed     = "Failed to create product"
	msgInternalError    = "Internal server error"
)

// ProductService is the subset of services.ProductService the handler needs.
type ProductService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, rawID string) (*models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, rawID string, input models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, rawID string) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return h.respondError(c, err, msgInternalError)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err, msgInternalError)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product with a provisioned image.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, err := parseProductInput(c)
	if err != nil {
		return h.respondError(c, err, msgCreateFailed)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err, msgCreateFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	rawID := c.Params("id")
	// A bad id is reported before the body is looked at, so a request with
	// both a bad id and a bad body gets "Invalid product ID".
	if _, err := services.ParseProductID(rawID); err != nil {
		return h.respondError(c, err, msgInternalError)
	}

	input, err := parseProductInput(c)
	if err != nil {
		return h.respondError(c, err, msgInternalError)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), rawID, input)
	if err != nil {
		return h.respondError(c, err, msgInternalError)
	}
	return c.JSON(product)
}

// HandleDeleteProduct permanently removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err, msgInternalError)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

var errMalformedBody = errors.New("malformed request body")

// parseProductInput decodes the body as JSON whatever the Content-Type says.
// An empty body decodes to an empty input so that validation reports the first
// missing field.
func parseProductInput(c *fiber.Ctx) (models.ProductInput, error) {
	var input models.ProductInput
	body := c.Body()
	if len(body) == 0 {
		return input, nil
	}
	if err := c.App().Config().JSONDecoder(body, &input); err != nil {
		return input, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return input, nil
}

// respondError maps service errors to status codes. fallback is the message
// used for unexpected failures; their detail is only logged.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error, fallback string) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return writeError(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, errMalformedBody):
		logger.Debug(c.UserContext()).Err(err).Str("path", c.Path()).Msg("Rejected request body")
		return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, services.ErrInvalidProductID):
		return writeError(c, fiber.StatusBadRequest, msgInvalidProductID)
	case errors.Is(err, services.ErrProductNotFound):
		return writeError(c, fiber.StatusNotFound, msgProductNotFound)
	}

	event := logger.Error(c.UserContext()).
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path())
	if errors.Is(err, services.ErrImageUnavailable) {
		event = event.Bool("image_unavailable", true)
	}
	event.Msg("Product request failed")

	return writeError(c, fiber.StatusInternalServerError, fallback)
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
