package services

import (
	"errors"

	"catalog/internal/repositories"
)

var (
	// ErrInvalidProductID is returned when an ID is not a base-10 unsigned integer.
	ErrInvalidProductID = errors.New("invalid product ID")
	// ErrProductNotFound is returned when a well-formed ID matches no product.
	ErrProductNotFound = repositories.ErrProductNotFound
	// ErrImageUnavailable is returned when a product image could not be provisioned.
	ErrImageUnavailable = errors.New("product image unavailable")
)
