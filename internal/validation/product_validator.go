package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"catalog/internal/models"
)

// Error describes the first draft field that failed validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// productRules mirrors the draft fields once they have been coerced to their
// target types. Field order here is the order in which failures are reported.
type productRules struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"required,min=10,max=500"`
	Price       decimal.Decimal `json:"price" validate:"gt=0,lte=99999999.99"`
	Stock       float64         `json:"stock" validate:"integer,gte=0,lte=2147483647"`
}

var fieldOrder = []string{"name", "description", "price", "stock"}

// ProductValidator validates and normalizes product input.
type ProductValidator struct {
	validate *validator.Validate
}

// NewProductValidator creates a ProductValidator with the catalog's custom rules registered.
func NewProductValidator() *ProductValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals numerically so gt/lte work on prices.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// The registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})

	return &ProductValidator{validate: v}
}

// Validate checks input field by field (name, description, price, stock) and
// returns the normalized draft, or an *Error for the first field that fails.
func (pv *ProductValidator) Validate(input models.ProductInput) (*models.ProductDraft, error) {
	var rules productRules
	coerceErrs := make(map[string]string, len(fieldOrder))

	if s, msg := coerceString("name", input.Name); msg != "" {
		coerceErrs["name"] = msg
	} else {
		rules.Name = s
	}
	if s, msg := coerceString("description", input.Description); msg != "" {
		coerceErrs["description"] = msg
	} else {
		rules.Description = s
	}
	if d, msg := coerceNumber("price", input.Price); msg != "" {
		coerceErrs["price"] = msg
	} else {
		// Convert mode: the price is rounded before the positivity check so a
		// value such as 0.001 cannot be stored as 0.00.
		rules.Price = d.Round(2)
	}
	if d, msg := coerceNumber("stock", input.Stock); msg != "" {
		coerceErrs["stock"] = msg
	} else {
		rules.Stock = d.InexactFloat64()
	}

	ruleErrs := make(map[string]validator.FieldError)
	if err := pv.validate.Struct(rules); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate product: %w", err)
		}
		for _, fe := range verrs {
			if _, seen := ruleErrs[fe.Field()]; !seen {
				ruleErrs[fe.Field()] = fe
			}
		}
	}

	for _, field := range fieldOrder {
		if msg, ok := coerceErrs[field]; ok {
			return nil, &Error{Field: field, Message: msg}
		}
		if fe, ok := ruleErrs[field]; ok {
			return nil, &Error{Field: field, Message: messageFor(fe)}
		}
	}

	return &models.ProductDraft{
		Name:        rules.Name,
		Description: rules.Description,
		Price:       rules.Price,
		Stock:       int(rules.Stock),
	}, nil
}

func coerceString(field string, v interface{}) (string, string) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Sprintf("%q is required", field)
	case string:
		return val, ""
	default:
		return "", fmt.Sprintf("%q must be a string", field)
	}
}

// Bounds on numeric input. Decimal arithmetic rescales through 10^exponent,
// so the exponent is capped before any rounding or comparison.
const (
	maxNumberLength = 64
	maxExponent     = 18
	minExponent     = -100
)

func coerceNumber(field string, v interface{}) (decimal.Decimal, string) {
	d, msg := parseNumber(field, v)
	if msg != "" {
		return decimal.Zero, msg
	}
	return boundMagnitude(d), ""
}

// boundMagnitude replaces values whose exponent is out of range with a value of
// the same sign that every rule judges the same way: at least 1e19 for huge
// values, 0.001 for tiny ones.
func boundMagnitude(d decimal.Decimal) decimal.Decimal {
	switch {
	case d.Sign() == 0:
		return decimal.Zero
	case d.Exponent() > maxExponent:
		return decimal.New(int64(d.Sign()), maxExponent+1)
	case d.Exponent() < minExponent:
		return decimal.New(int64(d.Sign()), -3)
	}
	return d
}

func parseNumber(field string, v interface{}) (decimal.Decimal, string) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, fmt.Sprintf("%q is required", field)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Sprintf("%q must be a number", field)
		}
		return decimal.NewFromFloat(val), ""
	case int:
		return decimal.NewFromInt(int64(val)), ""
	case int64:
		return decimal.NewFromInt(val), ""
	case json.Number:
		return parseNumericString(field, val.String())
	case string:
		return parseNumericString(field, strings.TrimSpace(val))
	default:
		return decimal.Zero, fmt.Sprintf("%q must be a number", field)
	}
}

func parseNumericString(field, s string) (decimal.Decimal, string) {
	if len(s) > maxNumberLength {
		return decimal.Zero, fmt.Sprintf("%q must be a number", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("%q must be a number", field)
	}
	return d, ""
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return fmt.Sprintf("%q must be a positive number", field)
		}
		return fmt.Sprintf("%q must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "integer":
		return fmt.Sprintf("%q must be an integer", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
