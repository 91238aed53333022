package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/models"
	"catalog/internal/validation"
)

func validInput() models.ProductInput {
	return models.ProductInput{
		Name:        "Widget",
		Description: "A simple widget for testing",
		Price:       9.99,
		Stock:       float64(5),
	}
}

func TestProductValidator_ValidInput(t *testing.T) {
	v := validation.NewProductValidator()

	draft, err := v.Validate(validInput())
	require.NoError(t, err)
	assert.Equal(t, "Widget", draft.Name)
	assert.Equal(t, "A simple widget for testing", draft.Description)
	assert.Equal(t, "9.99", draft.Price.String())
	assert.Equal(t, 5, draft.Stock)
}

func TestProductValidator_CoercesNumericStrings(t *testing.T) {
	v := validation.NewProductValidator()

	in := validInput()
	in.Price = "12.50"
	in.Stock = "7"

	draft, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "12.5", draft.Price.String())
	assert.Equal(t, 7, draft.Stock)
}

func TestProductValidator_RoundsPriceToTwoDigits(t *testing.T) {
	v := validation.NewProductValidator()

	in := validInput()
	in.Price = 19.999

	draft, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "20", draft.Price.String())

	in.Price = 0.001
	_, err = v.Validate(in)
	require.Error(t, err)
	assert.Equal(t, `"price" must be a positive number`, err.Error())
}

func TestProductValidator_FieldRules(t *testing.T) {
	v := validation.NewProductValidator()

	tests := []struct {
		name    string
		mutate  func(in *models.ProductInput)
		field   string
		message string
	}{
		{"missing name", func(in *models.ProductInput) { in.Name = nil }, "name", `"name" is required`},
		{"empty name", func(in *models.ProductInput) { in.Name = "" }, "name", `"name" is not allowed to be empty`},
		{"short name", func(in *models.ProductInput) { in.Name = "Wi" }, "name", `"name" length must be at least 3 characters long`},
		{"long name", func(in *models.ProductInput) { in.Name = strings.Repeat("n", 101) }, "name", `"name" length must be less than or equal to 100 characters long`},
		{"numeric name", func(in *models.ProductInput) { in.Name = 42.0 }, "name", `"name" must be a string`},
		{"short description", func(in *models.ProductInput) { in.Description = "too short" }, "description", `"description" length must be at least 10 characters long`},
		{"long description", func(in *models.ProductInput) { in.Description = strings.Repeat("d", 501) }, "description", `"description" length must be less than or equal to 500 characters long`},
		{"missing price", func(in *models.ProductInput) { in.Price = nil }, "price", `"price" is required`},
		{"zero price", func(in *models.ProductInput) { in.Price = 0.0 }, "price", `"price" must be a positive number`},
		{"negative price", func(in *models.ProductInput) { in.Price = -3.5 }, "price", `"price" must be a positive number`},
		{"non numeric price", func(in *models.ProductInput) { in.Price = "cheap" }, "price", `"price" must be a number`},
		{"price out of range", func(in *models.ProductInput) { in.Price = 100000000.0 }, "price", `"price" must be less than or equal to 99999999.99`},
		{"missing stock", func(in *models.ProductInput) { in.Stock = nil }, "stock", `"stock" is required`},
		{"fractional stock", func(in *models.ProductInput) { in.Stock = 2.5 }, "stock", `"stock" must be an integer`},
		{"negative stock", func(in *models.ProductInput) { in.Stock = -1.0 }, "stock", `"stock" must be greater than or equal to 0`},
		{"boolean stock", func(in *models.ProductInput) { in.Stock = true }, "stock", `"stock" must be a number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			draft, err := v.Validate(in)
			assert.Nil(t, draft)
			require.Error(t, err)

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestProductValidator_ReportsFirstFailingFieldOnly(t *testing.T) {
	v := validation.NewProductValidator()

	in := models.ProductInput{
		Name:        "ok name",
		Description: "short",
		Price:       -1.0,
		Stock:       -1.0,
	}

	_, err := v.Validate(in)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	in.Description = "long enough description"
	_, err = v.Validate(in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	_, err = v.Validate(models.ProductInput{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestProductValidator_ZeroStockIsAllowed(t *testing.T) {
	v := validation.NewProductValidator()

	in := validInput()
	in.Stock = 0.0

	draft, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, 0, draft.Stock)
}

func TestProductValidator_ExtremeExponentsAreRejectedQuickly(t *testing.T) {
	v := validation.NewProductValidator()

	tests := []struct {
		name    string
		mutate  func(in *models.ProductInput)
		message string
	}{
		{"huge price", func(in *models.ProductInput) { in.Price = "1e20000000" }, `"price" must be less than or equal to 99999999.99`},
		{"huge negative price", func(in *models.ProductInput) { in.Price = "-1e20000000" }, `"price" must be a positive number`},
		{"tiny price", func(in *models.ProductInput) { in.Price = "1e-20000000" }, `"price" must be a positive number`},
		{"zero with huge exponent", func(in *models.ProductInput) { in.Price = "0e20000000" }, `"price" must be a positive number`},
		{"huge stock", func(in *models.ProductInput) { in.Stock = "1e20000000" }, `"stock" must be less than or equal to 2147483647`},
		{"tiny stock", func(in *models.ProductInput) { in.Stock = "1e-20000000" }, `"stock" must be an integer`},
		{"overlong number", func(in *models.ProductInput) { in.Price = "1" + strings.Repeat("0", 100) }, `"price" must be a number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			start := time.Now()
			_, err := v.Validate(in)
			elapsed := time.Since(start)

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Less(t, elapsed, 100*time.Millisecond)
		})
	}
}

func TestProductValidator_LargeButBoundedNumbers(t *testing.T) {
	v := validation.NewProductValidator()

	in := validInput()
	in.Price = "99999999.99"
	in.Stock = "2147483647"

	draft, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", draft.Price.String())
	assert.Equal(t, 2147483647, draft.Stock)

	in.Stock = "1e10"
	_, err = v.Validate(in)
	require.Error(t, err)
	assert.Equal(t, `"stock" must be less than or equal to 2147483647`, err.Error())
}
