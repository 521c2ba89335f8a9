package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressForm struct {
	FirstName string `json:"first_name" validate:"required,max=5"`
	Zip       string `json:"zip" validate:"required"`
}

type sampleForm struct {
	SKU      string          `json:"sku" validate:"required,sku"`
	Slug     string          `json:"slug" validate:"omitempty,slug"`
	Amount   decimal.Decimal `json:"amount" validate:"gte=0,lte=100"`
	Kind     string          `json:"kind" validate:"required,kind"`
	Same     bool            `json:"same"`
	Shipping addressForm     `json:"shipping"`
	Billing  *addressForm    `json:"billing" validate:"required_if=Same false"`
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(Rule{Tag: "kind", Message: "{0} is not a supported kind", Fn: OneOfStrings("a", "b")})
	require.NoError(t, err)
	return v
}

func TestStruct_Valid(t *testing.T) {
	v := newTestValidator(t)
	form := sampleForm{
		SKU:      "TSHIRT-01",
		Slug:     "summer-tees",
		Amount:   decimal.RequireFromString("99.99"),
		Kind:     "a",
		Same:     true,
		Shipping: addressForm{FirstName: "Ana", Zip: "010101"},
	}
	assert.NoError(t, v.Struct(form))
}

func TestStruct_FieldErrorsUseJSONPaths(t *testing.T) {
	v := newTestValidator(t)
	form := sampleForm{
		SKU:      "lower",
		Slug:     "Bad Slug",
		Amount:   decimal.RequireFromString("100.01"),
		Kind:     "z",
		Shipping: addressForm{FirstName: "Bartholomew"},
	}

	err := v.Struct(form)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))

	assert.Contains(t, fe, "sku")
	assert.Contains(t, fe, "slug")
	assert.Contains(t, fe, "amount")
	assert.Equal(t, "kind is not a supported kind", fe["kind"])
	assert.Contains(t, fe, "shipping.first_name")
	assert.Contains(t, fe, "shipping.zip")
	assert.Contains(t, fe, "billing", "billing is required when shipping is not reused")
}

func TestStruct_NestedPointerValidatedWhenPresent(t *testing.T) {
	v := newTestValidator(t)
	form := sampleForm{
		SKU:      "SKU-1",
		Kind:     "b",
		Shipping: addressForm{FirstName: "Ana", Zip: "1"},
		Billing:  &addressForm{FirstName: "Ana"},
	}

	err := v.Struct(form)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "billing.zip")
}
