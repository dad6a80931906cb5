package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderForm struct {
	CustomerName    string `validate:"required"`
	ShippingAddress string `validate:"required"`
	Email           string `validate:"omitempty,email"`
	Quantity        int    `validate:"gte=1"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(orderForm{
		CustomerName:    "Tuan Pham",
		ShippingAddress: "1 Main St",
		Quantity:        2,
	})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(orderForm{Quantity: 1})

	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := vErr.Fields()
	assert.Contains(t, fields, "CustomerName")
	assert.Contains(t, fields, "ShippingAddress")
	assert.Equal(t, "is required", fields["CustomerName"])
}

func TestValidate_RangeAndEmail(t *testing.T) {
	err := Validate(orderForm{
		CustomerName:    "Tuan Pham",
		ShippingAddress: "1 Main St",
		Email:           "not-an-email",
		Quantity:        0,
	})

	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := vErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be greater than or equal to 1", fields["Quantity"])
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(orderForm{Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'CustomerName' is required")
}
