package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"pending to confirmed", models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{"confirmed to processing", models.OrderStatusConfirmed, models.OrderStatusProcessing, true},
		{"processing to shipped", models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{"shipped to delivered", models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{"pending to shipped skips steps", models.OrderStatusPending, models.OrderStatusShipped, false},
		{"pending to delivered skips steps", models.OrderStatusPending, models.OrderStatusDelivered, false},
		{"confirmed to shipped skips steps", models.OrderStatusConfirmed, models.OrderStatusShipped, false},
		{"no going backwards", models.OrderStatusProcessing, models.OrderStatusConfirmed, false},
		{"pending to cancelled", models.OrderStatusPending, models.OrderStatusCancelled, true},
		{"confirmed to cancelled", models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{"processing to cancelled", models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{"shipped to cancelled", models.OrderStatusShipped, models.OrderStatusCancelled, true},
		{"delivered is terminal", models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{"cancelled is terminal", models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
		{"cancelled to cancelled", models.OrderStatusCancelled, models.OrderStatusCancelled, false},
		{"delivered to confirmed", models.OrderStatusDelivered, models.OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusPaid))
	assert.True(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusFailed))
	assert.True(t, models.PaymentStatusPaid.CanTransitionTo(models.PaymentStatusRefunded))

	assert.False(t, models.PaymentStatusPaid.CanTransitionTo(models.PaymentStatusPending))
	assert.False(t, models.PaymentStatusFailed.CanTransitionTo(models.PaymentStatusPaid))
	assert.False(t, models.PaymentStatusRefunded.CanTransitionTo(models.PaymentStatusPaid))
	assert.False(t, models.PaymentStatusPending.CanTransitionTo(models.PaymentStatusRefunded))
}

func TestValidateTotals(t *testing.T) {
	order := &models.Order{
		Subtotal:    100000,
		Discount:    0,
		ShippingFee: 20000,
		Total:       120000,
	}
	assert.NoError(t, order.ValidateTotals())

	// mutate total without touching the components
	order.Total = 100000
	err := order.ValidateTotals()
	assert.ErrorIs(t, err, apperrors.ErrInvalidTotal)

	order.Total = 120000
	assert.NoError(t, order.ValidateTotals())
}

func TestValidateTotalsWithDiscount(t *testing.T) {
	order := &models.Order{
		Subtotal:    200000,
		Discount:    50000,
		ShippingFee: 30000,
		Total:       180000,
	}
	assert.NoError(t, order.ValidateTotals())
}

func TestValidateTotalsRejectsNegatives(t *testing.T) {
	order := &models.Order{
		Subtotal:    -100,
		Discount:    0,
		ShippingFee: 0,
		Total:       -100,
	}
	assert.ErrorIs(t, order.ValidateTotals(), apperrors.ErrInvalidTotal)

	order = &models.Order{Subtotal: 100, Discount: 200, ShippingFee: 0, Total: -100}
	assert.ErrorIs(t, order.ValidateTotals(), apperrors.ErrInvalidTotal)
}

func TestValidateItems(t *testing.T) {
	order := &models.Order{}
	assert.ErrorIs(t, order.ValidateItems(), apperrors.ErrEmptyOrder)

	order.Items = []models.OrderItem{{Quantity: 0, Price: 1000}}
	assert.ErrorIs(t, order.ValidateItems(), apperrors.ErrInvalidItem)

	order.Items = []models.OrderItem{{Quantity: 1, Price: -1}}
	assert.ErrorIs(t, order.ValidateItems(), apperrors.ErrInvalidItem)

	order.Items = []models.OrderItem{{Quantity: 1, Price: 0}}
	assert.NoError(t, order.ValidateItems())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, models.RoleCustomer.Valid())
	assert.True(t, models.RoleAdmin.Valid())
	assert.False(t, models.Role("superuser").Valid())
	assert.False(t, models.Role("").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []models.PaymentMethod{
		models.PaymentMethodCOD,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodCard,
		models.PaymentMethodMomo,
		models.PaymentMethodZaloPay,
	} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, models.PaymentMethod("paypal").Valid())
}
