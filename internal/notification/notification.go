package notification

import (
	"context"
	"errors"
)

// SettingType distinguishes the two kinds of configured addresses.
type SettingType string

const (
	// TypeCustomer marks addresses used as the sender identity for buyer
	// confirmations.
	TypeCustomer SettingType = "customer_notification"
	// TypeInternal marks staff addresses that receive a copy of every new
	// order.
	TypeInternal SettingType = "internal_notification"
)

var (
	ErrSettingNotFound = errors.New("email setting not found")
	ErrInvalidSetting  = errors.New("email setting requires a type and an address")
)

// EmailSetting is one admin-managed notification address.
type EmailSetting struct {
	ID     string      `json:"id"`
	Type   SettingType `json:"type"`
	Email  string      `json:"email"`
	Active bool        `json:"active"`
}

// Validate checks an admin-supplied setting.
func (s EmailSetting) Validate() error {
	if s.Email == "" {
		return ErrInvalidSetting
	}
	if s.Type != TypeCustomer && s.Type != TypeInternal {
		return ErrInvalidSetting
	}
	return nil
}

// LineSummary is one flattened order line inside a confirmation payload.
type LineSummary struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderConfirmation is the payload handed to the dispatcher after a
// successful checkout.
type OrderConfirmation struct {
	OrderNumber string        `json:"order_number"`
	UserEmail   string        `json:"user_email"`
	UserName    string        `json:"user_name"`
	TotalAmount float64       `json:"total_amount"`
	Items       []LineSummary `json:"items"`
}

// Dispatcher delivers an order confirmation to whatever sends the emails.
// Checkout treats a dispatch failure as telemetry, never as a checkout
// failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, confirmation OrderConfirmation) error
}
