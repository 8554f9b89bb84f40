package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrUnauthorized = errors.New("staff session missing or expired")
var ErrValidation = errors.New("one or more fields are invalid")
var ErrEmptyCart = errors.New("cart is empty")
var ErrSubmitInFlight = errors.New("order submission already in progress")
var ErrNoConfirmation = errors.New("no confirmed order to act on")
var ErrWorkflowClosed = errors.New("workflow has been closed")

// ErrTerminalStatus is returned when a transition is requested for an order
// that is already delivered or cancelled.
var ErrTerminalStatus = errors.New("order is in a terminal state")
var ErrReasonRequired = errors.New("a cancellation reason is required")
var ErrPaymentMethodRequired = errors.New("payment method is required when marking an order paid")
var ErrOnlinePaymentDisabled = errors.New("online payment is not configured")
var ErrMailerDisabled = errors.New("receipt e-mail is not configured")
var ErrUpdateInFlight = errors.New("an update for this order is already in progress")

// ErrorResponse is the JSON body returned by every failing BFF handler.
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
