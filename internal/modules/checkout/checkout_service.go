package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/mailer"
	"cafe-frontdesk/internal/metrics"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/notify"
	"cafe-frontdesk/internal/receipt"
	"cafe-frontdesk/internal/validation"
	"cafe-frontdesk/pkg/payment"

	"github.com/shopspring/decimal"
)

// FieldInstructions is the free-text order note; it has no validator.
const FieldInstructions = "instructions"

const (
	MsgEmptyCart        = "Your cart is empty"
	MsgItemsUnavailable = "Some items in your cart are no longer available. Please refresh your cart and try again."
	MsgOrderFailed      = "Failed to place order. Please try again."
	MsgPaymentFailed    = "Online payment failed. Please try again or pay at the counter."
)

// Cart is the read-plus-clear view of the customer's cart.
type Cart interface {
	Items() []models.CartItem
	Clear()
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, sub models.OrderSubmission) (*models.Order, error)
}

type PaymentRecorder interface {
	UpdatePayment(ctx context.Context, id int64, req models.PaymentUpdateRequest) error
}

// Deps are the collaborators shared by every customer's workflow. Payments,
// Recorder and Mailer are optional.
type Deps struct {
	Orders   OrderCreator
	Payments payment.ServiceInterface
	Recorder PaymentRecorder
	Mailer   mailer.Sender
	Log      *logger.Logger
}

type Form struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Instructions string `json:"instructions"`
}

// Confirmation is kept until the customer acknowledges it.
type Confirmation struct {
	OrderID     int64           `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaymentID   string          `json:"paymentId,omitempty"`
}

type State struct {
	Open         bool              `json:"open"`
	Form         Form              `json:"form"`
	Errors       map[string]string `json:"errors"`
	Submitting   bool              `json:"submitting"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
}

// Workflow drives one customer's checkout form.
type Workflow struct {
	mu       sync.Mutex
	cart     Cart
	notifier notify.Notifier
	deps     Deps

	open       bool
	form       Form
	errs       map[string]string
	submitting bool
	paying     bool
	confirm    *Confirmation

	life   context.Context
	cancel context.CancelFunc
}

func NewWorkflow(cart Cart, notifier notify.Notifier, deps Deps) *Workflow {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	life, cancel := context.WithCancel(context.Background())
	return &Workflow{
		cart:     cart,
		notifier: notifier,
		deps:     deps,
		errs:     map[string]string{},
		life:     life,
		cancel:   cancel,
	}
}

func (w *Workflow) closed() bool {
	return w.life.Err() != nil
}

// Open shows the checkout form.
func (w *Workflow) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed() {
		return models.ErrWorkflowClosed
	}
	w.open = true
	return nil
}

// SetField updates one form field and re-validates it.
func (w *Workflow) SetField(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed() {
		return models.ErrWorkflowClosed
	}

	switch field {
	case validation.FieldName:
		w.form.Name = value
	case validation.FieldPhone:
		w.form.Phone = value
	case validation.FieldEmail:
		w.form.Email = value
	case FieldInstructions:
		w.form.Instructions = value
		return nil
	default:
		return fmt.Errorf("checkout.SetField: %w: unknown field %q", models.ErrValidation, field)
	}

	var fe *validation.FieldError
	if err := validation.Field(field, value); errors.As(err, &fe) {
		w.errs[field] = fe.Message
	} else {
		delete(w.errs, field)
	}
	return nil
}

// Submit places the order. Field errors or an empty cart abort before any
// request is made.
func (w *Workflow) Submit(ctx context.Context) (*Confirmation, error) {
	w.mu.Lock()
	if w.closed() {
		w.mu.Unlock()
		return nil, models.ErrWorkflowClosed
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, models.ErrSubmitInFlight
	}

	w.errs = validation.Form(w.form.Name, w.form.Phone, w.form.Email)
	if len(w.errs) > 0 {
		w.mu.Unlock()
		return nil, models.ErrValidation
	}

	items := w.cart.Items()
	if len(items) == 0 {
		w.mu.Unlock()
		w.notifier.Error(MsgEmptyCart)
		return nil, models.ErrEmptyCart
	}

	sub := buildSubmission(w.form, items)
	w.submitting = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(w.life, cancel)
	defer stop()

	order, err := w.deps.Orders.CreateOrder(ctx, sub)

	w.mu.Lock()
	w.submitting = false
	if w.closed() {
		w.mu.Unlock()
		return nil, models.ErrWorkflowClosed
	}

	if err != nil {
		w.mu.Unlock()
		metrics.RecordWorkflowEvent("checkout", "failed")
		w.deps.Log.Warn("checkout_submit", "order creation failed", slog.String("error", err.Error()))
		w.notifier.Error(failureMessage(err))
		return nil, fmt.Errorf("checkout.Submit: %w", err)
	}

	conf := &Confirmation{OrderID: order.ID, TotalAmount: order.TotalAmount}
	w.confirm = conf
	w.form = Form{}
	w.errs = map[string]string{}
	out := *conf
	w.mu.Unlock()

	metrics.RecordWorkflowEvent("checkout", "submitted")
	w.deps.Log.Info("checkout_submit", "order placed",
		slog.Int64("order_id", order.ID), slog.String("total", order.TotalAmount.String()))
	w.notifier.Success(fmt.Sprintf("Order placed successfully! Order ID: %d, Total: %s", order.ID, order.TotalAmount.String()))

	if sub.CustomerEmail != models.NotProvided {
		w.emailReceipt(ctx, sub.CustomerEmail, *order)
	}
	return &out, nil
}

// emailReceipt is best effort; failures are only logged.
func (w *Workflow) emailReceipt(ctx context.Context, to string, order models.Order) {
	if w.deps.Mailer == nil {
		return
	}
	pdf, err := receipt.Bytes(order)
	if err != nil {
		w.deps.Log.Error("checkout_receipt", "render receipt", err, slog.Int64("order_id", order.ID))
		return
	}
	if err := w.deps.Mailer.SendReceipt(ctx, to, order, pdf); err != nil && !errors.Is(err, models.ErrMailerDisabled) {
		w.deps.Log.Error("checkout_receipt", "send receipt", err, slog.Int64("order_id", order.ID))
	}
}

func buildSubmission(f Form, items []models.CartItem) models.OrderSubmission {
	sub := models.OrderSubmission{
		CustomerName:      strings.TrimSpace(f.Name),
		CustomerPhone:     strings.TrimSpace(f.Phone),
		CustomerEmail:     strings.TrimSpace(f.Email),
		OrderInstructions: strings.TrimSpace(f.Instructions),
		Items:             make([]models.OrderSubmissionItem, 0, len(items)),
	}
	if sub.CustomerPhone == "" {
		sub.CustomerPhone = models.NotProvided
	}
	if sub.CustomerEmail == "" {
		sub.CustomerEmail = models.NotProvided
	}
	for _, it := range items {
		sub.Items = append(sub.Items, models.OrderSubmissionItem{
			MenuItemID:          int64(it.CatalogID),
			Quantity:            it.Quantity,
			SpecialInstructions: strings.TrimSpace(it.SpecialInstructions),
		})
	}
	return sub
}

func failureMessage(err error) string {
	if cafeapi.IsItemsUnavailable(err) {
		return MsgItemsUnavailable
	}
	return cafeapi.UserMessage(err, MsgOrderFailed)
}

// Cancel discards the form without contacting the backend.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = Form{}
	w.errs = map[string]string{}
	w.open = false
}

// Acknowledge dismisses the success confirmation. It is the only path that
// clears the cart; a second call finds no confirmation and does nothing.
func (w *Workflow) Acknowledge() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.confirm == nil {
		return
	}
	w.confirm = nil
	w.open = false
	w.cart.Clear()
}

// PayOnline charges the confirmed order through the payment provider and
// records the payment with the backend.
func (w *Workflow) PayOnline(ctx context.Context, paymentMethodID string) (*Confirmation, error) {
	if w.deps.Payments == nil || w.deps.Recorder == nil {
		return nil, models.ErrOnlinePaymentDisabled
	}

	w.mu.Lock()
	if w.closed() {
		w.mu.Unlock()
		return nil, models.ErrWorkflowClosed
	}
	if w.confirm == nil || w.confirm.PaymentID != "" || w.paying {
		w.mu.Unlock()
		return nil, models.ErrNoConfirmation
	}
	conf := *w.confirm
	w.paying = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.paying = false
		w.mu.Unlock()
	}()

	ref := strconv.FormatInt(conf.OrderID, 10)
	paymentID, err := w.deps.Payments.ProcessPayment(ctx, ref, conf.TotalAmount, paymentMethodID)
	if err != nil {
		metrics.RecordWorkflowEvent("checkout", "payment_failed")
		w.deps.Log.Warn("checkout_pay", "payment failed", slog.Int64("order_id", conf.OrderID), slog.String("error", err.Error()))
		w.notifier.Error(MsgPaymentFailed)
		return nil, fmt.Errorf("checkout.PayOnline: %w", err)
	}

	err = w.deps.Recorder.UpdatePayment(ctx, conf.OrderID, models.PaymentUpdateRequest{
		PaymentStatus: models.PaymentPaid,
		PaymentMethod: models.MethodOnline,
		Notes:         "Stripe payment " + paymentID,
	})
	if err != nil {
		// the charge went through; staff can reconcile from the notes in Stripe
		w.deps.Log.Error("checkout_pay", "record payment", err,
			slog.Int64("order_id", conf.OrderID), slog.String("payment_id", paymentID))
		w.notifier.Error(cafeapi.UserMessage(err, "Payment received but could not be recorded. Please show this to staff: "+paymentID))
		return nil, fmt.Errorf("checkout.PayOnline: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.confirm != nil && w.confirm.OrderID == conf.OrderID {
		w.confirm.PaymentID = paymentID
	}
	conf.PaymentID = paymentID
	metrics.RecordWorkflowEvent("checkout", "paid_online")
	w.notifier.Success(fmt.Sprintf("Payment of %s received for order %d", conf.TotalAmount.String(), conf.OrderID))
	return &conf, nil
}

// State returns a copy of the workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[string]string, len(w.errs))
	for k, v := range w.errs {
		errs[k] = v
	}
	s := State{Open: w.open, Form: w.form, Errors: errs, Submitting: w.submitting}
	if w.confirm != nil {
		c := *w.confirm
		s.Confirmation = &c
	}
	return s
}

// Close detaches the workflow. In-flight requests are cancelled and their
// results are discarded.
func (w *Workflow) Close() {
	w.cancel()
}
