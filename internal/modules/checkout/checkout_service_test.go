package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/notify"
	"cafe-frontdesk/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------------------------------------------
// fakes
// ----------------------------------------------------------------------------
type fakeCart struct {
	mu     sync.Mutex
	items  []models.CartItem
	clears int
}

func (f *fakeCart) Items() []models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartItem(nil), f.items...)
}

func (f *fakeCart) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) > 0 {
		f.clears++
	}
	f.items = nil
}

type fakeOrders struct {
	mu    sync.Mutex
	calls []models.OrderSubmission
	fn    func(ctx context.Context, sub models.OrderSubmission) (*models.Order, error)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, sub models.OrderSubmission) (*models.Order, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	f.mu.Unlock()
	return f.fn(ctx, sub)
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func created(id int64, total string) func(context.Context, models.OrderSubmission) (*models.Order, error) {
	return func(context.Context, models.OrderSubmission) (*models.Order, error) {
		return &models.Order{ID: id, TotalAmount: decimal.RequireFromString(total)}, nil
	}
}

func failing(err error) func(context.Context, models.OrderSubmission) (*models.Order, error) {
	return func(context.Context, models.OrderSubmission) (*models.Order, error) { return nil, err }
}

func cartWithChai() *fakeCart {
	return &fakeCart{items: []models.CartItem{
		{CatalogID: 7, LineID: "l1", Name: "Masala Chai", Price: decimal.RequireFromString("40.25"), Quantity: 2, SpecialInstructions: " less sugar "},
	}}
}

func fillValid(t *testing.T, w *Workflow) {
	t.Helper()
	require.NoError(t, w.Open())
	require.NoError(t, w.SetField(validation.FieldName, "  Asha Rao "))
	require.NoError(t, w.SetField(validation.FieldPhone, "987-654-3210"))
	require.NoError(t, w.SetField(validation.FieldEmail, ""))
}

func lastNotice(t *testing.T, b *notify.Inbox) notify.Notice {
	t.Helper()
	all := b.Peek()
	require.NotEmpty(t, all)
	return all[len(all)-1]
}

// ----------------------------------------------------------------------------
// submit
// ----------------------------------------------------------------------------
func TestSubmitEmptyCartMakesNoRequest(t *testing.T) {
	orders := &fakeOrders{fn: created(1, "1")}
	inbox := notify.NewInbox()
	w := NewWorkflow(&fakeCart{}, inbox, Deps{Orders: orders})
	fillValid(t, w)

	_, err := w.Submit(context.Background())

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Equal(t, 0, orders.count())
	assert.Equal(t, MsgEmptyCart, lastNotice(t, inbox).Message)
	assert.Equal(t, notify.LevelError, lastNotice(t, inbox).Level)
}

func TestSubmitInvalidFieldsBlockBeforeCartCheck(t *testing.T) {
	orders := &fakeOrders{fn: created(1, "1")}
	inbox := notify.NewInbox()
	w := NewWorkflow(&fakeCart{}, inbox, Deps{Orders: orders})
	require.NoError(t, w.SetField(validation.FieldName, "A"))

	_, err := w.Submit(context.Background())

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, orders.count())
	assert.Empty(t, inbox.Peek())
	assert.Equal(t, validation.MsgNameTooShort, w.State().Errors[validation.FieldName])
}

func TestStaleFieldErrorBlocksUntilCorrected(t *testing.T) {
	orders := &fakeOrders{fn: created(5, "10")}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: orders})
	fillValid(t, w)
	require.NoError(t, w.SetField(validation.FieldPhone, "12345"))
	assert.Equal(t, validation.MsgPhoneTooShort, w.State().Errors[validation.FieldPhone])

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, orders.count())

	require.NoError(t, w.SetField(validation.FieldPhone, "9876543210"))
	assert.Empty(t, w.State().Errors)
	_, err = w.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, orders.count())
}

func TestSubmitBuildsTrimmedSubmissionWithFallbacks(t *testing.T) {
	orders := &fakeOrders{fn: created(9, "80.5")}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: orders})
	fillValid(t, w)
	require.NoError(t, w.SetField(validation.FieldPhone, "   "))
	require.NoError(t, w.SetField(FieldInstructions, "  "))

	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, orders.count())
	sub := orders.calls[0]
	assert.Equal(t, "Asha Rao", sub.CustomerName)
	assert.Equal(t, models.NotProvided, sub.CustomerPhone)
	assert.Equal(t, models.NotProvided, sub.CustomerEmail)
	assert.Empty(t, sub.OrderInstructions)
	require.Len(t, sub.Items, 1)
	assert.Equal(t, int64(7), sub.Items[0].MenuItemID)
	assert.Equal(t, 2, sub.Items[0].Quantity)
	assert.Equal(t, "less sugar", sub.Items[0].SpecialInstructions)
}

func TestSubmitSuccessKeepsCartUntilAcknowledged(t *testing.T) {
	crt := cartWithChai()
	inbox := notify.NewInbox()
	w := NewWorkflow(crt, inbox, Deps{Orders: &fakeOrders{fn: created(42, "150.5")}})
	fillValid(t, w)

	conf, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), conf.OrderID)
	assert.True(t, conf.TotalAmount.Equal(decimal.RequireFromString("150.5")))

	msg := lastNotice(t, inbox)
	assert.Equal(t, notify.LevelSuccess, msg.Level)
	assert.Contains(t, msg.Message, "42")
	assert.Contains(t, msg.Message, "150.5")

	st := w.State()
	assert.Equal(t, Form{}, st.Form)
	assert.Empty(t, st.Errors)
	assert.False(t, st.Submitting)
	assert.True(t, st.Open)
	require.NotNil(t, st.Confirmation)
	assert.Len(t, crt.Items(), 1)
	assert.Equal(t, 0, crt.clears)

	w.Acknowledge()
	assert.Empty(t, crt.Items())
	assert.Equal(t, 1, crt.clears)
	assert.False(t, w.State().Open)
	assert.Nil(t, w.State().Confirmation)

	// refilling the cart then acknowledging again must not clear it
	crt.items = cartWithChai().items
	w.Acknowledge()
	assert.Equal(t, 1, crt.clears)
	assert.Len(t, crt.Items(), 1)
}

func TestSubmitFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"items unavailable", &cafeapi.APIError{StatusCode: 400, Message: "Menu item 7 is not available"}, MsgItemsUnavailable},
		{"server message", &cafeapi.APIError{StatusCode: 400, Message: "Invalid phone number"}, "Invalid phone number"},
		{"envelope without message", &cafeapi.APIError{StatusCode: 200}, MsgOrderFailed},
		{"network", &cafeapi.TransportError{Op: "CreateOrder", Err: errors.New("dial tcp")}, cafeapi.NetworkMessage},
		{"unknown", errors.New("boom"), MsgOrderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crt := cartWithChai()
			inbox := notify.NewInbox()
			w := NewWorkflow(crt, inbox, Deps{Orders: &fakeOrders{fn: failing(tt.err)}})
			fillValid(t, w)

			_, err := w.Submit(context.Background())
			require.Error(t, err)

			assert.Equal(t, tt.want, lastNotice(t, inbox).Message)
			st := w.State()
			assert.False(t, st.Submitting)
			assert.Equal(t, "  Asha Rao ", st.Form.Name)
			assert.Nil(t, st.Confirmation)
			assert.Len(t, crt.Items(), 1)
		})
	}
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	orders := &fakeOrders{fn: func(ctx context.Context, _ models.OrderSubmission) (*models.Order, error) {
		close(started)
		<-release
		return &models.Order{ID: 1, TotalAmount: decimal.NewFromInt(1)}, nil
	}}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: orders})
	fillValid(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-started
	assert.True(t, w.State().Submitting)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.count())
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	orders := &fakeOrders{fn: func(ctx context.Context, _ models.OrderSubmission) (*models.Order, error) {
		close(started)
		<-ctx.Done()
		return nil, &cafeapi.TransportError{Op: "CreateOrder", Err: ctx.Err()}
	}}
	inbox := notify.NewInbox()
	w := NewWorkflow(cartWithChai(), inbox, Deps{Orders: orders})
	fillValid(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-started
	w.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, models.ErrWorkflowClosed)
	case <-time.After(time.Second):
		t.Fatal("submit did not return after Close")
	}
	assert.Empty(t, inbox.Peek())
	assert.ErrorIs(t, w.Open(), models.ErrWorkflowClosed)
}

func TestCancelResetsWithoutBackend(t *testing.T) {
	orders := &fakeOrders{fn: created(1, "1")}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: orders})
	fillValid(t, w)
	require.NoError(t, w.SetField(validation.FieldEmail, "bad"))

	w.Cancel()

	st := w.State()
	assert.False(t, st.Open)
	assert.Equal(t, Form{}, st.Form)
	assert.Empty(t, st.Errors)
	assert.Equal(t, 0, orders.count())
}

func TestSetFieldUnknown(t *testing.T) {
	w := NewWorkflow(&fakeCart{}, notify.NewInbox(), Deps{})
	assert.ErrorIs(t, w.SetField("address", "x"), models.ErrValidation)
}

// ----------------------------------------------------------------------------
// receipt e-mail and online payment
// ----------------------------------------------------------------------------
type fakeMailer struct {
	to    string
	order models.Order
	pdf   []byte
	err   error
}

func (f *fakeMailer) SendReceipt(ctx context.Context, to string, order models.Order, pdf []byte) error {
	f.to, f.order, f.pdf = to, order, pdf
	return f.err
}

func TestSuccessEmailsReceiptWhenEmailGiven(t *testing.T) {
	m := &fakeMailer{}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: &fakeOrders{fn: created(42, "150.5")}, Mailer: m})
	fillValid(t, w)
	require.NoError(t, w.SetField(validation.FieldEmail, "asha@example.com"))

	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", m.to)
	assert.Equal(t, int64(42), m.order.ID)
	assert.Equal(t, "%PDF", string(m.pdf[:4]))
}

func TestMailerFailureDoesNotFailSubmit(t *testing.T) {
	m := &fakeMailer{err: errors.New("ses down")}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: &fakeOrders{fn: created(42, "150.5")}, Mailer: m})
	fillValid(t, w)
	require.NoError(t, w.SetField(validation.FieldEmail, "asha@example.com"))

	_, err := w.Submit(context.Background())
	assert.NoError(t, err)
}

type fakePayments struct {
	amount decimal.Decimal
	ref    string
	err    error
}

func (f *fakePayments) ProcessPayment(ctx context.Context, reference string, amount decimal.Decimal, pm string) (string, error) {
	f.ref, f.amount = reference, amount
	if f.err != nil {
		return "", f.err
	}
	return "pi_1", nil
}

type fakeRecorder struct {
	id  int64
	req models.PaymentUpdateRequest
	err error
}

func (f *fakeRecorder) UpdatePayment(ctx context.Context, id int64, req models.PaymentUpdateRequest) error {
	f.id, f.req = id, req
	return f.err
}

func TestPayOnlineDisabledWithoutProvider(t *testing.T) {
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Orders: &fakeOrders{fn: created(1, "1")}})
	_, err := w.PayOnline(context.Background(), "pm")
	assert.ErrorIs(t, err, models.ErrOnlinePaymentDisabled)
}

func TestPayOnlineRequiresConfirmation(t *testing.T) {
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{Payments: &fakePayments{}, Recorder: &fakeRecorder{}})
	_, err := w.PayOnline(context.Background(), "pm")
	assert.ErrorIs(t, err, models.ErrNoConfirmation)
}

func TestPayOnlineChargesAndRecords(t *testing.T) {
	pay := &fakePayments{}
	rec := &fakeRecorder{}
	w := NewWorkflow(cartWithChai(), notify.NewInbox(), Deps{
		Orders: &fakeOrders{fn: created(42, "150.5")}, Payments: pay, Recorder: rec,
	})
	fillValid(t, w)
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	conf, err := w.PayOnline(context.Background(), "pm_card_visa")
	require.NoError(t, err)

	assert.Equal(t, "pi_1", conf.PaymentID)
	assert.Equal(t, "42", pay.ref)
	assert.True(t, pay.amount.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, int64(42), rec.id)
	assert.Equal(t, models.PaymentPaid, rec.req.PaymentStatus)
	assert.Equal(t, models.MethodOnline, rec.req.PaymentMethod)

	_, err = w.PayOnline(context.Background(), "pm_card_visa")
	assert.ErrorIs(t, err, models.ErrNoConfirmation)
}

func TestPayOnlineChargeFailure(t *testing.T) {
	rec := &fakeRecorder{}
	inbox := notify.NewInbox()
	w := NewWorkflow(cartWithChai(), inbox, Deps{
		Orders: &fakeOrders{fn: created(42, "150.5")}, Payments: &fakePayments{err: errors.New("declined")}, Recorder: rec,
	})
	fillValid(t, w)
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	_, err = w.PayOnline(context.Background(), "pm")
	assert.Error(t, err)
	assert.Zero(t, rec.id)
	assert.Equal(t, MsgPaymentFailed, lastNotice(t, inbox).Message)
	assert.Empty(t, w.State().Confirmation.PaymentID)
}
