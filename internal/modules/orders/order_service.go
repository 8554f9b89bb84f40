package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/debounce"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/mailer"
	"cafe-frontdesk/internal/metrics"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/notify"
	"cafe-frontdesk/internal/receipt"
)

// FilterDelay is how long filter edits settle before the list reloads.
const FilterDelay = 500 * time.Millisecond

const DefaultPageSize = 10

// Filters narrow the order list. Empty values mean "any".
type Filters struct {
	Phone         string               `json:"phone"`
	Status        models.OrderStatus   `json:"status" validate:"omitempty,oneof=pending confirmed preparing ready delivered cancelled"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded"`
}

// OrderView is an order as the board shows it.
type OrderView struct {
	models.Order
	Transitions []models.OrderStatus `json:"transitions"`
	Updating    bool                 `json:"updating"`
}

type State struct {
	Orders        []OrderView `json:"orders"`
	Page          int         `json:"page"`
	TotalPages    int         `json:"totalPages"`
	TotalCount    int         `json:"totalCount"`
	Filters       Filters     `json:"filters"`
	Loading       bool        `json:"loading"`
	Loaded        bool        `json:"loaded"`
	Error         string      `json:"error,omitempty"`
	SelectedID    int64       `json:"selectedId,omitempty"`
	FilterPending bool        `json:"filterPending"`
}

// Options configure a Board. Only Staff is required.
type Options struct {
	Staff     string
	PageSize  int
	Debouncer *debounce.Debouncer
	Mailer    mailer.Sender
	Log       *logger.Logger
}

// Board is one staff member's order management view: a server-paginated,
// filterable list with optimistic status and payment edits that are always
// reconciled by a reload.
type Board struct {
	mu       sync.Mutex
	repo     RepositoryInterface
	notifier notify.Notifier
	opts     Options
	debounce *debounce.Debouncer

	orders     []models.Order
	page       int
	totalPages int
	totalCount int
	filters    Filters
	updating   map[int64]bool
	selected   int64
	loaded     bool
	loadErr    string
	inflight   int

	// issued is bumped for every fetch; applied is the newest fetch whose
	// result made it into the list.
	issued  uint64
	applied uint64

	life   context.Context
	cancel context.CancelFunc
}

func NewBoard(repo RepositoryInterface, notifier notify.Notifier, opts Options) *Board {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	d := opts.Debouncer
	if d == nil {
		d = debounce.New(FilterDelay)
	}
	life, cancel := context.WithCancel(context.Background())
	return &Board{
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		debounce: d,
		page:     1,
		updating: map[int64]bool{},
		life:     life,
		cancel:   cancel,
	}
}

// bind ties ctx to the board's lifetime.
func (b *Board) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (b *Board) closed() bool {
	return b.life.Err() != nil
}

// AvailableTransitions lists the statuses offered for an order currently in
// s. Legality beyond "not terminal" is left to the backend.
func AvailableTransitions(s models.OrderStatus) []models.OrderStatus {
	if s.Terminal() {
		return []models.OrderStatus{}
	}
	out := make([]models.OrderStatus, 0, len(models.OrderStatuses)-1)
	for _, st := range models.OrderStatuses {
		if st != s {
			out = append(out, st)
		}
	}
	return out
}

// Load fetches page with the current filters. A page beyond the first that
// comes back empty falls back to page 1.
func (b *Board) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	b.mu.Lock()
	if b.closed() {
		b.mu.Unlock()
		return models.ErrWorkflowClosed
	}
	b.issued++
	seq := b.issued
	b.inflight++
	// staff see cancelled orders too, newest first
	params := models.OrderListParams{
		Page:             page,
		Limit:            b.opts.PageSize,
		Status:           b.filters.Status,
		PaymentStatus:    b.filters.PaymentStatus,
		Phone:            strings.TrimSpace(b.filters.Phone),
		SortBy:           "order_date",
		Order:            "desc",
		IncludeCancelled: true,
	}
	b.mu.Unlock()

	ctx, cancel := b.bind(ctx)
	defer cancel()
	res, err := b.repo.ListOrders(ctx, params)

	b.mu.Lock()
	b.inflight--
	if b.closed() {
		b.mu.Unlock()
		return models.ErrWorkflowClosed
	}
	if seq <= b.applied {
		// a newer fetch already landed
		b.mu.Unlock()
		b.opts.Log.Debug("orders_load", "dropped stale page", slog.Int("page", page))
		return nil
	}
	if err != nil {
		b.loadErr = cafeapi.UserMessage(err, "Failed to load orders")
		b.mu.Unlock()
		b.opts.Log.Warn("orders_load", "list orders failed", slog.Int("page", page), slog.String("error", err.Error()))
		b.notifier.Error(b.loadErr)
		return fmt.Errorf("orders.Load: %w", err)
	}
	if page > 1 && len(res.Orders) == 0 {
		b.mu.Unlock()
		return b.Load(ctx, 1)
	}

	b.applied = seq
	b.orders = res.Orders
	b.page = page
	if res.CurrentPage > 0 {
		b.page = res.CurrentPage
	}
	b.totalPages = res.TotalPages
	b.totalCount = res.TotalCount
	b.loaded = true
	b.loadErr = ""
	b.mu.Unlock()
	return nil
}

// GoToPage navigates without debounce.
func (b *Board) GoToPage(ctx context.Context, page int) error {
	b.debounce.Cancel()
	return b.Load(ctx, page)
}

// Reload re-fetches the current page.
func (b *Board) Reload(ctx context.Context) error {
	b.mu.Lock()
	page := b.page
	b.mu.Unlock()
	return b.Load(ctx, page)
}

// SetFilters replaces the filters and schedules a reload of page 1 once the
// edits settle.
func (b *Board) SetFilters(f Filters) {
	b.mu.Lock()
	b.filters = f
	b.mu.Unlock()
	b.debounce.Trigger(func() {
		_ = b.Load(b.life, 1)
	})
}

// Select marks an order on the current page for the detail view.
func (b *Board) Select(id int64) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return nil, models.ErrNotFound
	}
	b.selected = id
	o := b.orders[idx]
	return &o, nil
}

func (b *Board) indexOf(id int64) int {
	for i := range b.orders {
		if b.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// begin validates an edit against the list and marks the order updating.
// apply, when non-nil, is the optimistic rewrite.
func (b *Board) begin(id int64, checkTerminal bool, apply func(o *models.Order)) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return 0, models.ErrWorkflowClosed
	}
	idx := b.indexOf(id)
	if idx < 0 {
		return 0, models.ErrNotFound
	}
	if checkTerminal && b.orders[idx].OrderStatus.Terminal() {
		return 0, models.ErrTerminalStatus
	}
	if b.updating[id] {
		return 0, models.ErrUpdateInFlight
	}
	if apply != nil {
		apply(&b.orders[idx])
	}
	b.updating[id] = true
	return b.page, nil
}

// finish reconciles with the server and clears the updating marker.
func (b *Board) finish(ctx context.Context, id int64, page int, reload bool) {
	if reload {
		_ = b.Load(context.WithoutCancel(ctx), page)
	}
	b.mu.Lock()
	delete(b.updating, id)
	b.mu.Unlock()
}

// ChangeStatus moves an order to status: optimistic rewrite, backend call,
// then a reload that always runs.
func (b *Board) ChangeStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("orders.ChangeStatus: %w: unknown status %q", models.ErrValidation, status)
	}
	page, err := b.begin(id, true, func(o *models.Order) { o.OrderStatus = status })
	if err != nil {
		return err
	}

	ctx, cancel := b.bind(ctx)
	defer cancel()
	err = b.repo.UpdateOrderStatus(ctx, id, models.StatusUpdateRequest{Status: status, ChangedBy: b.opts.Staff})
	if err != nil {
		metrics.RecordWorkflowEvent("orders", "status_failed")
		b.opts.Log.Warn("orders_status", "status update failed",
			slog.Int64("order_id", id), slog.String("status", string(status)), slog.String("error", err.Error()))
		b.notifier.Error(cafeapi.UserMessage(err, "Failed to update order status"))
	} else {
		metrics.RecordWorkflowEvent("orders", "status_"+string(status))
		b.opts.Log.Info("orders_status", "status updated",
			slog.Int64("order_id", id), slog.String("status", string(status)), slog.String("by", b.opts.Staff))
		b.notifier.Success(fmt.Sprintf("Order #%d marked %s", id, status))
	}

	b.finish(ctx, id, page, true)
	if err != nil {
		return fmt.Errorf("orders.ChangeStatus: %w", err)
	}
	return nil
}

// ChangePayment updates the payment axis. A method is required for paid and
// is not sent for any other status.
func (b *Board) ChangePayment(ctx context.Context, id int64, status models.PaymentStatus, method models.PaymentMethod) error {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded:
	default:
		return fmt.Errorf("orders.ChangePayment: %w: unknown payment status %q", models.ErrValidation, status)
	}
	if status == models.PaymentPaid && method == "" {
		return models.ErrPaymentMethodRequired
	}
	if status != models.PaymentPaid {
		method = ""
	}

	page, err := b.begin(id, false, func(o *models.Order) {
		o.PaymentStatus = status
		if method != "" {
			m := method
			o.PaymentMethod = &m
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := b.bind(ctx)
	defer cancel()
	err = b.repo.UpdatePayment(ctx, id, models.PaymentUpdateRequest{
		PaymentStatus: status,
		PaymentMethod: method,
		Notes:         "Updated by " + b.opts.Staff,
	})
	if err != nil {
		metrics.RecordWorkflowEvent("orders", "payment_failed")
		b.opts.Log.Warn("orders_payment", "payment update failed",
			slog.Int64("order_id", id), slog.String("payment_status", string(status)), slog.String("error", err.Error()))
		b.notifier.Error(cafeapi.UserMessage(err, "Failed to update payment status"))
	} else {
		metrics.RecordWorkflowEvent("orders", "payment_"+string(status))
		b.notifier.Success(fmt.Sprintf("Payment for order #%d marked %s", id, status))
	}

	b.finish(ctx, id, page, true)
	if err != nil {
		return fmt.Errorf("orders.ChangePayment: %w", err)
	}
	return nil
}

// Cancel cancels an order. The list is only changed by the reload that
// follows a successful cancel.
func (b *Board) Cancel(ctx context.Context, id int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.ErrReasonRequired
	}
	page, err := b.begin(id, true, nil)
	if err != nil {
		return err
	}

	ctx, cancel := b.bind(ctx)
	defer cancel()
	err = b.repo.CancelOrder(ctx, id, models.CancelRequest{Reason: reason, CancelledBy: b.opts.Staff})
	if err != nil {
		b.opts.Log.Warn("orders_cancel", "cancel failed", slog.Int64("order_id", id), slog.String("error", err.Error()))
		b.notifier.Error(cafeapi.UserMessage(err, "Failed to cancel order"))
		b.finish(ctx, id, page, false)
		return fmt.Errorf("orders.Cancel: %w", err)
	}

	metrics.RecordWorkflowEvent("orders", "cancelled")
	b.opts.Log.Info("orders_cancel", "order cancelled", slog.Int64("order_id", id), slog.String("by", b.opts.Staff))
	b.notifier.Success(fmt.Sprintf("Order #%d cancelled", id))
	b.finish(ctx, id, page, true)
	return nil
}

// Receipt renders an order from the current page as PDF.
func (b *Board) Receipt(id int64, w io.Writer) (string, error) {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return "", models.ErrNotFound
	}
	o := b.orders[idx]
	b.mu.Unlock()

	if _, err := receipt.Render(w, o); err != nil {
		return "", fmt.Errorf("orders.Receipt: %w", err)
	}
	return receipt.Filename(o), nil
}

// EmailReceipt mails the receipt to the customer's address on file.
func (b *Board) EmailReceipt(ctx context.Context, id int64) error {
	if b.opts.Mailer == nil {
		return models.ErrMailerDisabled
	}
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return models.ErrNotFound
	}
	o := b.orders[idx]
	b.mu.Unlock()

	if o.CustomerEmail == nil {
		return fmt.Errorf("orders.EmailReceipt: %w: order has no e-mail address", models.ErrValidation)
	}
	pdf, err := receipt.Bytes(o)
	if err != nil {
		return fmt.Errorf("orders.EmailReceipt: %w", err)
	}
	if err := b.opts.Mailer.SendReceipt(ctx, *o.CustomerEmail, o, pdf); err != nil {
		b.notifier.Error("Failed to send receipt")
		return fmt.Errorf("orders.EmailReceipt: %w", err)
	}
	b.notifier.Success(fmt.Sprintf("Receipt for order #%d sent to %s", id, *o.CustomerEmail))
	return nil
}

// State returns a copy of the board.
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	views := make([]OrderView, 0, len(b.orders))
	for _, o := range b.orders {
		views = append(views, OrderView{
			Order:       o,
			Transitions: AvailableTransitions(o.OrderStatus),
			Updating:    b.updating[o.ID],
		})
	}
	return State{
		Orders:        views,
		Page:          b.page,
		TotalPages:    b.totalPages,
		TotalCount:    b.totalCount,
		Filters:       b.filters,
		Loading:       b.inflight > 0,
		Loaded:        b.loaded,
		Error:         b.loadErr,
		SelectedID:    b.selected,
		FilterPending: b.debounce.Pending(),
	}
}

// Close stops pending reloads and detaches in-flight results.
func (b *Board) Close() {
	b.debounce.Cancel()
	b.cancel()
}
