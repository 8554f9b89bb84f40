package server

import (
	"net/http"
	"sync"
	"time"

	"cafe-frontdesk/internal/modules/cart"
	"cafe-frontdesk/internal/modules/checkout"
	"cafe-frontdesk/internal/notify"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName identifies a customer's browser session.
const CookieName = "cafe_session"

const customerKey = "customer"

// customerSpace is everything one browser session owns.
type customerSpace struct {
	cart  *cart.Cart
	flow  *checkout.Workflow
	inbox *notify.Inbox
	seen  time.Time
}

// Customers hands each browser session its own cart, checkout workflow and
// notice inbox, keyed by the cafe_session cookie.
type Customers struct {
	mu     sync.Mutex
	spaces map[string]*customerSpace
	deps   checkout.Deps
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewCustomers(deps checkout.Deps, ttl time.Duration, secure bool) *Customers {
	return &Customers{spaces: map[string]*customerSpace{}, deps: deps, ttl: ttl, secure: secure, now: time.Now}
}

// space returns the caller's workspace, creating it and setting the cookie
// on first contact. Unknown cookie values get a fresh id.
func (r *Customers) space(c echo.Context) *customerSpace {
	if sp, ok := c.Get(customerKey).(*customerSpace); ok {
		return sp
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if ck, err := c.Cookie(CookieName); err == nil {
		if sp, ok := r.spaces[ck.Value]; ok {
			sp.seen = r.now()
			c.Set(customerKey, sp)
			return sp
		}
	}

	id := uuid.NewString()
	inbox := notify.NewInbox()
	crt := cart.New()
	sp := &customerSpace{
		cart:  crt,
		flow:  checkout.NewWorkflow(crt, inbox, r.deps),
		inbox: inbox,
		seen:  r.now(),
	}
	r.spaces[id] = sp
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(r.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(customerKey, sp)
	return sp
}

func (r *Customers) CartFor(c echo.Context) *cart.Cart {
	return r.space(c).cart
}

func (r *Customers) WorkflowFor(c echo.Context) *checkout.Workflow {
	return r.space(c).flow
}

func (r *Customers) InboxFor(c echo.Context) *notify.Inbox {
	return r.space(c).inbox
}

// Sweep closes and forgets sessions idle for longer than the ttl.
func (r *Customers) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, sp := range r.spaces {
		if sp.seen.Before(cutoff) {
			sp.flow.Close()
			delete(r.spaces, id)
			n++
		}
	}
	return n
}

func (r *Customers) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}
