package server

import (
	"context"
	"errors"
	"sync"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/mailer"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/modules/analytics"
	"cafe-frontdesk/internal/modules/auth"
	"cafe-frontdesk/internal/modules/feedback"
	"cafe-frontdesk/internal/modules/inventory"
	"cafe-frontdesk/internal/modules/orders"
	"cafe-frontdesk/internal/modules/session"
	"cafe-frontdesk/internal/notify"

	"github.com/labstack/echo/v4"
)

// staffSpace is one staff session's views, all talking to the backend with
// that session's token.
type staffSpace struct {
	board     *orders.Board
	feedback  *feedback.Viewer
	inventory *inventory.Service
	analytics *analytics.Service
	inbox     *notify.Inbox
}

// Staff keeps a workspace per staff session id.
type Staff struct {
	mu       sync.Mutex
	spaces   map[string]*staffSpace
	api      *cafeapi.Client
	sessions session.Store
	pageSize int
	mailer   mailer.Sender
	log      *logger.Logger
}

func NewStaff(api *cafeapi.Client, sessions session.Store, pageSize int, m mailer.Sender, log *logger.Logger) *Staff {
	return &Staff{
		spaces:   map[string]*staffSpace{},
		api:      api,
		sessions: sessions,
		pageSize: pageSize,
		mailer:   m,
		log:      log,
	}
}

func (r *Staff) space(c echo.Context) (*staffSpace, error) {
	claims, err := auth.ClaimsFrom(c)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sp, ok := r.spaces[claims.SessionID]; ok {
		return sp, nil
	}
	client := r.api.WithCredentials(session.TokenSource(r.sessions, claims.SessionID))
	inbox := notify.NewInbox()
	sp := &staffSpace{
		board: orders.NewBoard(client, inbox, orders.Options{
			Staff:    claims.Username,
			PageSize: r.pageSize,
			Mailer:   r.mailer,
			Log:      r.log,
		}),
		feedback:  feedback.NewViewer(client),
		inventory: inventory.NewService(client, claims.Username, r.log),
		analytics: analytics.NewService(client),
		inbox:     inbox,
	}
	r.spaces[claims.SessionID] = sp
	return sp, nil
}

func (r *Staff) BoardFor(c echo.Context) (*orders.Board, error) {
	sp, err := r.space(c)
	if err != nil {
		return nil, err
	}
	return sp.board, nil
}

func (r *Staff) ViewerFor(c echo.Context) (*feedback.Viewer, error) {
	sp, err := r.space(c)
	if err != nil {
		return nil, err
	}
	return sp.feedback, nil
}

func (r *Staff) InventoryFor(c echo.Context) (*inventory.Service, error) {
	sp, err := r.space(c)
	if err != nil {
		return nil, err
	}
	return sp.inventory, nil
}

func (r *Staff) AnalyticsFor(c echo.Context) (*analytics.Service, error) {
	sp, err := r.space(c)
	if err != nil {
		return nil, err
	}
	return sp.analytics, nil
}

func (r *Staff) InboxFor(c echo.Context) (*notify.Inbox, error) {
	sp, err := r.space(c)
	if err != nil {
		return nil, err
	}
	return sp.inbox, nil
}

// Drop closes the board of a session that has ended.
func (r *Staff) Drop(sid string) {
	r.mu.Lock()
	sp, ok := r.spaces[sid]
	delete(r.spaces, sid)
	r.mu.Unlock()
	if ok {
		sp.board.Close()
	}
}

// Sweep drops workspaces whose session is gone from the store.
func (r *Staff) Sweep(ctx context.Context) int {
	r.mu.Lock()
	ids := make([]string, 0, len(r.spaces))
	for id := range r.spaces {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, err := r.sessions.Get(ctx, id); errors.Is(err, models.ErrNotFound) {
			r.Drop(id)
			n++
		}
	}
	return n
}
