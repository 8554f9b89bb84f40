// Package server assembles the echo application: middleware, per-session
// workspaces and every route the browser talks to.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/config"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/mailer"
	"cafe-frontdesk/internal/metrics"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/modules/analytics"
	"cafe-frontdesk/internal/modules/auth"
	"cafe-frontdesk/internal/modules/cart"
	"cafe-frontdesk/internal/modules/checkout"
	"cafe-frontdesk/internal/modules/feedback"
	"cafe-frontdesk/internal/modules/inventory"
	"cafe-frontdesk/internal/modules/orders"
	"cafe-frontdesk/internal/modules/session"
	"cafe-frontdesk/internal/modules/tracking"
	"cafe-frontdesk/pkg/payment"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the process-wide collaborators. Payments, Recorder and Mailer are
// nil when the matching feature is not configured.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	API      *cafeapi.Client
	Sessions session.Store
	Payments payment.ServiceInterface
	Recorder checkout.PaymentRecorder
	Mailer   mailer.Sender
}

type Server struct {
	Echo      *echo.Echo
	Customers *Customers
	Staff     *Staff
	Auth      *auth.Service

	log      *logger.Logger
	sessions session.Store
}

func New(d Deps) *Server {
	cfg := d.Config
	customers := NewCustomers(checkout.Deps{
		Orders:   d.API,
		Payments: d.Payments,
		Recorder: d.Recorder,
		Mailer:   d.Mailer,
		Log:      d.Log,
	}, cfg.SessionTTL, strings.HasPrefix(cfg.ClientOrigin, "https://"))
	staff := NewStaff(d.API, d.Sessions, cfg.OrdersPageSize, d.Mailer, d.Log)
	authSvc := auth.NewService(d.API, d.Sessions, cfg.JWTSecret, cfg.SessionTTL, d.Log)
	authSvc.OnLogout(staff.Drop)

	s := &Server{
		Echo:      echo.New(),
		Customers: customers,
		Staff:     staff,
		Auth:      authSvc,
		log:       d.Log,
		sessions:  d.Sessions,
	}
	s.middleware(cfg)
	s.routes(d)
	return s
}

func (s *Server) middleware(cfg *config.Config) {
	e := s.Echo
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				s.log.Error("http_request", "request failed", v.Error, attrs...)
				return nil
			}
			s.log.Info("http_request", "request served", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(metrics.Middleware())
}

func (s *Server) routes(d Deps) {
	e := s.Echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	cartH := cart.NewHandler(s.Customers)
	api.GET("/cart", cartH.Get)
	api.DELETE("/cart", cartH.Clear)
	api.POST("/cart/items", cartH.AddItem)
	api.PATCH("/cart/items/:lineId", cartH.UpdateItem)
	api.DELETE("/cart/items/:lineId", cartH.RemoveItem)

	checkoutH := checkout.NewHandler(s.Customers)
	api.GET("/checkout", checkoutH.Get)
	api.POST("/checkout/open", checkoutH.Open)
	api.POST("/checkout/field", checkoutH.SetField)
	api.POST("/checkout/submit", checkoutH.Submit)
	api.POST("/checkout/cancel", checkoutH.Cancel)
	api.POST("/checkout/ack", checkoutH.Acknowledge)
	api.POST("/checkout/pay", checkoutH.Pay)

	trackH := tracking.NewHandler(tracking.NewService(d.API, d.Log))
	api.GET("/track", trackH.Track)

	feedbackH := feedback.NewHandler(feedback.NewService(d.API, d.Log), s.Staff)
	api.POST("/feedback", feedbackH.Submit)

	api.GET("/notices", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.Customers.InboxFor(c).Drain())
	})

	authH := auth.NewHandler(s.Auth)
	api.POST("/admin/login", authH.Login)

	admin := api.Group("/admin", s.Auth.Middleware())
	admin.POST("/logout", authH.Logout)
	admin.GET("/notices", func(c echo.Context) error {
		inbox, err := s.Staff.InboxFor(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
		}
		return c.JSON(http.StatusOK, inbox.Drain())
	})

	ordersH := orders.NewHandler(s.Staff)
	admin.GET("/orders", ordersH.List)
	admin.PUT("/orders/filters", ordersH.SetFilters)
	admin.GET("/orders/:id", ordersH.Get)
	admin.PUT("/orders/:id/status", ordersH.UpdateStatus)
	admin.PUT("/orders/:id/payment", ordersH.UpdatePayment)
	admin.POST("/orders/:id/cancel", ordersH.Cancel)
	admin.GET("/orders/:id/receipt.pdf", ordersH.Receipt)
	admin.POST("/orders/:id/receipt/email", ordersH.EmailReceipt)

	admin.GET("/feedback", feedbackH.List)
	admin.GET("/feedback/stats", feedbackH.Stats)
	admin.GET("/feedback/export", feedbackH.Export)

	invH := inventory.NewHandler(s.Staff)
	admin.GET("/inventory/items", invH.ListItems)
	admin.POST("/inventory/items", invH.CreateItem)
	admin.PUT("/inventory/items/:id", invH.UpdateItem)
	admin.DELETE("/inventory/items/:id", invH.DeleteItem)
	admin.GET("/inventory/orders", invH.ListOrders)
	admin.POST("/inventory/orders", invH.CreateOrder)
	admin.PUT("/inventory/orders/:id", invH.UpdateOrder)
	admin.DELETE("/inventory/orders/:id", invH.DeleteOrder)
	admin.GET("/inventory/insights", invH.Insights)

	analyticsH := analytics.NewHandler(s.Staff)
	admin.GET("/analytics", analyticsH.Overview)
	admin.GET("/analytics/export", analyticsH.Export)
}

// Sweep forgets idle customer sessions, ended staff sessions and expired
// stored sessions.
func (s *Server) Sweep(ctx context.Context) {
	customers := s.Customers.Sweep()
	staff := s.Staff.Sweep(ctx)
	purged, err := s.sessions.Purge(ctx)
	if err != nil {
		s.log.Error("janitor", "session purge failed", err)
	}
	if customers+staff > 0 || purged > 0 {
		s.log.Info("janitor", "swept sessions",
			slog.Int("customers", customers), slog.Int("staff", staff), slog.Int64("purged", purged))
	}
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}
