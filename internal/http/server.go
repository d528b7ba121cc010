package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dues/internal/core"
	applog "dues/internal/log"
	"dues/internal/services"
)

// MemberService is the part of services.MemberService the API drives.
type MemberService interface {
	AddMember(ctx context.Context, in services.NewMember) (core.Member, error)
	RecordPayment(ctx context.Context, memberID string, in services.NewPayment) (core.Member, error)
	SendReminder(ctx context.Context, memberID string, in services.NewReminder) (core.Member, error)
	SetActive(ctx context.Context, memberID string, active bool) (core.Member, error)
	Get(memberID string) (core.Member, error)
	Search(query string) []core.Member
	DueMembers(ref time.Time) []core.Member
	PeriodStats(month time.Month, year int) services.PeriodStats
	Now() time.Time
}

// Server is the JSON API over the member collection.
type Server struct {
	http.Server
	members MemberService
}

// NewServer wires the routes. metrics may be nil to leave /metrics unmounted.
// A nil logger logs requests through slog.Default.
func NewServer(addr string, members MemberService, logger *applog.Logger, metrics http.Handler) *Server {
	if logger == nil {
		logger = applog.New(applog.Config{
			Component: applog.ComponentHTTP,
			Handler:   slog.Default().Handler(),
		})
	}
	s := &Server{members: members}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(applog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/members", func(r chi.Router) {
		r.Get("/", s.handleListMembers)
		r.Post("/", s.handleAddMember)
		r.Get("/due", s.handleDueMembers)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetMember)
			r.Post("/payments", s.handleRecordPayment)
			r.Post("/reminders", s.handleSendReminder)
			r.Post("/deactivate", s.handleSetActive(false))
			r.Post("/activate", s.handleSetActive(true))
		})
	})
	r.Get("/stats", s.handlePeriodStats)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
