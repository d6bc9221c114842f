package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campushealth/clinic-booking/internal/booking"
)

type RouterConfig struct {
	Planner   *booking.Planner
	Inventory *booking.Inventory
	Ledger    *booking.Ledger
	Repo      booking.Repository
	PgPool    *pgxpool.Pool // nil with the kv backend
	Redis     *redis.Client
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/availability", createAvailabilityHandler(cfg.Planner))
	r.Get("/availability", listAvailabilityHandler(cfg.Planner))
	r.Delete("/availability/{id}", deleteAvailabilityHandler(cfg.Planner))

	r.Get("/slots", listSlotsHandler(cfg.Inventory))

	r.Post("/appointments", bookAppointmentHandler(cfg.Ledger))
	r.Post("/appointments/walk-in", walkInAppointmentHandler(cfg.Ledger))
	r.Get("/appointments", listAppointmentsHandler(cfg.Ledger))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Ledger))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Ledger))
	r.Post("/appointments/{id}/status", updateStatusHandler(cfg.Ledger))

	r.Get("/notifications", listNotificationsHandler(cfg.Repo))

	return r
}
