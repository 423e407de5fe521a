package http

import (
	"net/http"

	"github.com/finpal/backend/internal/application/alerts"
	"github.com/finpal/backend/internal/application/budget"
	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/application/events"
	"github.com/finpal/backend/internal/application/gamification"
	"github.com/finpal/backend/internal/application/notification"
	"github.com/finpal/backend/internal/application/reports"
	"github.com/finpal/backend/internal/application/transaction"
	"github.com/finpal/backend/internal/application/user"
	"github.com/finpal/backend/internal/config"
	"github.com/finpal/backend/internal/pkg/clock"
	"github.com/finpal/backend/internal/transport/http/handler"
	appmiddleware "github.com/finpal/backend/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router and the event pipeline backing it.
// The caller owns the pipeline and must Close it on shutdown so queued
// events drain.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, *events.Pipeline) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	dispatchSvc := dispatch.NewService(deps.NotificationRepo, deps.PushSender, clk)
	gamifySvc := gamification.NewService(gamification.ServiceDeps{
		Users:        deps.UserRepo,
		Catalog:      deps.AchievementRepo,
		Unlocks:      deps.UserAchievementRepo,
		Transactions: deps.TransactionRepo,
		Budgets:      deps.BudgetRepo,
		Dispatcher:   dispatchSvc,
		Clock:        clk,
	})
	alertSvc := alerts.NewService(alerts.ServiceDeps{
		Users:        deps.UserRepo,
		Budgets:      deps.BudgetRepo,
		Transactions: deps.TransactionRepo,
		Markers:      deps.AlertMarkerRepo,
		Dispatcher:   dispatchSvc,
		SMS:          deps.SMSSender,
		Clock:        clk,
	})
	reportSvc := reports.NewService(reports.ServiceDeps{
		Users:        deps.UserRepo,
		Transactions: deps.TransactionRepo,
		Dispatcher:   dispatchSvc,
		Mailer:       deps.Mailer,
		Clock:        clk,
	})
	pipeline := events.NewPipeline(alertSvc, gamifySvc, 0)

	userSvc := user.NewService(deps.UserRepo, deps.JWTProvider)
	txSvc := transaction.NewService(deps.TransactionRepo)
	budgetSvc := budget.NewService(deps.BudgetRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	txH := handler.NewTransactionHandler(txSvc, pipeline)
	budgetH := handler.NewBudgetHandler(budgetSvc, pipeline)
	notifH := handler.NewNotificationHandler(notifSvc)
	achievementH := handler.NewAchievementHandler(deps.AchievementRepo, gamifySvc)
	reportH := handler.NewReportHandler(reportSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", userH.Login)

		// ── Scheduler routes (shared-key auth) ───────────────────────────────
		r.With(appmiddleware.CronKey(cfg.CronKey)).Post("/reports/weekly", reportH.RunWeekly)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/settings", userH.UpdateSettings)
			r.Put("/users/me/push-token", userH.UpdatePushToken)

			r.Post("/transactions", txH.Create)
			r.Get("/transactions", txH.List)
			r.Delete("/transactions/{id}", txH.Delete)

			r.Post("/budgets", budgetH.Create)
			r.Get("/budgets", budgetH.List)
			r.Delete("/budgets/{id}", budgetH.Delete)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Get("/achievements", achievementH.ListCatalog)
			r.Get("/users/me/achievements", achievementH.MyProgress)
		})
	})

	return r, pipeline
}
