package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/loanledger/api/controllers"
	loancontrollers "github.com/angelmondragon/loanledger/api/controllers/loans"
	"github.com/angelmondragon/loanledger/api/middleware"
	"github.com/angelmondragon/loanledger/internal/accounts"
	"github.com/angelmondragon/loanledger/internal/ledger"
	"github.com/angelmondragon/loanledger/internal/loans"
	"github.com/angelmondragon/loanledger/internal/schedule"
	"github.com/angelmondragon/loanledger/pkg/config"
	"github.com/angelmondragon/loanledger/pkg/db"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	accountService accounts.Service,
	ledgerService ledger.Service,
	loanService loans.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["database"] = dbP
	}
	// Typed nils must not reach the middleware as non-nil interfaces.
	var (
		idemStore redis.IdempotencyStore
		limiter   *redis.Client
	)
	if redisClient != nil {
		deps["redis"] = redisClient
		idemStore = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	rateLimitPolicy := middleware.RateLimitPolicy{
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.TenantLimit,
	}
	idempotencyPolicy := middleware.IdempotencyPolicy{TTL: cfg.RateLimit.IdempotencyTTL}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Tenant(logg))
		if limiter != nil {
			r.Use(middleware.TenantRateLimit(rateLimitPolicy, limiter, logg))
		}
		r.Use(middleware.Idempotency(idempotencyPolicy, idemStore, logg))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.AccountList(accountService, logg))
			r.Post("/", controllers.AccountCreate(accountService, logg))
		})

		r.Post("/schedules/preview", controllers.SchedulePreview(schedule.Config{Scale: cfg.Engine.Scale}, logg))

		r.Route("/loans", func(r chi.Router) {
			r.Get("/", loancontrollers.List(loanService, logg))
			r.Post("/", loancontrollers.Apply(loanService, logg))

			r.Route("/{loanId}", func(r chi.Router) {
				r.Get("/", loancontrollers.Detail(loanService, logg))
				r.Post("/approve", loancontrollers.Approve(loanService, logg))
				r.Post("/reject", loancontrollers.Reject(loanService, logg))
				r.Post("/disburse", loancontrollers.Disburse(loanService, logg))
				r.Post("/close", loancontrollers.Close(loanService, logg))
				r.Post("/reschedule", loancontrollers.Reschedule(loanService, logg))
				r.Post("/top-up", loancontrollers.TopUp(loanService, logg))
				r.Post("/write-off", loancontrollers.WriteOff(loanService, logg))
				r.Post("/charges", loancontrollers.AssessCharges(loanService, logg))
				r.Post("/overdue", loancontrollers.MarkOverdue(loanService, logg))
				r.Get("/journals", loancontrollers.Journals(loanService, ledgerService, logg))
				r.Get("/journals/{journalId}", loancontrollers.JournalDetail(loanService, ledgerService, logg))

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", loancontrollers.ListPayments(loanService, logg))
					r.Post("/", loancontrollers.RecordPayment(loanService, logg))
					r.Get("/{paymentId}", loancontrollers.PaymentDetail(loanService, logg))
					r.Post("/{paymentId}/approve", loancontrollers.ApprovePayment(loanService, logg))
					r.Post("/{paymentId}/reject", loancontrollers.RejectPayment(loanService, logg))
					r.Post("/{paymentId}/void", loancontrollers.VoidPayment(loanService, logg))
				})
			})
		})
	})

	return r
}
