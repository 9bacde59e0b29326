package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/clearway/collections-backend-go/internal/config"
	"github.com/clearway/collections-backend-go/internal/handler/http/middleware"
)

func NewRouter(
	cfg *config.Config,
	tokenAuth *jwtauth.JWTAuth,
	ruleHandler RouteRuleHandler,
	subscriptionHandler SubscriptionHandler,
	bookingHandler BookingHandler,
	runHandler RunHandler,
	billingHandler BillingHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "clearway-collections"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public storefront endpoints
		r.Get("/postcode-check", ruleHandler.CheckPostcode)
		r.Post("/bookings", bookingHandler.Create)
		r.Post("/subscriptions", subscriptionHandler.Create)
		r.Post("/bookings/{id}/checkout", billingHandler.BookingCheckout)
		r.Post("/subscriptions/{id}/checkout", billingHandler.SubscriptionCheckout)

		// Stripe calls this; signature verification is its auth
		r.Post("/webhooks/stripe", billingHandler.Webhook)

		// Staff endpoints
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(middleware.AuthRequired(tokenAuth))

			r.Route("/route-rules", func(r chi.Router) {
				r.Get("/", ruleHandler.List)
				r.Post("/", ruleHandler.Create)
				r.Get("/{id}", ruleHandler.GetByID)
				r.Put("/{id}", ruleHandler.Update)
				r.Delete("/{id}", ruleHandler.Delete)
			})

			// Flat paths: /bookings and /subscriptions already carry public
			// POST handlers, so no subrouter can mount there.
			r.Get("/subscriptions", subscriptionHandler.List)
			r.Get("/subscriptions/due-this-week", subscriptionHandler.DueThisWeek)
			r.Get("/subscriptions/{id}", subscriptionHandler.GetByID)
			r.Put("/subscriptions/{id}", subscriptionHandler.Update)
			r.Delete("/subscriptions/{id}", subscriptionHandler.Delete)
			r.Post("/subscriptions/{id}/pause", subscriptionHandler.Pause)
			r.Post("/subscriptions/{id}/resume", subscriptionHandler.Resume)
			r.Post("/subscriptions/{id}/cancel", subscriptionHandler.Cancel)
			r.Post("/subscriptions/{id}/collections", subscriptionHandler.ConfirmCollection)
			r.Delete("/subscriptions/{id}/collections", subscriptionHandler.UndoCollection)

			r.Get("/bookings", bookingHandler.List)
			r.Get("/bookings/{id}", bookingHandler.GetByID)
			r.Put("/bookings/{id}", bookingHandler.Update)
			r.Delete("/bookings/{id}", bookingHandler.Delete)
			r.Post("/bookings/{id}/cancel", bookingHandler.Cancel)
			r.Post("/bookings/{id}/complete", bookingHandler.Complete)
			r.Delete("/bookings/{id}/complete", bookingHandler.Uncomplete)

			r.Route("/runs", func(r chi.Router) {
				r.Get("/", runHandler.List)
				r.Post("/", runHandler.Create)
				r.Get("/{id}", runHandler.GetByID)
				r.Put("/{id}", runHandler.Update)
				r.Delete("/{id}", runHandler.Delete)
				r.Get("/{id}/stops", runHandler.Stops)
				r.Post("/{id}/optimize", runHandler.Optimize)
			})
		})
	})
	return r
}
