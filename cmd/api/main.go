package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/clearway/collections-backend-go/internal/config"
	appHTTP "github.com/clearway/collections-backend-go/internal/handler/http"
	"github.com/clearway/collections-backend-go/internal/pkg/cron"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
	"github.com/clearway/collections-backend-go/internal/pkg/directions"
	"github.com/clearway/collections-backend-go/internal/pkg/email"
	"github.com/clearway/collections-backend-go/internal/pkg/jwt"
	"github.com/clearway/collections-backend-go/internal/pkg/stripe"
	"github.com/clearway/collections-backend-go/internal/repository/postgresql"
	billingService "github.com/clearway/collections-backend-go/internal/service/billing"
	bookingService "github.com/clearway/collections-backend-go/internal/service/booking"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
	routingService "github.com/clearway/collections-backend-go/internal/service/routing"
	runService "github.com/clearway/collections-backend-go/internal/service/run"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
	subscriptionService "github.com/clearway/collections-backend-go/internal/service/subscription"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Repositories
	ruleRepo := postgresql.NewRouteRuleRepository(db)
	subRepo := postgresql.NewSubscriptionRepository(db)
	logRepo := postgresql.NewCollectionLogRepository(db)
	bookingRepo := postgresql.NewBookingRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	// Shared domain helpers
	loc := cfg.Location()
	calc := schedule.NewCalculator(loc)
	matcher := routingService.NewMatcher(loc)

	// Outbound integrations
	emailSender, err := email.NewEmailSender(cfg.SMTP)
	if err != nil {
		log.Fatalf("failed to initialise email sender: %v", err)
	}

	var optimizer runService.Optimizer
	if cfg.Directions.APIKey != "" {
		directionsClient, err := directions.NewClient(cfg.Directions.APIKey)
		if err != nil {
			log.Fatalf("failed to initialise directions client: %v", err)
		}
		optimizer = directionsClient
	}

	stripeClient := stripe.NewClient(cfg.Stripe)
	webhookVerifier := stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret)

	// Services
	notifier := notificationService.NewNotificationService(notificationRepo, emailSender)
	ruleService := routingService.NewRouteRuleService(db, ruleRepo, matcher)
	subService := subscriptionService.NewSubscriptionService(db, subRepo, logRepo, ruleRepo, matcher, calc, notifier)
	bkService := bookingService.NewBookingService(bookingRepo, ruleRepo, matcher, calc, notifier)
	assembler := runService.NewAssembler(subRepo, bookingRepo, logRepo, calc)
	sequencer := runService.NewSequencer(runRepo, optimizer)
	rnService := runService.NewRunService(db, runRepo, assembler, sequencer)
	blService := billingService.NewBillingService(stripeClient, webhookVerifier, bookingRepo, subRepo, notifier, cfg.App.FrontendURL, logger)

	// Handlers
	ruleHandler := appHTTP.NewRouteRuleHandler(ruleService)
	subscriptionHandler := appHTTP.NewSubscriptionHandler(subService, calc)
	bookingHandler := appHTTP.NewBookingHandler(bkService)
	runHandler := appHTTP.NewRunHandler(rnService)
	billingHandler := appHTTP.NewBillingHandler(blService)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewNotificationJobs(notifier, subService, calc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	jwtService := jwt.NewService(cfg.Auth.JWTSecret)

	router := appHTTP.NewRouter(cfg, jwtService.JWTAuth(), ruleHandler, subscriptionHandler, bookingHandler, runHandler, billingHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server starting on port %s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Printf("Server failed to start: %v\n", err)
	}
}
