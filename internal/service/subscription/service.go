package subscription

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
	"github.com/clearway/collections-backend-go/internal/repository/postgresql"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
	routingService "github.com/clearway/collections-backend-go/internal/service/routing"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
)

// CollectionResult pairs the primary operation's outcome with the
// best-effort notification enqueue, which succeeds or fails on its own.
type CollectionResult struct {
	Subscription subscription.SubscriptionResponse
	Notification notificationService.EnqueueOutcome
}

type SubscriptionService interface {
	Create(ctx context.Context, req subscription.CreateSubscriptionRequest) (subscription.SubscriptionResponse, error)
	Get(ctx context.Context, id string) (subscription.SubscriptionResponse, error)
	List(ctx context.Context, statuses []string) ([]subscription.SubscriptionResponse, error)
	Update(ctx context.Context, id string, req subscription.UpdateSubscriptionRequest) (subscription.SubscriptionResponse, error)
	Delete(ctx context.Context, id string) error

	Pause(ctx context.Context, id string, req subscription.PauseRequest) (subscription.SubscriptionResponse, error)
	Resume(ctx context.Context, id string) (subscription.SubscriptionResponse, error)
	Cancel(ctx context.Context, id string) (subscription.SubscriptionResponse, error)

	ConfirmCollection(ctx context.Context, id string, req subscription.ConfirmCollectionRequest) (CollectionResult, error)
	UndoCollection(ctx context.Context, id string, req subscription.ConfirmCollectionRequest) (subscription.SubscriptionResponse, error)

	ListDueInWeek(ctx context.Context, weekStart time.Time) ([]subscription.SubscriptionResponse, error)

	// QueueCollectionReminders enqueues a reminder for every eligible
	// subscription due on the given date. Returns how many were queued.
	QueueCollectionReminders(ctx context.Context, date time.Time) (int, error)
}

type subscriptionServiceImpl struct {
	subRepo  subscription.Repository
	logRepo  subscription.CollectionLogRepository
	ruleRepo routing.RouteRuleRepository
	matcher  *routingService.Matcher
	calc     *schedule.Calculator
	notifier notificationService.Service

	// runTx wraps the multi-write collection operations in a transaction.
	runTx func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewSubscriptionService(
	db *database.DB,
	subRepo subscription.Repository,
	logRepo subscription.CollectionLogRepository,
	ruleRepo routing.RouteRuleRepository,
	matcher *routingService.Matcher,
	calc *schedule.Calculator,
	notifier notificationService.Service,
) SubscriptionService {
	return &subscriptionServiceImpl{
		subRepo:  subRepo,
		logRepo:  logRepo,
		ruleRepo: ruleRepo,
		matcher:  matcher,
		calc:     calc,
		notifier: notifier,
		runTx: func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

func (s *subscriptionServiceImpl) Create(ctx context.Context, req subscription.CreateSubscriptionRequest) (subscription.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	anchor, _ := time.Parse("2006-01-02", req.AnchorDate)
	sub := subscription.Subscription{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Postcode:      routing.NormalizePostcode(req.Postcode),
		Frequency:     subscription.Frequency(req.Frequency),
		AnchorDate:    anchor,
		Status:        subscription.StatusPending,
	}

	// Manual route fields take precedence and flag the subscription as
	// overridden; otherwise the route comes from the rule set.
	if req.RouteDay != nil || req.RouteArea != nil || req.RouteSlot != nil {
		sub.RouteOverride = true
		if req.RouteDay != nil {
			sub.RouteDay = *req.RouteDay
		}
		if req.RouteArea != nil {
			sub.RouteArea = *req.RouteArea
		}
		if req.RouteSlot != nil {
			sub.RouteSlot = routing.Slot(*req.RouteSlot)
		}
	} else {
		rules, err := s.ruleRepo.ListActive(ctx)
		if err != nil {
			return subscription.SubscriptionResponse{}, err
		}
		match := s.matcher.Match(req.Postcode, rules)
		if match.Default != nil {
			sub.RouteDay = match.Default.RouteDay
			sub.RouteArea = match.Default.RouteArea
			sub.RouteSlot = match.Default.Slot
		}
	}

	if sub.RouteDay != "" {
		next := schedule.EffectiveAnchor(anchor, sub.RouteDay)
		sub.NextCollectionDate = &next
	}

	created, err := s.subRepo.Create(ctx, sub)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return created.ToResponse(), nil
}

func (s *subscriptionServiceImpl) Get(ctx context.Context, id string) (subscription.SubscriptionResponse, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return sub.ToResponse(), nil
}

func (s *subscriptionServiceImpl) List(ctx context.Context, statuses []string) ([]subscription.SubscriptionResponse, error) {
	subs, err := s.subRepo.List(ctx, statuses)
	if err != nil {
		return nil, err
	}

	resp := make([]subscription.SubscriptionResponse, len(subs))
	for i := range subs {
		resp[i] = subs[i].ToResponse()
	}
	return resp, nil
}

func (s *subscriptionServiceImpl) Update(ctx context.Context, id string, req subscription.UpdateSubscriptionRequest) (subscription.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	if req.CustomerName != nil {
		sub.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		sub.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerPhone != nil {
		sub.CustomerPhone = *req.CustomerPhone
	}
	if req.Address != nil {
		sub.Address = *req.Address
	}
	if req.Frequency != nil {
		sub.Frequency = subscription.Frequency(*req.Frequency)
	}
	if req.AnchorDate != nil {
		anchor, _ := time.Parse("2006-01-02", *req.AnchorDate)
		sub.AnchorDate = anchor
	}
	if req.Status != nil {
		sub.Status = subscription.Status(*req.Status)
	}
	if req.RouteOverride != nil {
		sub.RouteOverride = *req.RouteOverride
	}
	if req.RouteDay != nil || req.RouteArea != nil || req.RouteSlot != nil {
		sub.RouteOverride = true
		if req.RouteDay != nil {
			sub.RouteDay = *req.RouteDay
		}
		if req.RouteArea != nil {
			sub.RouteArea = *req.RouteArea
		}
		if req.RouteSlot != nil {
			sub.RouteSlot = routing.Slot(*req.RouteSlot)
		}
	}

	// Re-derive the route when the postcode moves and no override pins it.
	if req.Postcode != nil {
		sub.Postcode = routing.NormalizePostcode(*req.Postcode)
		if !sub.RouteOverride {
			rules, err := s.ruleRepo.ListActive(ctx)
			if err != nil {
				return subscription.SubscriptionResponse{}, err
			}
			match := s.matcher.Match(*req.Postcode, rules)
			if match.Default != nil {
				sub.RouteDay = match.Default.RouteDay
				sub.RouteArea = match.Default.RouteArea
				sub.RouteSlot = match.Default.Slot
			}
		}
	}

	updated, err := s.subRepo.Update(ctx, sub)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *subscriptionServiceImpl) Delete(ctx context.Context, id string) error {
	return s.subRepo.Delete(ctx, id)
}

func (s *subscriptionServiceImpl) Pause(ctx context.Context, id string, req subscription.PauseRequest) (subscription.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	from, _ := time.Parse("2006-01-02", req.PauseFrom)
	sub.PauseFrom = &from
	sub.PauseTo = nil
	if req.PauseTo != "" {
		to, _ := time.Parse("2006-01-02", req.PauseTo)
		if to.Before(from) {
			return subscription.SubscriptionResponse{}, subscription.ErrInvalidPauseWindow
		}
		sub.PauseTo = &to
	}

	updated, err := s.subRepo.Update(ctx, sub)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *subscriptionServiceImpl) Resume(ctx context.Context, id string) (subscription.SubscriptionResponse, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub.PauseFrom = nil
	sub.PauseTo = nil
	if sub.Status == subscription.StatusPaused {
		sub.Status = subscription.StatusActive
	}

	updated, err := s.subRepo.Update(ctx, sub)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *subscriptionServiceImpl) Cancel(ctx context.Context, id string) (subscription.SubscriptionResponse, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub.Status = subscription.StatusCancelled
	sub.NextCollectionDate = nil

	updated, err := s.subRepo.Update(ctx, sub)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	return updated.ToResponse(), nil
}

// ConfirmCollection records a completed collection and advances the next
// collection date. The insert is idempotent on (subscription, date), so a
// driver tapping twice produces one record. The confirmation email is
// queued best-effort: its failure is reported in the result, never raised.
func (s *subscriptionServiceImpl) ConfirmCollection(ctx context.Context, id string, req subscription.ConfirmCollectionRequest) (CollectionResult, error) {
	if err := req.Validate(); err != nil {
		return CollectionResult{}, err
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return CollectionResult{}, err
	}
	// Cancelled and pending subscriptions have no collections to confirm.
	if sub.Status == subscription.StatusCancelled || sub.Status == subscription.StatusPending {
		return CollectionResult{}, subscription.ErrNotEligible
	}

	collectionDate, _ := time.Parse("2006-01-02", req.CollectionDate)
	next := s.calc.NextDueDate(collectionDate, sub.Frequency)

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		rec := subscription.CollectionRecord{
			SubscriptionID: id,
			CollectionDate: collectionDate,
			RunID:          req.RunID,
		}
		if err := s.logRepo.Insert(txCtx, rec); err != nil {
			return err
		}
		return s.subRepo.UpdateNextCollectionDate(txCtx, id, &next)
	})
	if err != nil {
		return CollectionResult{}, err
	}
	sub.NextCollectionDate = &next

	outcome := s.notifier.Enqueue(ctx, sub.CustomerEmail, notification.CollectionCompletedPayload{
		SubscriptionID: sub.ID,
		CustomerName:   sub.CustomerName,
		CollectionDate: req.CollectionDate,
		NextCollection: next.Format("2006-01-02"),
	})

	return CollectionResult{
		Subscription: sub.ToResponse(),
		Notification: outcome,
	}, nil
}

// UndoCollection removes the collection record for the given date and
// rewinds the next collection date to that date. Undoing a date that was
// never collected reports ErrNotCollected.
func (s *subscriptionServiceImpl) UndoCollection(ctx context.Context, id string, req subscription.ConfirmCollectionRequest) (subscription.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}

	collectionDate, _ := time.Parse("2006-01-02", req.CollectionDate)

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		removed, err := s.logRepo.Delete(txCtx, id, collectionDate)
		if err != nil {
			return err
		}
		if removed == 0 {
			return subscription.ErrNotCollected
		}
		return s.subRepo.UpdateNextCollectionDate(txCtx, id, &collectionDate)
	})
	if err != nil {
		return subscription.SubscriptionResponse{}, err
	}
	sub.NextCollectionDate = &collectionDate

	return sub.ToResponse(), nil
}

// ListDueInWeek returns eligible subscriptions with a recurrence falling
// inside the week starting at weekStart. This is the looser raw-anchor
// summary used by the weekly ops list, not the run-assembly rule.
func (s *subscriptionServiceImpl) ListDueInWeek(ctx context.Context, weekStart time.Time) ([]subscription.SubscriptionResponse, error) {
	subs, err := s.subRepo.List(ctx, []string{
		string(subscription.StatusActive),
		string(subscription.StatusTrialing),
	})
	if err != nil {
		return nil, err
	}

	var resp []subscription.SubscriptionResponse
	for i := range subs {
		sub := &subs[i]
		if !s.calc.IsDueInWeek(sub.AnchorDate.Format("2006-01-02"), sub.Frequency, weekStart) {
			continue
		}
		resp = append(resp, sub.ToResponse())
	}
	return resp, nil
}

func (s *subscriptionServiceImpl) QueueCollectionReminders(ctx context.Context, date time.Time) (int, error) {
	subs, err := s.subRepo.List(ctx, []string{
		string(subscription.StatusActive),
		string(subscription.StatusTrialing),
	})
	if err != nil {
		return 0, err
	}

	dateStr := date.Format("2006-01-02")
	queued := 0
	for i := range subs {
		sub := &subs[i]
		if !s.calc.IsDueOnDate(dateStr, sub.RouteDay, sub.AnchorDate.Format("2006-01-02"), sub.Frequency) {
			continue
		}
		if s.calc.IsPaused(date, sub.PauseFrom, sub.PauseTo) {
			continue
		}

		outcome := s.notifier.Enqueue(ctx, sub.CustomerEmail, notification.CollectionReminderPayload{
			SubscriptionID: sub.ID,
			CustomerName:   sub.CustomerName,
			CollectionDate: dateStr,
			Slot:           string(sub.RouteSlot),
		})
		if outcome.Queued {
			queued++
		}
	}
	return queued, nil
}
