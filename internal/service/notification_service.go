// FILE: internal/service/notification_service.go
package service

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/pkg/mailer"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/events"
	pktNats "ai-studyassistant-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService turns billing lifecycle events into customer emails.
// It consumes the event stream so email failures never block a webhook
// acknowledgement.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		mailer:     emailService,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "billing-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	userIdStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without usable user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return err // redelivered
	}
	if user == nil {
		return nil
	}

	planName := s.planName(ctx, payload)

	switch event.EventType() {
	case events.TypeSubscriptionActivated:
		amount, _ := payload["amount_minor"].(float64)
		currency, _ := payload["currency"].(string)
		return s.mailer.SendPaymentSuccess(user.Email, planName, int64(amount), currency)

	case events.TypePaymentFailed:
		attempt, _ := payload["attempt"].(float64)
		return s.mailer.SendPaymentFailed(user.Email, planName, int(attempt))

	case events.TypeSubscriptionCancelled:
		accessUntil, _ := payload["access_until"].(string)
		if t, err := time.Parse(time.RFC3339, accessUntil); err == nil {
			accessUntil = t.Format("2 January 2006")
		}
		return s.mailer.SendCancellation(user.Email, planName, accessUntil)

	case events.TypeSubscriptionDowngrade:
		return s.mailer.SendDowngrade(user.Email, planName)

	default:
		// Renewal extensions and anything else go without email.
		return nil
	}
}

func (s *NotificationService) planName(ctx context.Context, payload map[string]interface{}) string {
	planIdStr, _ := payload["plan_id"].(string)
	planId, err := uuid.Parse(planIdStr)
	if err != nil {
		return "your"
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindPlanById(ctx, planId)
	if err != nil || plan == nil {
		return "your"
	}
	return plan.Name
}
