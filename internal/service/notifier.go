package service

import (
	"context"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"github.com/Pranav-6954/Carpooling/pkg/rabbitmq"
	"go.uber.org/zap"
)

// Sink is the fire-and-forget notification contract. Delivery failures are
// the sink's problem: nothing that calls Publish may fail because of it.
type Sink interface {
	Publish(recipient, message string, category models.NotificationCategory)
}

// notifier stores an in-app notification row and mirrors it onto the
// notifications exchange. Both writes are best-effort.
type notifier struct {
	repo      repository.NotificationRepository
	publisher *rabbitmq.Publisher
	log       *zap.Logger
}

func NewNotifier(repo repository.NotificationRepository, publisher *rabbitmq.Publisher, log *zap.Logger) Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &notifier{repo: repo, publisher: publisher, log: log}
}

func (n *notifier) Publish(recipient, message string, category models.NotificationCategory) {
	if n.repo != nil {
		err := n.repo.Create(context.Background(), &models.Notification{
			RecipientEmail: recipient,
			Message:        message,
			Category:       category,
		})
		if err != nil {
			n.log.Warn("store notification failed",
				zap.String("recipient", recipient),
				zap.Error(err))
		}
	}

	if n.publisher != nil {
		err := n.publisher.Publish(string(category), map[string]any{
			"recipient": recipient,
			"message":   message,
			"category":  category,
		})
		if err != nil {
			n.log.Warn("publish notification failed",
				zap.String("recipient", recipient),
				zap.Error(err))
		}
	}
}
