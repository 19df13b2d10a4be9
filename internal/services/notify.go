package services

import (
	"sync"

	"placescout/internal/db"
	"placescout/internal/models"

	"go.uber.org/zap"
)

// NotificationSink receives notification requests from the comments engine.
// Delivery is best-effort: implementations must never fail the caller.
type NotificationSink interface {
	Notify(recipientID, senderID uint, commentID *uint, typ models.NotificationType)
}

// Notifier persists notifications through a buffered queue so that a slow
// or failing insert never delays the comment or vote that triggered it.
type Notifier struct {
	queue chan models.Notification
}

var (
	notifier     *Notifier
	notifierOnce sync.Once
)

// GetNotifier returns the process-wide notifier, starting its worker on
// first use.
func GetNotifier() *Notifier {
	notifierOnce.Do(func() {
		notifier = &Notifier{
			queue: make(chan models.Notification, 1000),
		}
		go notifier.worker()
	})
	return notifier
}

// Notify enqueues a notification. Self-notifications are dropped here so no
// caller has to remember the rule. Never blocks: when the queue is full the
// notification is dropped with a log line.
func (n *Notifier) Notify(recipientID, senderID uint, commentID *uint, typ models.NotificationType) {
	if recipientID == senderID {
		return
	}

	notif := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		CommentID:   commentID,
		Type:        typ,
	}

	select {
	case n.queue <- notif:
	default:
		zap.L().Warn("notification queue full, dropping",
			zap.Uint("recipient_id", recipientID),
			zap.String("type", string(typ)))
	}
}

func (n *Notifier) worker() {
	for notif := range n.queue {
		if err := db.DB.Create(&notif).Error; err != nil {
			zap.L().Warn("failed to create notification",
				zap.Uint("recipient_id", notif.RecipientID),
				zap.String("type", string(notif.Type)),
				zap.Error(err))
			continue
		}
		zap.L().Info("notification created",
			zap.Uint("recipient_id", notif.RecipientID),
			zap.Uint("sender_id", notif.SenderID),
			zap.String("type", string(notif.Type)))
	}
}
