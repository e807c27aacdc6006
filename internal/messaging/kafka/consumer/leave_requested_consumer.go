package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-hrms/internal/events"
	"go-hrms/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ApprovalNotificationMessage is the text shown to the requester after a
// leave request is admitted.
const ApprovalNotificationMessage = "Leave request sent to your Reporting Manager for approval"

func ConsumeLeaveRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_requested")
	log.Info("leave requested consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave requested consumer stopped")
				return
			}
			log.Error("fetch leave requested message failed", zap.Error(err))
			continue
		}

		var event events.LeaveRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave_requested event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		_, err = notificationService.Create(ctx, notification.CreateNotificationRequest{
			UserID:  event.UserID,
			Message: ApprovalNotificationMessage,
			EventID: eventHeader(msg, "event_id"),
		})
		if err != nil {
			if errors.Is(err, notification.ErrDuplicateEvent) {
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("create leave notification failed",
				zap.String("leave_id", event.LeaveID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave requested message failed", zap.Error(err))
			continue
		}

		log.Info("leave notification created from leave_requested event",
			zap.String("leave_id", event.LeaveID),
			zap.String("user_id", event.UserID),
		)
	}
}

func eventHeader(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
