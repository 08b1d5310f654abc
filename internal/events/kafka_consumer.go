package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fixgo-platform/service-booking/internal/application"
	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
	"github.com/fixgo-platform/service-booking/internal/proto/events"
)

// PaymentStatusRecorder is the part of BookingService the consumer drives.
type PaymentStatusRecorder interface {
	RecordPaymentCompleted(ctx context.Context, bookingID, paymentID uuid.UUID) (*application.BookingDTO, error)
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) (*application.BookingDTO, error)
}

// PaymentEventConsumer mirrors payment service events onto bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentStatusRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentStatusRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentCompleted:
		return c.handlePaymentCompleted(ctx, cloudEvent)
	case events.PaymentRefunded:
		return c.handlePaymentRefunded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCompletedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment completed event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	_, err := c.service.RecordPaymentCompleted(ctx, evt.BookingID, evt.PaymentID)
	return c.outcome("payment completed", evt.BookingID, err)
}

func (c *PaymentEventConsumer) handlePaymentRefunded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentRefundedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentRefundedEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("processing payment refunded event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	_, err := c.service.UpdatePaymentStatus(ctx, evt.BookingID, bookingDomain.PaymentRefunded)
	return c.outcome("payment refunded", evt.BookingID, err)
}

// outcome drops classified errors, which fail the same way on every attempt.
// Conflicts and infrastructure errors are returned for retry.
func (c *PaymentEventConsumer) outcome(event string, bookingID uuid.UUID, err error) error {
	if err == nil {
		c.logger.Info("booking updated from "+event+" event",
			zap.String("booking_id", bookingID.String()),
		)
		return nil
	}
	if kind := apperror.KindOf(err); kind != "" && kind != apperror.KindConflict {
		c.logger.Warn("discarding "+event+" event",
			zap.String("booking_id", bookingID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil
	}
	c.logger.Error("failed to apply "+event+" event",
		zap.String("booking_id", bookingID.String()),
		zap.Error(err),
	)
	return err
}
