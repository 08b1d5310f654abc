package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
	"github.com/fixgo-platform/service-booking/internal/proto/events"
)

const (
	msgCancelled         = "Booking cancelled"
	msgCancelledRefunded = "Booking cancelled and payment refunded"

	stuckRefundBatch = 50
)

// CancelBooking rejects a booking and refunds its payment when the payment
// was captured and carries a charge reference.
//
// The refund runs in three steps: the rejection and a pending refund marker
// are committed, the gateway is called outside any transaction, then the
// outcome is committed. A gateway failure leaves the booking rejected with
// refund state "failed" and the payment still completed.
//
// by is the customer, provider or admin cancelling; nil means the system.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, by *Actor) (*CancelResult, error) {
	var cancelledBy *uuid.UUID
	if by != nil {
		cancelledBy = &by.UserID
	}

	var (
		bk      *bookingDomain.Booking
		pay     *paymentDomain.Payment
		outcome bookingDomain.CancelOutcome
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		bk, err = tx.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if by != nil {
			if err := requireParticipant(bk, *by); err != nil {
				return err
			}
		}
		if pay, err = s.loadPayment(ctx, tx.Payments.FindByIDForUpdate, bk); err != nil {
			return err
		}
		if outcome, err = bk.BeginCancel(pay); err != nil {
			return err
		}
		bk.IncrementVersion()
		return tx.Bookings.Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	if outcome != bookingDomain.CancelRefundRequired {
		refunded := outcome == bookingDomain.CancelAlreadyRefunded
		s.logger.Info("booking cancelled",
			zap.String("booking_id", bookingID.String()),
			zap.Bool("refund_issued", refunded),
		)
		s.publishCancelled(ctx, bk, cancelledBy, refunded, "")

		msg := msgCancelled
		if refunded {
			msg = msgCancelledRefunded
		}
		return &CancelResult{Message: msg, RefundIssued: refunded, Booking: toBookingDTO(bk)}, nil
	}

	bk, receipt, err := s.issueRefund(ctx, bk, pay)
	if err != nil {
		return nil, err
	}
	s.publishCancelled(ctx, bk, cancelledBy, true, receipt.RefundID)
	return &CancelResult{Message: msgCancelledRefunded, RefundIssued: true, Booking: toBookingDTO(bk)}, nil
}

// ResumeRefund retries the gateway call for a booking whose refund is still
// pending, typically after a crash between the phases of CancelBooking. It
// is a no-op for bookings in any other refund state.
func (s *BookingService) ResumeRefund(ctx context.Context, bookingID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.RefundState() != bookingDomain.RefundPending {
		return nil
	}
	pay, err := s.loadPayment(ctx, s.paymentsOutsideTx, bk)
	if err != nil {
		return err
	}

	if pay == nil || pay.Status() == paymentDomain.StatusRefunded {
		// Nothing left to call the gateway for; settle the marker.
		return s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
			locked, err := tx.Bookings.FindByIDForUpdate(ctx, bookingID)
			if err != nil {
				return err
			}
			if locked.RefundState() != bookingDomain.RefundPending {
				return nil
			}
			if pay == nil {
				err = locked.FailRefund()
			} else {
				err = locked.CompleteRefund()
			}
			if err != nil {
				return err
			}
			locked.IncrementVersion()
			return tx.Bookings.Update(ctx, locked)
		})
	}

	bk, receipt, err := s.issueRefund(ctx, bk, pay)
	if err != nil {
		return err
	}
	s.publishCancelled(ctx, bk, nil, true, receipt.RefundID)
	return nil
}

// ResumeStuckRefunds resumes refunds pending for longer than olderThan and
// returns the bookings it settled. A booking that fails again is logged and
// left for the next run.
func (s *BookingService) ResumeStuckRefunds(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	stuck, err := s.repo.FindStuckRefunds(ctx, time.Now().UTC().Add(-olderThan), stuckRefundBatch)
	if err != nil {
		return nil, err
	}

	resumed := make([]uuid.UUID, 0, len(stuck))
	for _, bk := range stuck {
		if err := s.ResumeRefund(ctx, bk.ID()); err != nil {
			s.logger.Warn("failed to resume refund",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		resumed = append(resumed, bk.ID())
	}
	return resumed, nil
}

// paymentsOutsideTx reads a payment in its own short transaction.
func (s *BookingService) paymentsOutsideTx(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var pay *paymentDomain.Payment
	err := s.uow.Do(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		pay, err = tx.Payments.FindByID(ctx, id)
		return err
	})
	return pay, err
}

// issueRefund calls the gateway and commits the outcome. The returned
// booking reflects the committed state.
func (s *BookingService) issueRefund(ctx context.Context, bk *bookingDomain.Booking, pay *paymentDomain.Payment) (*bookingDomain.Booking, *paymentDomain.RefundReceipt, error) {
	req := paymentDomain.RefundRequest{
		BookingID:      bk.ID(),
		PaymentID:      pay.ID(),
		Currency:       pay.Currency(),
		IdempotencyKey: paymentDomain.RefundIdempotencyKey(bk.ID()),
	}
	if ref := pay.ChargeReference(); ref != nil {
		req.ChargeReference = *ref
	}
	// A zero amount asks the gateway for a full refund.
	if amount, err := pay.Amount(); err == nil {
		req.Amount = amount
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	receipt, gwErr := s.gateway.Refund(gctx, req)
	cancel()

	// The gateway outcome must be recorded even if the caller went away.
	commitCtx := context.WithoutCancel(ctx)

	if gwErr != nil {
		s.logger.Error("refund failed",
			zap.String("booking_id", bk.ID().String()),
			zap.String("payment_id", pay.ID().String()),
			zap.Error(gwErr),
		)
		var failed *bookingDomain.Booking
		err := s.uow.Do(commitCtx, func(ctx context.Context, tx Stores) error {
			var err error
			failed, err = tx.Bookings.FindByIDForUpdate(ctx, bk.ID())
			if err != nil {
				return err
			}
			if failed.RefundState() != bookingDomain.RefundPending {
				return nil
			}
			if err := failed.FailRefund(); err != nil {
				return err
			}
			failed.IncrementVersion()
			return tx.Bookings.Update(ctx, failed)
		})
		if err != nil {
			s.logger.Error("failed to record refund failure",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
		}
		s.publishEvent(commitCtx, events.BookingRefundFailed, bk.ID(), events.BookingRefundFailedEvent{
			BookingID:  bk.ID(),
			PaymentID:  pay.ID(),
			Reason:     gwErr.Error(),
			OccurredAt: time.Now().UTC(),
		})
		var appErr *apperror.Error
		if errors.As(gwErr, &appErr) && appErr.Kind == apperror.KindGatewayFailure {
			return nil, nil, gwErr
		}
		return nil, nil, apperror.NewGatewayError("refund failed", gwErr)
	}

	var done *bookingDomain.Booking
	err := s.uow.Do(commitCtx, func(ctx context.Context, tx Stores) error {
		var err error
		done, err = tx.Bookings.FindByIDForUpdate(ctx, bk.ID())
		if err != nil {
			return err
		}
		lockedPay, err := tx.Payments.FindByIDForUpdate(ctx, pay.ID())
		if err != nil {
			return err
		}
		if lockedPay.Status() != paymentDomain.StatusRefunded {
			if err := lockedPay.MarkRefunded(receipt.RefundID); err != nil {
				return err
			}
			lockedPay.IncrementVersion()
			if err := tx.Payments.Update(ctx, lockedPay); err != nil {
				return err
			}
		}
		if done.RefundState() == bookingDomain.RefundDone {
			return nil
		}
		if err := done.CompleteRefund(); err != nil {
			return err
		}
		done.IncrementVersion()
		return tx.Bookings.Update(ctx, done)
	})
	if err != nil {
		// The money moved; the reconciler will converge the rows using the
		// same idempotency key.
		s.logger.Error("refund issued but not recorded",
			zap.String("booking_id", bk.ID().String()),
			zap.String("refund_id", receipt.RefundID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	s.logger.Info("booking refunded",
		zap.String("booking_id", bk.ID().String()),
		zap.String("payment_id", pay.ID().String()),
		zap.String("refund_id", receipt.RefundID),
	)
	return done, receipt, nil
}

func (s *BookingService) publishCancelled(ctx context.Context, bk *bookingDomain.Booking, cancelledBy *uuid.UUID, refunded bool, refundID string) {
	s.publishEvent(ctx, events.BookingCancelled, bk.ID(), events.BookingCancelledEvent{
		BookingID:    bk.ID(),
		UserID:       bk.UserID(),
		ProviderID:   bk.ProviderID(),
		CancelledBy:  cancelledBy,
		RefundIssued: refunded,
		RefundID:     refundID,
		OccurredAt:   time.Now().UTC(),
	})
}
