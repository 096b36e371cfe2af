package booking

import (
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// ===============================
// Payment State Machine
// ===============================

// paymentTransitions is the only place payment moves are defined.
// paid has no outgoing edge.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusUnpaid:  {models.PaymentStatusPending},
	models.PaymentStatusFailed:  {models.PaymentStatusPending},
	models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusFailed},
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionPayment moves b to the next payment status or reports why it
// cannot move.
func TransitionPayment(b *models.Booking, to models.PaymentStatus) error {
	if CanTransitionPayment(b.PaymentStatus, to) {
		b.PaymentStatus = to
		return nil
	}

	switch b.PaymentStatus {
	case models.PaymentStatusPaid:
		return httperr.ErrConflict("payment_already_paid")
	case models.PaymentStatusPending:
		return httperr.ErrConflict("payment_in_progress")
	}
	return httperr.ErrConflict("invalid_payment_transition")
}
