package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string
type PaymentStatus string

const (
	SessionStatusPendingPayment SessionStatus = "pending_payment"
	SessionStatusConfirmed      SessionStatus = "confirmed"
	SessionStatusInProgress     SessionStatus = "in_progress"
	SessionStatusCompleted      SessionStatus = "completed"
	SessionStatusCancelled      SessionStatus = "cancelled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// sessionTransitions is the complete set of legal status moves. Anything not
// listed here is rejected with ErrInvalidTransition; terminal states
// (completed, cancelled) have no outgoing edges.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusPendingPayment: {SessionStatusConfirmed, SessionStatusCancelled},
	SessionStatusConfirmed:      {SessionStatusInProgress, SessionStatusCancelled},
	SessionStatusInProgress:     {SessionStatusCompleted},
}

// CanTransition reports whether moving from -> to is allowed by the lifecycle
// table. It is status-axis only; payment_status guards live in the service.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is a booked tutoring engagement between a student and a tutor.
// It is never deleted; completed and cancelled are terminal.
type Session struct {
	Id              uuid.UUID
	StudentId       uuid.UUID
	TutorId         uuid.UUID
	SubjectId       uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes int
	TotalAmount     float64
	Status          SessionStatus
	PaymentStatus   PaymentStatus
	Location        string
	Notes           *string
	// ProviderOrderId is the payment provider's order reference (we use the
	// session id itself as the order id, this keeps the echo for auditing).
	ProviderOrderId *string
	StudentRating   *int
	TutorRating     *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Session) IsParticipant(userId uuid.UUID) bool {
	return s.StudentId == userId || s.TutorId == userId
}

func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}
