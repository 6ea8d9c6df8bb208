package order

import "errors"

var (
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentCaptured PaymentStatus = "captured"
	PaymentVoided   PaymentStatus = "voided"
	PaymentRefunded PaymentStatus = "refunded"
)

var next = map[Status]Status{
	StatusPending:    StatusPaid,
	StatusPaid:       StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusCompleted,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCanceled }

// CanTransition allows one step forward along the lifecycle, or canceling
// any order that has not finished.
func CanTransition(from, to Status) bool {
	if to == StatusCanceled {
		return !from.Terminal()
	}
	return next[from] == to
}
