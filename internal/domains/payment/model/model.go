package model

import (
	"time"

	"innkeeper/shared/model"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldMethod    = "method"
	FieldAmount    = "amount"
	FieldPaidAt    = "paid_at"
)

// Payment rows are written once, inside the confirm transaction, and never
// updated afterwards.
type Payment struct {
	ID        string    `db:"id"`
	BookingID string    `db:"booking_id"`
	Method    string    `db:"method"`
	Amount    int64     `db:"amount"`
	PaidAt    time.Time `db:"paid_at"`
	model.Metadata
}
