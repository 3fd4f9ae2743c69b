package model

import (
	"time"

	"innkeeper/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldUserID        = "user_id"
	FieldRoomID        = "room_id"
	FieldCheckIn       = "check_in"
	FieldCheckOut      = "check_out"
	FieldTotalAmount   = "total_amount"
	FieldPaymentStatus = "payment_status"
	FieldCreatedBy     = "created_by"

	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

type Booking struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	RoomID        string    `db:"room_id"`
	CheckIn       time.Time `db:"check_in"`
	CheckOut      time.Time `db:"check_out"`
	TotalAmount   int64     `db:"total_amount"`
	PaymentStatus string    `db:"payment_status"`
	model.Metadata
}

func (b Booking) IsCompleted() bool {
	return b.PaymentStatus == StatusCompleted
}

// Overlaps reports whether two half-open stay intervals [a1, a2) and
// [b1, b2) share at least one night. Back-to-back stays where one
// check-out equals the other check-in do not overlap.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// Nights returns the number of nights between check-in and check-out,
// counted on calendar dates so clock drift inside a day never changes
// the stay length.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)

	return int(out.Sub(in).Hours() / 24)
}

// ComputeTotal prices a stay in minor currency units: nightly price times
// the number of nights, no rounding involved.
func ComputeTotal(nightlyPrice int64, checkIn, checkOut time.Time) int64 {
	return nightlyPrice * int64(Nights(checkIn, checkOut))
}

// CanCancel applies the cancellation notice policy: a booking may only be
// cancelled while check-in is still more than noticeDays away from today.
func CanCancel(checkIn, today time.Time, noticeDays int) bool {
	return checkIn.After(today.AddDate(0, 0, noticeDays))
}
