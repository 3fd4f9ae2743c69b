package dto

import (
	"time"

	"innkeeper/internal/domains/booking/model"
	"innkeeper/shared"
	"innkeeper/shared/constant"
	gDto "innkeeper/shared/dto"
	gModel "innkeeper/shared/model"
	"innkeeper/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	RoomID   string `json:"room_id"   validate:"required,uuid4"`
	CheckIn  string `json:"check_in"  validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

// Parse converts the raw date strings into date values in the app timezone,
// so they compare cleanly against timezone.Today().
func (c *CreateBookingRequest) Parse() (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.Parse(constant.DayFormat, c.CheckIn)
	if err != nil {
		return checkIn, checkOut, err
	}

	checkOut, err = timezone.Parse(constant.DayFormat, c.CheckOut)

	return checkIn, checkOut, err
}

func (c *CreateBookingRequest) ToModel(user string, checkIn, checkOut time.Time, totalAmount int64) model.Booking {
	return model.Booking{
		ID:            uuid.NewString(),
		UserID:        user,
		RoomID:        c.RoomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		TotalAmount:   totalAmount,
		PaymentStatus: model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type ConfirmBookingRequest struct {
	Method string `json:"method" validate:"required,oneof=card cash transfer"`
}

type CheckAvailabilityRequest struct {
	RoomID   string `json:"room_id"   validate:"required,uuid4"`
	CheckIn  string `json:"check_in"  validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

type AvailabilityResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

type BookingResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	RoomID        string `json:"room_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Nights        int    `json:"nights"`
	TotalAmount   int64  `json:"total_amount"`
	PaymentStatus string `json:"payment_status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.UserID = mod.UserID
	r.RoomID = mod.RoomID
	r.CheckIn = mod.CheckIn.Format(constant.DayFormat)
	r.CheckOut = mod.CheckOut.Format(constant.DayFormat)
	r.Nights = model.Nights(mod.CheckIn, mod.CheckOut)
	r.TotalAmount = mod.TotalAmount
	r.PaymentStatus = mod.PaymentStatus
	r.Metadata.FromModel(mod.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
