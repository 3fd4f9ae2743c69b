package service

import (
	"context"
	"fmt"

	"innkeeper/config"
	"innkeeper/infras/kafka"
	"innkeeper/infras/otel"
	"innkeeper/internal/domains/booking/model"
	"innkeeper/internal/domains/booking/model/dto"
	"innkeeper/internal/domains/booking/repository"
	paymentModel "innkeeper/internal/domains/payment/model"
	paymentRepo "innkeeper/internal/domains/payment/repository"
	roomModel "innkeeper/internal/domains/room/model"
	roomRepo "innkeeper/internal/domains/room/repository"
	"innkeeper/shared"
	"innkeeper/shared/cache"
	"innkeeper/shared/constant"
	gDto "innkeeper/shared/dto"
	"innkeeper/shared/failure"
	gModel "innkeeper/shared/model"
	"innkeeper/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	eventBookingCreated   = "booking.created"
	eventBookingConfirmed = "booking.confirmed"
	eventBookingCancelled = "booking.cancelled"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (dto.AvailabilityResponse, error)
	Confirm(ctx context.Context, req dto.ConfirmBookingRequest, id string) error
	Cancel(ctx context.Context, id string) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo        repository.Booking
	roomRepo    roomRepo.Room
	paymentRepo paymentRepo.Payment
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	kafka       kafka.Client
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	paymentRepo paymentRepo.Payment,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	kafkaClient kafka.Client,
) Booking {
	return &serviceImpl{
		repo:        repo,
		roomRepo:    roomRepo,
		paymentRepo: paymentRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		kafka:       kafkaClient,
	}
}

// Create records a Pending booking. The availability check here is advisory
// only; it may race with concurrent creates, and the authoritative check
// happens inside Confirm while the room row is locked.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	checkIn, checkOut, err := req.Parse()
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, failure.BadRequestFromString("check-out must be after check-in") // nolint:wrapcheck
	}

	if checkIn.Before(timezone.Today()) {
		return res, failure.BadRequestFromString("check-in cannot be in the past") // nolint:wrapcheck
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
	}

	overlap, err := s.repo.ExistCompletedOverlap(ctx, req.RoomID, checkIn, checkOut, constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to check availability")

		return res, fmt.Errorf("failed to check availability: %w", err)
	}

	if overlap {
		return res, failure.Conflict("room is not available for the requested dates") // nolint:wrapcheck
	}

	booking := req.ToModel(user, checkIn, checkOut, model.ComputeTotal(room.Price, checkIn, checkOut))

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publishEvent(ctx, eventBookingCreated, booking)
	s.invalidateBooking(ctx, booking.ID)

	res.FromModel(booking)

	return res, nil
}

// CheckAvailability is the read-only availability check: a room is free for
// [check_in, check_out) iff no Completed booking overlaps it. Pending
// bookings never block.
func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	checkIn, err := timezone.Parse(constant.DayFormat, req.CheckIn)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	checkOut, err := timezone.Parse(constant.DayFormat, req.CheckOut)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, failure.BadRequestFromString("check-out must be after check-in") // nolint:wrapcheck
	}

	roomExists, err := s.roomRepo.Exist(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !roomExists {
		return res, failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
	}

	overlap, err := s.repo.ExistCompletedOverlap(ctx, req.RoomID, checkIn, checkOut, constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to check availability")

		return res, fmt.Errorf("failed to check availability: %w", err)
	}

	return dto.AvailabilityResponse{
		RoomID:    req.RoomID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Available: !overlap,
	}, nil
}

// Confirm settles a Pending booking in a single transaction. The booking row
// is locked first, then the room row; the room lock is the serialization
// point for confirms racing over the same room, and the overlap re-check
// under that lock decides the winner. The loser's booking stays Pending.
func (s *serviceImpl) Confirm(ctx context.Context, req dto.ConfirmBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback confirm transaction")
			}
		}
	}()

	booking, err := s.repo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.UserID != user {
		return failure.Forbidden("booking belongs to another user") // nolint:wrapcheck
	}

	if booking.IsCompleted() {
		return failure.Conflict("booking is already confirmed") // nolint:wrapcheck
	}

	room, err := s.roomRepo.GetForUpdateTx(ctx, tx, booking.RoomID)
	if err != nil {
		return err
	}

	if room.ID == constant.Empty {
		return failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
	}

	overlap, err := s.repo.ExistCompletedOverlapTx(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.ID)
	if err != nil {
		return err
	}

	if overlap {
		return failure.Conflict("room availability was lost") // nolint:wrapcheck
	}

	bookingFields := shared.TransformFields(struct {
		PaymentStatus string `db:"payment_status"`
	}{PaymentStatus: model.StatusCompleted}, user)

	if err = s.repo.UpdateTx(ctx, tx, bookingFields, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		return err
	}

	roomFields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: roomModel.StatusBooked}, user)

	if err = s.roomRepo.UpdateTx(ctx, tx, roomFields, shared.FilterByID(room.ID, roomModel.FieldID, roomModel.TableName)); err != nil {
		return err
	}

	payment := paymentModel.Payment{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Method:    req.Method,
		Amount:    booking.TotalAmount,
		PaidAt:    timezone.Now(),
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if err = s.paymentRepo.InsertTx(ctx, tx, payment); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit confirm transaction")

		return fmt.Errorf("failed to commit confirm transaction: %w", err)
	}

	booking.PaymentStatus = model.StatusCompleted
	s.publishEvent(ctx, eventBookingConfirmed, booking)
	s.invalidateBooking(ctx, booking.ID)

	return nil
}

// Cancel removes a booking and its payment. Refused inside the notice window
// with the booking left untouched. The room only reverts to Available when no
// other completed stay covers today.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback cancel transaction")
			}
		}
	}()

	booking, err := s.repo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.UserID != user && role != constant.RoleAdmin {
		return failure.Forbidden("booking belongs to another user") // nolint:wrapcheck
	}

	if !model.CanCancel(booking.CheckIn, timezone.Today(), s.cfg.Booking.CancelNoticeDays) {
		return failure.PolicyViolation("booking can no longer be cancelled this close to check-in") // nolint:wrapcheck
	}

	var room roomModel.Room
	if booking.IsCompleted() {
		room, err = s.roomRepo.GetForUpdateTx(ctx, tx, booking.RoomID)
		if err != nil {
			return err
		}
	}

	paymentFilter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    paymentModel.FieldBookingID,
				Operator: gDto.FilterOperatorEq,
				Value:    booking.ID,
				Table:    paymentModel.TableName,
			},
		},
	}

	if err = s.paymentRepo.DeleteTx(ctx, tx, paymentFilter); err != nil {
		return err
	}

	if err = s.repo.DeleteTx(ctx, tx, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		return err
	}

	if booking.IsCompleted() && room.Status == roomModel.StatusBooked {
		if err = s.revertRoomTx(ctx, tx, booking, user); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit cancel transaction")

		return fmt.Errorf("failed to commit cancel transaction: %w", err)
	}

	s.publishEvent(ctx, eventBookingCancelled, booking)
	s.invalidateBooking(ctx, booking.ID)

	return nil
}

func (s *serviceImpl) revertRoomTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking, user string) error {
	covering, err := s.repo.ExistCompletedCoveringTx(ctx, tx, booking.RoomID, timezone.Today(), booking.ID)
	if err != nil {
		return err
	}

	if covering {
		return nil
	}

	roomFields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: roomModel.StatusAvailable}, user)

	return s.roomRepo.UpdateTx(ctx, tx, roomFields, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName))
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

// Get returns a booking to its owner or an admin. Other callers get a 403
// even when the booking exists.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if res.UserID != user && role != constant.RoleAdmin {
			return dto.BookingResponse{}, failure.Forbidden("booking belongs to another user") // nolint:wrapcheck
		}

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.UserID != user && role != constant.RoleAdmin {
		return res, failure.Forbidden("booking belongs to another user") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

type bookingEvent struct {
	Event       string `json:"event"`
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	RoomID      string `json:"room_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	TotalAmount int64  `json:"total_amount"`
	OccurredAt  string `json:"occurred_at"`
}

func (s *serviceImpl) publishEvent(ctx context.Context, event string, booking model.Booking) {
	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key: booking.ID,
			Value: bookingEvent{
				Event:       event,
				BookingID:   booking.ID,
				UserID:      booking.UserID,
				RoomID:      booking.RoomID,
				CheckIn:     booking.CheckIn.Format(constant.DayFormat),
				CheckOut:    booking.CheckOut.Format(constant.DayFormat),
				TotalAmount: booking.TotalAmount,
				OccurredAt:  timezone.Format(timezone.Now(), constant.DateFormat),
			},
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.BookingEvents, message); err != nil {
			log.Error().Err(err).Str("event", event).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) invalidateBooking(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}
