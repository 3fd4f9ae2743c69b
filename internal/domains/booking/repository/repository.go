package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innkeeper/infras/otel"
	"innkeeper/infras/postgres"
	"innkeeper/internal/domains/booking/model"
	"innkeeper/shared/constant"
	gDto "innkeeper/shared/dto"
	"innkeeper/shared/logger"
	gRepo "innkeeper/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error)
	ExistCompletedOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	ExistCompletedOverlapTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	ExistCompletedCoveringTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time, excludeID string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx, nil
}

// GetForUpdateTx loads the booking row inside the given transaction and holds
// a row lock on it until the transaction ends, so a confirm and a cancel on
// the same booking cannot interleave.
func (repo *repositoryImpl) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetForUpdateTx")
	defer scope.End()

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 FOR UPDATE", model.TableName, model.FieldID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var booking model.Booking

	err := sqltx.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return booking, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to lock booking row: %w", err)
	}

	return booking, nil
}

const existOverlapQuery = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE room_id = $1
	  AND payment_status = 'Completed'
	  AND check_in < $3
	  AND $2 < check_out
	  AND id::text <> $4
)`

// ExistCompletedOverlap reports whether any completed booking for the room
// overlaps the half-open interval [checkIn, checkOut). Pending bookings are
// ignored. excludeID keeps a booking from colliding with itself; the id
// column is compared as text so an empty excludeID binds cleanly and
// excludes nothing.
func (repo *repositoryImpl) ExistCompletedOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExistCompletedOverlap")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, existOverlapQuery)

	var exist bool

	err := repo.db.Read.GetContext(ctx, &exist, existOverlapQuery, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return exist, nil
}

// ExistCompletedOverlapTx is the authoritative overlap check, run inside the
// confirm transaction while the room row is locked.
func (repo *repositoryImpl) ExistCompletedOverlapTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExistCompletedOverlapTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, existOverlapQuery)

	var exist bool

	err := sqltx.GetContext(ctx, &exist, existOverlapQuery, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return exist, nil
}

const existCoveringQuery = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE room_id = $1
	  AND payment_status = 'Completed'
	  AND check_in <= $2
	  AND $2 < check_out
	  AND id::text <> $3
)`

// ExistCompletedCoveringTx reports whether another completed booking for the
// room has a stay covering the given date. Used when cancelling to decide
// whether the room can go back to Available.
func (repo *repositoryImpl) ExistCompletedCoveringTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time, excludeID string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExistCompletedCoveringTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, existCoveringQuery)

	var exist bool

	err := sqltx.GetContext(ctx, &exist, existCoveringQuery, roomID, date, excludeID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check covering booking: %w", err)
	}

	return exist, nil
}
