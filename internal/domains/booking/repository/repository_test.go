package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/infras/otel/mocks"
	"innkeeper/infras/postgres"
	"innkeeper/internal/domains/booking/model"
	"innkeeper/internal/domains/booking/repository"
	"innkeeper/shared"
	"innkeeper/shared/constant"
)

func newTestConnection(t *testing.T) (*postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	return &postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mock
}

// The exclusion compares id as text so the no-exclusion callers can bind an
// empty string without tripping Postgres uuid input parsing.
var (
	overlapExclusion  = regexp.QuoteMeta("id::text <> $4")
	coveringExclusion = regexp.QuoteMeta("id::text <> $3")
)

func TestBookingRepository_ExistCompletedOverlap(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      bool
		wantErr   bool
	}{
		{
			name: "overlap exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(overlapExclusion).
					WithArgs("room-id-123", checkIn, checkOut, "").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "no overlap",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(overlapExclusion).
					WithArgs("room-id-123", checkIn, checkOut, "").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(overlapExclusion).
					WithArgs("room-id-123", checkIn, checkOut, "").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newTestConnection(t)
			repo := repository.New(conn, mocks.NewOtel())

			tt.setupMock(mock)

			got, err := repo.ExistCompletedOverlap(context.Background(), "room-id-123", checkIn, checkOut, "")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_ExistCompletedOverlapTx(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	conn, mock := newTestConnection(t)
	repo := repository.New(conn, mocks.NewOtel())

	mock.ExpectBegin()
	mock.ExpectQuery(overlapExclusion).
		WithArgs("room-id-123", checkIn, checkOut, "booking-id-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)

	got, err := repo.ExistCompletedOverlapTx(context.Background(), tx, "room-id-123", checkIn, checkOut, "booking-id-1")

	assert.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ExistCompletedCoveringTx(t *testing.T) {
	today := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		want bool
	}{
		{name: "another completed stay covers today", want: true},
		{name: "no covering stay", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newTestConnection(t)
			repo := repository.New(conn, mocks.NewOtel())

			mock.ExpectBegin()
			mock.ExpectQuery(coveringExclusion).
				WithArgs("room-id-123", today, "booking-id-1").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.want))
			mock.ExpectRollback()

			tx, err := repo.BeginTx(context.Background())
			require.NoError(t, err)

			got, err := repo.ExistCompletedCoveringTx(context.Background(), tx, "room-id-123", today, "booking-id-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NoError(t, tx.Rollback())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// The confirm transition flows through the shared update builder, which
// always stamps modified_at into the field map. The bookings schema carries
// that column, so the generated UPDATE must execute cleanly.
func TestBookingRepository_UpdateTx_StampsModifiedAt(t *testing.T) {
	conn, mock := newTestConnection(t)
	repo := repository.New(conn, mocks.NewOtel())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("modified_at = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)

	fields := shared.TransformFields(struct {
		PaymentStatus string `db:"payment_status"`
	}{PaymentStatus: model.StatusCompleted}, "user-id-1")

	require.Contains(t, fields, constant.FieldModifiedAt)

	err = repo.UpdateTx(context.Background(), tx, fields, shared.FilterByID("booking-id-1", model.FieldID, model.TableName))
	assert.NoError(t, err)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Every column the model maps, audit timestamps included, has to exist in the
// bookings migration or updates stamping modified_at fail at runtime.
func TestBookingsMigrationCoversModelColumns(t *testing.T) {
	migration, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "postgres", "000003_create_bookings_table.up.sql"))
	require.NoError(t, err)

	columns := []string{
		model.FieldID, model.FieldUserID, model.FieldRoomID,
		model.FieldCheckIn, model.FieldCheckOut,
		model.FieldTotalAmount, model.FieldPaymentStatus,
		constant.FieldCreatedAt, constant.FieldModifiedAt,
		model.FieldCreatedBy, "modified_by",
	}

	for _, column := range columns {
		assert.Contains(t, string(migration), column)
	}
}
