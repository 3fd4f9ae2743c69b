package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"innkeeper/config"
	"innkeeper/infras/otel/mocks"
	paymentMocks "innkeeper/internal/domains/payment/mocks"
	"innkeeper/internal/domains/payment/model"
	"innkeeper/internal/domains/payment/service"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
)

type stubCache struct{}

func (stubCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }
func (stubCache) Get(_ context.Context, _ string, _ any) error        { return errors.New("cache miss") }
func (stubCache) Delete(_ context.Context, _ string) error            { return nil }
func (stubCache) Clear(_ context.Context, _ string) error             { return nil }

func TestPaymentService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := paymentMocks.NewMockPayment(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, cfg, stubCache{}, mockOtel)

	payment := model.Payment{
		ID:        "payment-id-123",
		BookingID: "booking-id-123",
		Method:    "card",
		Amount:    4500,
		PaidAt:    timezone.Now(),
	}

	t.Run("found", func(t *testing.T) {
		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(payment, nil)

		res, err := svc.Get(context.Background(), payment.ID)

		assert.NoError(t, err)
		assert.Equal(t, payment.ID, res.ID)
		assert.Equal(t, payment.Amount, res.Amount)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Payment{}, nil)

		_, err := svc.Get(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPaymentService_TotalRevenue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := paymentMocks.NewMockPayment(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, cfg, stubCache{}, mockOtel)

	t.Run("sums recorded payments", func(t *testing.T) {
		mockRepo.EXPECT().
			SumAmount(gomock.Any()).
			Return(int64(12000), nil)

		res, err := svc.TotalRevenue(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(12000), res.TotalRevenue)
	})

	t.Run("no payments on record", func(t *testing.T) {
		mockRepo.EXPECT().
			SumAmount(gomock.Any()).
			Return(int64(0), nil)

		res, err := svc.TotalRevenue(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(0), res.TotalRevenue)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo.EXPECT().
			SumAmount(gomock.Any()).
			Return(int64(0), errors.New("db down"))

		_, err := svc.TotalRevenue(context.Background())

		assert.Error(t, err)
	})
}
