package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"innkeeper/internal/domains/booking/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a1   time.Time
		a2   time.Time
		b1   time.Time
		b2   time.Time
		want bool
	}{
		{
			name: "identical intervals",
			a1:   date(2026, 3, 10), a2: date(2026, 3, 12),
			b1: date(2026, 3, 10), b2: date(2026, 3, 12),
			want: true,
		},
		{
			name: "partial overlap at the end",
			a1:   date(2026, 3, 10), a2: date(2026, 3, 13),
			b1: date(2026, 3, 12), b2: date(2026, 3, 15),
			want: true,
		},
		{
			name: "one interval inside the other",
			a1:   date(2026, 3, 10), a2: date(2026, 3, 20),
			b1: date(2026, 3, 12), b2: date(2026, 3, 14),
			want: true,
		},
		{
			name: "back to back, checkout equals next checkin",
			a1:   date(2026, 3, 10), a2: date(2026, 3, 12),
			b1: date(2026, 3, 12), b2: date(2026, 3, 14),
			want: false,
		},
		{
			name: "back to back, reversed order",
			a1:   date(2026, 3, 12), a2: date(2026, 3, 14),
			b1: date(2026, 3, 10), b2: date(2026, 3, 12),
			want: false,
		},
		{
			name: "fully disjoint",
			a1:   date(2026, 3, 1), a2: date(2026, 3, 3),
			b1: date(2026, 3, 10), b2: date(2026, 3, 12),
			want: false,
		},
		{
			name: "single shared night",
			a1:   date(2026, 3, 10), a2: date(2026, 3, 12),
			b1: date(2026, 3, 11), b2: date(2026, 3, 13),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Overlaps(tt.a1, tt.a2, tt.b1, tt.b2))
			// overlap is symmetric
			assert.Equal(t, tt.want, model.Overlaps(tt.b1, tt.b2, tt.a1, tt.a2))
		})
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{
			name:    "single night",
			checkIn: date(2026, 3, 10), checkOut: date(2026, 3, 11),
			want: 1,
		},
		{
			name:    "three nights",
			checkIn: date(2026, 3, 10), checkOut: date(2026, 3, 13),
			want: 3,
		},
		{
			name:    "clock drift inside the day is ignored",
			checkIn: time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), checkOut: time.Date(2026, 3, 13, 1, 15, 0, 0, time.UTC),
			want: 3,
		},
		{
			name:    "across a month boundary",
			checkIn: date(2026, 1, 30), checkOut: date(2026, 2, 2),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestComputeTotal(t *testing.T) {
	// 1500 minor units a night for three nights
	total := model.ComputeTotal(1500, date(2026, 3, 10), date(2026, 3, 13))
	assert.Equal(t, int64(4500), total)

	// single night keeps the nightly price as-is
	total = model.ComputeTotal(9999, date(2026, 3, 10), date(2026, 3, 11))
	assert.Equal(t, int64(9999), total)
}

func TestCanCancel(t *testing.T) {
	today := date(2026, 3, 10)
	noticeDays := 1

	tests := []struct {
		name    string
		checkIn time.Time
		want    bool
	}{
		{
			name:    "check-in well in the future",
			checkIn: date(2026, 3, 20),
			want:    true,
		},
		{
			name:    "check-in just past the notice window",
			checkIn: date(2026, 3, 12),
			want:    true,
		},
		{
			name:    "check-in exactly at the notice boundary",
			checkIn: date(2026, 3, 11),
			want:    false,
		},
		{
			name:    "check-in today",
			checkIn: date(2026, 3, 10),
			want:    false,
		},
		{
			name:    "check-in already in the past",
			checkIn: date(2026, 3, 5),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanCancel(tt.checkIn, today, noticeDays))
		})
	}
}

func TestBooking_IsCompleted(t *testing.T) {
	assert.True(t, model.Booking{PaymentStatus: model.StatusCompleted}.IsCompleted())
	assert.False(t, model.Booking{PaymentStatus: model.StatusPending}.IsCompleted())
}
