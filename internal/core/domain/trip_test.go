package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

func tripFor(days int) domain.TripRequest {
	arr := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	return domain.TripRequest{
		Budget:        10_000_000,
		Travelers:     2,
		Arrival:       arr,
		Departure:     arr.AddDate(0, 0, days-1).Add(8 * time.Hour),
		Transport:     domain.TransportOwn,
		Accommodation: domain.TierHotel,
	}
}

func TestValidate_TripLength(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		wantErr bool
	}{
		{"single day", 1, false},
		{"at the cap", domain.MaxTripDays, false},
		{"one past the cap", domain.MaxTripDays + 1, true},
		{"decades away", 365 * 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tripFor(tt.days)
			if got := req.NumDays(); got != tt.days {
				t.Fatalf("expected %d days, got %d", tt.days, got)
			}
			err := req.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				if !strings.Contains(err.Error(), "at most 30") {
					t.Errorf("expected trip length message, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	req := domain.TripRequest{Transport: "boat", Accommodation: "castle"}
	err := req.Validate()
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	for _, want := range []string{"budget", "travelers", "arrival", "boat", "castle"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
