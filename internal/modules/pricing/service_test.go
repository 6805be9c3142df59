package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"kerb/internal/types"
)

func capPtr(v float64) *float64 { return &v }

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		cap   *float64
		hours float64
		want  float64
	}{
		{name: "under the cap", rate: 5, cap: capPtr(20), hours: 3, want: 15},
		{name: "cap applied", rate: 5, cap: capPtr(20), hours: 6, want: 20},
		{name: "exactly at the cap", rate: 5, cap: capPtr(20), hours: 4, want: 20},
		{name: "no cap", rate: 5, cap: nil, hours: 24, want: 120},
		{name: "fractional hours stay unrounded", rate: 3, cap: nil, hours: 1.5, want: 4.5},
		{name: "zero hours", rate: 5, cap: capPtr(20), hours: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAmount(tt.rate, tt.cap, tt.hours); got != tt.want {
				t.Errorf("ComputeAmount(%v, %v, %v) = %v, want %v", tt.rate, tt.cap, tt.hours, got, tt.want)
			}
		})
	}
}

type stubTierStore struct {
	tier *Tier
	err  error
}

func (s stubTierStore) TierByID(context.Context, types.ID) (*Tier, error) {
	return s.tier, s.err
}

func TestTier_Resolution(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(-time.Hour)

	tests := []struct {
		name    string
		store   stubTierStore
		id      types.ID
		wantErr error
	}{
		{
			name:  "valid tier",
			store: stubTierStore{tier: &Tier{ID: "t1", IsActive: true, ValidFrom: now.Add(-24 * time.Hour)}},
			id:    "t1",
		},
		{
			name:    "empty id",
			store:   stubTierStore{},
			id:      "",
			wantErr: ErrInvalidTier,
		},
		{
			name:    "unknown tier",
			store:   stubTierStore{err: ErrInvalidTier},
			id:      "missing",
			wantErr: ErrInvalidTier,
		},
		{
			name:    "inactive tier",
			store:   stubTierStore{tier: &Tier{ID: "t1", IsActive: false, ValidFrom: now.Add(-24 * time.Hour)}},
			id:      "t1",
			wantErr: ErrInvalidTier,
		},
		{
			name:    "not yet valid",
			store:   stubTierStore{tier: &Tier{ID: "t1", IsActive: true, ValidFrom: now.Add(time.Hour)}},
			id:      "t1",
			wantErr: ErrInvalidTier,
		},
		{
			name:    "validity window closed",
			store:   stubTierStore{tier: &Tier{ID: "t1", IsActive: true, ValidFrom: now.Add(-48 * time.Hour), ValidUntil: &until}},
			id:      "t1",
			wantErr: ErrInvalidTier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.store)
			svc.nowFn = func() time.Time { return now }

			tier, err := svc.Tier(context.Background(), tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tier == nil || tier.ID != tt.id {
				t.Errorf("tier = %+v, want id %s", tier, tt.id)
			}
		})
	}
}
