package entity

import (
	"testing"
	"time"
)

func TestSubscriptionStateAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-10 * 24 * time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want SubscriptionState
	}{
		{
			name: "active with auto renew",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: future, AutoRenew: true},
			want: StateActive,
		},
		{
			name: "active but period lapsed",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: past, AutoRenew: true},
			want: StateExpired,
		},
		{
			name: "active in dunning",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: future, AutoRenew: true, IsInRetryPeriod: true},
			want: StateRetrying,
		},
		{
			name: "active with auto renew off",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: future, AutoRenew: false},
			want: StateScheduledCancel,
		},
		{
			name: "cancelled but period not lapsed",
			sub:  Subscription{Status: SubscriptionStatusCancelled, PeriodEnd: future},
			want: StateScheduledCancel,
		},
		{
			name: "cancelled and lapsed",
			sub:  Subscription{Status: SubscriptionStatusCancelled, PeriodEnd: past},
			want: StateCancelled,
		},
		{
			name: "pending payment",
			sub:  Subscription{Status: SubscriptionStatusPendingPayment, PeriodEnd: future},
			want: StatePendingPayment,
		},
		{
			name: "expired",
			sub:  Subscription{Status: SubscriptionStatusExpired, PeriodEnd: future},
			want: StateExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.StateAt(now); got != tt.want {
				t.Errorf("StateAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionUsableAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-10 * 24 * time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{
			name: "active grants access",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: future, AutoRenew: true},
			want: true,
		},
		{
			name: "dunning keeps access",
			sub:  Subscription{Status: SubscriptionStatusActive, PeriodEnd: future, AutoRenew: true, IsInRetryPeriod: true},
			want: true,
		},
		{
			name: "scheduled cancel keeps access until period end",
			sub:  Subscription{Status: SubscriptionStatusCancelled, PeriodEnd: future},
			want: true,
		},
		{
			name: "lapsed cancel revokes access",
			sub:  Subscription{Status: SubscriptionStatusCancelled, PeriodEnd: past},
			want: false,
		},
		{
			name: "pending payment grants nothing",
			sub:  Subscription{Status: SubscriptionStatusPendingPayment, PeriodEnd: future},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.UsableAt(now); got != tt.want {
				t.Errorf("UsableAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsagePeriodStart(t *testing.T) {
	got := UsagePeriodStart(time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC))
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("UsagePeriodStart() = %v, want %v", got, want)
	}
}
