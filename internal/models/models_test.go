package models

import (
	"testing"
	"time"
)

func TestWishCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from WishStatus
		to   WishStatus
		want bool
	}{
		{name: "active to pending", from: WishActive, to: WishPending, want: true},
		{name: "active to approved", from: WishActive, to: WishApproved, want: false},
		{name: "pending to approved", from: WishPending, to: WishApproved, want: true},
		{name: "pending to rejected", from: WishPending, to: WishRejected, want: true},
		{name: "pending to fulfilled", from: WishPending, to: WishFulfilled, want: false},
		{name: "approved to fulfilled", from: WishApproved, to: WishFulfilled, want: true},
		{name: "approved to rejected", from: WishApproved, to: WishRejected, want: false},
		{name: "rejected is terminal", from: WishRejected, to: WishActive, want: false},
		{name: "fulfilled is terminal", from: WishFulfilled, to: WishApproved, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := RewardWish{Status: tt.from}
			if got := w.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestWishIsTerminal(t *testing.T) {
	tests := []struct {
		status WishStatus
		want   bool
	}{
		{WishActive, false},
		{WishPending, false},
		{WishApproved, false},
		{WishRejected, true},
		{WishFulfilled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			w := RewardWish{Status: tt.status}
			if got := w.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    "user-1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskIsDueOn(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	morning := time.Date(2026, 3, 14, 7, 30, 0, 0, time.Local)
	nextDay := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		dueDate *time.Time
		want    bool
	}{
		{name: "no due date", dueDate: nil, want: false},
		{name: "same day different time", dueDate: &morning, want: true},
		{name: "other day", dueDate: &nextDay, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{DueDate: tt.dueDate}
			if got := task.IsDueOn(day); got != tt.want {
				t.Errorf("IsDueOn() = %v, want %v", got, tt.want)
			}
		})
	}
}
