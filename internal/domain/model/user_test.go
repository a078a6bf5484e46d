//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"tutor-onboarding/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		startTime := time.Now()
		user, err := NewUser("", "  ann@example.com ", " ann ", SubjectPhysics, PlanPremium)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.ID == "" {
			t.Error("expected user ID to be generated")
		}
		if user.Email != "ann@example.com" || user.Username != "ann" {
			t.Errorf("expected trimmed fields, got %q / %q", user.Email, user.Username)
		}
		if user.Progress != 0 {
			t.Errorf("expected new user progress 0, got %d", user.Progress)
		}
		if time.Since(startTime) > time.Second {
			t.Error("user.CreatedAt timestamp is too far from current time")
		}
	})

	t.Run("should keep a provided id", func(t *testing.T) {
		user, err := NewUser("u-1", "a@b.com", "a", SubjectBiology, PlanBasic)
		if err != nil || user.ID != "u-1" {
			t.Fatalf("expected id u-1, got %v (err %v)", user, err)
		}
	})

	cases := []struct {
		name     string
		email    string
		username string
		subject  Subject
		plan     PlanTier
	}{
		{"empty email", "", "ann", SubjectBiology, PlanBasic},
		{"blank username", "a@b.com", "   ", SubjectBiology, PlanBasic},
		{"unknown subject", "a@b.com", "ann", Subject("history"), PlanBasic},
		{"unknown plan", "a@b.com", "ann", SubjectBiology, PlanTier("gold")},
	}
	for _, tc := range cases {
		t.Run("should fail with "+tc.name, func(t *testing.T) {
			user, err := NewUser("", tc.email, tc.username, tc.subject, tc.plan)
			if user != nil {
				t.Error("expected user to be nil on error")
			}
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestUser_SetProgress(t *testing.T) {
	u := &User{}
	for in, want := range map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 180: 100} {
		u.SetProgress(in)
		if u.Progress != want {
			t.Errorf("SetProgress(%d): expected %d, got %d", in, want, u.Progress)
		}
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("ann@example.com") {
		t.Error("expected plain address to be valid")
	}
	for _, s := range []string{"", "ann", "Ann <ann@example.com>", "ann@"} {
		if ValidEmail(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestValidAvatar(t *testing.T) {
	if !ValidAvatar("") || !ValidAvatar(Avatars[0]) {
		t.Error("expected empty and listed avatars to be accepted")
	}
	if ValidAvatar("🐙") {
		t.Error("expected unlisted avatar to be rejected")
	}
}

func TestSubscriptionPlan_Validate(t *testing.T) {
	ok := &SubscriptionPlan{ID: PlanBasic, Name: "Basic", PriceUSD: 29}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid plan, got %v", err)
	}
	for _, p := range []*SubscriptionPlan{
		nil,
		{ID: "gold", Name: "Gold", PriceUSD: 1},
		{ID: PlanPro, PriceUSD: 99},
		{ID: PlanPro, Name: "Pro"},
	} {
		if err := p.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for %+v, got %v", p, err)
		}
	}
}
