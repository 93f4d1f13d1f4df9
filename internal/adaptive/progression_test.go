package adaptive

import "testing"

func TestNext_HoldsBelowMinimumAttempts(t *testing.T) {
	m := NewManager(nil)
	sig := Signal{IsCorrect: false, ConsecutiveWrong: 2, Mastery: 10, RecentAccuracy: 0, TotalAttempts: 2}
	d := m.Next(TierMedium, sig)
	if d.Move != MoveStay || d.NextTier != TierMedium {
		t.Errorf("Expected stay at medium below minimum attempts, got %s to %s", d.Move, d.NextTier)
	}
}

func TestNext_DemoteOnConsecutiveWrong(t *testing.T) {
	m := NewManager(nil)
	sig := Signal{ConsecutiveWrong: 2, Mastery: 80, RecentAccuracy: 75, TotalAttempts: 6}
	d := m.Next(TierMedium, sig)
	if d.Move != MoveDemote || d.NextTier != TierEasy {
		t.Errorf("Expected demotion to easy, got %s to %s", d.Move, d.NextTier)
	}
	if d.Reason != "consecutive_wrong" {
		t.Errorf("Expected reason consecutive_wrong, got %q", d.Reason)
	}
}

func TestNext_DemoteOnLowMastery(t *testing.T) {
	m := NewManager(nil)
	sig := Signal{Mastery: 45, RecentAccuracy: 60, TotalAttempts: 5}
	d := m.Next(TierMedium, sig)
	if d.Move != MoveDemote || d.Reason != "low_mastery" {
		t.Errorf("Expected low_mastery demotion, got %s (%s)", d.Move, d.Reason)
	}
}

func TestNext_DemoteOnLowRecentAccuracy(t *testing.T) {
	m := NewManager(nil)
	sig := Signal{Mastery: 55, RecentAccuracy: 33.3, TotalAttempts: 3}
	d := m.Next(TierMedium, sig)
	if d.Move != MoveDemote || d.Reason != "low_recent_accuracy" {
		t.Errorf("Expected low_recent_accuracy demotion, got %s (%s)", d.Move, d.Reason)
	}
}

func TestNext_HardSustainedStruggle(t *testing.T) {
	m := NewManager(nil)
	// Mastery and streaks clear the ordinary demotion rules, but recent
	// accuracy has sat under the HARD bar long enough.
	sig := Signal{ConsecutiveWrong: 1, Mastery: 55, RecentAccuracy: 50, TotalAttempts: 8}

	d := m.Next(TierHard, sig)
	if d.Move != MoveDemote || d.NextTier != TierMedium {
		t.Errorf("Expected demotion hard to medium, got %s to %s", d.Move, d.NextTier)
	}
	if d.Reason != "sustained_struggle" {
		t.Errorf("Expected reason sustained_struggle, got %q", d.Reason)
	}

	// The same signal at MEDIUM is a hold.
	d = m.Next(TierMedium, sig)
	if d.Move != MoveStay {
		t.Errorf("Expected stay at medium, got %s (%s)", d.Move, d.Reason)
	}
}

func TestNext_PromotionGate(t *testing.T) {
	m := NewManager(nil)
	sig := Signal{ConsecutiveCorrect: 3, Mastery: 70, RecentAccuracy: 70, TotalAttempts: 5}
	d := m.Next(TierMedium, sig)
	if d.Move != MovePromote || d.NextTier != TierHard {
		t.Errorf("Expected promotion to hard, got %s to %s", d.Move, d.NextTier)
	}
	if d.Reason != "promotion_gate" {
		t.Errorf("Expected reason promotion_gate, got %q", d.Reason)
	}
}

func TestNext_PromotionGateRejectsWeakSignal(t *testing.T) {
	m := NewManager(nil)
	cases := []struct {
		name string
		sig  Signal
	}{
		{"short streak", Signal{ConsecutiveCorrect: 2, Mastery: 90, RecentAccuracy: 90, TotalAttempts: 10}},
		{"low mastery", Signal{ConsecutiveCorrect: 4, Mastery: 69, RecentAccuracy: 90, TotalAttempts: 10}},
		{"low recent accuracy", Signal{ConsecutiveCorrect: 4, Mastery: 90, RecentAccuracy: 62.5, TotalAttempts: 10}},
		{"few attempts", Signal{ConsecutiveCorrect: 3, Mastery: 90, RecentAccuracy: 100, TotalAttempts: 4}},
	}
	for _, tc := range cases {
		if d := m.Next(TierMedium, tc.sig); d.Move != MoveStay {
			t.Errorf("%s: expected stay, got %s (%s)", tc.name, d.Move, d.Reason)
		}
	}
}

func TestNext_FastTrackFromEasy(t *testing.T) {
	m := NewManager(nil)
	// Mastery below the ordinary gate, so only the fast track can fire.
	sig := Signal{ConsecutiveCorrect: 4, Mastery: 60, RecentAccuracy: 100, TotalAttempts: 5}

	d := m.Next(TierEasy, sig)
	if d.Move != MovePromote || d.NextTier != TierMedium {
		t.Errorf("Expected fast-track promotion to medium, got %s to %s", d.Move, d.NextTier)
	}
	if d.Reason != "fast_track" {
		t.Errorf("Expected reason fast_track, got %q", d.Reason)
	}

	// No fast track out of MEDIUM; the same signal holds there.
	d = m.Next(TierMedium, sig)
	if d.Move != MoveStay {
		t.Errorf("Expected stay at medium, got %s (%s)", d.Move, d.Reason)
	}
}

func TestNext_DemotionBeatsPromotion(t *testing.T) {
	// Lower the promotion mastery bar so the same signal qualifies for the
	// promotion gate and for low_mastery demotion at once.
	cfg := DefaultConfig()
	cfg.PromoteMasteryAtLeast = 40
	sig := Signal{ConsecutiveCorrect: 3, Mastery: 45, RecentAccuracy: 75, TotalAttempts: 6}
	d := NewManager(cfg).Next(TierMedium, sig)
	if d.Move != MoveDemote {
		t.Errorf("Expected demotion to win over promotion, got %s (%s)", d.Move, d.Reason)
	}
}

func TestNext_ClampsAtEdges(t *testing.T) {
	m := NewManager(nil)

	// Demotion from the bottom tier is a stay.
	bad := Signal{ConsecutiveWrong: 5, Mastery: 0, RecentAccuracy: 0, TotalAttempts: 10}
	d := m.Next(TierEasy, bad)
	if d.Move != MoveStay || d.NextTier != TierEasy {
		t.Errorf("Expected stay at easy, got %s to %s", d.Move, d.NextTier)
	}

	// Promotion from the top tier is a stay.
	good := Signal{ConsecutiveCorrect: 8, Mastery: 100, RecentAccuracy: 100, TotalAttempts: 20}
	d = m.Next(TierHard, good)
	if d.Move != MoveStay || d.NextTier != TierHard {
		t.Errorf("Expected stay at hard, got %s to %s", d.Move, d.NextTier)
	}
}

func TestNext_MovesAtMostOneTier(t *testing.T) {
	m := NewManager(nil)
	bad := Signal{ConsecutiveWrong: 6, Mastery: 5, RecentAccuracy: 0, TotalAttempts: 12}
	if d := m.Next(TierHard, bad); d.NextTier != TierMedium {
		t.Errorf("Expected a single step down from hard, got %s", d.NextTier)
	}
	good := Signal{ConsecutiveCorrect: 10, Mastery: 100, RecentAccuracy: 100, TotalAttempts: 20}
	if d := m.Next(TierEasy, good); d.NextTier != TierMedium {
		t.Errorf("Expected a single step up from easy, got %s", d.NextTier)
	}
}

func TestTierOrderHelpers(t *testing.T) {
	if TierEasy.Below() != TierEasy || TierHard.Above() != TierHard {
		t.Error("Expected tier order to clamp at the edges")
	}
	if TierEasy.Rank() >= TierMedium.Rank() || TierMedium.Rank() >= TierHard.Rank() {
		t.Error("Expected easy < medium < hard")
	}
	if InitialTier() != TierEasy {
		t.Errorf("Expected fresh records to start at easy, got %s", InitialTier())
	}
}
