// Package adaptive decides which question difficulty a learner is served
// next. The state machine is deterministic, moves at most one tier per
// answer, and never promotes and demotes in the same step.
package adaptive

// Manager applies the progression rules.
type Manager struct {
	config *Config
}

// NewManager creates a progression manager. A nil config selects defaults.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{config: config}
}

// InitialTier is where every fresh progression record starts.
func InitialTier() Tier { return TierEasy }

// Next decides the tier transition for the latest answer. Demotion rules are
// checked first and take priority over promotion.
func (m *Manager) Next(current Tier, sig Signal) Decision {
	cfg := m.config

	// Insufficient signal: hold position until enough attempts exist.
	if sig.TotalAttempts < cfg.MinAttempts {
		return Decision{NextTier: current, Move: MoveStay, Reason: "insufficient_attempts"}
	}

	if reason, ok := m.shouldDemote(current, sig); ok {
		next := current.Below()
		if next == current {
			return Decision{NextTier: current, Move: MoveStay, Reason: reason}
		}
		return Decision{NextTier: next, Move: MoveDemote, Reason: reason}
	}

	if reason, ok := m.shouldPromote(current, sig); ok {
		next := current.Above()
		if next == current {
			return Decision{NextTier: current, Move: MoveStay, Reason: reason}
		}
		return Decision{NextTier: next, Move: MovePromote, Reason: reason}
	}

	return Decision{NextTier: current, Move: MoveStay}
}

func (m *Manager) shouldDemote(current Tier, sig Signal) (string, bool) {
	cfg := m.config
	switch {
	case sig.ConsecutiveWrong >= cfg.DemoteConsecutiveWrong:
		return "consecutive_wrong", true
	case sig.Mastery < cfg.DemoteMasteryBelow && sig.TotalAttempts >= cfg.DemoteMasteryAttempts:
		return "low_mastery", true
	case sig.RecentAccuracy < cfg.DemoteRecentBelow && sig.TotalAttempts >= cfg.DemoteRecentAttempts:
		return "low_recent_accuracy", true
	case current == TierHard &&
		sig.RecentAccuracy < cfg.HardDropRecentBelow &&
		sig.TotalAttempts >= cfg.HardDropAttempts:
		// Sustained-struggle safety valve, independent of the streak rule.
		return "sustained_struggle", true
	}
	return "", false
}

func (m *Manager) shouldPromote(current Tier, sig Signal) (string, bool) {
	cfg := m.config

	// Fast track bypasses the general promotion gate, EASY→MEDIUM only.
	if current == TierEasy &&
		sig.RecentAccuracy >= cfg.FastTrackRecentAtLeast &&
		sig.TotalAttempts >= cfg.FastTrackAttempts &&
		sig.ConsecutiveCorrect >= cfg.FastTrackConsecutiveCorrect {
		return "fast_track", true
	}

	if sig.ConsecutiveCorrect >= cfg.PromoteConsecutiveCorrect &&
		sig.Mastery >= cfg.PromoteMasteryAtLeast &&
		sig.RecentAccuracy >= cfg.PromoteRecentAtLeast &&
		sig.TotalAttempts >= cfg.PromoteAttempts {
		return "promotion_gate", true
	}
	return "", false
}
