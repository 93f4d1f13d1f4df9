package adaptive

// Tier is one of the ordered difficulty levels.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// tierOrder gives the total order EASY < MEDIUM < HARD.
var tierOrder = map[Tier]int{
	TierEasy:   0,
	TierMedium: 1,
	TierHard:   2,
}

// Rank returns the tier's position in the order, defaulting unknown values to
// the bottom tier.
func (t Tier) Rank() int {
	return tierOrder[t]
}

// Above returns the next tier up, or the same tier at the top.
func (t Tier) Above() Tier {
	switch t {
	case TierEasy:
		return TierMedium
	case TierMedium:
		return TierHard
	default:
		return t
	}
}

// Below returns the next tier down, or the same tier at the bottom.
func (t Tier) Below() Tier {
	switch t {
	case TierHard:
		return TierMedium
	case TierMedium:
		return TierEasy
	default:
		return t
	}
}

// Move describes the direction of a tier transition.
type Move string

const (
	MoveStay    Move = "stay"
	MovePromote Move = "promote"
	MoveDemote  Move = "demote"
)

// Signal carries the inputs the progression machine decides on. All values
// describe the state after the latest answer has been counted.
type Signal struct {
	IsCorrect          bool
	ConsecutiveCorrect int
	ConsecutiveWrong   int
	Mastery            int
	RecentAccuracy     float64
	TotalAttempts      int
}

// Decision is the outcome of one progression step.
type Decision struct {
	NextTier Tier `json:"next_tier"`
	Move     Move `json:"move"`
	// Reason names the rule that fired, for logging and events.
	Reason string `json:"reason,omitempty"`
}

// Config holds the progression thresholds.
type Config struct {
	MinAttempts int // no transition below this many total attempts

	DemoteConsecutiveWrong int // demote at this many wrong in a row
	DemoteMasteryBelow     int // demote below this mastery ...
	DemoteMasteryAttempts  int // ... once this many attempts exist
	DemoteRecentBelow      float64
	DemoteRecentAttempts   int

	PromoteConsecutiveCorrect int
	PromoteMasteryAtLeast     int
	PromoteRecentAtLeast      float64
	PromoteAttempts           int

	FastTrackRecentAtLeast      float64
	FastTrackAttempts           int
	FastTrackConsecutiveCorrect int

	HardDropRecentBelow float64
	HardDropAttempts    int
}

// DefaultConfig returns the standard progression thresholds.
func DefaultConfig() *Config {
	return &Config{
		MinAttempts: 3,

		DemoteConsecutiveWrong: 2,
		DemoteMasteryBelow:     50,
		DemoteMasteryAttempts:  5,
		DemoteRecentBelow:      40,
		DemoteRecentAttempts:   3,

		PromoteConsecutiveCorrect: 3,
		PromoteMasteryAtLeast:     70,
		PromoteRecentAtLeast:      70,
		PromoteAttempts:           5,

		FastTrackRecentAtLeast:      90,
		FastTrackAttempts:           5,
		FastTrackConsecutiveCorrect: 4,

		HardDropRecentBelow: 55,
		HardDropAttempts:    8,
	}
}
