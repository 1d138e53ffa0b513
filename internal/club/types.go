package club

import "time"

// One member of the club as listed by the game API
type RosterEntry struct {
	Tag      string
	Name     string
	Role     Role
	Trophies int
}

// One member of the guild. Roles keeps the names of the guild roles the
// member holds, Role is the exclusive club role resolved from them
type ChatMember struct {
	ID          string
	DisplayName string
	Mention     string
	Roles       []string
	Role        Role
	IsBot       bool
}

type MatchEntry struct {
	Timestamp time.Time
}

type MatchedPair struct {
	Entry        RosterEntry
	Member       *ChatMember // nil when no member scored above the cutoff
	Score        int
	RoleMismatch bool
}

type Reconciliation struct {
	Pairs      []MatchedPair
	Unlisted   []ChatMember
	Duplicates []ChatMember
}

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNoData
	OutcomeFetchFailed
)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeOK:
		return "ok"
	case OutcomeNoData:
		return "no data"
	case OutcomeFetchFailed:
		return "fetch failed"
	default:
		return "unknown"
	}
}

type ActivityRecord struct {
	Player          string
	Tag             string
	Outcome         Outcome
	MatchesInWindow int
	SpanDays        float64
	AveragePerDay   float64
}

// Match log of one player as gathered by the caller. Err is set when the
// log could not be fetched
type PlayerMatches struct {
	Player  string
	Tag     string
	Matches []MatchEntry
	Err     error
}
