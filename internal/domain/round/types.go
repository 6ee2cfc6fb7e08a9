// Package round implements the turn and scoring state machine of a mini-golf round.
//
// Every operation takes a Round value and returns a new Round value. The input is never
// modified, so a caller can keep the previous value when an operation fails.
package round

import "strings"

// Round limits.
const (
	HoleCount  = 18
	MaxPar     = 99
	MaxStrokes = 99
)

// OrderMode decides how turn order is recalculated between holes.
type OrderMode string

// Supported order modes.
const (
	OrderLastFirst OrderMode = "last-first"
	OrderBestScore OrderMode = "best-score"
	OrderFixed     OrderMode = "fixed"
)

// ParseOrderMode maps a user supplied mode name to an OrderMode.
// Matching ignores case and accepts underscores in place of dashes.
func ParseOrderMode(s string) (OrderMode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch OrderMode(normalized) {
	case OrderLastFirst, OrderBestScore, OrderFixed:
		return OrderMode(normalized), nil
	}
	return "", newError("parse_order_mode", ErrValidation, "unknown order mode %q", s)
}

// Valid reports whether m is one of the supported modes.
func (m OrderMode) Valid() bool {
	switch m {
	case OrderLastFirst, OrderBestScore, OrderFixed:
		return true
	}
	return false
}

// Hole is a single hole of the course.
type Hole struct {
	Number int `json:"number"`
	Par    int `json:"par"`
}

// PlayerScore is a player's result on one hole.
// Value is strokes minus par; nil means the hole has not been played yet.
// IsEditing is presentation state and carries no scoring meaning.
type PlayerScore struct {
	Value     *int `json:"value"`
	IsEditing bool `json:"isEditing"`
}

// Played reports whether the score has been recorded.
func (s PlayerScore) Played() bool { return s.Value != nil }

// Player is a participant of the round. Total is the sum of raw strokes taken so far.
type Player struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Score []PlayerScore `json:"score"`
	Total int           `json:"total"`
}

// Played reports whether the player has a recorded score on the hole.
func (p Player) Played(holeIndex int) bool {
	return holeIndex >= 0 && holeIndex < len(p.Score) && p.Score[holeIndex].Played()
}

// RelativeToPar sums the recorded relative scores.
func (p Player) RelativeToPar() int {
	sum := 0
	for _, s := range p.Score {
		if s.Value != nil {
			sum += *s.Value
		}
	}
	return sum
}

// Round is the full state of a round.
type Round struct {
	CourseName         string    `json:"courseName,omitempty"`
	Difficulty         string    `json:"difficulty,omitempty"`
	Holes              []Hole    `json:"holes"`
	Players            []Player  `json:"players"`
	CurrentHoleIndex   int       `json:"currentHoleIndex"`
	PlayersPlayedCount int       `json:"playersPlayedCount"`
	OrderInCurrentHole []int     `json:"orderInCurrentHole"`
	OrderMode          OrderMode `json:"orderMode"`
	Ended              bool      `json:"ended"`
	Started            bool      `json:"started"`
}

// CurrentHole returns the hole being played.
func (r Round) CurrentHole() Hole {
	if r.CurrentHoleIndex < 0 || r.CurrentHoleIndex >= len(r.Holes) {
		return Hole{}
	}
	return r.Holes[r.CurrentHoleIndex]
}

// CurrentPlayer returns the player whose turn it is. ok is false when the round
// has ended or no turn is pending.
func (r Round) CurrentPlayer() (Player, bool) {
	if r.Ended || !r.Started || r.PlayersPlayedCount >= len(r.OrderInCurrentHole) {
		return Player{}, false
	}
	return r.player(r.OrderInCurrentHole[r.PlayersPlayedCount])
}

// Player looks a player up by id.
func (r Round) Player(id int) (Player, bool) { return r.player(id) }

// ParTotal is the sum of all pars.
func (r Round) ParTotal() int {
	total := 0
	for _, h := range r.Holes {
		total += h.Par
	}
	return total
}

func (r Round) player(id int) (Player, bool) {
	if i := r.playerIndex(id); i >= 0 {
		return r.Players[i], true
	}
	return Player{}, false
}

func (r Round) playerIndex(id int) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of r.
func (r Round) Clone() Round { return r.clone() }

// clone returns a deep copy so operations can modify the result freely.
func (r Round) clone() Round {
	out := r
	out.Holes = append([]Hole(nil), r.Holes...)
	out.OrderInCurrentHole = append([]int(nil), r.OrderInCurrentHole...)
	out.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		cp := p
		cp.Score = make([]PlayerScore, len(p.Score))
		for j, s := range p.Score {
			cp.Score[j] = PlayerScore{IsEditing: s.IsEditing}
			if s.Value != nil {
				v := *s.Value
				cp.Score[j].Value = &v
			}
		}
		out.Players[i] = cp
	}
	return out
}

func intPtr(v int) *int { return &v }
