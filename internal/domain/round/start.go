package round

import (
	"strconv"
	"strings"
)

// StartOption applies optional metadata to a new round.
type StartOption func(*Round)

// WithCourse records the course the pars were taken from.
func WithCourse(name, difficulty string) StartOption {
	return func(r *Round) {
		r.CourseName = name
		r.Difficulty = difficulty
	}
}

// Start creates a round for the given players and pars.
//
// Players receive ids 0..n-1 in input order. The first hole is played in input
// order regardless of mode; mode only affects the order of later holes.
func Start(names []string, pars []int, mode OrderMode, opts ...StartOption) (Round, error) {
	const op = "start_round"

	if err := ValidateNames(names); err != nil {
		return Round{}, err
	}
	if err := ValidatePars(pars); err != nil {
		return Round{}, err
	}
	if !mode.Valid() {
		return Round{}, newError(op, ErrValidation, "unknown order mode %q", mode)
	}

	r := Round{
		Holes:              make([]Hole, HoleCount),
		Players:            make([]Player, len(names)),
		OrderInCurrentHole: make([]int, len(names)),
		OrderMode:          mode,
		Started:            true,
	}
	for i, par := range pars {
		r.Holes[i] = Hole{Number: i + 1, Par: par}
	}
	for i, name := range names {
		r.Players[i] = Player{
			ID:    i,
			Name:  name,
			Score: make([]PlayerScore, HoleCount),
		}
		r.OrderInCurrentHole[i] = i
	}

	for _, opt := range opts {
		opt(&r)
	}
	return r, nil
}

// ValidateNames checks a player list: at least one player, no empty names and
// no names that collide ignoring case.
func ValidateNames(names []string) error {
	const op = "validate_names"

	if len(names) == 0 {
		return newError(op, ErrValidation, "at least one player is required")
	}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return newError(op, ErrValidation, "player %d: name can't be empty", i+1)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return newError(op, ErrValidation, "player name %q already exists", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValidatePars checks that exactly HoleCount pars in 1..MaxPar are given.
func ValidatePars(pars []int) error {
	const op = "validate_pars"

	if len(pars) != HoleCount {
		return newError(op, ErrValidation, "there must be exactly %d pars, got %d", HoleCount, len(pars))
	}
	for i, par := range pars {
		if err := validatePar(op, i+1, par); err != nil {
			return err
		}
	}
	return nil
}

// ParsePar converts caller supplied text into the par of hole (1-based).
func ParsePar(hole int, s string) (int, error) {
	const op = "parse_par"

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newError(op, ErrValidation, "hole %d: indicate the par", hole)
	}
	if err := validatePar(op, hole, n); err != nil {
		return 0, err
	}
	return n, nil
}

func validatePar(op string, hole, par int) error {
	if par <= 0 {
		return newError(op, ErrValidation, "hole %d: par must be greater than 0", hole)
	}
	if par > MaxPar {
		return newError(op, ErrValidation, "hole %d: par must be at most %d", hole, MaxPar)
	}
	return nil
}
