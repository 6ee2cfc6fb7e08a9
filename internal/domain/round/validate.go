package round

import "strings"

// Validate checks the structural invariants of r. It is meant for rounds that
// come from outside the engine, such as restored snapshots.
func (r Round) Validate() error {
	const op = "validate_round"

	if !r.Started {
		return newError(op, ErrInvalidState, "round has not started")
	}
	if len(r.Holes) != HoleCount {
		return newError(op, ErrValidation, "round has %d holes, want %d", len(r.Holes), HoleCount)
	}
	for i, h := range r.Holes {
		if h.Number != i+1 {
			return newError(op, ErrValidation, "hole %d is numbered %d", i+1, h.Number)
		}
		if h.Par <= 0 || h.Par > MaxPar {
			return newError(op, ErrValidation, "hole %d has par %d", i+1, h.Par)
		}
	}
	if !r.OrderMode.Valid() {
		return newError(op, ErrValidation, "unknown order mode %q", r.OrderMode)
	}
	if r.CurrentHoleIndex < 0 || r.CurrentHoleIndex >= HoleCount {
		return newError(op, ErrValidation, "current hole index %d out of range", r.CurrentHoleIndex)
	}
	if r.PlayersPlayedCount < 0 || r.PlayersPlayedCount > len(r.Players) {
		return newError(op, ErrValidation, "players played count %d out of range", r.PlayersPlayedCount)
	}

	ids := make(map[int]struct{}, len(r.Players))
	names := make(map[string]struct{}, len(r.Players))
	for _, p := range r.Players {
		if _, dup := ids[p.ID]; dup {
			return newError(op, ErrValidation, "duplicate player id %d", p.ID)
		}
		ids[p.ID] = struct{}{}
		key := strings.ToLower(p.Name)
		if _, dup := names[key]; dup || strings.TrimSpace(p.Name) == "" {
			return newError(op, ErrValidation, "invalid or duplicate player name %q", p.Name)
		}
		names[key] = struct{}{}
		if err := r.validatePlayer(op, p); err != nil {
			return err
		}
	}

	if r.Ended {
		return nil
	}
	if len(r.Players) == 0 {
		return newError(op, ErrValidation, "round in progress has no players")
	}
	if r.PlayersPlayedCount == len(r.Players) {
		return newError(op, ErrValidation, "hole %d is complete but the round did not advance", r.CurrentHoleIndex+1)
	}
	return r.validateOrder(op, ids)
}

func (r Round) validatePlayer(op string, p Player) error {
	if len(p.Score) != HoleCount {
		return newError(op, ErrValidation, "player %d has %d scores, want %d", p.ID, len(p.Score), HoleCount)
	}
	total := 0
	for h, s := range p.Score {
		if s.Value == nil {
			if h < r.CurrentHoleIndex && !r.Ended {
				return newError(op, ErrValidation, "player %d is missing a score on hole %d", p.ID, h+1)
			}
			continue
		}
		if h > r.CurrentHoleIndex {
			return newError(op, ErrValidation, "player %d has a score on unplayed hole %d", p.ID, h+1)
		}
		strokes := *s.Value + r.Holes[h].Par
		if strokes <= 0 || strokes > MaxStrokes {
			return newError(op, ErrValidation, "player %d has %d strokes on hole %d", p.ID, strokes, h+1)
		}
		total += strokes
	}
	if total != p.Total {
		return newError(op, ErrValidation, "player %d total is %d, scores add up to %d", p.ID, p.Total, total)
	}
	return nil
}

// validateOrder checks that the turn order is a permutation of ids and that the
// players who already played the current hole are exactly the first ones in it.
func (r Round) validateOrder(op string, ids map[int]struct{}) error {
	if len(r.OrderInCurrentHole) != len(ids) {
		return newError(op, ErrValidation, "turn order has %d entries for %d players", len(r.OrderInCurrentHole), len(ids))
	}
	seen := make(map[int]struct{}, len(ids))
	for pos, id := range r.OrderInCurrentHole {
		if _, ok := ids[id]; !ok {
			return newError(op, ErrValidation, "turn order references unknown player %d", id)
		}
		if _, dup := seen[id]; dup {
			return newError(op, ErrValidation, "turn order lists player %d twice", id)
		}
		seen[id] = struct{}{}

		p, _ := r.player(id)
		if played := p.Played(r.CurrentHoleIndex); played != (pos < r.PlayersPlayedCount) {
			return newError(op, ErrValidation, "player %d at turn %d disagrees with played count %d", id, pos+1, r.PlayersPlayedCount)
		}
	}
	return nil
}
