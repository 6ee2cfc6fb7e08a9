package round

import (
	"strconv"
	"strings"
)

// ParseStrokes converts caller supplied text into a stroke count.
func ParseStrokes(s string) (int, error) {
	const op = "parse_strokes"

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newError(op, ErrValidation, "indicate the number of shots")
	}
	if err := validateStrokes(op, n); err != nil {
		return 0, err
	}
	return n, nil
}

func validateStrokes(op string, strokes int) error {
	if strokes <= 0 {
		return newError(op, ErrValidation, "the number of shots must be greater than 0")
	}
	if strokes > MaxStrokes {
		return newError(op, ErrValidation, "the number of shots must be at most %d", MaxStrokes)
	}
	return nil
}

func requireActive(op string, r Round) error {
	if !r.Started {
		return newError(op, ErrInvalidState, "round has not started")
	}
	if r.Ended {
		return newError(op, ErrInvalidState, "round has ended")
	}
	return nil
}

// RecordScore records strokes for the player whose turn it is on the current
// hole and passes the turn.
func RecordScore(r Round, strokes int) (Round, error) {
	const op = "record_score"

	if err := requireActive(op, r); err != nil {
		return Round{}, err
	}
	if err := validateStrokes(op, strokes); err != nil {
		return Round{}, err
	}
	if r.PlayersPlayedCount >= len(r.OrderInCurrentHole) {
		return Round{}, newError(op, ErrInvalidState, "no player left to play hole %d", r.CurrentHole().Number)
	}
	idx := r.playerIndex(r.OrderInCurrentHole[r.PlayersPlayedCount])
	if idx < 0 {
		return Round{}, newError(op, ErrInvalidState, "turn order references unknown player %d", r.OrderInCurrentHole[r.PlayersPlayedCount])
	}

	out := r.clone()
	hole := out.CurrentHoleIndex
	p := &out.Players[idx]
	p.Score[hole] = PlayerScore{Value: intPtr(strokes - out.Holes[hole].Par)}
	p.Total += strokes

	out.PlayersPlayedCount++
	return advance(out), nil
}

// EditScore replaces an already recorded score. Turn order and hole progression
// are left untouched.
func EditScore(r Round, playerID, holeIndex, strokes int) (Round, error) {
	const op = "edit_score"

	if err := requireActive(op, r); err != nil {
		return Round{}, err
	}
	if err := validateStrokes(op, strokes); err != nil {
		return Round{}, err
	}
	idx, err := recordedScore(op, r, playerID, holeIndex)
	if err != nil {
		return Round{}, err
	}

	out := r.clone()
	par := out.Holes[holeIndex].Par
	p := &out.Players[idx]
	oldStrokes := *p.Score[holeIndex].Value + par
	p.Total += strokes - oldStrokes
	p.Score[holeIndex] = PlayerScore{Value: intPtr(strokes - par)}
	return out, nil
}

// BeginEdit flags a recorded score as being edited. Only one score can be in
// edit mode at a time.
func BeginEdit(r Round, playerID, holeIndex int) (Round, error) {
	const op = "begin_edit"

	if err := requireActive(op, r); err != nil {
		return Round{}, err
	}
	idx, err := recordedScore(op, r, playerID, holeIndex)
	if err != nil {
		return Round{}, err
	}
	if pid, h, ok := r.Editing(); ok {
		if pid == playerID && h == holeIndex {
			return r.clone(), nil
		}
		return Round{}, newError(op, ErrInvalidState, "player %d hole %d is already being edited", pid, h+1)
	}

	out := r.clone()
	out.Players[idx].Score[holeIndex].IsEditing = true
	return out, nil
}

// CancelEdit clears every edit flag.
func CancelEdit(r Round) Round {
	out := r.clone()
	for i := range out.Players {
		for j := range out.Players[i].Score {
			out.Players[i].Score[j].IsEditing = false
		}
	}
	return out
}

// Editing returns the score currently flagged for editing, if any.
func (r Round) Editing() (playerID, holeIndex int, ok bool) {
	for _, p := range r.Players {
		for h, s := range p.Score {
			if s.IsEditing {
				return p.ID, h, true
			}
		}
	}
	return 0, 0, false
}

// recordedScore resolves the player index owning a recorded score on holeIndex.
func recordedScore(op string, r Round, playerID, holeIndex int) (int, error) {
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return -1, newError(op, ErrNotFound, "player %d not found", playerID)
	}
	if holeIndex < 0 || holeIndex >= len(r.Holes) {
		return -1, newError(op, ErrNotFound, "hole index %d out of range", holeIndex)
	}
	if !r.Players[idx].Played(holeIndex) {
		return -1, newError(op, ErrNotFound, "player %d has no score on hole %d", playerID, holeIndex+1)
	}
	return idx, nil
}
