package round

import (
	"slices"
)

// advance moves to the next hole, or ends the round, once every remaining
// player has played the current hole. It expects a value it may modify.
func advance(r Round) Round {
	if r.PlayersPlayedCount < len(r.Players) {
		return r
	}
	if r.CurrentHoleIndex >= len(r.Holes)-1 {
		r.Ended = true
		return r
	}
	r.OrderInCurrentHole = nextOrder(r)
	r.CurrentHoleIndex++
	r.PlayersPlayedCount = 0
	return r
}

// AdvanceWithoutScore completes the current hole when nobody is left to play it.
// The round is returned unchanged while a turn is still pending.
func AdvanceWithoutScore(r Round) (Round, error) {
	const op = "advance_without_score"

	if err := requireActive(op, r); err != nil {
		return Round{}, err
	}
	return advance(r.clone()), nil
}

// nextOrder computes the turn order of the hole following r.CurrentHoleIndex.
func nextOrder(r Round) []int {
	switch r.OrderMode {
	case OrderLastFirst:
		order := slices.Clone(r.OrderInCurrentHole)
		if n := len(order); n > 1 {
			last := order[n-1]
			copy(order[1:], order[:n-1])
			order[0] = last
		}
		return order
	case OrderBestScore:
		return bestScoreOrder(r.Players, r.CurrentHoleIndex)
	default:
		return slices.Clone(r.OrderInCurrentHole)
	}
}

// bestScoreOrder sorts players by their score on holeIndex, breaking ties with
// earlier holes and finally with the player id.
func bestScoreOrder(players []Player, holeIndex int) []int {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b Player) int {
		for h := holeIndex; h >= 0; h-- {
			if d := scoreAt(a, h) - scoreAt(b, h); d != 0 {
				return d
			}
		}
		return a.ID - b.ID
	})

	order := make([]int, len(sorted))
	for i, p := range sorted {
		order[i] = p.ID
	}
	return order
}

// scoreAt treats a missing score as par.
func scoreAt(p Player, h int) int {
	if h < len(p.Score) && p.Score[h].Value != nil {
		return *p.Score[h].Value
	}
	return 0
}

// RemovePlayer drops a player from the round. When the removal leaves every
// remaining player done with the current hole, the hole is completed as if
// the last score had just been recorded. Removing the last player ends the
// round without a winner.
func RemovePlayer(r Round, playerID int) (Round, error) {
	const op = "remove_player"

	if err := requireActive(op, r); err != nil {
		return Round{}, err
	}
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return Round{}, newError(op, ErrNotFound, "player %d not found", playerID)
	}

	out := r.clone()
	out.Players = slices.Delete(out.Players, idx, idx+1)
	out.OrderInCurrentHole = slices.DeleteFunc(out.OrderInCurrentHole, func(id int) bool { return id == playerID })

	played := 0
	for _, p := range out.Players {
		if p.Played(out.CurrentHoleIndex) {
			played++
		}
	}
	out.PlayersPlayedCount = played

	if len(out.Players) == 0 {
		out.Ended = true
		return out, nil
	}
	return advance(out), nil
}
