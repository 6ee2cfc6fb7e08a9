package simulator

import (
	"fmt"

	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
)

// checkView recomputes what the server should have kept consistent.
func checkView(v roundView) []string {
	var out []string
	r := v.Round

	for _, p := range r.Players {
		sum := 0
		for h, s := range p.Score {
			if s.Value != nil && h < len(r.Holes) {
				sum += *s.Value + r.Holes[h].Par
			}
		}
		if sum != p.Total {
			out = append(out, fmt.Sprintf("round %s: player %d total %d, scores add up to %d", v.ID, p.ID, p.Total, sum))
		}
	}

	if r.PlayersPlayedCount > len(r.Players) {
		out = append(out, fmt.Sprintf("round %s: %d of %d players played", v.ID, r.PlayersPlayedCount, len(r.Players)))
	}
	if !r.Ended {
		if !isPermutation(r.OrderInCurrentHole, r.Players) {
			out = append(out, fmt.Sprintf("round %s: turn order %v is not a permutation of the players", v.ID, r.OrderInCurrentHole))
		}
		if v.CurrentPlayer == nil {
			out = append(out, fmt.Sprintf("round %s: no current player in a round in progress", v.ID))
		}
	}
	if err := r.Validate(); err != nil {
		out = append(out, fmt.Sprintf("round %s: %v", v.ID, err))
	}
	return out
}

func isPermutation(order []int, players []round.Player) bool {
	if len(order) != len(players) {
		return false
	}
	want := make(map[int]bool, len(players))
	for _, p := range players {
		want[p.ID] = true
	}
	for _, id := range order {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}

// checkResult verifies winners hold the lowest total.
func checkResult(res types.ResultView) []string {
	var out []string
	if len(res.Standings) == 0 {
		if len(res.Winners) != 0 {
			out = append(out, fmt.Sprintf("round %s: winners without standings", res.ID))
		}
		return out
	}
	best := res.Standings[0].Total
	for i := 1; i < len(res.Standings); i++ {
		if res.Standings[i].Total < res.Standings[i-1].Total {
			out = append(out, fmt.Sprintf("round %s: standings are not sorted", res.ID))
			break
		}
	}
	for _, w := range res.Winners {
		if w.Total != best {
			out = append(out, fmt.Sprintf("round %s: winner %s has %d, best is %d", res.ID, w.Name, w.Total, best))
		}
	}
	if res.IsTie != (len(res.Winners) > 1) {
		out = append(out, fmt.Sprintf("round %s: tie flag %t with %d winners", res.ID, res.IsTie, len(res.Winners)))
	}
	return out
}
