// Package scoring turns round scores into standings and display text.
package scoring

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
)

// FormatRelative renders a score relative to par: "E" for even, "+n" over and "-n" under.
func FormatRelative(v int) string {
	switch {
	case v == 0:
		return "E"
	case v > 0:
		return "+" + strconv.Itoa(v)
	default:
		return strconv.Itoa(v)
	}
}

// FormatHole renders a single hole score, "-" when it has not been played.
func FormatHole(s round.PlayerScore) string {
	if s.Value == nil {
		return "-"
	}
	return FormatRelative(*s.Value)
}

// PlayerSummary renders the running score of a player, e.g. "+3 (57)".
func PlayerSummary(p round.Player) string {
	return fmt.Sprintf("%s (%d)", FormatRelative(p.RelativeToPar()), p.Total)
}

// Standings ranks players by total strokes. Players on the same total share a
// rank and the next rank skips accordingly (1, 1, 3).
func Standings(players []round.Player) []types.Entry {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b round.Player) int {
		if a.Total != b.Total {
			return a.Total - b.Total
		}
		return a.ID - b.ID
	})

	entries := make([]types.Entry, len(sorted))
	for i, p := range sorted {
		rank := i + 1
		if i > 0 && p.Total == sorted[i-1].Total {
			rank = entries[i-1].Rank
		}
		entries[i] = entry(rank, p)
	}
	return entries
}

// Result converts an engine result into its read shape.
func Result(id string, res round.Result) types.ResultView {
	view := types.ResultView{
		ID:        id,
		Title:     ResultTitle(res),
		IsTie:     res.IsTie,
		Winners:   make([]types.Entry, len(res.Winners)),
		Standings: Standings(res.Standings),
	}
	for i, p := range res.Winners {
		view.Winners[i] = entry(1, p)
	}
	return view
}

// ResultTitle is the headline shown when a round finishes.
func ResultTitle(res round.Result) string {
	switch len(res.Winners) {
	case 0:
		return "Nobody finished the round"
	case 1:
		return fmt.Sprintf("Congratulations, %s! 🏆", res.Winners[0].Name)
	default:
		return "What a thrilling tie! 🤝"
	}
}

func entry(rank int, p round.Player) types.Entry {
	return types.Entry{
		Rank:          rank,
		PlayerID:      p.ID,
		Name:          p.Name,
		Total:         p.Total,
		RelativeToPar: p.RelativeToPar(),
		Summary:       PlayerSummary(p),
	}
}
