package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/internal/domain/round"
)

const maxStrokesPlayed = 8

var orderModes = []round.OrderMode{round.OrderLastFirst, round.OrderBestScore, round.OrderFixed}

// game plays one round and records what happened.
type game struct {
	client *client
	cfg    Config
	rng    *rand.Rand
	stats  roundStats
}

func (g *game) violate(format string, args ...any) {
	g.stats.violations = append(g.stats.violations, fmt.Sprintf(format, args...))
}

func (g *game) check(v roundView) {
	g.stats.violations = append(g.stats.violations, checkView(v)...)
}

func (g *game) startRequest(courses []course.Course) startRequest {
	n := g.cfg.MinPlayers + g.rng.IntN(g.cfg.MaxPlayers-g.cfg.MinPlayers+1)
	players := make([]string, n)
	for i := range players {
		players[i] = fmt.Sprintf("player-%d-%s", i+1, uuid.NewString()[:8])
	}
	req := startRequest{Players: players, OrderMode: string(orderModes[g.rng.IntN(len(orderModes))])}

	if len(courses) > 0 && g.rng.IntN(2) == 0 {
		c := courses[g.rng.IntN(len(courses))]
		req.Course = c.Name
		req.Difficulty = string([]course.Difficulty{course.Easy, course.Hard}[g.rng.IntN(2)])
		return req
	}
	req.Pars = make([]int, round.HoleCount)
	for i := range req.Pars {
		req.Pars[i] = 2 + g.rng.IntN(4)
	}
	return req
}

// play drives a round from start to result.
func (g *game) play(ctx context.Context, courses []course.Course) {
	v, err := g.client.start(ctx, g.startRequest(courses))
	if err != nil {
		g.violate("start round: %v", err)
		return
	}
	g.check(v)
	if !g.cfg.Keep {
		defer func() {
			if err := g.client.discard(context.WithoutCancel(ctx), v.ID); err != nil {
				g.violate("discard round %s: %v", v.ID, err)
			}
		}()
	}

	maxSteps := 4*round.HoleCount*len(v.Round.Players) + 100
	for step := 0; !v.Round.Ended; step++ {
		if ctx.Err() != nil {
			g.stats.abandoned = true
			return
		}
		if step >= maxSteps {
			g.violate("round %s did not end after %d steps", v.ID, step)
			return
		}

		next, err := g.step(ctx, v)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				g.stats.abandoned = true
				return
			}
			g.violate("round %s: %v", v.ID, err)
			return
		}
		if next.Version != v.Version+1 {
			g.violate("round %s: version went from %d to %d", v.ID, v.Version, next.Version)
		}
		g.check(next)
		v = next
	}

	res, err := g.client.result(ctx, v.ID)
	if err != nil {
		g.violate("result of round %s: %v", v.ID, err)
		return
	}
	g.stats.violations = append(g.stats.violations, checkResult(res)...)
	g.stats.completed = true
}

// step applies one random action to the round.
func (g *game) step(ctx context.Context, v roundView) (roundView, error) {
	if g.rng.Float64() < g.cfg.RemoveRate {
		p := v.Round.Players[g.rng.IntN(len(v.Round.Players))]
		g.stats.removals++
		return g.client.remove(ctx, v.ID, p.ID)
	}
	if g.rng.Float64() < g.cfg.EditRate {
		if next, ok, err := g.edit(ctx, v); ok || err != nil {
			return next, err
		}
	}
	return g.record(ctx, v)
}

func (g *game) record(ctx context.Context, v roundView) (roundView, error) {
	if v.CurrentPlayer == nil {
		return roundView{}, errors.New("nobody to play")
	}
	cur := *v.CurrentPlayer
	strokes := 1 + g.rng.IntN(maxStrokesPlayed)
	requestID := uuid.NewString()

	next, err := g.client.record(ctx, v.ID, strokes, requestID)
	if err != nil {
		return roundView{}, err
	}
	g.stats.scores++
	if p, ok := next.Round.Player(cur.ID); !ok || p.Total != cur.Total+strokes {
		g.violate("round %s: player %d total %d after %d strokes on %d", v.ID, cur.ID, p.Total, strokes, cur.Total)
	}

	if g.rng.Float64() < g.cfg.RetryRate {
		again, err := g.client.record(ctx, v.ID, strokes, requestID)
		if err != nil {
			return roundView{}, fmt.Errorf("retried score: %w", err)
		}
		g.stats.replays++
		if !again.Duplicate || again.Version != next.Version {
			g.violate("round %s: retried score applied again (version %d after %d)", v.ID, again.Version, next.Version)
		}
	}
	return next, nil
}

// edit replaces a random recorded score. ok is false when nothing is recorded yet.
func (g *game) edit(ctx context.Context, v roundView) (next roundView, ok bool, err error) {
	type ref struct{ player, hole int }
	var recorded []ref
	for _, p := range v.Round.Players {
		for h := range p.Score {
			if p.Played(h) {
				recorded = append(recorded, ref{p.ID, h})
			}
		}
	}
	if len(recorded) == 0 {
		return roundView{}, false, nil
	}

	pick := recorded[g.rng.IntN(len(recorded))]
	before, _ := v.Round.Player(pick.player)
	old := *before.Score[pick.hole].Value + v.Round.Holes[pick.hole].Par
	strokes := 1 + g.rng.IntN(maxStrokesPlayed)

	next, err = g.client.edit(ctx, v.ID, pick.player, pick.hole+1, strokes)
	if err != nil {
		return roundView{}, true, err
	}
	g.stats.edits++
	after, _ := next.Round.Player(pick.player)
	if after.Total != before.Total-old+strokes {
		g.violate("round %s: edit of player %d hole %d left total %d", v.ID, pick.player, pick.hole+1, after.Total)
	}
	if next.Round.CurrentHoleIndex != v.Round.CurrentHoleIndex || next.Round.PlayersPlayedCount != v.Round.PlayersPlayedCount {
		g.violate("round %s: edit moved the round", v.ID)
	}
	return next, true, nil
}
