package round

import "slices"

// Result is the outcome of a finished round.
type Result struct {
	// Standings lists every player ordered by total, ties kept in id order.
	Standings []Player `json:"standings"`
	// Winners are the players sharing the lowest total.
	Winners []Player `json:"winners"`
	IsTie   bool     `json:"isTie"`
}

// ComputeResult ranks the players of an ended round.
func ComputeResult(r Round) (Result, error) {
	const op = "compute_result"

	if !r.Ended {
		return Result{}, newError(op, ErrInvalidState, "round has not ended")
	}

	standings := r.clone().Players
	slices.SortStableFunc(standings, func(a, b Player) int {
		if a.Total != b.Total {
			return a.Total - b.Total
		}
		return a.ID - b.ID
	})

	res := Result{Standings: standings, Winners: []Player{}}
	for _, p := range standings {
		if p.Total != standings[0].Total {
			break
		}
		res.Winners = append(res.Winners, p)
	}
	res.IsTie = len(res.Winners) > 1
	return res, nil
}
