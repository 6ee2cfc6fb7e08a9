// Package types contains the read shapes shared by the service and its adapters.
package types

import (
	"time"

	"github.com/okian/scorecard/internal/domain/round"
)

// Entry is one row of a round's standings.
type Entry struct {
	Rank          int    `json:"rank"`
	PlayerID      int    `json:"player_id"`
	Name          string `json:"name"`
	Total         int    `json:"total"`
	RelativeToPar int    `json:"relative_to_par"`
	Summary       string `json:"summary"`
}

// RoundView is the state returned after every round operation.
type RoundView struct {
	ID            string        `json:"id"`
	Version       int64         `json:"version"`
	Round         round.Round   `json:"round"`
	CurrentPlayer *round.Player `json:"current_player,omitempty"`
	CurrentHole   round.Hole    `json:"current_hole"`
	Standings     []Entry       `json:"standings"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	// Duplicate is set when a retried request was answered from a previous attempt.
	Duplicate bool `json:"duplicate,omitempty"`
}

// RoundSummary is the list shape of a round.
type RoundSummary struct {
	ID          string    `json:"id"`
	CourseName  string    `json:"course_name,omitempty"`
	Players     int       `json:"players"`
	CurrentHole int       `json:"current_hole"`
	Ended       bool      `json:"ended"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResultView is the outcome of an ended round.
type ResultView struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Winners   []Entry `json:"winners"`
	IsTie     bool    `json:"is_tie"`
	Standings []Entry `json:"standings"`
}
