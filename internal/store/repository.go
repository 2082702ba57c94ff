package store

import (
	"errors"

	"gorm.io/gorm"

	"fleetsim/internal/duel"
)

var ErrNotFound = errors.New("record not found")

// DuelRecord is a finished duel. The full result is kept as JSON in Result.
type DuelRecord struct {
	gorm.Model
	DuelID   string `json:"duel_id" gorm:"uniqueIndex"`
	Seed     int64  `json:"seed"`
	EntrantA string `json:"entrant_a"`
	EntrantB string `json:"entrant_b"`
	Winner   string `json:"winner"`
	Draw     bool   `json:"draw"`
	Turns    int    `json:"turns"`
	Result   []byte `json:"-" gorm:"type:blob"`
}

// StandingRecord is one line of a tournament table.
type StandingRecord struct {
	gorm.Model
	TournamentID string `json:"tournament_id" gorm:"index"`
	Place        int    `json:"place"`
	Name         string `json:"name"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	Points       int    `json:"points"`
}

type Repository interface {
	SaveDuel(res *duel.Result) (*DuelRecord, error)
	GetDuel(duelID string) (*DuelRecord, error)
	// ListDuels returns the most recent duels first.
	ListDuels(limit int) ([]DuelRecord, error)
	SaveStandings(tournamentID string, standings []duel.Standing) error
	GetStandings(tournamentID string) ([]StandingRecord, error)
}
