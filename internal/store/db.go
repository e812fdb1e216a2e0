package store

import (
	"time"
)

// DB is the persistence interface for simulation runs.
type DB interface {
	Close() error
	Migrate() error
	SaveSim(sim *Sim, rolls []SimRoll) error
	GetSim(id string) (*Sim, error)
	GetSimRolls(id string) ([]SimRoll, error)
	ListSims(query SimsQuery) (*SimsList, error)
}

// Sim is one persisted simulation run with its analyzer summary.
type Sim struct {
	ID             string    `json:"id" db:"id"`
	NumDice        int       `json:"num_dice" db:"num_dice"`
	NumRolls       int       `json:"num_rolls" db:"num_rolls"`
	SeedMode       string    `json:"seed_mode" db:"seed_mode"`
	Jackpots       int       `json:"jackpots" db:"jackpots"`
	DistinctCombos int       `json:"distinct_combos" db:"distinct_combos"`
	DistinctPerms  int       `json:"distinct_perms" db:"distinct_perms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SimRoll is one cell of a run's results table.
type SimRoll struct {
	SimID string `json:"sim_id" db:"sim_id"`
	Roll  int    `json:"roll" db:"roll"`
	Die   int    `json:"die" db:"die"`
	Face  string `json:"face" db:"face"`
}

// SimsQuery represents query parameters for listing runs.
type SimsQuery struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// SimsList represents a paginated runs response.
type SimsList struct {
	Sims       []Sim `json:"sims"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}
