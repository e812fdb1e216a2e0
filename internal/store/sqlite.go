package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) a SQLite database at the given path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency between readers and the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sims (
			id TEXT PRIMARY KEY,
			num_dice INTEGER NOT NULL,
			num_rolls INTEGER NOT NULL,
			seed_mode TEXT NOT NULL,
			jackpots INTEGER NOT NULL DEFAULT 0,
			distinct_combos INTEGER NOT NULL DEFAULT 0,
			distinct_perms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sim_rolls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sim_id TEXT NOT NULL,
			roll INTEGER NOT NULL,
			die INTEGER NOT NULL,
			face TEXT NOT NULL,
			FOREIGN KEY (sim_id) REFERENCES sims(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_rolls_sim_id ON sim_rolls(sim_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_rolls_cell ON sim_rolls(sim_id, roll, die)`,
		`CREATE INDEX IF NOT EXISTS idx_sims_created_at ON sims(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveSim stores a run and its results table in one transaction.
func (s *SQLiteDB) SaveSim(sim *Sim, rolls []SimRoll) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sims (id, num_dice, num_rolls, seed_mode, jackpots, distinct_combos, distinct_perms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sim.ID, sim.NumDice, sim.NumRolls, sim.SeedMode,
		sim.Jackpots, sim.DistinctCombos, sim.DistinctPerms,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sim: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sim_rolls (sim_id, roll, die, face) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare roll insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rolls {
		if _, err := stmt.Exec(sim.ID, r.Roll, r.Die, r.Face); err != nil {
			return fmt.Errorf("failed to insert roll: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetSim returns one run by ID.
func (s *SQLiteDB) GetSim(id string) (*Sim, error) {
	var sim Sim
	err := s.db.QueryRow(`
		SELECT id, num_dice, num_rolls, seed_mode, jackpots, distinct_combos, distinct_perms, created_at
		FROM sims WHERE id = ?`, id).Scan(
		&sim.ID, &sim.NumDice, &sim.NumRolls, &sim.SeedMode,
		&sim.Jackpots, &sim.DistinctCombos, &sim.DistinctPerms, &sim.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sim not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sim: %w", err)
	}
	return &sim, nil
}

// GetSimRolls returns a run's results table in roll-major, die-minor order.
func (s *SQLiteDB) GetSimRolls(id string) ([]SimRoll, error) {
	rows, err := s.db.Query(`
		SELECT sim_id, roll, die, face
		FROM sim_rolls WHERE sim_id = ?
		ORDER BY roll, die`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}
	defer rows.Close()

	var out []SimRoll
	for rows.Next() {
		var r SimRoll
		if err := rows.Scan(&r.SimID, &r.Roll, &r.Die, &r.Face); err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSims returns runs, newest first, paginated.
func (s *SQLiteDB) ListSims(query SimsQuery) (*SimsList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 100 {
		query.PerPage = 20
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sims`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count sims: %w", err)
	}

	offset := (query.Page - 1) * query.PerPage
	rows, err := s.db.Query(`
		SELECT id, num_dice, num_rolls, seed_mode, jackpots, distinct_combos, distinct_perms, created_at
		FROM sims ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		query.PerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sims: %w", err)
	}
	defer rows.Close()

	sims := []Sim{}
	for rows.Next() {
		var sim Sim
		if err := rows.Scan(&sim.ID, &sim.NumDice, &sim.NumRolls, &sim.SeedMode,
			&sim.Jackpots, &sim.DistinctCombos, &sim.DistinctPerms, &sim.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sim: %w", err)
		}
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + query.PerPage - 1) / query.PerPage
	return &SimsList{
		Sims:       sims,
		TotalCount: total,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}
