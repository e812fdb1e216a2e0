package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDB() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestSaveAndGetSim(t *testing.T) {
	db := newTestDB(t)

	sim := &Sim{
		ID:             uuid.NewString(),
		NumDice:        2,
		NumRolls:       3,
		SeedMode:       "seeded",
		Jackpots:       1,
		DistinctCombos: 2,
		DistinctPerms:  3,
	}
	rolls := []SimRoll{
		{SimID: sim.ID, Roll: 1, Die: 0, Face: "H"},
		{SimID: sim.ID, Roll: 1, Die: 1, Face: "T"},
		{SimID: sim.ID, Roll: 2, Die: 0, Face: "T"},
		{SimID: sim.ID, Roll: 2, Die: 1, Face: "T"},
		{SimID: sim.ID, Roll: 3, Die: 0, Face: "H"},
		{SimID: sim.ID, Roll: 3, Die: 1, Face: "H"},
	}

	if err := db.SaveSim(sim, rolls); err != nil {
		t.Fatalf("SaveSim() error: %v", err)
	}

	got, err := db.GetSim(sim.ID)
	if err != nil {
		t.Fatalf("GetSim() error: %v", err)
	}
	if got.NumDice != 2 || got.NumRolls != 3 || got.Jackpots != 1 {
		t.Errorf("GetSim() = %+v, want NumDice=2 NumRolls=3 Jackpots=1", got)
	}
	if got.SeedMode != "seeded" {
		t.Errorf("SeedMode = %q, want %q", got.SeedMode, "seeded")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	gotRolls, err := db.GetSimRolls(sim.ID)
	if err != nil {
		t.Fatalf("GetSimRolls() error: %v", err)
	}
	if len(gotRolls) != len(rolls) {
		t.Fatalf("GetSimRolls() returned %d rolls, want %d", len(gotRolls), len(rolls))
	}
	// Roll-major, die-minor order.
	for i, r := range gotRolls {
		if r.Roll != rolls[i].Roll || r.Die != rolls[i].Die || r.Face != rolls[i].Face {
			t.Errorf("Roll %d = %+v, want %+v", i, r, rolls[i])
		}
	}
}

func TestGetSimNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetSim("does-not-exist"); err == nil {
		t.Error("GetSim() of missing run should fail")
	}
}

func TestSaveSimDuplicateIDRollsBack(t *testing.T) {
	db := newTestDB(t)

	sim := &Sim{ID: uuid.NewString(), NumDice: 1, NumRolls: 1, SeedMode: "entropy"}
	if err := db.SaveSim(sim, nil); err != nil {
		t.Fatalf("SaveSim() error: %v", err)
	}

	if err := db.SaveSim(sim, []SimRoll{{SimID: sim.ID, Roll: 1, Die: 0, Face: "H"}}); err == nil {
		t.Fatal("SaveSim() with duplicate ID should fail")
	}

	rolls, err := db.GetSimRolls(sim.ID)
	if err != nil {
		t.Fatalf("GetSimRolls() error: %v", err)
	}
	if len(rolls) != 0 {
		t.Errorf("Failed SaveSim() left %d rolls behind", len(rolls))
	}
}

func TestListSims(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		sim := &Sim{ID: uuid.NewString(), NumDice: 1, NumRolls: i + 1, SeedMode: "entropy"}
		if err := db.SaveSim(sim, nil); err != nil {
			t.Fatalf("SaveSim() error: %v", err)
		}
	}

	list, err := db.ListSims(SimsQuery{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListSims() error: %v", err)
	}
	if list.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", list.TotalCount)
	}
	if len(list.Sims) != 2 {
		t.Errorf("Page size = %d, want 2", len(list.Sims))
	}
	if list.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", list.TotalPages)
	}

	// Defaults applied for out-of-range paging values.
	list, err = db.ListSims(SimsQuery{Page: 0, PerPage: -1})
	if err != nil {
		t.Fatalf("ListSims() error: %v", err)
	}
	if list.Page != 1 || list.PerPage != 20 {
		t.Errorf("Defaults = page %d perPage %d, want 1/20", list.Page, list.PerPage)
	}
}
