//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreStudyAndSimulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "forge.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	study := testStudy("study-1", 1700000000)
	if err := store.SaveStudy(ctx, study); err != nil {
		t.Fatalf("save study: %v", err)
	}

	loadedStudy, ok, err := store.Study(ctx, study.ID)
	if err != nil {
		t.Fatalf("get study: %v", err)
	}
	if !ok {
		t.Fatalf("expected study %s", study.ID)
	}
	if loadedStudy.ID != study.ID || len(loadedStudy.Trials) != len(study.Trials) {
		t.Fatalf("unexpected study loaded: %+v", loadedStudy)
	}

	newer := testStudy("study-2", 1700000100)
	if err := store.SaveStudy(ctx, newer); err != nil {
		t.Fatalf("save newer study: %v", err)
	}

	summaries, err := store.Studies(ctx)
	if err != nil {
		t.Fatalf("list studies: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "study-2" {
		t.Fatalf("expected newest first, got: %+v", summaries)
	}

	// Saving again with the same id must upsert, not duplicate.
	study.State = "stopped"
	if err := store.SaveStudy(ctx, study); err != nil {
		t.Fatalf("resave study: %v", err)
	}
	summaries, err = store.Studies(ctx)
	if err != nil {
		t.Fatalf("relist studies: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected upsert to keep 2 rows, got %d", len(summaries))
	}

	if err := store.DeleteStudy(ctx, "study-1"); err != nil {
		t.Fatalf("delete study: %v", err)
	}
	_, ok, err = store.Study(ctx, "study-1")
	if err != nil {
		t.Fatalf("get deleted study: %v", err)
	}
	if ok {
		t.Fatal("expected study-1 to be deleted")
	}

	for i, id := range []string{"sim-a", "sim-b", "sim-c"} {
		if err := store.SaveSimulation(ctx, testSimulation(id, int64(1700000000+i))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	loadedSim, ok, err := store.Simulation(ctx, "sim-b")
	if err != nil {
		t.Fatalf("get simulation: %v", err)
	}
	if !ok {
		t.Fatal("expected simulation sim-b")
	}
	if loadedSim.Result.Thrust != 31500 {
		t.Fatalf("unexpected simulation loaded: %+v", loadedSim)
	}

	records, err := store.Simulations(ctx, 2)
	if err != nil {
		t.Fatalf("list simulations: %v", err)
	}
	if len(records) != 2 || records[0].ID != "sim-c" || records[1].ID != "sim-b" {
		t.Fatalf("unexpected listing: %+v", records)
	}

	all, err := store.Simulations(ctx, 0)
	if err != nil {
		t.Fatalf("list all simulations: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 simulations, got %d", len(all))
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "forge.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	study := testStudy("persisted-study", 1700000000)
	if err := first.SaveStudy(ctx, study); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.Study(ctx, study.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != study.ID {
		t.Fatalf("expected persisted study, got ok=%t value=%+v", ok, loaded)
	}
}
