package repository

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/ponyo877/sharepad/server/usecase"
)

func openStore(t *testing.T, path string) usecase.CatalogStore {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewRepository(db)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return store
}

func TestSqliteRecordRemoveLoad(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "catalog.db"))

	for _, id := range []string{"general", "pad", "general"} {
		if err := store.Record(id); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	ids, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if want := []string{"general", "pad"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("LoadAll = %v, want %v (insertion order, duplicates ignored)", ids, want)
	}

	if err := store.Remove("general"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ids, err = store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if want := []string{"pad"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("LoadAll after remove = %v, want %v", ids, want)
	}
}

// Room existence survives a process restart with the durable backend: a new
// store over the same file sees the cataloged ids, and a registry seeded from
// it lists them as empty rooms.
func TestSqliteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	store := openStore(t, path)
	registry, err := usecase.NewRegistry(store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	registry.Join("x", "alice")

	// The catalog write is asynchronous; wait for it to land.
	deadline := time.Now().Add(time.Second)
	for {
		ids, err := store.LoadAll()
		if err != nil {
			t.Fatalf("LoadAll: %v", err)
		}
		if slices.Contains(ids, "x") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("room x never reached the catalog")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// "Restart": fresh store over the same file, fresh registry.
	restarted, err := usecase.NewRegistry(openStore(t, path), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRegistry after restart: %v", err)
	}
	infos := restarted.List()
	if len(infos) != 1 || infos[0].ID != "x" || len(infos[0].Users) != 0 {
		t.Fatalf("restarted list = %v, want [x with no users]", infos)
	}
}

func TestMemoryStoreIsVolatile(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Record("x"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	ids, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !slices.Contains(ids, "x") {
		t.Fatalf("LoadAll = %v, want to contain x", ids)
	}

	if err := store.Remove("x"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ids, _ = store.LoadAll()
	if len(ids) != 0 {
		t.Fatalf("LoadAll after remove = %v, want empty", ids)
	}

	// A new store is a new run: nothing carries over.
	fresh := NewMemoryStore()
	ids, _ = fresh.LoadAll()
	if len(ids) != 0 {
		t.Fatalf("fresh volatile store = %v, want empty", ids)
	}
}
