package archive_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxmate/voxmate/internal/archive"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if VOXMATE_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("VOXMATE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VOXMATE_TEST_POSTGRES_DSN not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh [archive.PostgresStore] with a clean games table.
func newTestStore(t *testing.T) *archive.PostgresStore {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS games"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	store, err := archive.NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestPostgresStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, sampleRecord("checkmate"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result != "checkmate" || got.Winner != "white" || got.EngineElo != 1350 {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Moves) != 4 || got.Moves[3] != "Nc6" {
		t.Errorf("unexpected moves: %v", got.Moves)
	}
	if got.QuizAsked != 3 || got.QuizCorrect != 2 {
		t.Errorf("unexpected quiz counts: %+v", got)
	}
}

func TestPostgresStore_Recent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, result := range []string{"draw", "checkmate", "resigned"} {
		rec := sampleRecord(result)
		if _, err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Result != "resigned" || recent[1].Result != "checkmate" {
		t.Errorf("expected newest first, got %q then %q", recent[0].Result, recent[1].Result)
	}
}

func TestPostgresStore_GetUnknownID(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), 424242); err == nil {
		t.Error("expected error for unknown id")
	}
}
