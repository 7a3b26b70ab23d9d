package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func samplePlaylist(id, name string) models.Playlist {
	return models.Playlist{
		ID:         id,
		Name:       name,
		Owner:      "tester",
		TrackCount: 12,
		Public:     true,
		URI:        "spotify:playlist:" + id,
	}
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Cache", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Cache(samplePlaylist("pl-1", "Jazz Classics")); err != nil {
			t.Fatalf("failed to cache playlist: %v", err)
		}

		cached, err := repo.GetByServiceID("pl-1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if cached.Name != "Jazz Classics" {
			t.Errorf("expected name Jazz Classics, got %s", cached.Name)
		}
	})

	t.Run("Cache refreshes an existing entry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Cache(samplePlaylist("pl-1", "Jazz Classics")); err != nil {
			t.Fatalf("failed to cache playlist: %v", err)
		}

		updated := samplePlaylist("pl-1", "Jazz Classics Vol. 2")
		updated.TrackCount = 40
		if err := repo.Cache(updated); err != nil {
			t.Fatalf("failed to re-cache playlist: %v", err)
		}

		cached, err := repo.GetByServiceID("pl-1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if cached.Name != "Jazz Classics Vol. 2" || cached.TrackCount != 40 {
			t.Errorf("expected refreshed metadata, got %+v", cached)
		}

		results, err := repo.Search("Jazz", 10)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected a single cached row, got %d", len(results))
		}
	})

	t.Run("Search matches substrings", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		for _, p := range []models.Playlist{
			samplePlaylist("pl-1", "Morning Jazz"),
			samplePlaylist("pl-2", "Evening Jazz"),
			samplePlaylist("pl-3", "Workout Mix"),
		} {
			if err := repo.Cache(p); err != nil {
				t.Fatalf("failed to cache playlist: %v", err)
			}
		}

		results, err := repo.Search("Jazz", 10)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected 2 results, got %d", len(results))
		}
	})

	t.Run("Delete hides a playlist from lookups", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Cache(samplePlaylist("pl-1", "Jazz Classics")); err != nil {
			t.Fatalf("failed to cache playlist: %v", err)
		}

		if err := repo.Delete("pl-1"); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		if _, err := repo.GetByServiceID("pl-1"); err == nil {
			t.Error("expected deleted playlist to be hidden")
		}

		if err := repo.Delete("pl-1"); err == nil {
			t.Error("expected a second delete to fail")
		}
	})

	t.Run("Cache after delete resurrects the entry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Cache(samplePlaylist("pl-1", "Jazz Classics")); err != nil {
			t.Fatalf("failed to cache playlist: %v", err)
		}
		if err := repo.Delete("pl-1"); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		if err := repo.Cache(samplePlaylist("pl-1", "Jazz Classics")); err != nil {
			t.Fatalf("failed to re-cache playlist: %v", err)
		}
		if _, err := repo.GetByServiceID("pl-1"); err != nil {
			t.Errorf("expected re-cached playlist to be visible: %v", err)
		}
	})
}

func TestSearchRepository(t *testing.T) {
	t.Run("Record and Recent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		for i, query := range []string{"jazz", "lofi", "metal"} {
			if err := repo.Record(query, i+1); err != nil {
				t.Fatalf("failed to record search: %v", err)
			}
		}

		records, err := repo.Recent(2)
		if err != nil {
			t.Fatalf("failed to list searches: %v", err)
		}

		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Query != "metal" || records[1].Query != "lofi" {
			t.Errorf("expected newest-first ordering, got %+v", records)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	second, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected sequence to increment, got %d then %d", first, second)
	}
}
