package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/codebook/internal/validate"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var (
	missingWeight = validate.Issue{Kind: validate.KindMissingInData, Severity: validate.SeverityError, Column: "weight", Message: "column not found in data"}
	unknownCode   = validate.Issue{Kind: validate.KindOutOfVocabulary, Severity: validate.SeverityWarning, Column: "county", Value: "C", Count: 1}
	extraColumn   = validate.Issue{Kind: validate.KindUndeclaredInMetadata, Severity: validate.SeverityWarning, Column: "notes"}
)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error when database does not exist")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestHistoryDB_RecordAndGet(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &BuildRecord{
		ID:           "b-1",
		Dataset:      "survey",
		Title:        "Survey Codebook",
		CreatedAt:    created,
		Digest:       "abc",
		Format:       "markdown",
		Variables:    3,
		Excluded:     1,
		ErrorCount:   1,
		WarningCount: 1,
		Issues:       []validate.Issue{missingWeight, unknownCode},
		Artifacts:    []string{"out/codebook.md"},
	}
	if err := db.Record(ctx, rec); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	got, err := db.GetBuild(ctx, "b-1")
	if err != nil {
		t.Fatalf("failed to get build: %v", err)
	}
	if got == nil {
		t.Fatal("expected build, got nil")
	}
	if got.Dataset != "survey" || got.Title != "Survey Codebook" || got.Digest != "abc" {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created %v, got %v", created, got.CreatedAt)
	}
	if got.Variables != 3 || got.Excluded != 1 || got.ErrorCount != 1 || got.WarningCount != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if len(got.Issues) != 2 || got.Issues[1] != unknownCode {
		t.Errorf("unexpected issues: %+v", got.Issues)
	}
	if len(got.Artifacts) != 1 || got.Artifacts[0] != "out/codebook.md" {
		t.Errorf("unexpected artifacts: %v", got.Artifacts)
	}

	missing, err := db.GetBuild(ctx, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestHistoryDB_RecordValidation(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, &BuildRecord{Dataset: "survey"}); !errors.Is(err, ErrMissingBuildID) {
		t.Errorf("expected ErrMissingBuildID, got %v", err)
	}

	rec := &BuildRecord{ID: "dup", Dataset: "survey", Digest: "x"}
	if err := db.Record(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if err := db.Record(ctx, &BuildRecord{ID: "dup", Dataset: "survey", Digest: "y"}); err == nil {
		t.Error("expected error for duplicate id")
	}

	got, err := db.GetBuild(ctx, "dup")
	if err != nil || got == nil {
		t.Fatalf("expected stored build, got %v / %v", got, err)
	}
	if len(got.Issues) != 0 {
		t.Errorf("expected no issues, got %#v", got.Issues)
	}
}

func TestHistoryDB_ListAndLatestPair(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []*BuildRecord{
		{ID: "s1", Dataset: "survey", CreatedAt: base, Digest: "d1"},
		{ID: "s2", Dataset: "survey", CreatedAt: base.Add(time.Hour), Digest: "d2"},
		{ID: "s3", Dataset: "survey", CreatedAt: base.Add(2 * time.Hour), Digest: "d3"},
		{ID: "c1", Dataset: "census", CreatedAt: base, Digest: "d4"},
	}
	for _, r := range records {
		if err := db.Record(ctx, r); err != nil {
			t.Fatalf("failed to record %s: %v", r.ID, err)
		}
	}

	datasets, err := db.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("failed to list datasets: %v", err)
	}
	if len(datasets) != 2 || datasets[0] != "census" || datasets[1] != "survey" {
		t.Errorf("expected [census survey], got %v", datasets)
	}

	all, err := db.ListBuilds(ctx, "survey", 0)
	if err != nil {
		t.Fatalf("failed to list builds: %v", err)
	}
	if len(all) != 3 || all[0].ID != "s3" || all[2].ID != "s1" {
		t.Errorf("expected newest first, got %d builds", len(all))
	}

	limited, err := db.ListBuilds(ctx, "survey", 1)
	if err != nil {
		t.Fatalf("failed to list builds: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 build, got %d", len(limited))
	}

	latest, previous, err := db.LatestPair(ctx, "survey")
	if err != nil {
		t.Fatalf("failed to get latest pair: %v", err)
	}
	if latest == nil || previous == nil || latest.ID != "s3" || previous.ID != "s2" {
		t.Errorf("expected s3 and s2, got %v and %v", latest, previous)
	}

	latest, previous, err = db.LatestPair(ctx, "census")
	if err != nil {
		t.Fatalf("failed to get latest pair: %v", err)
	}
	if latest == nil || latest.ID != "c1" || previous != nil {
		t.Errorf("expected only c1, got %v and %v", latest, previous)
	}

	latest, previous, err = db.LatestPair(ctx, "unknown")
	if err != nil || latest != nil || previous != nil {
		t.Errorf("expected nothing for unknown dataset, got %v %v %v", latest, previous, err)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	previous := &BuildRecord{ID: "a", Digest: "d1", Issues: []validate.Issue{missingWeight, unknownCode}}
	resolvedCode := unknownCode
	resolvedCode.Count = 5

	tests := []struct {
		name          string
		previous      *BuildRecord
		current       *BuildRecord
		wantNew       []validate.Issue
		wantResolved  []validate.Issue
		wantUnchanged int
		wantDigest    bool
	}{
		{
			name:          "one resolved one new",
			previous:      previous,
			current:       &BuildRecord{ID: "b", Digest: "d2", Issues: []validate.Issue{unknownCode, extraColumn}},
			wantNew:       []validate.Issue{extraColumn},
			wantResolved:  []validate.Issue{missingWeight},
			wantUnchanged: 1,
			wantDigest:    true,
		},
		{
			name:          "count change is not a new issue",
			previous:      previous,
			current:       &BuildRecord{ID: "b", Digest: "d1", Issues: []validate.Issue{missingWeight, resolvedCode}},
			wantUnchanged: 2,
		},
		{
			name:    "first build",
			current: &BuildRecord{ID: "b", Issues: []validate.Issue{missingWeight}},
			wantNew: []validate.Issue{missingWeight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Compare(tt.previous, tt.current)
			if !equalIssues(c.New, tt.wantNew) {
				t.Errorf("expected new %+v, got %+v", tt.wantNew, c.New)
			}
			if !equalIssues(c.Resolved, tt.wantResolved) {
				t.Errorf("expected resolved %+v, got %+v", tt.wantResolved, c.Resolved)
			}
			if c.Unchanged != tt.wantUnchanged {
				t.Errorf("expected %d unchanged, got %d", tt.wantUnchanged, c.Unchanged)
			}
			if c.DigestChanged != tt.wantDigest {
				t.Errorf("expected digest changed %v, got %v", tt.wantDigest, c.DigestChanged)
			}
			if c.HasChanges() != (len(tt.wantNew)+len(tt.wantResolved) > 0) {
				t.Error("HasChanges disagrees with the diff")
			}
		})
	}
}

func equalIssues(a, b []validate.Issue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
