package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/nao1215/codebook/internal/validate"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the data directory.
const FileName = "codebook.db"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores build records.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		dataset TEXT NOT NULL,
		title TEXT,
		created_at TEXT NOT NULL,
		digest TEXT NOT NULL,
		format TEXT,
		variables INTEGER DEFAULT 0,
		excluded INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0,
		warning_count INTEGER DEFAULT 0,
		issues_json TEXT NOT NULL,
		artifacts_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_builds_dataset ON builds(dataset);
	CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// BuildRecord is one recorded build.
type BuildRecord struct {
	ID        string
	Dataset   string
	Title     string
	CreatedAt time.Time
	Digest    string
	Format    string

	// Variables is the number of declared variables, Excluded how many of
	// them were rendered as placeholders.
	Variables int
	Excluded  int

	ErrorCount   int
	WarningCount int
	Issues       []validate.Issue

	// Artifacts lists where the build outputs were written or published.
	Artifacts []string
}

// ErrMissingBuildID is returned when a record has no ID.
var ErrMissingBuildID = errors.New("build record has no id")

// Record stores a build. A zero CreatedAt is set to the current time.
func (h *HistoryDB) Record(ctx context.Context, rec *BuildRecord) error {
	if rec.ID == "" {
		return ErrMissingBuildID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	issues := rec.Issues
	if issues == nil {
		issues = []validate.Issue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to serialize issues: %w", err)
	}
	artifactsJSON, err := json.Marshal(rec.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to serialize artifacts: %w", err)
	}

	query := `
	INSERT INTO builds (id, dataset, title, created_at, digest, format, variables, excluded,
		error_count, warning_count, issues_json, artifacts_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = h.db.ExecContext(ctx, query,
		rec.ID,
		rec.Dataset,
		rec.Title,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.Digest,
		rec.Format,
		rec.Variables,
		rec.Excluded,
		rec.ErrorCount,
		rec.WarningCount,
		string(issuesJSON),
		string(artifactsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	return nil
}

const selectBuild = `
	SELECT id, dataset, title, created_at, digest, format, variables, excluded,
		error_count, warning_count, issues_json, artifacts_json
	FROM builds
`

// GetBuild retrieves a build by ID. It returns nil when no build matches.
func (h *HistoryDB) GetBuild(ctx context.Context, id string) (*BuildRecord, error) {
	row := h.db.QueryRowContext(ctx, selectBuild+" WHERE id = ?", id)
	rec, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return rec, nil
}

// ListBuilds returns the builds of a dataset, newest first. A limit of 0
// or less returns every build.
func (h *HistoryDB) ListBuilds(ctx context.Context, dataset string, limit int) ([]*BuildRecord, error) {
	query := selectBuild + " WHERE dataset = ? ORDER BY created_at DESC, seq DESC"
	args := []any{dataset}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var records []*BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListDatasets returns every dataset with at least one recorded build.
func (h *HistoryDB) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT DISTINCT dataset FROM builds ORDER BY dataset")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var dataset string
		if err := rows.Scan(&dataset); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}
	return datasets, rows.Err()
}

// LatestPair returns the newest build of a dataset and the one before it.
// Either may be nil when fewer builds exist.
func (h *HistoryDB) LatestPair(ctx context.Context, dataset string) (latest, previous *BuildRecord, err error) {
	records, err := h.ListBuilds(ctx, dataset, 2)
	if err != nil {
		return nil, nil, err
	}
	switch len(records) {
	case 0:
		return nil, nil, nil
	case 1:
		return records[0], nil, nil
	default:
		return records[0], records[1], nil
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (*BuildRecord, error) {
	var (
		rec           BuildRecord
		title, format sql.NullString
		createdAt     string
		issuesJSON    string
		artifactsJSON sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.Dataset,
		&title,
		&createdAt,
		&rec.Digest,
		&format,
		&rec.Variables,
		&rec.Excluded,
		&rec.ErrorCount,
		&rec.WarningCount,
		&issuesJSON,
		&artifactsJSON,
	)
	if err != nil {
		return nil, err
	}
	rec.Title = title.String
	rec.Format = format.String
	rec.CreatedAt = parseTimestamp(createdAt)

	if err := json.Unmarshal([]byte(issuesJSON), &rec.Issues); err != nil {
		return nil, fmt.Errorf("failed to parse issues: %w", err)
	}
	if artifactsJSON.Valid && artifactsJSON.String != "" && artifactsJSON.String != "null" {
		if err := json.Unmarshal([]byte(artifactsJSON.String), &rec.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to parse artifacts: %w", err)
		}
	}
	return &rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
