package cve

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/uwillc/netposture/internal/core/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepository implements ports.RecordStore using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-based record store.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

const recordColumns = `cve_id, title, platform, version_exact, version_list,
       version_start, version_end, cvss_score, severity, cvss_vector,
       fixed_in, tags, description, workaround, published_date, refs, source`

// FindByPlatform returns all records for a platform, case-insensitively.
func (r *SQLiteRepository) FindByPlatform(ctx context.Context, platform string) ([]domain.VulnerabilityRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM vuln_records
		WHERE LOWER(platform) = LOWER(?)
		ORDER BY cve_id
	`, recordColumns)

	rows, err := r.db.QueryContext(ctx, query, platform)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByID retrieves a specific record by CVE identifier, or nil if absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, cveID string) (*domain.VulnerabilityRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM vuln_records WHERE cve_id = ?`, recordColumns)

	row := r.db.QueryRowContext(ctx, query, cveID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// UpsertRecord inserts or updates a curated record.
func (r *SQLiteRepository) UpsertRecord(ctx context.Context, rec domain.VulnerabilityRecord) error {
	versionListJSON, err := json.Marshal(rec.VersionList)
	if err != nil {
		return fmt.Errorf("failed to marshal version list: %w", err)
	}
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	refsJSON, err := json.Marshal(rec.References)
	if err != nil {
		return fmt.Errorf("failed to marshal references: %w", err)
	}

	var score sql.NullFloat64
	if rec.CVSSScore != nil {
		score = sql.NullFloat64{Float64: *rec.CVSSScore, Valid: true}
	}

	query := `
		INSERT INTO vuln_records (
			cve_id, title, platform, version_exact, version_list,
			version_start, version_end, cvss_score, severity, cvss_vector,
			fixed_in, tags, description, workaround, published_date, refs, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cve_id) DO UPDATE SET
			title = excluded.title,
			platform = excluded.platform,
			version_exact = excluded.version_exact,
			version_list = excluded.version_list,
			version_start = excluded.version_start,
			version_end = excluded.version_end,
			cvss_score = excluded.cvss_score,
			severity = excluded.severity,
			cvss_vector = excluded.cvss_vector,
			fixed_in = excluded.fixed_in,
			tags = excluded.tags,
			description = excluded.description,
			workaround = excluded.workaround,
			published_date = excluded.published_date,
			refs = excluded.refs,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.Platform, rec.VersionExact, string(versionListJSON),
		rec.VersionStart, rec.VersionEnd, score, string(rec.Severity), rec.CVSSVector,
		rec.FixedIn, string(tagsJSON), rec.Description, rec.Workaround,
		rec.PublishedDate, string(refsJSON), rec.Source,
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// GetTotalCount returns the number of stored records.
func (r *SQLiteRepository) GetTotalCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vuln_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (domain.VulnerabilityRecord, error) {
	var rec domain.VulnerabilityRecord
	var score sql.NullFloat64
	var published sql.NullTime
	var versionList, tags, refs, severity sql.NullString
	var title, vExact, vStart, vEnd, vector, fixedIn, desc, workaround, source sql.NullString

	err := row.Scan(
		&rec.ID, &title, &rec.Platform, &vExact, &versionList,
		&vStart, &vEnd, &score, &severity, &vector,
		&fixedIn, &tags, &desc, &workaround, &published, &refs, &source,
	)
	if err != nil {
		return rec, err
	}

	rec.Title = title.String
	rec.VersionExact = vExact.String
	rec.VersionStart = vStart.String
	rec.VersionEnd = vEnd.String
	rec.CVSSVector = vector.String
	rec.FixedIn = fixedIn.String
	rec.Description = desc.String
	rec.Workaround = workaround.String
	rec.Source = source.String
	rec.Severity = domain.SeverityClass(severity.String)

	if score.Valid {
		s := score.Float64
		rec.CVSSScore = &s
	}
	if published.Valid {
		rec.PublishedDate = published.Time
	}
	if versionList.Valid && versionList.String != "" && versionList.String != "null" {
		if err := json.Unmarshal([]byte(versionList.String), &rec.VersionList); err != nil {
			return rec, fmt.Errorf("corrupt version list for %s: %w", rec.ID, err)
		}
	}
	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
			return rec, fmt.Errorf("corrupt tags for %s: %w", rec.ID, err)
		}
	}
	if refs.Valid && refs.String != "" && refs.String != "null" {
		if err := json.Unmarshal([]byte(refs.String), &rec.References); err != nil {
			return rec, fmt.Errorf("corrupt references for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]domain.VulnerabilityRecord, error) {
	var records []domain.VulnerabilityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
