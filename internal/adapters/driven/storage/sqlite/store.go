package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trenlab/kontent-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed implementation of the metadata store. A single
// database file holds the taxonomy and all content records.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.Store = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kontent/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kontent", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// mapConstraintErr translates SQLite constraint failures into domain
// errors. Natural-key collisions surface as ErrAlreadyExists; dangling
// foreign keys as ErrNotFound.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return domain.ErrAlreadyExists
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return domain.ErrNotFound
	}
	return err
}

// ==================== Taxonomy Store ====================

// FindStationByName looks a station up by its exact name.
func (s *Store) FindStationByName(ctx context.Context, name string) (*domain.Station, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, sort_order
		FROM stations WHERE name = ?
	`, name)

	var st domain.Station
	if err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning station: %w", err)
	}
	return &st, nil
}

// CreateStation persists a new station.
func (s *Store) CreateStation(ctx context.Context, station *domain.Station) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stations (id, name, description, sort_order)
		VALUES (?, ?, ?, ?)
	`, station.ID, station.Name, station.Description, station.Order)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("creating station: %w", err)
	}
	return nil
}

// ListStations returns all stations ordered by sort order then name.
func (s *Store) ListStations(ctx context.Context) ([]domain.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, sort_order
		FROM stations ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var stations []domain.Station //nolint:prealloc // size unknown from query
	for rows.Next() {
		var st domain.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Order); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}
	return stations, nil
}

// DeleteStation removes a station by id.
func (s *Store) DeleteStation(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM stations WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting station: %w", err)
	}
	return nil
}

// FindSectionByTitleAndStation looks a section up by its natural key.
func (s *Store) FindSectionByTitleAndStation(ctx context.Context, title, stationID string) (*domain.Section, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, sort_order, station_id
		FROM sections WHERE title = ? AND station_id = ?
	`, title, stationID)

	var sec domain.Section
	if err := row.Scan(&sec.ID, &sec.Title, &sec.Description, &sec.Order, &sec.StationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning section: %w", err)
	}
	return &sec, nil
}

// CreateSection persists a new section.
func (s *Store) CreateSection(ctx context.Context, section *domain.Section) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sections (id, title, description, sort_order, station_id)
		VALUES (?, ?, ?, ?, ?)
	`, section.ID, section.Title, section.Description, section.Order, section.StationID)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("creating section: %w", err)
	}
	return nil
}

// ListSections returns the sections of a station ordered by sort order.
func (s *Store) ListSections(ctx context.Context, stationID string) ([]domain.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, sort_order, station_id
		FROM sections WHERE station_id = ? ORDER BY sort_order, title
	`, stationID)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sec domain.Section
		if err := rows.Scan(&sec.ID, &sec.Title, &sec.Description, &sec.Order, &sec.StationID); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

// DeleteSection removes a section by id.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sections WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	return nil
}

// ==================== Material Store ====================

// CreateMaterial persists a new material. CreatedAt is assigned from the
// wall clock, bumped past the current maximum inside the insert
// transaction so that insertion order is strictly increasing even when
// two inserts land within the same clock tick.
func (s *Store) CreateMaterial(ctx context.Context, material *domain.Material) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var maxNs sql.NullInt64
	row := tx.QueryRowContext(ctx, "SELECT MAX(created_at_ns) FROM materials")
	if err := row.Scan(&maxNs); err != nil {
		return fmt.Errorf("getting max created_at: %w", err)
	}

	ns := material.CreatedAt.UnixNano()
	if material.CreatedAt.IsZero() {
		ns = time.Now().UTC().UnixNano()
	}
	if maxNs.Valid && ns <= maxNs.Int64 {
		ns = maxNs.Int64 + 1
	}
	material.CreatedAt = time.Unix(0, ns).UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO materials (id, section_id, title, content, type, sort_order, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, material.ID, material.SectionID, material.Title, material.Content,
		string(material.Type), material.Order, ns)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("creating material: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing material: %w", err)
	}
	return nil
}

// ListAllMaterials returns every material joined with its section and
// station, ordered by creation instant. The joins are outer so that a
// material whose section row is missing still shows up, with empty
// section and station names; reconciliation warns about such records
// instead of touching them.
func (s *Store) ListAllMaterials(ctx context.Context) ([]domain.MaterialSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.section_id, m.title, m.content, m.type, m.sort_order, m.created_at_ns,
		       COALESCE(sec.title, ''), COALESCE(st.id, ''), COALESCE(st.name, '')
		FROM materials m
		LEFT JOIN sections sec ON sec.id = m.section_id
		LEFT JOIN stations st ON st.id = sec.station_id
		ORDER BY m.created_at_ns
	`)
	if err != nil {
		return nil, fmt.Errorf("querying materials: %w", err)
	}
	defer rows.Close()

	var summaries []domain.MaterialSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sum domain.MaterialSummary
		var typ string
		var ns int64
		if err := rows.Scan(&sum.ID, &sum.SectionID, &sum.Title, &sum.Content,
			&typ, &sum.Order, &ns, &sum.SectionTitle, &sum.StationID, &sum.StationName); err != nil {
			return nil, fmt.Errorf("scanning material: %w", err)
		}
		sum.Type = domain.MaterialType(typ)
		sum.CreatedAt = time.Unix(0, ns).UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating materials: %w", err)
	}
	return summaries, nil
}

// ListSectionMaterials returns the materials of one section ordered by
// sort order.
func (s *Store) ListSectionMaterials(ctx context.Context, sectionID string) ([]domain.Material, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section_id, title, content, type, sort_order, created_at_ns
		FROM materials WHERE section_id = ? ORDER BY sort_order, created_at_ns
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("querying section materials: %w", err)
	}
	defer rows.Close()

	var materials []domain.Material //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Material
		var typ string
		var ns int64
		if err := rows.Scan(&m.ID, &m.SectionID, &m.Title, &m.Content, &typ, &m.Order, &ns); err != nil {
			return nil, fmt.Errorf("scanning material: %w", err)
		}
		m.Type = domain.MaterialType(typ)
		m.CreatedAt = time.Unix(0, ns).UTC()
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating materials: %w", err)
	}
	return materials, nil
}

// MaxOrder returns the maximum sort order within a section, or -1 when
// the section holds no materials.
func (s *Store) MaxOrder(ctx context.Context, sectionID string) (int, error) {
	var max sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT MAX(sort_order) FROM materials WHERE section_id = ?", sectionID)
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("getting max order: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// UpdateMaterial applies the non-nil fields of upd to a material.
func (s *Store) UpdateMaterial(ctx context.Context, id string, upd driven.MaterialUpdate) error {
	var sets []string
	var args []any
	if upd.SectionID != nil {
		sets = append(sets, "section_id = ?")
		args = append(args, *upd.SectionID)
	}
	if upd.Order != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *upd.Order)
	}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE materials SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("updating material: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMaterial removes a material by id.
func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM materials WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting material: %w", err)
	}
	return nil
}
