// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed lookups in a local SQLite database
// so past report cards can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/report-card/internal/lookup"
	"github.com/pdiddy/report-card/pkg/types"
)

const (
	defaultDir       = "history"
	dbFile           = "history.db"
	defaultListLimit = 20
	timestampLayout  = time.RFC3339Nano
)

// ErrNotFound is returned when a lookup id does not exist.
var ErrNotFound = errors.New("lookup not found")

// Entry is one recorded lookup.
type Entry struct {
	ID                 int64                 `json:"id" yaml:"id"`
	Query              string                `json:"query" yaml:"query"`
	RegistrationNumber string                `json:"registration_number" yaml:"registration_number"`
	StudentName        string                `json:"student_name" yaml:"student_name"`
	Outcome            lookup.Outcome        `json:"outcome" yaml:"outcome"`
	CGPA               float64               `json:"cgpa" yaml:"cgpa"`
	TotalCredits       float64               `json:"total_credits" yaml:"total_credits"`
	SubjectCount       int                   `json:"subject_count" yaml:"subject_count"`
	LookedUpAt         time.Time             `json:"looked_up_at" yaml:"looked_up_at"`
	Subjects           []types.SubjectRecord `json:"subjects,omitempty" yaml:"subjects,omitempty"`
}

// FromState builds the entry for a lookup that just resolved to s.
func FromState(s lookup.State, at time.Time) Entry {
	return Entry{
		Query:              s.Query,
		RegistrationNumber: s.RegistrationNumber,
		StudentName:        s.StudentName,
		Outcome:            s.Outcome,
		CGPA:               s.CGPA,
		TotalCredits:       s.Summary.TotalCredits,
		SubjectCount:       len(s.Records),
		LookedUpAt:         at.UTC(),
		Subjects:           s.Records,
	}
}

// Store manages the history SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			reg_no TEXT,
			student_name TEXT,
			outcome TEXT NOT NULL,
			cgpa REAL,
			total_credits REAL,
			subject_count INTEGER,
			looked_up_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			lookup_id INTEGER NOT NULL REFERENCES lookups(id) ON DELETE CASCADE,
			serial_number INTEGER,
			reg_no TEXT,
			student_name TEXT,
			subject_code TEXT,
			subject_name TEXT,
			subject_type TEXT,
			credits TEXT,
			grade TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_reg_no ON lookups(reg_no)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_lookup_id ON subjects(lookup_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e with its subjects and returns the new id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO lookups (query, reg_no, student_name, outcome, cgpa, total_credits, subject_count, looked_up_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Query, e.RegistrationNumber, e.StudentName, string(e.Outcome),
		e.CGPA, e.TotalCredits, e.SubjectCount, e.LookedUpAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting lookup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading lookup id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO subjects (lookup_id, serial_number, reg_no, student_name, subject_code, subject_name, subject_type, credits, grade)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range e.Subjects {
		_, err := stmt.ExecContext(ctx,
			id, r.SerialNumber, r.RegistrationNumber, r.StudentName,
			r.SubjectCode, r.SubjectName, r.SubjectType, string(r.Credits), r.Grade,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting subject %s: %w", r.SubjectCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing lookup: %w", err)
	}
	return id, nil
}

// ListOptions filters List.
type ListOptions struct {
	// RegistrationNumber restricts results to one student.
	RegistrationNumber string

	// Limit caps the number of entries. Zero uses the default (20); a
	// negative value returns everything.
	Limit int

	// WithSubjects loads each entry's subject rows.
	WithSubjects bool
}

// List returns recorded lookups, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, query, reg_no, student_name, outcome, cgpa, total_credits, subject_count, looked_up_at
		FROM lookups WHERE 1=1`
	var args []any
	if opts.RegistrationNumber != "" {
		query += ` AND reg_no = ?`
		args = append(args, opts.RegistrationNumber)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	if opts.WithSubjects {
		for i := range entries {
			subjects, err := s.subjects(ctx, entries[i].ID)
			if err != nil {
				return nil, err
			}
			entries[i].Subjects = subjects
		}
	}
	return entries, nil
}

// Get returns one lookup with its subjects.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, reg_no, student_name, outcome, cgpa, total_credits, subject_count, looked_up_at
		 FROM lookups WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	e.Subjects, err = s.subjects(ctx, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) subjects(ctx context.Context, lookupID int64) ([]types.SubjectRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT serial_number, reg_no, student_name, subject_code, subject_name, subject_type, credits, grade
		 FROM subjects WHERE lookup_id = ? ORDER BY rowid`, lookupID)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer rows.Close()

	var out []types.SubjectRecord
	for rows.Next() {
		var (
			r       types.SubjectRecord
			credits string
		)
		if err := rows.Scan(&r.SerialNumber, &r.RegistrationNumber, &r.StudentName,
			&r.SubjectCode, &r.SubjectName, &r.SubjectType, &credits, &r.Grade); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		r.Credits = types.Credits(credits)
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e          Entry
		regNo      sql.NullString
		name       sql.NullString
		outcome    string
		cgpa       sql.NullFloat64
		credits    sql.NullFloat64
		count      sql.NullInt64
		lookedUpAt string
	)
	if err := row.Scan(&e.ID, &e.Query, &regNo, &name, &outcome, &cgpa, &credits, &count, &lookedUpAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning lookup: %w", err)
	}
	e.RegistrationNumber = regNo.String
	e.StudentName = name.String
	e.Outcome = lookup.Outcome(outcome)
	e.CGPA = cgpa.Float64
	e.TotalCredits = credits.Float64
	e.SubjectCount = int(count.Int64)

	t, err := time.Parse(timestampLayout, lookedUpAt)
	if err != nil {
		return e, fmt.Errorf("parsing timestamp of lookup %d: %w", e.ID, err)
	}
	e.LookedUpAt = t
	return e, nil
}
