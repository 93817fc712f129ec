package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
)

// Keyword is a stored keyword record with its latest classification.
type Keyword struct {
	keyword.Record
	ID              string             `json:"id"`
	Category        lifecycle.Category `json:"category,omitempty"`
	AlertedCategory lifecycle.Category `json:"-"`
	ImportedAt      time.Time          `json:"imported_at"`
}

// Run records one analysis pass.
type Run struct {
	ID           string    `db:"id" json:"id"`
	RanAt        time.Time `db:"ran_at" json:"ran_at"`
	KeywordCount int       `db:"keyword_count" json:"keyword_count"`
	HasYoYData   bool      `db:"has_yoy_data" json:"has_yoy_data"`
	AlertsSent   int       `db:"alerts_sent" json:"alerts_sent"`
}

// ListOpts controls keyword listing.
type ListOpts struct {
	Category lifecycle.Category
	Limit    int // 0 means no limit
}

// Store is the persistence interface.
type Store interface {
	UpsertKeywords(ctx context.Context, records []keyword.Record) (int, error)
	ListKeywords(ctx context.Context, opts ListOpts) ([]Keyword, error)
	ClearKeywords(ctx context.Context) error

	SetCategories(ctx context.Context, assignments lifecycle.Assignments) error
	CountByCategory(ctx context.Context) (map[lifecycle.Category]int, error)
	PendingAlerts(ctx context.Context, categories []lifecycle.Category) ([]Keyword, error)
	MarkAlerted(ctx context.Context, ids []string) error

	RecordRun(ctx context.Context, r *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Close() error
}

// keywordRow is the column layout of the keywords table.
type keywordRow struct {
	ID                 string          `db:"id"`
	Normalized         string          `db:"normalized"`
	Position           int64           `db:"position"`
	Keyword            string          `db:"keyword"`
	SearchVolume       float64         `db:"search_volume"`
	CPCLow             float64         `db:"cpc_low"`
	CPCHigh            float64         `db:"cpc_high"`
	CompetitionIndexed sql.NullFloat64 `db:"competition_indexed"`
	CompetitionLabel   string          `db:"competition_label"`
	YoYChange          sql.NullFloat64 `db:"yoy_change"`
	ThreeMonthChange   sql.NullFloat64 `db:"three_month_change"`
	MonthlyJSON        string          `db:"monthly_searches"`
	Category           string          `db:"category"`
	AlertedCategory    string          `db:"alerted_category"`
	ImportedAt         time.Time       `db:"imported_at"`
}

func (r *keywordRow) toKeyword() (Keyword, error) {
	k := Keyword{
		Record: keyword.Record{
			Keyword:            r.Keyword,
			SearchVolume:       r.SearchVolume,
			CPCLow:             r.CPCLow,
			CPCHigh:            r.CPCHigh,
			CompetitionIndexed: keyword.Percent{NullFloat64: r.CompetitionIndexed},
			CompetitionLabel:   keyword.ParseCompetitionLevel(r.CompetitionLabel),
			YoYChange:          keyword.Percent{NullFloat64: r.YoYChange},
			ThreeMonthChange:   keyword.Percent{NullFloat64: r.ThreeMonthChange},
		},
		ID:              r.ID,
		Category:        lifecycle.Category(r.Category),
		AlertedCategory: lifecycle.Category(r.AlertedCategory),
		ImportedAt:      r.ImportedAt,
	}
	if err := json.Unmarshal([]byte(r.MonthlyJSON), &k.MonthlySearchSeries); err != nil {
		return Keyword{}, fmt.Errorf("decode monthly searches of %q: %w", r.Keyword, err)
	}
	return k, nil
}

func toKeywords(rows []keywordRow) ([]Keyword, error) {
	out := make([]Keyword, len(rows))
	for i := range rows {
		k, err := rows[i].toKeyword()
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

// Records strips the storage fields, keeping list order.
func Records(ks []Keyword) []keyword.Record {
	out := make([]keyword.Record, len(ks))
	for i := range ks {
		out[i] = ks[i].Record
	}
	return out
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertKeywords stores the records keyed by normalized keyword text. New
// keywords are appended after the existing batch; known ones keep their place
// and get fresh metrics. It returns the number of records written.
func (s *SQLiteStore) UpsertKeywords(ctx context.Context, records []keyword.Record) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(position), 0) FROM keywords"); err != nil {
		return 0, fmt.Errorf("read batch position: %w", err)
	}

	now := time.Now().UTC()
	n := 0
	for i := range records {
		r := &records[i]
		if !r.Valid() {
			continue
		}
		monthlyJSON, _ := json.Marshal(r.MonthlySearchSeries)
		if r.MonthlySearchSeries == nil {
			monthlyJSON = []byte("[]")
		}
		next++

		_, err := tx.ExecContext(ctx, `
			INSERT INTO keywords (id, normalized, position, keyword, search_volume, cpc_low, cpc_high,
				competition_indexed, competition_label, yoy_change, three_month_change, monthly_searches, imported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(normalized) DO UPDATE SET
				keyword = excluded.keyword,
				search_volume = excluded.search_volume,
				cpc_low = excluded.cpc_low,
				cpc_high = excluded.cpc_high,
				competition_indexed = excluded.competition_indexed,
				competition_label = excluded.competition_label,
				yoy_change = excluded.yoy_change,
				three_month_change = excluded.three_month_change,
				monthly_searches = excluded.monthly_searches,
				imported_at = excluded.imported_at
		`, uuid.NewString(), keyword.NormalizeText(r.Keyword), next, r.Keyword, r.SearchVolume,
			r.CPCLow, r.CPCHigh, r.CompetitionIndexed.NullFloat64, string(r.CompetitionLabel),
			r.YoYChange.NullFloat64, r.ThreeMonthChange.NullFloat64, string(monthlyJSON), now)
		if err != nil {
			return 0, fmt.Errorf("upsert keyword %q: %w", r.Keyword, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return n, nil
}

// ListKeywords returns stored keywords in import order.
func (s *SQLiteStore) ListKeywords(ctx context.Context, opts ListOpts) ([]Keyword, error) {
	query := "SELECT * FROM keywords WHERE 1=1"
	var args []any

	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, string(opts.Category))
	}

	query += " ORDER BY position"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []keywordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}

	return toKeywords(rows)
}

func (s *SQLiteStore) ClearKeywords(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM keywords"); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	return nil
}

// SetCategories writes the category of every assigned keyword. Keywords
// missing from assignments are set to Standard.
func (s *SQLiteStore) SetCategories(ctx context.Context, assignments lifecycle.Assignments) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set categories: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE keywords SET category = ?", string(lifecycle.Standard)); err != nil {
		return fmt.Errorf("reset categories: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, "UPDATE keywords SET category = ? WHERE normalized = ?")
	if err != nil {
		return fmt.Errorf("prepare set category: %w", err)
	}
	defer stmt.Close()

	for kw, c := range assignments {
		if _, err := stmt.ExecContext(ctx, string(c), kw); err != nil {
			return fmt.Errorf("set category %q: %w", kw, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set categories: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CountByCategory(ctx context.Context) (map[lifecycle.Category]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT category, COUNT(*) as cnt FROM keywords WHERE category != '' GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count keywords by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[lifecycle.Category]int)
	for rows.Next() {
		var cat string
		var cnt int
		if err := rows.Scan(&cat, &cnt); err != nil {
			return nil, err
		}
		counts[lifecycle.Category(cat)] = cnt
	}
	return counts, rows.Err()
}

// PendingAlerts returns keywords in one of the given categories that have not
// been alerted for that category yet, largest volume first.
func (s *SQLiteStore) PendingAlerts(ctx context.Context, categories []lifecycle.Category) ([]Keyword, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	query, args, err := sqlx.In(`
		SELECT * FROM keywords
		WHERE category IN (?) AND alerted_category != category
		ORDER BY search_volume DESC, position
	`, names)
	if err != nil {
		return nil, fmt.Errorf("build pending alerts query: %w", err)
	}

	var rows []keywordRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list pending alerts: %w", err)
	}

	return toKeywords(rows)
}

// MarkAlerted records that the keywords were alerted for their current category.
func (s *SQLiteStore) MarkAlerted(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE keywords SET alerted_category = category WHERE id IN (?)", ids)
	if err != nil {
		return fmt.Errorf("build mark alerted query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}
	return nil
}

// RecordRun stores an analysis run, assigning an id and time when unset.
func (s *SQLiteStore) RecordRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RanAt.IsZero() {
		r.RanAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO analysis_runs (id, ran_at, keyword_count, has_yoy_data, alerts_sent)
		VALUES (:id, :ran_at, :keyword_count, :has_yoy_data, :alerts_sent)
	`, r)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, "SELECT * FROM analysis_runs ORDER BY ran_at DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
