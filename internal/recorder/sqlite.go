package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"FXSentinel/internal/model"
	"FXSentinel/internal/structure"
)

// SQLiteRecorder persists report history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			category  TEXT,
			symbols   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON report_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS structure_snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES report_runs(id),
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			timeframe  TEXT NOT NULL,
			trend      TEXT NOT NULL,
			h1_time    INTEGER, h1_price REAL,
			h2_time    INTEGER, h2_price REAL,
			l1_time    INTEGER, l1_price REAL,
			l2_time    INTEGER, l2_price REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_structure_symbol ON structure_snapshots(symbol, timeframe, timestamp)`,

		`CREATE TABLE IF NOT EXISTS report_rows (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES report_runs(id),
			symbol TEXT NOT NULL,
			cells  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON report_rows(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// cellSep joins cells in report_rows; cells themselves contain newlines.
const cellSep = "\x1f"

// RecordRun writes a run with all its rows and snapshots in one transaction.
func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	symbols := make([]string, len(run.Rows))
	for i, row := range run.Rows {
		symbols[i] = row.Symbol
	}
	ts := run.Timestamp.Unix()
	if _, err := tx.Exec(`INSERT INTO report_runs (id, timestamp, category, symbols) VALUES (?,?,?,?)`,
		run.ID, ts, run.Category, strings.Join(symbols, ",")); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range run.Rows {
		if _, err := tx.Exec(`INSERT INTO report_rows (run_id, symbol, cells) VALUES (?,?,?)`,
			run.ID, row.Symbol, strings.Join(row.Cells, cellSep)); err != nil {
			return fmt.Errorf("insert row %s: %w", row.Symbol, err)
		}
		for _, s := range row.Structures {
			h1, h2 := extremumAt(s.Highs, 0), extremumAt(s.Highs, 1)
			l1, l2 := extremumAt(s.Lows, 0), extremumAt(s.Lows, 1)
			if _, err := tx.Exec(`INSERT INTO structure_snapshots
				(run_id, timestamp, symbol, timeframe, trend,
				 h1_time, h1_price, h2_time, h2_price,
				 l1_time, l1_price, l2_time, l2_price)
				VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
				run.ID, ts, row.Symbol, string(s.Timeframe), string(s.Trend),
				h1.time, h1.price, h2.time, h2.price,
				l1.time, l1.price, l2.time, l2.price,
			); err != nil {
				return fmt.Errorf("insert structure %s %s: %w", row.Symbol, s.Timeframe, err)
			}
		}
	}
	return tx.Commit()
}

type nullExtremum struct {
	time  sql.NullInt64
	price sql.NullFloat64
}

func extremumAt(xs []structure.Extremum, i int) nullExtremum {
	if i >= len(xs) {
		return nullExtremum{}
	}
	return nullExtremum{
		time:  sql.NullInt64{Int64: xs[i].Time.Unix(), Valid: true},
		price: sql.NullFloat64{Float64: xs[i].Price, Valid: true},
	}
}

func (n *nullExtremum) appendTo(xs []structure.Extremum) []structure.Extremum {
	if !n.time.Valid || !n.price.Valid {
		return xs
	}
	return append(xs, structure.Extremum{Position: -1, Time: time.Unix(n.time.Int64, 0).UTC(), Price: n.price.Float64})
}

// StructureHistory returns up to limit snapshots for symbol at tf, newest first.
// Positions are not persisted and come back as -1.
func (r *SQLiteRecorder) StructureHistory(symbol string, tf model.Timeframe, limit int) ([]StructureSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, trend,
			h1_time, h1_price, h2_time, h2_price,
			l1_time, l1_price, l2_time, l2_price
		FROM structure_snapshots
		WHERE symbol = ? AND timeframe = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, symbol, string(tf), limit)
	if err != nil {
		return nil, fmt.Errorf("query structure history: %w", err)
	}
	defer rows.Close()

	var out []StructureSnapshot
	for rows.Next() {
		var (
			s              StructureSnapshot
			ts             int64
			trend          string
			h1, h2, l1, l2 nullExtremum
		)
		if err := rows.Scan(&s.RunID, &ts, &trend,
			&h1.time, &h1.price, &h2.time, &h2.price,
			&l1.time, &l1.price, &l2.time, &l2.price); err != nil {
			return nil, err
		}
		s.Timestamp = time.Unix(ts, 0).UTC()
		s.Symbol, s.Timeframe, s.Trend = symbol, tf, model.Trend(trend)
		s.Highs = h2.appendTo(h1.appendTo(nil))
		s.Lows = l2.appendTo(l1.appendTo(nil))
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logrus.Info("closing sqlite recorder")
	return r.db.Close()
}
