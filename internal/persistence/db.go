// Package persistence exports simulation runs to SQLite. Runs are written
// for offline analysis only; nothing is ever loaded back into an engine.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-diffusion/internal/engine"
)

// DB wraps a SQLite connection holding exported runs.
type DB struct {
	conn *sqlx.DB
}

// RunParams are the arguments a run was started with.
type RunParams struct {
	Seed          int64
	Network       engine.Params
	MaxSteps      int
	ItemCount     int
	ItemRetention int
}

// RunRecord is one stored run.
type RunRecord struct {
	ID            string  `db:"id"`
	CreatedAt     string  `db:"created_at"` // RFC 3339, UTC
	Seed          int64   `db:"seed"`
	Entities      int     `db:"entities"`
	BPCount       int     `db:"bp_count"`
	MPCount       int     `db:"mp_count"`
	BPThreshold   float64 `db:"bp_threshold"`
	MPThreshold   float64 `db:"mp_threshold"`
	MaxSteps      int     `db:"max_steps"`
	ItemCount     int     `db:"item_count"`
	ItemRetention int     `db:"item_retention"`
	Steps         int     `db:"steps"`
	Diameter      int     `db:"diameter"`
}

// ItemRecord is the stored outcome of one item.
type ItemRecord struct {
	RunID         string `db:"run_id"`
	ItemID        int    `db:"item_id"`
	InjectedAt    int    `db:"injected_at"`
	Residence     int    `db:"residence"`
	Reached       int    `db:"reached"`
	Consults      int    `db:"consults"`
	Appreciations int    `db:"appreciations"`
	Live          bool   `db:"live"`
}

// Open opens or creates a SQLite database at the given path.
// Use ":memory:" for a scratch database.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases from splitting per connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		entities INTEGER NOT NULL,
		bp_count INTEGER NOT NULL,
		mp_count INTEGER NOT NULL,
		bp_threshold REAL NOT NULL,
		mp_threshold REAL NOT NULL,
		max_steps INTEGER NOT NULL,
		item_count INTEGER NOT NULL,
		item_retention INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		diameter INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		run_id TEXT NOT NULL REFERENCES runs(id),
		from_entity INTEGER NOT NULL,
		to_entity INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS items (
		run_id TEXT NOT NULL REFERENCES runs(id),
		item_id INTEGER NOT NULL,
		injected_at INTEGER NOT NULL,
		residence INTEGER NOT NULL,
		reached INTEGER NOT NULL,
		consults INTEGER NOT NULL,
		appreciations INTEGER NOT NULL,
		live INTEGER NOT NULL,
		PRIMARY KEY (run_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS visibility (
		run_id TEXT NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		entity_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visibility_run_step ON visibility(run_id, step);
	CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a finished run: parameters, edges, item outcomes and every
// visibility snapshot. Returns the generated run id.
func (db *DB) SaveRun(p RunParams, net *engine.Network, diameter int) (string, error) {
	runID := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs
		(id, created_at, seed, entities, bp_count, mp_count, bp_threshold, mp_threshold,
		 max_steps, item_count, item_retention, steps, diameter)
		VALUES (:id, :created_at, :seed, :entities, :bp_count, :mp_count, :bp_threshold, :mp_threshold,
		 :max_steps, :item_count, :item_retention, :steps, :diameter)`,
		RunRecord{
			ID:            runID,
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
			Seed:          p.Seed,
			Entities:      p.Network.EntityCount,
			BPCount:       p.Network.GroupCounts[0],
			MPCount:       p.Network.GroupCounts[1],
			BPThreshold:   p.Network.BPThreshold,
			MPThreshold:   p.Network.MPThreshold,
			MaxSteps:      p.MaxSteps,
			ItemCount:     p.ItemCount,
			ItemRetention: p.ItemRetention,
			Steps:         net.Steps(),
			Diameter:      diameter,
		})
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	edgeStmt, err := tx.Preparex("INSERT INTO edges (run_id, from_entity, to_entity) VALUES (?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer edgeStmt.Close()
	for _, e := range net.Edges() {
		if _, err := edgeStmt.Exec(runID, e.From, e.To); err != nil {
			return "", fmt.Errorf("insert edge %d->%d: %w", e.From, e.To, err)
		}
	}

	for _, s := range net.Summaries() {
		_, err := tx.NamedExec(`INSERT INTO items
			(run_id, item_id, injected_at, residence, reached, consults, appreciations, live)
			VALUES (:run_id, :item_id, :injected_at, :residence, :reached, :consults, :appreciations, :live)`,
			ItemRecord{
				RunID:         runID,
				ItemID:        int(s.ID),
				InjectedAt:    s.InjectedAt,
				Residence:     s.Residence,
				Reached:       s.Reached,
				Consults:      s.Consults,
				Appreciations: s.Appreciations,
				Live:          s.Live,
			})
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", s.ID, err)
		}
	}

	visStmt, err := tx.Preparex("INSERT INTO visibility (run_id, step, entity_id, item_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer visStmt.Close()
	for _, snap := range net.History() {
		for entity, ids := range snap.Visible {
			for _, id := range ids {
				if _, err := visStmt.Exec(runID, snap.Step, entity, id); err != nil {
					return "", fmt.Errorf("insert visibility step %d: %w", snap.Step, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("run exported", "run_id", runID, "items", len(net.Items()), "steps", net.Steps())
	return runID, nil
}

// Run returns a stored run.
func (db *DB) Run(id string) (RunRecord, error) {
	var r RunRecord
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	return r, err
}

// Items returns the stored item outcomes of a run ordered by item id.
func (db *DB) Items(runID string) ([]ItemRecord, error) {
	var items []ItemRecord
	err := db.conn.Select(&items,
		"SELECT * FROM items WHERE run_id = ? ORDER BY item_id",
		runID,
	)
	return items, err
}

// VisibleCounts returns, per step, how many (entity, item) pairs were visible.
func (db *DB) VisibleCounts(runID string) (map[int]int, error) {
	rows := []struct {
		Step  int `db:"step"`
		Count int `db:"n"`
	}{}
	err := db.conn.Select(&rows,
		"SELECT step, COUNT(*) AS n FROM visibility WHERE run_id = ? GROUP BY step ORDER BY step",
		runID,
	)
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.Step] = r.Count
	}
	return out, nil
}
