package alert

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/bvision/go-bvision/postprocess"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Journal records alerts to a SQLite database
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenJournal opens or creates the journal database at path
func OpenJournal(path string) (*Journal, error) {

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")

	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	db.SetMaxOpenConns(1)

	j := &Journal{db: db}

	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return j, nil
}

// migrate creates the alerts table if it doesn't exist
func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		session TEXT NOT NULL,
		seq INTEGER NOT NULL,
		fired_at INTEGER NOT NULL,
		x REAL DEFAULT 0,
		y REAL DEFAULT 0,
		width REAL DEFAULT 0,
		height REAL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_fired_at ON alerts(fired_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Fire records the alert
func (j *Journal) Fire(ev Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO alerts (id, session, seq, fired_at, x, y, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID.String(), ev.Session, ev.Seq, ev.Time.UnixNano(),
		ev.Light.X, ev.Light.Y, ev.Light.Width, ev.Light.Height)

	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// Recent returns up to limit alerts, newest first
func (j *Journal) Recent(limit int) ([]Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`
		SELECT id, session, seq, fired_at, x, y, width, height
		FROM alerts ORDER BY fired_at DESC, seq DESC LIMIT ?
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	defer rows.Close()

	var events []Event

	for rows.Next() {
		var (
			id, session string
			seq, fired  int64
			box         postprocess.Box
		)

		if err := rows.Scan(&id, &session, &seq, &fired,
			&box.X, &box.Y, &box.Width, &box.Height); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		uid, err := uuid.Parse(id)

		if err != nil {
			return nil, fmt.Errorf("invalid alert id %q: %w", id, err)
		}

		events = append(events, Event{
			ID:      uid,
			Session: session,
			Seq:     seq,
			Time:    time.Unix(0, fired),
			Light:   box,
		})
	}

	return events, rows.Err()
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Name identifies the sink in logs and metrics
func (j *Journal) Name() string {
	return "journal"
}
