// Package ledger keeps the variable layouts of past compilations in SQLite
// so that a recompile can report which variables moved.
package ledger

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/wsc/storage"
)

var log = commonlog.GetLogger("wsc.ledger")

// ErrNoSnapshot indicates the unit has never been recorded.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// Ledger is a SQLite-backed history of layouts.
type Ledger struct {
	db   *sql.DB
	path string
}

// Snapshot is one recorded layout.
type Snapshot struct {
	ID          uuid.UUID
	Unit        string
	Fingerprint string
	Created     time.Time
	Layout      *storage.Layout
}

// Open opens or creates the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS layouts (
		id TEXT PRIMARY KEY,
		unit TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		data BLOB NOT NULL,
		created INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Record stores layout as the newest snapshot of unit. A layout identical
// to the latest one is not stored again; its snapshot is returned instead.
func (l *Ledger) Record(ctx context.Context, unit string, layout *storage.Layout) (*Snapshot, error) {
	data, err := storage.MarshalLayout(layout)
	if err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}
	sum, err := layout.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprinting layout: %w", err)
	}
	fp := hex.EncodeToString(sum[:])

	prev, err := l.Latest(ctx, unit)
	switch {
	case err == nil && prev.Fingerprint == fp:
		log.Debugf("layout of %s unchanged (%s)", unit, fp[:12])
		return prev, nil
	case err != nil && !errors.Is(err, ErrNoSnapshot):
		return nil, err
	}

	s := &Snapshot{
		ID:          uuid.New(),
		Unit:        unit,
		Fingerprint: fp,
		Created:     time.Now(),
		Layout:      layout,
	}
	_, err = l.db.ExecContext(ctx,
		"INSERT INTO layouts (id, unit, fingerprint, data, created) VALUES (?, ?, ?, ?, ?)",
		s.ID.String(), unit, fp, data, s.Created.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("saving layout: %w", err)
	}
	log.Infof("recorded layout of %s as %s", unit, s.ID)
	return s, nil
}

// Latest returns the most recent snapshot of unit.
func (l *Ledger) Latest(ctx context.Context, unit string) (*Snapshot, error) {
	row := l.db.QueryRowContext(ctx,
		"SELECT id, unit, fingerprint, data, created FROM layouts WHERE unit = ? ORDER BY created DESC, rowid DESC LIMIT 1",
		unit,
	)
	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", unit, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("querying layout: %w", err)
	}
	return s, nil
}

// History returns every snapshot of unit, oldest first.
func (l *Ledger) History(ctx context.Context, unit string) ([]*Snapshot, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, unit, fingerprint, data, created FROM layouts WHERE unit = ? ORDER BY created, rowid",
		unit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying layouts: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning layout: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		id      string
		s       Snapshot
		data    []byte
		created int64
	)
	if err := row.Scan(&id, &s.Unit, &s.Fingerprint, &data, &created); err != nil {
		return nil, err
	}
	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad snapshot id %q: %w", id, err)
	}
	if s.Layout, err = storage.UnmarshalLayout(data); err != nil {
		return nil, err
	}
	s.Created = time.Unix(0, created)
	return &s, nil
}
