package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db      *sql.DB
	session string
	log     logger.Logger
	mu      sync.Mutex
}

// NewRepository opens (or creates) the journal database at cfg.DBPath.
func NewRepository(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if !cfg.Enabled() {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_busy_timeout=1000")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}
	// One writer; events are rare.
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	r := &sqliteRepository{
		db:      db,
		session: uuid.NewString(),
		log:     log,
	}

	log.Info().
		Str("path", cfg.DBPath).
		Str("session", r.session).
		Int("schema_version", SchemaVersion).
		Msg("Power event journal opened")

	return r, nil
}

func (r *sqliteRepository) Session() string {
	return r.session
}

func (r *sqliteRepository) Record(ctx context.Context, ev Event) error {
	errFactory := errors.New()

	if ev.Kind == "" {
		return errFactory.New(ErrInvalidEvent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		r.session,
		ev.Timestamp.UnixMilli(),
		string(ev.Kind),
		ev.State,
		int64(ev.Countdown),
		ev.Voltage,
		ev.Percent,
	)
	if err != nil {
		if ctx.Err() != nil {
			return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
		}
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

// Events returns the events of a session in insertion order.
func (r *sqliteRepository) Events(ctx context.Context, session string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `
        SELECT timestamp, kind, state, countdown, voltage, percent
        FROM power_events
        WHERE session = ?
        ORDER BY id`, session)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev   Event
			ms   int64
			kind string
		)
		if err := rows.Scan(&ms, &kind, &ev.State, &ev.Countdown, &ev.Voltage, &ev.Percent); err != nil {
			return nil, errors.New().Wrap(ErrStorageAccess, err)
		}
		ev.Timestamp = timeFromMillis(ms)
		ev.Kind = Kind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return events, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.log.Debug().Err(err).Msg("Failed to checkpoint journal")
	}

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	r.log.Debug().Msg("Power event journal closed")

	return nil
}
