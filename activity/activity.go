// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package activity

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/dkemp/ballotbox/auth"
	"github.com/dkemp/ballotbox/models"
)

// Logger is the fire-and-forget activity log sink. Record never blocks the
// caller and never fails the operation being logged: entries flow through a
// buffered channel to a single writer goroutine, and overflow drops the
// entry with a warning.
type Logger struct {
	db      *sql.DB
	entries chan models.ActivityLogEntry
	done    chan struct{}
}

// New starts the writer goroutine.
func New(db *sql.DB) *Logger {
	l := &Logger{
		db:      db,
		entries: make(chan models.ActivityLogEntry, 256),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Record queues an audit entry. Safe to call from any goroutine.
func (l *Logger) Record(actor, action, details string) {
	e := models.ActivityLogEntry{
		ID:        auth.NewID(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	select {
	case l.entries <- e:
	default:
		slog.Warn("activity log full, dropping entry", "action", action, "actor", actor)
	}
}

// Close drains queued entries and stops the writer.
func (l *Logger) Close() {
	close(l.entries)
	<-l.done
}

func (l *Logger) run() {
	defer close(l.done)

	for e := range l.entries {
		_, err := l.db.Exec(`
			INSERT INTO activity_log (id, actor, action, details, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, e.ID, e.Actor, e.Action, e.Details, e.CreatedAt)

		if err != nil {
			slog.Warn("failed to write activity log entry", "action", e.Action, "error", err)
		}
	}
}
