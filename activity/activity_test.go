// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkemp/ballotbox/testutil"
)

func TestRecordWritesEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	log := New(db)
	log.Record("admin", "election_created", "Student Council 2026")
	log.Close() // drains the queue

	var actor, action, details string
	err := db.QueryRow(`SELECT actor, action, details FROM activity_log`).Scan(&actor, &action, &details)
	require.NoError(t, err)
	assert.Equal(t, "admin", actor)
	assert.Equal(t, "election_created", action)
	assert.Equal(t, "Student Council 2026", details)
}

func TestCloseFlushesQueue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	log := New(db)
	for i := 0; i < 50; i++ {
		log.Record("station", "ballot_cast", "voter")
	}
	log.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM activity_log`).Scan(&n))
	assert.Equal(t, 50, n)
}

// Record never blocks the caller even while the writer is busy.
func TestRecordDoesNotBlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	log := New(db)
	defer log.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			log.Record("station", "ballot_cast", "voter")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked")
	}
}
