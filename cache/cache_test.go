// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), 10*time.Millisecond)

	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Delete(ctx, "k")

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	m.Delete(ctx, "missing")
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("old"), time.Minute)
	m.Set(ctx, "k", []byte("new"), time.Minute)

	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set(ctx, "k", []byte("v"), time.Minute)
				m.Get(ctx, "k")
				m.Delete(ctx, "k")
			}
		}()
	}
	wg.Wait()
}
