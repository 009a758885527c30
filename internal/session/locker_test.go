package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := session.NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("s1")
			defer km.Unlock("s1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := session.NewKeyedMutex()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		// Must not block on a different key.
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done
	km.Unlock("a")
}

func TestMemoryStore_UpsertAndIsolation(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	// Unknown session loads as a zero-valued session.
	s, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.SessionID)
	assert.Empty(t, s.State)
	assert.Empty(t, s.TempData)

	s.State = "collecting_phone"
	s.TempData[session.FieldName] = "Ahmed Ben Ali"
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "collecting_phone", loaded.State)
	assert.Equal(t, "Ahmed Ben Ali", loaded.TempData[session.FieldName])

	// Mutating the loaded copy must not leak into the store.
	loaded.TempData[session.FieldPhone] = "55123456"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, again.TempData, session.FieldPhone)
}
