package chat

import (
	"sync"
	"sync/atomic"
	"testing"

	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedFactory(name string) func() domain.Participant {
	return func() domain.Participant {
		return domain.Participant{Name: name, Created: domain.NewCreated(fixedNow)}
	}
}

func TestPresenceStore_UpsertIfAbsent(t *testing.T) {
	store := NewPresenceStore()

	p, created := store.UpsertIfAbsent("c1", namedFactory("Tatu anônimo"))
	require.True(t, created)
	assert.Equal(t, "c1", p.ID)
	assert.Equal(t, "Tatu anônimo", p.Name)

	again, created := store.UpsertIfAbsent("c1", namedFactory("Onça anônimo"))
	assert.False(t, created)
	assert.Equal(t, p, again, "existing participant must be returned unchanged")
	assert.Equal(t, 1, store.Len())
}

func TestPresenceStore_RefusesSystemID(t *testing.T) {
	store := NewPresenceStore()

	_, created := store.UpsertIfAbsent(domain.SystemID, namedFactory("impostor"))

	assert.False(t, created)
	assert.Equal(t, 0, store.Len())
	_, ok := store.Get(domain.SystemID)
	assert.False(t, ok)
}

func TestPresenceStore_Remove(t *testing.T) {
	tests := []struct {
		name      string
		seed      []string
		remove    string
		wantFound bool
		wantIDs   []string
	}{
		{
			name:      "remove present participant",
			seed:      []string{"c1", "c2", "c3"},
			remove:    "c2",
			wantFound: true,
			wantIDs:   []string{"c1", "c3"},
		},
		{
			name:      "remove absent participant is a no-op",
			seed:      []string{"c1"},
			remove:    "ghost",
			wantFound: false,
			wantIDs:   []string{"c1"},
		},
		{
			name:      "remove from empty store",
			remove:    "c1",
			wantFound: false,
			wantIDs:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewPresenceStore()
			for _, id := range tt.seed {
				store.UpsertIfAbsent(id, namedFactory(id))
			}

			p, found := store.Remove(tt.remove)

			assert.Equal(t, tt.wantFound, found)
			if found {
				assert.Equal(t, tt.remove, p.ID)
			}
			ids := make([]string, 0)
			for _, p := range store.Snapshot() {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPresenceStore_SnapshotIsIndependent(t *testing.T) {
	store := NewPresenceStore()
	store.UpsertIfAbsent("c1", namedFactory("a"))
	store.UpsertIfAbsent("c2", namedFactory("b"))

	snapshot := store.Snapshot()
	snapshot[0].Name = "mutated"
	store.Remove("c2")

	require.Len(t, snapshot, 2)
	p, _ := store.Get("c1")
	assert.Equal(t, "a", p.Name)
	assert.Len(t, store.Snapshot(), 1)
}

func TestPresenceStore_ConcurrentUpsertCreatesOnce(t *testing.T) {
	store := NewPresenceStore()
	var createdCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, created := store.UpsertIfAbsent("c1", namedFactory("x")); created {
				createdCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), createdCount.Load())
	assert.Equal(t, 1, store.Len())
}
