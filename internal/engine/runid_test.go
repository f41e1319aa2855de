package engine

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Format(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_TimeOrdered(t *testing.T) {
	g := UUIDv7Generator{}
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = g.Generate()
	}
	assert.True(t, sort.StringsAreSorted(ids), "UUIDv7 strings sort by creation")
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	g := UUIDv7Generator{}
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}

func TestFixedGenerator_Sequence(t *testing.T) {
	g := NewFixedGenerator("run-1", "run-2")

	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-2", g.Generate())
	assert.Equal(t, "run-2-3", g.Generate())
	assert.Equal(t, "run-2-4", g.Generate())
}

func TestFixedGenerator_Empty(t *testing.T) {
	g := NewFixedGenerator()
	assert.Equal(t, "run-1", g.Generate())
}
