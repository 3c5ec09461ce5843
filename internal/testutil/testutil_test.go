package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunIDGenerator(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-123")
	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())

	assert.Equal(t, DefaultRunID, NewFixedRunIDGenerator("").Generate())
}

func TestFixedRunIDGenerator_ConcurrentUse(t *testing.T) {
	gen := NewFixedRunIDGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestDiscardLogger(t *testing.T) {
	log := DiscardLogger()
	assert.NotNil(t, log)
	log.Info("dropped", "key", "value")
}
