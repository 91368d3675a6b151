package workflow

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRegistryDefaultsToUnknown(t *testing.T) {
	r := NewStatusRegistry()
	assert.Equal(t, StatusUnknown, r.Get("missing").Status)
}

func TestStatusRegistryOverwrites(t *testing.T) {
	r := NewStatusRegistry()
	r.Set("s1", StatusEntry{Status: StatusProcessing})
	assert.Equal(t, StatusProcessing, r.Get("s1").Status)

	r.Set("s1", StatusEntry{Status: StatusCompleted})
	assert.Equal(t, StatusCompleted, r.Get("s1").Status)
}

func TestStatusRegistryConcurrentAccess(t *testing.T) {
	r := NewStatusRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			r.Set(id, StatusEntry{Status: StatusProcessing})
			r.Set(id, StatusEntry{Status: StatusCompleted})
			_ = r.Get(id)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, StatusCompleted, r.Get(fmt.Sprintf("s%d", i)).Status)
	}
}
