package tracking

import (
	"sort"
	"sync"
	"testing"

	"github.com/banshee-data/boxtrack/internal/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDRegistry_PerClassCounters(t *testing.T) {
	t.Parallel()

	reg := NewIDRegistry()
	assert.Equal(t, 0, reg.Last("car"))
	assert.Equal(t, 1, reg.Next("car"))
	assert.Equal(t, 2, reg.Next("car"))
	assert.Equal(t, 1, reg.Next("truck"))
	assert.Equal(t, 3, reg.Next("car"))
	assert.Equal(t, 3, reg.Last("car"))

	want := map[string]int{"car": 3, "truck": 1}
	if diff := cmp.Diff(want, reg.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestIDRegistry_ZeroValue(t *testing.T) {
	t.Parallel()

	var reg IDRegistry
	assert.Equal(t, 0, reg.Last("car"))
	assert.Equal(t, 1, reg.Next("car"))
}

func TestIDRegistry_Reset(t *testing.T) {
	t.Parallel()

	reg := NewIDRegistry()
	e1 := newTestEstimator(t, reg, det("car", 0, 0, 10, 10))
	newTestEstimator(t, reg, det("car", 0, 0, 10, 10))

	reg.Reset()
	assert.Empty(t, reg.Snapshot())

	e3 := newTestEstimator(t, reg, det("car", 0, 0, 10, 10))
	assert.Equal(t, 1, e3.ID())
	assert.Equal(t, 1, e1.ID(), "existing tracks keep their identity")
}

func TestIDRegistry_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	reg := NewIDRegistry()
	reg.Next("car")
	snap := reg.Snapshot()
	snap["car"] = 99
	assert.Equal(t, 1, reg.Last("car"))
}

func TestIDRegistry_ConcurrentConstruction(t *testing.T) {
	t.Parallel()

	const (
		workers   = 8
		perWorker = 50
	)
	reg := NewIDRegistry()
	classes := []string{"car", "truck"}

	var (
		mu  sync.Mutex
		ids = map[string][]int{}
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				class := classes[(w+i)%len(classes)]
				e, err := NewEstimator(reg, geom.Detection{ClassName: class, Box: geom.BoundingBox{Width: 4, Height: 2}})
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids[class] = append(ids[class], e.ID())
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, class := range classes {
		got := ids[class]
		sort.Ints(got)
		for i, id := range got {
			require.Equal(t, i+1, id, "class %s: ids must be unique and gap-free", class)
		}
		total += len(got)
		assert.Equal(t, len(got), reg.Last(class))
	}
	assert.Equal(t, workers*perWorker, total)
}
