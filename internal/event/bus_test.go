package event

import (
	"sync"
	"testing"

	"aspect/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusOneGenerationLatency(t *testing.T) {
	bus := NewBus()
	assert.Empty(t, bus.Events())

	bus.Push(NavNext{})
	assert.Empty(t, bus.Events(), "pushed events are not visible before Rotate")
	assert.Equal(t, 1, bus.Pending())

	bus.Rotate()
	require.Len(t, bus.Events(), 1)
	assert.Equal(t, NavNext{}, bus.Events()[0])

	// Events pushed while consuming land in the next generation.
	bus.Push(NavPrev{})
	require.Len(t, bus.Events(), 1)
	assert.Equal(t, NavNext{}, bus.Events()[0])

	bus.Rotate()
	require.Len(t, bus.Events(), 1)
	assert.Equal(t, NavPrev{}, bus.Events()[0])

	bus.Rotate()
	assert.Empty(t, bus.Events())
}

func TestBusPreservesOrder(t *testing.T) {
	bus := NewBus()
	bus.Push(SortBy{Method: data.SortRandom})
	bus.PushAll([]Event{NavGoTo{Index: 3}, FilterText{Text: "a"}})
	bus.PushAll(nil)
	bus.Rotate()

	assert.Equal(t, []Event{
		SortBy{Method: data.SortRandom},
		NavGoTo{Index: 3},
		FilterText{Text: "a"},
	}, bus.Events())

	// Reading is repeatable.
	assert.Len(t, bus.Events(), 3)
	assert.Len(t, bus.Events(), 3)
}

func TestBusConcurrentPush(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Push(NavNext{})
			}
		}()
	}
	wg.Wait()

	bus.Rotate()
	assert.Len(t, bus.Events(), 800)
}

func TestName(t *testing.T) {
	assert.Equal(t, "NavGoTo(2)", Name(NavGoTo{Index: 2}))
	assert.Equal(t, "Load(a.png)", Name(Load{File: data.NewFile("/x/a.png")}))
	assert.Equal(t, "SetRating(none)", Name(SetRating{}))
	assert.Equal(t, "SortBy(Last Modified)", Name(SortBy{Method: data.SortByLastModified}))
}
