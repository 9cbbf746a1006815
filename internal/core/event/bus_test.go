package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsVisibleOneSwapLater(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(ev PlayerLoggedOut) { got = append(got, "out") })
	Subscribe(b, func(ev PlayerSaved) { got = append(got, ev.CycleID) })

	Emit(b, PlayerSaved{CycleID: "a"})
	Emit(b, PlayerLoggedOut{GUID: 1})
	Emit(b, PlayerSaved{CycleID: "b"})
	assert.Equal(t, 3, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got)

	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []string{"a", "b", "out"}, got)

	// a swapped-out buffer is not delivered twice
	got = nil
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, got)
}
