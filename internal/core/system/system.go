package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: accept login/logout requests
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: runtime mutations
	PhasePostUpdate              // 3: derived state
	PhaseOutput                  // 4: notify clients
	PhasePersist                 // 5: deferred-op drain + periodic save
	PhaseCleanup                 // 6: unregister departed characters
)

// System is one unit of per-tick work run by the Runner.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
