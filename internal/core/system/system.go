package system

import "time"

// Phase defines execution ordering within a single scene update.
type Phase int

const (
	PhaseScripts Phase = iota // 0: script Update hooks (Play only)
	PhasePhysics              // 1: fixed-step simulation + interpolation write-back
	PhaseCleanup              // 2: destroy queued entities
)

// System is the interface every scene system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function to a System.
type Func struct {
	P  Phase
	Fn func(dt time.Duration)
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Update(dt time.Duration) { f.Fn(dt) }
