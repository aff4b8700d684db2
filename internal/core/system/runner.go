package system

import "time"

// Runner executes systems in phase order each update. Systems sharing a
// phase run in registration order.
type Runner struct {
	systems []System
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 4)}
}

// Register inserts s after every system of the same or an earlier phase.
func (r *Runner) Register(s System) {
	i := len(r.systems)
	for i > 0 && r.systems[i-1].Phase() > s.Phase() {
		i--
	}
	r.systems = append(r.systems, nil)
	copy(r.systems[i+1:], r.systems[i:])
	r.systems[i] = s
}

func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) Tick(dt time.Duration) {
	for _, s := range r.systems {
		s.Update(dt)
	}
}
