package system

import (
	"testing"
	"time"
)

func TestRunnerOrdersByPhase(t *testing.T) {
	r := NewRunner()
	var order []string
	add := func(p Phase, name string) {
		r.Register(Func{P: p, Fn: func(time.Duration) { order = append(order, name) }})
	}
	add(PhaseCleanup, "cleanup")
	add(PhasePhysics, "physics")
	add(PhaseScripts, "scripts-a")
	add(PhaseScripts, "scripts-b")

	r.Tick(time.Millisecond)
	want := []string{"scripts-a", "scripts-b", "physics", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
