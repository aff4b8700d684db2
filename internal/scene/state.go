package scene

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/scenegraph/internal/core/event"
)

// State is the scene's run mode.
type State uint8

const (
	Edit State = iota
	Simulate
	Play
)

func (st State) String() string {
	switch st {
	case Edit:
		return "Edit"
	case Simulate:
		return "Simulate"
	case Play:
		return "Play"
	}
	return fmt.Sprintf("State(%d)", uint8(st))
}

// State returns the current run mode.
func (s *Scene) State() State { return s.state }

// selection remembers the selected entity across a store rebuild.
type selection struct {
	name string
	id   uuid.UUID
}

func (s *Scene) rememberSelection() selection {
	e := s.Selected()
	if e == 0 {
		return selection{}
	}
	return selection{name: s.Name(e), id: s.ID(e)}
}

func (s *Scene) resolveSelection(sel selection) {
	s.selected = 0
	if sel.name != "" {
		s.selected, _ = s.FindByName(sel.name)
	} else if sel.id != uuid.Nil {
		s.selected, _ = s.FindByID(sel.id)
	}
}

// SetState switches run mode. Edit is entered from and left to both Play and
// Simulate; switching directly between those two passes through Edit.
func (s *Scene) SetState(target State) error {
	if target > Play {
		return fmt.Errorf("set state %s: %w", target, ErrInvalidTransition)
	}
	if target == s.state {
		return nil
	}
	if s.state != Edit && target != Edit {
		if err := s.SetState(Edit); err != nil {
			return err
		}
		return s.SetState(target)
	}
	if s.state == Edit {
		return s.enterRuntime(target)
	}
	return s.exitRuntime()
}

func (s *Scene) enterRuntime(target State) error {
	sel := s.rememberSelection()

	raw, err := NewSerializer(s).Serialize()
	if err != nil {
		return fmt.Errorf("enter %s: %w", target, err)
	}
	snap := New(s.res, s.physCfg, s.log.Named("snapshot"))
	if err := NewSerializer(snap).Deserialize(raw); err != nil {
		return fmt.Errorf("enter %s: %w", target, err)
	}
	s.snapshot = snap

	s.CreatePhysicsWorld()
	if target == Play {
		s.startScripts()
	}

	from := s.state
	s.state = target
	s.resolveSelection(sel)
	event.Emit(s.bus, event.StateChanged{From: from.String(), To: target.String()})
	s.log.Info("scene state changed", zap.Stringer("from", from), zap.Stringer("to", target))
	return nil
}

func (s *Scene) exitRuntime() error {
	sel := s.rememberSelection()
	from := s.state
	if from == Play {
		s.stopScripts()
	}
	s.DestroyPhysicsWorld()

	snap := s.snapshot
	s.snapshot = nil
	s.state = Edit
	defer func() {
		s.resolveSelection(sel)
		event.Emit(s.bus, event.StateChanged{From: from.String(), To: Edit.String()})
		s.log.Info("scene state changed", zap.Stringer("from", from), zap.Stringer("to", Edit))
	}()

	raw, err := NewSerializer(snap).Serialize()
	if err != nil {
		return fmt.Errorf("restore edit scene: %w", err)
	}
	s.clear()
	if err := NewSerializer(s).Deserialize(raw); err != nil {
		return fmt.Errorf("restore edit scene: %w", err)
	}
	return nil
}

// clear destroys every entity. Generations advance, so handles taken before
// the call no longer resolve.
func (s *Scene) clear() {
	s.world.Clear()
	s.names = make(map[string]Entity)
	s.ids = make(map[uuid.UUID]Entity)
	s.rootOrder = nil
	s.anonymous = nil
	s.selected = 0
}

func (s *Scene) startScripts() {
	s.Walk(func(e Entity, _ int) {
		sc, ok := Get[ScriptComponent](s, e)
		if !ok || sc.Program == nil {
			return
		}
		inst, err := sc.Program.Instantiate(s, e)
		if err != nil {
			s.log.Error("instantiate script", zap.String("entity", s.label(e)),
				zap.String("script", sc.Program.Path()), zap.Error(err))
			return
		}
		sc.Instance = inst
		if err := inst.Create(); err != nil {
			s.log.Error("script create failed", zap.String("entity", s.label(e)), zap.Error(err))
		}
	})
}

func (s *Scene) stopScripts() {
	s.Walk(func(e Entity, _ int) {
		sc, ok := Get[ScriptComponent](s, e)
		if !ok || sc.Instance == nil {
			return
		}
		inst := sc.Instance
		sc.Instance = nil
		if err := inst.Destroy(); err != nil {
			s.log.Error("script destroy failed", zap.String("entity", s.label(e)), zap.Error(err))
		}
	})
}

func (s *Scene) updateScripts(dt time.Duration) {
	if s.state != Play {
		return
	}
	type running struct {
		e    Entity
		inst ScriptInstance
	}
	var list []running
	s.Walk(func(e Entity, _ int) {
		if sc, ok := Get[ScriptComponent](s, e); ok && sc.Instance != nil {
			list = append(list, running{e, sc.Instance})
		}
	})
	for _, r := range list {
		if !s.Alive(r.e) {
			continue
		}
		if err := r.inst.Update(dt.Seconds()); err != nil {
			s.log.Error("script update failed", zap.String("entity", s.label(r.e)), zap.Error(err))
		}
	}
}

// Update advances a running scene by dt: scripts (Play only), then physics,
// then queued kills. It does nothing in Edit.
func (s *Scene) Update(dt time.Duration) {
	if s.state == Edit {
		return
	}
	s.runner.Tick(dt)
}
