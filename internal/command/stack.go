package command

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/l1jgo/scenegraph/internal/scene"
)

// Stack is a linear undo history. The cursor points at the record that
// describes the current state; pushing after an undo discards the redo tail.
type Stack struct {
	cmds   []Command
	cursor int
	limit  int
}

// NewStack creates a stack keeping at most limit records (0 = unbounded).
func NewStack(limit int) *Stack {
	return &Stack{cursor: -1, limit: limit}
}

// Push truncates everything after the cursor and appends c.
func (st *Stack) Push(c Command) {
	st.cmds = append(st.cmds[:st.cursor+1], c)
	if st.limit > 0 && len(st.cmds) > st.limit {
		drop := len(st.cmds) - st.limit
		st.cmds = append(st.cmds[:0], st.cmds[drop:]...)
	}
	st.cursor = len(st.cmds) - 1
}

// Undo steps back one record and re-applies it. It is a no-op at the start.
func (st *Stack) Undo(s *scene.Scene) error {
	if !st.CanUndo() {
		return nil
	}
	st.cursor--
	return st.cmds[st.cursor].Apply(s)
}

// Redo steps forward one record and re-applies it. It is a no-op at the tail.
func (st *Stack) Redo(s *scene.Scene) error {
	if !st.CanRedo() {
		return nil
	}
	st.cursor++
	return st.cmds[st.cursor].Apply(s)
}

func (st *Stack) CanUndo() bool { return st.cursor > 0 }
func (st *Stack) CanRedo() bool { return st.cursor < len(st.cmds)-1 }
func (st *Stack) Len() int      { return len(st.cmds) }
func (st *Stack) Cursor() int   { return st.cursor }

// Clear drops the whole history.
func (st *Stack) Clear() {
	st.cmds = st.cmds[:0]
	st.cursor = -1
}

// record applies next after making sure the history holds the value it
// replaces, so undoing the edit restores current.
func (st *Stack) record(s *scene.Scene, current, next Command) error {
	if st.cursor < 0 || !st.cmds[st.cursor].sameTarget(current) || !st.cmds[st.cursor].samePayload(current) {
		st.Push(current)
	}
	if err := next.Apply(s); err != nil {
		return err
	}
	st.Push(next)
	return nil
}

// RecordTransform sets e's transform to t as an undoable edit.
func (st *Stack) RecordTransform(s *scene.Scene, e scene.Entity, t scene.TransformComponent) error {
	cur, ok := scene.Get[scene.TransformComponent](s, e)
	if !ok {
		return fmt.Errorf("record transform: %w", ErrMissingComponent)
	}
	return st.record(s, Transform(s, e, *cur), Transform(s, e, t))
}

// RecordSpriteColor sets e's sprite color as an undoable edit.
func (st *Stack) RecordSpriteColor(s *scene.Scene, e scene.Entity, color mgl64.Vec4) error {
	cur, ok := scene.Get[scene.SpriteRendererComponent](s, e)
	if !ok {
		return fmt.Errorf("record sprite color: %w", ErrMissingComponent)
	}
	return st.record(s, SpriteColor(s, e, cur.Color), SpriteColor(s, e, color))
}

// RecordRigidBody sets e's rigid body settings as an undoable edit.
func (st *Stack) RecordRigidBody(s *scene.Scene, e scene.Entity, b RigidBodySettings) error {
	cur, ok := scene.Get[scene.RigidBodyComponent](s, e)
	if !ok {
		return fmt.Errorf("record rigid body: %w", ErrMissingComponent)
	}
	return st.record(s, RigidBody(s, e, SettingsOf(*cur)), RigidBody(s, e, b))
}
