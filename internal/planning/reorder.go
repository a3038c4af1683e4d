package planning

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownPlan   = errors.New("plan is not part of the reorderable list")
	ErrNoDragActive  = errors.New("no drag in progress")
	ErrOrderMismatch = errors.New("new order must contain exactly the current plans")
)

// ReorderSession tracks one drag gesture over the normal plans of a student.
// The preview order changes on every DragOver; the committed order only changes on Drop.
type ReorderSession struct {
	committed []primitive.ObjectID
	preview   []primitive.ObjectID
	dragging  primitive.ObjectID
	active    bool
}

// NewReorderSession starts from the committed order. Special plans must not be included.
func NewReorderSession(committed []primitive.ObjectID) *ReorderSession {
	return &ReorderSession{
		committed: append([]primitive.ObjectID(nil), committed...),
		preview:   append([]primitive.ObjectID(nil), committed...),
	}
}

// Start begins dragging id.
func (s *ReorderSession) Start(id primitive.ObjectID) error {
	if indexOf(s.committed, id) < 0 {
		return ErrUnknownPlan
	}
	s.preview = append(s.preview[:0:0], s.committed...)
	s.dragging = id
	s.active = true
	return nil
}

// DragOver moves the dragged plan to the position of overID in the preview.
func (s *ReorderSession) DragOver(overID primitive.ObjectID) error {
	if !s.active {
		return ErrNoDragActive
	}
	to := indexOf(s.preview, overID)
	if to < 0 {
		return ErrUnknownPlan
	}
	s.preview = Move(s.preview, indexOf(s.preview, s.dragging), to)
	return nil
}

// Preview returns the order currently shown while dragging.
func (s *ReorderSession) Preview() []primitive.ObjectID {
	return append([]primitive.ObjectID(nil), s.preview...)
}

// Committed returns the last committed order.
func (s *ReorderSession) Committed() []primitive.ObjectID {
	return append([]primitive.ObjectID(nil), s.committed...)
}

// Drop ends the gesture. It reports whether the preview differs from the committed order and,
// if so, the new order to persist. The session then treats that order as committed.
func (s *ReorderSession) Drop() (changed bool, order []primitive.ObjectID) {
	if !s.active {
		return false, nil
	}
	s.active = false
	if equalIDs(s.preview, s.committed) {
		return false, nil
	}
	s.committed = append(s.committed[:0:0], s.preview...)
	return true, s.Committed()
}

// Cancel abandons the gesture and restores the preview to the committed order.
func (s *ReorderSession) Cancel() {
	s.active = false
	s.preview = append(s.preview[:0:0], s.committed...)
}

// Move returns a copy of ids with the element at from moved to index to. Every other element
// keeps its relative order.
func Move(ids []primitive.ObjectID, from, to int) []primitive.ObjectID {
	out := append([]primitive.ObjectID(nil), ids...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]primitive.ObjectID{item}, out[to:]...)...)
	return out
}

// ValidatePermutation checks that order holds exactly the ids of current, once each.
func ValidatePermutation(current, order []primitive.ObjectID) error {
	if len(current) != len(order) {
		return ErrOrderMismatch
	}
	seen := make(map[primitive.ObjectID]bool, len(current))
	for _, id := range current {
		seen[id] = false
	}
	for _, id := range order {
		used, ok := seen[id]
		if !ok || used {
			return ErrOrderMismatch
		}
		seen[id] = true
	}
	return nil
}

func indexOf(ids []primitive.ObjectID, id primitive.ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func equalIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
