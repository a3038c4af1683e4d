// Package optimistic applies a state change before the write that backs it confirms, and undoes
// it when the write fails.
package optimistic

import (
	"context"

	"bassinifit/coach-app/internal/logger"

	"github.com/sirupsen/logrus"
)

// Mutation is one optimistic change. Apply and Rollback must not fail; Commit is the real write.
type Mutation struct {
	// Action names the change in logs, e.g. "toggle check-in".
	Action   string
	Fields   logrus.Fields
	Apply    func()
	Rollback func()
	Commit   func(ctx context.Context) error
}

// Run applies the change, commits it and rolls it back if the commit fails. The commit error is
// returned unchanged. Nothing is retried.
func (m Mutation) Run(ctx context.Context) error {
	if m.Apply != nil {
		m.Apply()
	}
	err := m.Commit(ctx)
	if err == nil {
		return nil
	}
	if m.Rollback != nil {
		m.Rollback()
	}
	logger.WithFields(m.Fields).WithError(err).Warnf("%s failed, optimistic change reverted", m.Action)
	return err
}
