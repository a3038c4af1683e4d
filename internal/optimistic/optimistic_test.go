package optimistic

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"bassinifit/coach-app/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestMutation_Run(t *testing.T) {
	errWrite := errors.New("write failed")
	tests := []struct {
		name      string
		commitErr error
		wantState string
		wantCalls []string
	}{
		{"commit succeeds", nil, "new", []string{"apply", "commit"}},
		{"commit fails", errWrite, "old", []string{"apply", "commit", "rollback"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := "old"
			var calls []string
			m := Mutation{
				Action: "rename",
				Apply: func() {
					calls = append(calls, "apply")
					state = "new"
				},
				Rollback: func() {
					calls = append(calls, "rollback")
					state = "old"
				},
				Commit: func(context.Context) error {
					calls = append(calls, "commit")
					if state != "new" {
						t.Error("commit ran before apply")
					}
					return tt.commitErr
				},
			}

			err := m.Run(context.Background())
			if !errors.Is(err, tt.commitErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.commitErr)
			}
			if state != tt.wantState {
				t.Errorf("state = %q, want %q", state, tt.wantState)
			}
			if !reflect.DeepEqual(calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
			}
		})
	}
}

func TestMutation_RunWithoutApply(t *testing.T) {
	committed := false
	err := Mutation{Commit: func(context.Context) error {
		committed = true
		return nil
	}}.Run(context.Background())
	if err != nil || !committed {
		t.Errorf("Run() = %v, committed = %v", err, committed)
	}
}
