package runtime

import (
	"testing"

	"github.com/aretw0/capstan/pkg/domain"
)

func TestCallStack_PushPop(t *testing.T) {
	var s callStack
	if s.current() != nil {
		t.Fatalf("expected no current task on an empty stack")
	}

	a := &domain.Task{Name: "a"}
	b := &domain.Task{Name: "b"}

	fa := s.push(a)
	if fa.Rollback != nil {
		t.Errorf("new frame should have no rollback")
	}
	s.push(b)
	if got := s.current(); got != b {
		t.Errorf("expected current task b, got %v", got)
	}
	if s.len() != 2 {
		t.Errorf("expected depth 2, got %d", s.len())
	}

	if popped := s.pop(); popped.Task != b {
		t.Errorf("expected to pop b, got %v", popped.Task)
	}
	if got := s.current(); got != a {
		t.Errorf("expected current task a, got %v", got)
	}
	s.pop()
	if s.current() != nil || s.len() != 0 {
		t.Errorf("expected empty stack")
	}
}

func TestCallStack_PopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected pop on an empty stack to panic")
		}
	}()
	var s callStack
	s.pop()
}
