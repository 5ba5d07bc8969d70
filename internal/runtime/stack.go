package runtime

import "github.com/aretw0/capstan/pkg/domain"

// CallFrame records one active invocation of a task.
type CallFrame struct {
	Task     *domain.Task
	Rollback domain.RollbackFunc

	// enlistedIn is the sequence number of the transaction whose registry holds the
	// frame. Zero means none.
	enlistedIn uint64
}

func (f *CallFrame) attach(fn domain.RollbackFunc) {
	f.Rollback = fn
}

// callStack is the LIFO of active frames. The top frame is the running task.
type callStack struct {
	frames []*CallFrame
}

func (s *callStack) push(task *domain.Task) *CallFrame {
	frame := &CallFrame{Task: task}
	s.frames = append(s.frames, frame)
	return frame
}

func (s *callStack) pop() *CallFrame {
	n := len(s.frames)
	if n == 0 {
		panic("runtime: pop on empty call stack")
	}
	frame := s.frames[n-1]
	s.frames[n-1] = nil
	s.frames = s.frames[:n-1]
	return frame
}

func (s *callStack) top() *CallFrame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *callStack) current() *domain.Task {
	if f := s.top(); f != nil {
		return f.Task
	}
	return nil
}

func (s *callStack) len() int {
	return len(s.frames)
}
