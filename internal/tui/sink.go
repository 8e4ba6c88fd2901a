package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/model"
)

// program is the subset of *tea.Program the sink needs.
type program interface {
	Send(tea.Msg)
}

// ProgramSink forwards engine events into a running Bubbletea program.
// tea.Program.Send is safe to call from any goroutine, so the sink
// satisfies the executor's concurrency contract without locking.
type ProgramSink struct {
	program program
}

var _ engine.EventSink = (*ProgramSink)(nil)

// NewProgramSink wraps a Bubbletea program as an engine event sink.
func NewProgramSink(p program) *ProgramSink {
	return &ProgramSink{program: p}
}

// ResourceStarted implements engine.EventSink.
func (s *ProgramSink) ResourceStarted(address model.Address) {
	s.program.Send(ResourceStartMsg{Address: address, Time: time.Now()})
}

// ResourceCompleted implements engine.EventSink.
func (s *ProgramSink) ResourceCompleted(result model.ResourceResult) {
	s.program.Send(ResourceCompleteMsg{Result: result})
}

// RunCompleted implements engine.EventSink.
func (s *ProgramSink) RunCompleted(summary model.RunSummary) {
	s.program.Send(RunCompleteMsg{Summary: summary})
}
