package pipeline

import (
	"encoding/json"
	"sync"
	"time"
)

// Stage names, in execution order.
const (
	StageParse     = "parse"
	StageJoin      = "join"
	StageAggregate = "aggregate"
	StageDerive    = "derive"
)

// StepStatus represents the current status of a stage
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a stage
type StepState struct {
	mu        sync.RWMutex
	id        string
	status    StepStatus
	startTime time.Time
	endTime   time.Time
	message   string
	err       error
	counts    map[string]int
}

// NewStepState creates a new stage state in the pending status
func NewStepState(id string) *StepState {
	return &StepState{
		id:     id,
		status: StepStatusPending,
		counts: make(map[string]int),
	}
}

// ID returns the stage name
func (s *StepState) ID() string {
	return s.id
}

// Start marks the stage as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startTime = time.Now()
	s.status = StepStatusActive
}

// Complete marks the stage as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endTime = time.Now()
	s.status = StepStatusCompleted
}

// Fail marks the stage as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endTime = time.Now()
	s.status = StepStatusFailed
	s.err = err
}

// Skip marks the stage as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StepStatusSkipped
	s.message = reason
}

// SetCount records a named row or item count produced by the stage
func (s *StepState) SetCount(name string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[name] = n
}

// Status returns the current status
func (s *StepState) Status() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the failure cause, if any
func (s *StepState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Count returns a recorded count
func (s *StepState) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[name]
}

// Duration returns the duration of the stage execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.startTime.IsZero() {
		return 0
	}
	if !s.endTime.IsZero() {
		return s.endTime.Sub(s.startTime)
	}
	return time.Since(s.startTime)
}

// MarshalJSON renders a point-in-time view of the stage
func (s *StepState) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := struct {
		ID         string         `json:"id"`
		Status     StepStatus     `json:"status"`
		DurationMS int64          `json:"duration_ms"`
		Message    string         `json:"message,omitempty"`
		Error      string         `json:"error,omitempty"`
		Counts     map[string]int `json:"counts,omitempty"`
	}{
		ID:      s.id,
		Status:  s.status,
		Message: s.message,
		Counts:  s.counts,
	}
	if !s.startTime.IsZero() && !s.endTime.IsZero() {
		view.DurationMS = s.endTime.Sub(s.startTime).Milliseconds()
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	return json.Marshal(view)
}
