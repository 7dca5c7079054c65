package sheets

import (
	"context"
	"sync"
)

// MockWriter records reports instead of sending them anywhere.
type MockWriter struct {
	WriteFunc func(ctx context.Context, report *Report) error
	Reports   []*Report
	mu        sync.Mutex
}

var _ ReportWriter = (*MockWriter)(nil)

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements ReportWriter.
func (m *MockWriter) Write(ctx context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// Last returns the most recent report, or nil.
func (m *MockWriter) Last() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Reports) == 0 {
		return nil
	}
	return m.Reports[len(m.Reports)-1]
}
