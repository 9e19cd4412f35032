// Package ui provides the Bubbletea terminal user interface for noisectl
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ciphercore/noisectl/internal/noisectrl"
)

// TraceStatus represents the replay state of a single trace
type TraceStatus int

const (
	StatusQueued TraceStatus = iota
	StatusReplaying
	StatusComplete
	StatusError
)

// TraceProgress tracks replay progress for a single variance trace
type TraceProgress struct {
	Name   string
	Status TraceStatus

	// Progress tracking
	Step       int
	TotalSteps int
	StartTime  time.Time
	Elapsed    time.Duration

	// Live controller state
	Factor    float64
	Variance  float64
	ErrMetric float64

	// Peak excursions seen so far
	PeakVariance float64
	LowFactor    float64
	HighFactor   float64

	// Completion results
	FinalFactor float64
	Attenuated  int
	Amplified   int
	Held        int
	ReportPath  string

	// Error tracking
	Err error
}

// Model is the Bubbletea model for the replay UI
type Model struct {
	Traces          []TraceProgress
	CurrentIndex    int
	TotalTraces     int
	CompletedTraces int
	FailedTraces    int

	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from the replay goroutine
	ProgressChan chan tea.Msg

	Width  int
	Height int
}

// NewModel creates a new UI model for the given trace names
func NewModel(traceNames []string) Model {
	traces := make([]TraceProgress, len(traceNames))
	for i, name := range traceNames {
		traces[i] = TraceProgress{
			Name:       name,
			Status:     StatusQueued,
			Factor:     noisectrl.NeutralFactor,
			LowFactor:  noisectrl.NeutralFactor,
			HighFactor: noisectrl.NeutralFactor,
		}
	}

	return Model{
		Traces:       traces,
		CurrentIndex: -1, // No trace replaying yet
		TotalTraces:  len(traceNames),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TraceStartMsg:
		m.CurrentIndex = msg.TraceIndex
		m.Traces[m.CurrentIndex].Status = StatusReplaying
		m.Traces[m.CurrentIndex].TotalSteps = msg.TotalSteps
		m.Traces[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case StepMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Traces) {
			m.Traces[m.CurrentIndex] = updateTraceProgress(m.Traces[m.CurrentIndex], msg)
		}
		return m, waitForProgress(m.ProgressChan)

	case TraceCompleteMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Traces) {
			tp := &m.Traces[m.CurrentIndex]
			tp.FinalFactor = msg.FinalFactor
			tp.Attenuated = msg.Attenuated
			tp.Amplified = msg.Amplified
			tp.Held = msg.Held
			tp.ReportPath = msg.ReportPath
			tp.Err = msg.Error

			if msg.Error != nil {
				tp.Status = StatusError
				m.FailedTraces++
			} else {
				tp.Status = StatusComplete
				m.CompletedTraces++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nTraces: %d\n", len(m.Traces))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderReplayView(m)
}

// updateTraceProgress folds a StepMsg into a TraceProgress
func updateTraceProgress(tp TraceProgress, msg StepMsg) TraceProgress {
	tp.Step = msg.Step + 1
	tp.TotalSteps = msg.TotalSteps
	tp.Elapsed = time.Since(tp.StartTime)
	tp.Factor = msg.Factor
	tp.Variance = msg.Variance
	tp.ErrMetric = msg.Error

	if msg.Variance > tp.PeakVariance {
		tp.PeakVariance = msg.Variance
	}
	if msg.Factor < tp.LowFactor {
		tp.LowFactor = msg.Factor
	}
	if msg.Factor > tp.HighFactor {
		tp.HighFactor = msg.Factor
	}

	return tp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
