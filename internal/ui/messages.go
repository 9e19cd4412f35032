package ui

// StepMsg reports one replay step through the controller
type StepMsg struct {
	TraceIndex int
	Step       int     // 0-based step just completed
	TotalSteps int
	Variance   float64 // the reading fed to the controller
	Factor     float64 // noise factor after the step
	Error      float64 // derived error metric for the step
}

// TraceStartMsg indicates a new trace has started replaying
type TraceStartMsg struct {
	TraceIndex int
	TraceName  string
	TotalSteps int
}

// TraceCompleteMsg indicates a trace has finished replaying
type TraceCompleteMsg struct {
	TraceIndex  int
	FinalFactor float64
	Attenuated  int
	Amplified   int
	Held        int
	ReportPath  string
	Error       error
}

// AllCompleteMsg indicates all traces have been replayed
type AllCompleteMsg struct{}
