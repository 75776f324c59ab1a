package assessment

// Step identifies a pipeline stage.
type Step int

const (
	StepMatrix Step = iota
	StepMetrics
	StepDisagreement
	StepArea
	StepRules
)

// Steps lists every stage in execution order.
var Steps = []Step{StepMatrix, StepMetrics, StepDisagreement, StepArea, StepRules}

func (s Step) String() string {
	switch s {
	case StepMatrix:
		return "Building confusion matrix"
	case StepMetrics:
		return "Computing accuracy metrics"
	case StepDisagreement:
		return "Decomposing disagreement"
	case StepArea:
		return "Estimating areas"
	case StepRules:
		return "Evaluating validation rules"
	default:
		return "unknown step"
	}
}

// StepNames returns the display names of Steps.
func StepNames() []string {
	out := make([]string, len(Steps))
	for i, s := range Steps {
		out[i] = s.String()
	}
	return out
}

// EventType identifies the type of progress event
type EventType int

const (
	EventStepStart EventType = iota
	EventStepComplete
	EventStepSkipped
	EventStepFailed
)

// Event represents a progress update
type Event struct {
	Type EventType
	Step Step
	Err  error
}

// ProgressCallback is called during Run to report progress
type ProgressCallback func(Event)
