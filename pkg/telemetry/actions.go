package telemetry

type ActionCategory int

const (
	Fuzzing ActionCategory = iota
	InputGeneration
	DynamicAnalysis
)

func (a ActionCategory) String() string {
	switch a {
	case Fuzzing:
		return "fuzzing"
	case InputGeneration:
		return "input_generation"
	case DynamicAnalysis:
		return "dynamic_analysis"
	default:
		return "unknown"
	}
}
