package recommendation

// fixedSource always returns the same values, making fallbacks deterministic.
type fixedSource struct {
	intn  int
	float float64
}

func (f fixedSource) Intn(n int) int {
	if f.intn >= n {
		return n - 1
	}
	return f.intn
}

func (f fixedSource) Float64() float64 { return f.float }

// recordingObserver captures capability outcomes.
type recordingObserver struct {
	outcomes map[string][]string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{outcomes: make(map[string][]string)}
}

func (r *recordingObserver) ObserveGeneration(capability, outcome string) {
	r.outcomes[capability] = append(r.outcomes[capability], outcome)
}
