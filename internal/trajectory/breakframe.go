package trajectory

// MaxDisplacements returns, for every frame k, the largest absolute
// coordinate change max|frame[k] - frame[0]| over atoms and axes.
func (t *Trajectory) MaxDisplacements() []float64 {
	if len(t.frames) == 0 {
		return nil
	}
	first := t.frames[0]
	out := make([]float64, len(t.frames))
	for k, frame := range t.frames {
		out[k] = frame.MaxAbsDiff(first)
	}
	return out
}

// DetectBreak returns the index of the first frame whose displacement from
// the first frame exceeds threshold. ok is false when no frame does.
func (t *Trajectory) DetectBreak(threshold float64) (frame int, ok bool) {
	for k, d := range t.MaxDisplacements() {
		if d > threshold {
			return k, true
		}
	}
	return 0, false
}

// FindBreakFrame is DetectBreak without the found flag: it returns 0 both
// when the first frame is the answer and when no frame exceeds threshold.
// The index counts recorded frames; see StepOf.
func (t *Trajectory) FindBreakFrame(threshold float64) int {
	frame, _ := t.DetectBreak(threshold)
	return frame
}

// StepOf converts a recorded frame index into the simulation step it was
// sampled at.
func StepOf(frame, interval int) int {
	return frame * interval
}
