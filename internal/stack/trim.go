package stack

// MinVisibleHeight is the content height the top trim always leaves visible.
const MinVisibleHeight = 100

// SetTrimTop clamps v to [0, Height-MinVisibleHeight] and stores it as the
// entity's top trim. The applied value is returned.
func SetTrimTop(e *Entity, v float64) float64 {
	if v > e.Height-MinVisibleHeight {
		v = e.Height - MinVisibleHeight
	}
	// Entities shorter than MinVisibleHeight cannot be trimmed at the top.
	if v < 0 {
		v = 0
	}
	e.trimTop = v
	return v
}

// SetTrimBottom stores v, floored at zero, as the entity's bottom trim.
// There is no upper bound and no interaction with the top trim.
func SetTrimBottom(e *Entity, v float64) float64 {
	if v < 0 {
		v = 0
	}
	e.trimBottom = v
	return v
}
