package physics

// Limits bounds the values parameter editors may write. The default ranges
// are the slider ranges of the live view.
type Limits struct {
	MinLength, MaxLength   float64
	MinMass, MaxMass       float64
	MinGravity, MaxGravity float64
}

var DefaultLimits = Limits{
	MinLength: 100, MaxLength: 500,
	MinMass: 10, MaxMass: 100,
	MinGravity: 0, MaxGravity: 50,
}

// Clamp pulls value into the range configured for name. Unknown names are
// returned unchanged so SetParam can reject them.
func (l Limits) Clamp(name string, value float64) float64 {
	switch name {
	case "r1", "r2":
		return clamp(value, l.MinLength, l.MaxLength)
	case "m1", "m2":
		return clamp(value, l.MinMass, l.MaxMass)
	case "g":
		return clamp(value, l.MinGravity, l.MaxGravity)
	}
	return value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
