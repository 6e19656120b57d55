package motor

// Motor is a single motor output with an integrated encoder.  Output is a
// fraction of full voltage in [-1, 1]; the encoder reports motor-shaft
// rotations and motor-shaft RPM, before any gearing.
type Motor interface {
	Set(percent float64) error
	EncoderRotations() float64
	EncoderRPM() float64
	SetEncoderRotations(r float64)
}

func clampPercent(p float64) float64 {
	if p > 1 {
		return 1
	} else if p < -1 {
		return -1
	}
	return p
}
