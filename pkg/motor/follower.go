package motor

// Follower drives a second motor with the leader's output, optionally
// inverted (for example, two motors either side of a pivot).  Encoder reads
// come from the leader only.
type Follower struct {
	Leader   Motor
	Follower Motor
	Inverted bool
}

var _ Motor = (*Follower)(nil)

func (f *Follower) Set(percent float64) error {
	if err := f.Leader.Set(percent); err != nil {
		return err
	}
	if f.Inverted {
		percent = -percent
	}
	return f.Follower.Set(percent)
}

func (f *Follower) EncoderRotations() float64 {
	return f.Leader.EncoderRotations()
}

func (f *Follower) EncoderRPM() float64 {
	return f.Leader.EncoderRPM()
}

func (f *Follower) SetEncoderRotations(r float64) {
	f.Leader.SetEncoderRotations(r)
}
