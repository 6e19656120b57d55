package indicator

import "path/filepath"

// Player is satisfied by *sound.Player.
type Player interface {
	Play(path string)
}

// SoundFiles maps states to wav file names.  States without an entry are
// silent.
var SoundFiles = map[State]string{
	HandingOff:    "handoff.wav",
	ShooterLoaded: "loaded.wav",
	IntakeFull:    "intakefull.wav",
	Homing:        "homing.wav",
	Shooting:      "shoot.wav",
}

// Sound plays a sound for each state.
type Sound struct {
	dir    string
	player Player
}

func NewSound(dir string, player Player) *Sound {
	return &Sound{dir: dir, player: player}
}

func (s *Sound) SetState(state State) {
	name, ok := SoundFiles[state]
	if !ok {
		return
	}
	s.player.Play(filepath.Join(s.dir, name))
}
