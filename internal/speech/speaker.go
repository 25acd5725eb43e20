// Package speech defines the spoken-output sink. Actual synthesis is
// delegated to an external command; the core only decides what to say.
package speech

import "os/exec"

// Speaker voices assistant output.
type Speaker interface {
	Say(text string)
}

// Null is a silent speaker.
type Null struct{}

func (Null) Say(string) {}

// ExecSpeaker shells out to a TTS command (espeak, say, piper) with
// the text appended as the final argument. Playback runs detached and
// failures are ignored; speech is best-effort decoration.
type ExecSpeaker struct {
	argv []string
}

// NewExecSpeaker builds a speaker for the given command line. Returns
// a Null speaker when argv is empty.
func NewExecSpeaker(argv []string) Speaker {
	if len(argv) == 0 {
		return Null{}
	}
	return &ExecSpeaker{argv: argv}
}

func (e *ExecSpeaker) Say(text string) {
	if text == "" {
		return
	}
	args := append(append([]string{}, e.argv[1:]...), text)
	cmd := exec.Command(e.argv[0], args...)
	go cmd.Run()
}
