// Package pitch defines the pitch sample value relayed from an engine to an
// observer, plus helpers to present it as a musical note.
package pitch

import (
	"fmt"
	"math"
)

// Sample is a single frequency measurement in Hz. Zero or negative values
// mean the engine detected no pitch; they are valid samples, not errors.
type Sample float32

// Hz returns the sample as a float32 frequency.
func (s Sample) Hz() float32 { return float32(s) }

// Voiced reports whether the sample carries a detected pitch.
func (s Sample) Voiced() bool { return s > 0 }

// String formats the sample with millihertz precision.
func (s Sample) String() string {
	return fmt.Sprintf("%.3f", float32(s))
}

// Reference tuning.
const (
	A4Frequency = 440.0
	a4MIDI      = 69
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is the nearest equal-tempered note for a frequency.
type Note struct {
	Name   string
	Octave int
	// Cents is the deviation from the note, in the range [-50, 50].
	Cents float64
}

// String renders the note like "A4 +3.2c".
func (n Note) String() string {
	return fmt.Sprintf("%s%d %+.1fc", n.Name, n.Octave, n.Cents)
}

// NoteOf returns the nearest note for the sample. ok is false for unvoiced
// samples.
func NoteOf(s Sample) (n Note, ok bool) {
	if !s.Voiced() {
		return Note{}, false
	}

	semitones := 12 * math.Log2(float64(s)/A4Frequency)
	nearest := math.Round(semitones)
	midi := int(nearest) + a4MIDI

	idx := midi % 12
	if idx < 0 {
		idx += 12
	}

	return Note{
		Name:   noteNames[idx],
		Octave: floorDiv(midi, 12) - 1,
		Cents:  100 * (semitones - nearest),
	}, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
