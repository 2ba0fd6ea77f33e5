package state

import "time"

// Session summarises one run of the coordinator.
type Session struct {
	Engine    string    `json:"engine"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`

	// Sessions is the number of engine sessions started during the run.
	Sessions  uint64 `json:"sessions"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`

	LastPitch float32 `json:"last_pitch"`
	MinPitch  float32 `json:"min_pitch"`
	MaxPitch  float32 `json:"max_pitch"`

	// FinalState is the coordinator state when the run ended.
	FinalState string `json:"final_state"`
	// StopError is set when the engine did not stop cleanly.
	StopError string `json:"stop_error,omitempty"`
}

// IsEmpty returns true if no session was recorded.
func (s Session) IsEmpty() bool {
	return s.StartedAt.IsZero()
}

// Duration returns how long the run lasted.
func (s Session) Duration() time.Duration {
	if s.StoppedAt.Before(s.StartedAt) {
		return 0
	}
	return s.StoppedAt.Sub(s.StartedAt)
}

// Observe folds a voiced pitch into the min/max range and updates the last
// pitch. Unvoiced values only update the last pitch.
func (s *Session) Observe(hz float32) {
	s.LastPitch = hz
	if hz <= 0 {
		return
	}
	if s.MinPitch == 0 || hz < s.MinPitch {
		s.MinPitch = hz
	}
	if hz > s.MaxPitch {
		s.MaxPitch = hz
	}
}
