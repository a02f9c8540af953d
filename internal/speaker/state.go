package speaker

import (
	"context"

	"github.com/w4/soncon/internal/soap"
)

// TransportState is the playback state of a speaker's AVTransport.
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	PausedPlayback
	PausedRecording
	Recording
	NoMediaPresent
	Transitioning
)

var transportStateNames = map[TransportState]string{
	Stopped:         "Stopped",
	Playing:         "Playing",
	PausedPlayback:  "PausedPlayback",
	PausedRecording: "PausedRecording",
	Recording:       "Recording",
	NoMediaPresent:  "NoMediaPresent",
	Transitioning:   "Transitioning",
}

func (t TransportState) String() string {
	if name, ok := transportStateNames[t]; ok {
		return name
	}
	return "Stopped"
}

// ParseTransportState maps a wire value to its state. Devices return
// undocumented values mid-transition, so anything unrecognized maps to
// Stopped rather than failing.
func ParseTransportState(wire string) TransportState {
	switch wire {
	case "STOPPED":
		return Stopped
	case "PLAYING":
		return Playing
	case "PAUSED_PLAYBACK":
		return PausedPlayback
	case "PAUSED_RECORDING":
		return PausedRecording
	case "RECORDING":
		return Recording
	case "NO_MEDIA_PRESENT":
		return NoMediaPresent
	case "TRANSITIONING":
		return Transitioning
	default:
		return Stopped
	}
}

// TransportState queries the speaker's current playback state.
func (s *Speaker) TransportState(ctx context.Context) (TransportState, error) {
	resp, err := s.Dispatch(ctx, soap.AVTransport("GetTransportInfo", "<InstanceID>0</InstanceID>"), false)
	if err != nil {
		return Stopped, err
	}

	text, err := resp.ChildText("CurrentTransportState")
	if err != nil {
		return Stopped, err
	}
	return ParseTransportState(text), nil
}
