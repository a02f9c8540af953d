package speaker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransportState(t *testing.T) {
	cases := []struct {
		wire string
		want TransportState
	}{
		{"STOPPED", Stopped},
		{"PLAYING", Playing},
		{"PAUSED_PLAYBACK", PausedPlayback},
		{"PAUSED_RECORDING", PausedRecording},
		{"RECORDING", Recording},
		{"NO_MEDIA_PRESENT", NoMediaPresent},
		{"TRANSITIONING", Transitioning},
		// Anything undocumented maps to Stopped, never an error.
		{"FOO", Stopped},
		{"", Stopped},
		{"playing", Stopped},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseTransportState(tc.wire), "wire value %q", tc.wire)
	}
}

func TestTransportStateString(t *testing.T) {
	assert.Equal(t, "PausedPlayback", PausedPlayback.String())
	assert.Equal(t, "Stopped", TransportState(99).String())
}

func TestTransportState_Query(t *testing.T) {
	device := newFakeDevice(t)
	device.setResult("GetTransportInfo",
		"<CurrentTransportState>PAUSED_PLAYBACK</CurrentTransportState><CurrentTransportStatus>OK</CurrentTransportStatus><CurrentSpeed>1</CurrentSpeed>")
	s := device.speaker()

	state, err := s.TransportState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PausedPlayback, state)

	_, _, topologyHits := device.received()
	assert.Zero(t, topologyHits, "transport state is queried on the device itself")
}
