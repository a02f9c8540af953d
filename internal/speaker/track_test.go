package speaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4/soncon/internal/apperrors"
)

const trackDIDL = `<DIDL-Lite xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">` +
	`<item id="-1" parentID="-1" restricted="true">` +
	`<dc:title>Heroes</dc:title>` +
	`<dc:creator>David Bowie</dc:creator>` +
	`<upnp:album>Heroes</upnp:album>` +
	`</item></DIDL-Lite>`

func TestTrack(t *testing.T) {
	device := newFakeDevice(t)
	device.setResult("GetPositionInfo",
		"<Track>3</Track>"+
			"<TrackDuration>0:03:20</TrackDuration>"+
			"<TrackMetaData>"+xmlEscape(trackDIDL)+"</TrackMetaData>"+
			"<TrackURI>x-file-cifs://nas/heroes.flac</TrackURI>"+
			"<RelTime>0:01:30</RelTime>"+
			"<AbsTime>NOT_IMPLEMENTED</AbsTime>")
	s := device.speaker()

	track, err := s.Track(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Heroes", track.Title)
	assert.Equal(t, "David Bowie", track.Artist)
	assert.Equal(t, "Heroes", track.Album)
	assert.Equal(t, 3, track.QueuePosition)
	assert.Equal(t, "x-file-cifs://nas/heroes.flac", track.URI)
	assert.Equal(t, 200*time.Second, track.Duration)
	assert.Equal(t, 90*time.Second, track.RunningTime)

	_, _, topologyHits := device.received()
	assert.Equal(t, 1, topologyHits, "track info comes from the coordinator")
}

func TestTrack_AlbumOptional(t *testing.T) {
	didl := `<DIDL-Lite><item id="-1"><title>Radio Stream</title><creator>Some Station</creator></item></DIDL-Lite>`

	device := newFakeDevice(t)
	device.setResult("GetPositionInfo",
		"<Track>1</Track>"+
			"<TrackDuration>0:00:00</TrackDuration>"+
			"<TrackMetaData>"+xmlEscape(didl)+"</TrackMetaData>"+
			"<TrackURI>x-sonosapi-stream://radio</TrackURI>"+
			"<RelTime>0:12:04</RelTime>")
	s := device.speaker()

	track, err := s.Track(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Radio Stream", track.Title)
	assert.Empty(t, track.Album)
}

func TestTrack_MissingTitleFails(t *testing.T) {
	didl := `<DIDL-Lite><item id="-1"><creator>Nameless</creator></item></DIDL-Lite>`

	device := newFakeDevice(t)
	device.setResult("GetPositionInfo",
		"<Track>1</Track>"+
			"<TrackDuration>0:03:20</TrackDuration>"+
			"<TrackMetaData>"+xmlEscape(didl)+"</TrackMetaData>"+
			"<TrackURI>x-file-cifs://nas/a.flac</TrackURI>"+
			"<RelTime>0:00:01</RelTime>")
	s := device.speaker()

	_, err := s.Track(context.Background())
	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseClockDuration(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
	}{
		{"0:00:00", 0},
		{"0:01:30", 90 * time.Second},
		{"0:03:20", 200 * time.Second},
		{"1:00:02", 3602 * time.Second},
		{"26:00:00", 26 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseClockDuration(tc.text)
		require.NoError(t, err, "duration %q", tc.text)
		assert.Equal(t, tc.want, got, "duration %q", tc.text)
	}

	for _, text := range []string{"", "abc", "00:30", "0:xx:30", "0:-1:30", "NOT_IMPLEMENTED"} {
		_, err := ParseClockDuration(text)
		var parseErr *apperrors.ParseError
		require.ErrorAs(t, err, &parseErr, "duration %q must fail", text)
	}
}
