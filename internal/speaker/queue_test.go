package speaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4/soncon/internal/apperrors"
)

const queueDIDL = `<DIDL-Lite xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">` +
	`<item id="Q:0/1" parentID="Q:0" restricted="true">` +
	`<res duration="0:04:20">x-file-cifs://nas/one.flac</res>` +
	`<dc:title>One</dc:title>` +
	`<dc:creator>Artist A</dc:creator>` +
	`<upnp:album>Album A</upnp:album>` +
	`<upnp:albumArtURI>/getaa?u=one</upnp:albumArtURI>` +
	`</item>` +
	`<item id="Q:0/2" parentID="Q:0" restricted="true">` +
	`<res>x-sonosapi-stream://radio</res>` +
	`<dc:title>Two</dc:title>` +
	`</item></DIDL-Lite>`

func TestQueue(t *testing.T) {
	device := newFakeDevice(t)
	device.setResult("Browse",
		"<Result>"+xmlEscape(queueDIDL)+"</Result>"+
			"<NumberReturned>2</NumberReturned>"+
			"<TotalMatches>2</TotalMatches>"+
			"<UpdateID>13</UpdateID>")
	s := device.speaker()

	queue, err := s.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)

	first := queue[0]
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "x-file-cifs://nas/one.flac", first.URI)
	assert.Equal(t, "One", first.Title)
	assert.Equal(t, "Artist A", first.Artist)
	assert.Equal(t, "Album A", first.Album)
	assert.Equal(t, "/getaa?u=one", first.AlbumArtURI)
	assert.Equal(t, 260*time.Second, first.Duration)

	second := queue[1]
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, "Two", second.Title)
	assert.Empty(t, second.Artist)
	assert.Empty(t, second.Album)
	assert.Zero(t, second.Duration)

	actions, bodies, topologyHits := device.received()
	require.Equal(t, []string{"Browse"}, actions)
	assert.Contains(t, bodies[0], "<ObjectID>Q:0</ObjectID>")
	assert.Equal(t, 1, topologyHits, "the queue lives on the coordinator")
}

func TestQueue_Empty(t *testing.T) {
	device := newFakeDevice(t)
	device.setResult("Browse",
		"<Result></Result><NumberReturned>0</NumberReturned><TotalMatches>0</TotalMatches><UpdateID>0</UpdateID>")
	s := device.speaker()

	queue, err := s.Queue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestParseQueue_SkipsNonItemChildren(t *testing.T) {
	didl := `<DIDL-Lite>` +
		`<container id="Q:0/0"><title>ignored</title></container>` +
		`<item id="Q:0/4"><res>x-file-cifs://nas/four.flac</res><title>Four</title></item>` +
		`</DIDL-Lite>`

	queue, err := parseQueue(didl)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, 4, queue[0].Position)
}

func TestParseQueue_BadItemID(t *testing.T) {
	for _, id := range []string{"Q:0", "Q:0/", "Q:0/x"} {
		didl := `<DIDL-Lite><item id="` + id + `"><res>uri</res><title>T</title></item></DIDL-Lite>`

		_, err := parseQueue(didl)
		var parseErr *apperrors.ParseError
		require.ErrorAs(t, err, &parseErr, "item id %q must fail", id)
	}
}

func TestQueuePositionSuffix(t *testing.T) {
	position, err := queuePosition("Q:0/17")
	require.NoError(t, err)
	assert.Equal(t, 17, position)
}
