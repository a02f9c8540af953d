package soap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w4/soncon/internal/apperrors"
)

const successEnvelope = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <u:GetVolumeResponse xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1">
      <CurrentVolume>25</CurrentVolume>
    </u:GetVolumeResponse>
  </s:Body>
</s:Envelope>`

const faultEnvelope = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode>s:Client</faultcode>
      <faultstring>UPnPError</faultstring>
      <detail>
        <UPnPError xmlns="urn:schemas-upnp-org:control-1-0">
          <errorCode>%d</errorCode>
        </UPnPError>
      </detail>
    </s:Fault>
  </s:Body>
</s:Envelope>`

func testHost(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

func TestCall_Success(t *testing.T) {
	var gotPath, gotAction, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAction = r.Header.Get("SOAPAction")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, successEnvelope)
	}))
	defer server.Close()

	client := NewClient(2*time.Second, nil)
	resp, err := client.Call(context.Background(), testHost(server),
		RenderingControl("GetVolume", "<InstanceID>0</InstanceID><Channel>Master</Channel>"))
	require.NoError(t, err)

	assert.Equal(t, "/MediaRenderer/RenderingControl/Control", gotPath)
	assert.Equal(t, `"urn:schemas-upnp-org:service:RenderingControl:1#GetVolume"`, gotAction)
	assert.Equal(t, "application/xml", gotContentType)
	assert.Contains(t, string(gotBody), `<u:GetVolume xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1">`)

	assert.Equal(t, "GetVolumeResponse", resp.Name)
	volume, err := resp.ChildText("CurrentVolume")
	require.NoError(t, err)
	assert.Equal(t, "25", volume)
}

func TestCall_FaultDecodesThroughCodeTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Sonos serves faults with HTTP 500; decoding must still run.
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, faultEnvelope, 711)
	}))
	defer server.Close()

	client := NewClient(2*time.Second, nil)
	_, err := client.Call(context.Background(), testHost(server), AVTransport("Seek", "<InstanceID>0</InstanceID>"))

	var faultErr *apperrors.FaultError
	require.ErrorAs(t, err, &faultErr, "fault must decode as FaultError, not ParseError")
	assert.Equal(t, 711, faultErr.Code)
	assert.Equal(t, apperrors.FaultIllegalSeekTarget, faultErr.Category)
	assert.Equal(t, "Seek", faultErr.Action)
}

func TestCall_UnknownFaultCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, faultEnvelope, 999)
	}))
	defer server.Close()

	client := NewClient(2*time.Second, nil)
	_, err := client.Call(context.Background(), testHost(server), AVTransport("Play", ""))

	var faultErr *apperrors.FaultError
	require.ErrorAs(t, err, &faultErr)
	assert.Equal(t, apperrors.FaultUnknown, faultErr.Category)
}

func TestCall_MissingBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"></s:Envelope>`)
	}))
	defer server.Close()

	client := NewClient(2*time.Second, nil)
	_, err := client.Call(context.Background(), testHost(server), AVTransport("Play", ""))

	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Context, "Body")
}

func TestCall_NonXMLErrorPageIsBadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(2*time.Second, nil)
	_, err := client.Call(context.Background(), testHost(server), AVTransport("Play", ""))

	var badResponseErr *apperrors.BadResponseError
	require.ErrorAs(t, err, &badResponseErr)
	assert.Equal(t, http.StatusNotFound, badResponseErr.StatusCode)
}

func TestCall_ConnectionRefusedIsUnreachable(t *testing.T) {
	client := NewClient(500*time.Millisecond, nil)
	_, err := client.Call(context.Background(), "127.0.0.1:1", AVTransport("Play", ""))

	var unreachableErr *apperrors.UnreachableError
	require.ErrorAs(t, err, &unreachableErr)
}

func TestCall_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the POST body so the connection watcher is running and
		// the handler unblocks when the client goes away.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewClient(5*time.Second, nil)
	_, err := client.Call(ctx, testHost(server), AVTransport("Play", ""))

	var unreachableErr *apperrors.UnreachableError
	require.ErrorAs(t, err, &unreachableErr)
}

func TestCall_ResponseTagMismatchIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, successEnvelope)
	}))
	defer server.Close()

	// Server answers GetVolumeResponse; asking for Pause must not match.
	client := NewClient(2*time.Second, nil)
	_, err := client.Call(context.Background(), testHost(server), AVTransport("Pause", ""))

	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Context, "PauseResponse")
}
