// Package topology resolves which device in a zone group is the acting
// coordinator, by reading the group topology document a speaker serves.
package topology

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/xmldoc"
)

const topologyPath = "/status/topology"

// Older firmware prepends this non-standard processing instruction, which
// has to go before the document will parse.
const stylesheetPI = `<?xml-stylesheet type="text/xsl" href="/xml/review.xsl"?>`

// Resolver fetches and interprets /status/topology.
type Resolver struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewResolver creates a resolver bounded by the given timeout.
func NewResolver(timeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: timeout}).DialContext,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// Coordinator returns the address of the device that coordinates the group
// the device with the given uuid belongs to. An empty topology document is
// a known firmware quirk; the device is then presumed to coordinate itself
// and its own address is returned.
func (r *Resolver) Coordinator(ctx context.Context, ip, uuid string) (string, error) {
	endpoint := fmt.Sprintf("http://%s%s", hostPort(ip), topologyPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.NewUnreachable(endpoint, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUnreachable(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewBadResponse(endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUnreachable(endpoint, err)
	}

	address, err := resolveCoordinator(body, uuid)
	if err != nil {
		return "", err
	}
	if address == "" {
		r.logger.Debug("topology document empty, device presumed own coordinator",
			zap.String("ip", ip), zap.String("uuid", uuid))
		return ip, nil
	}
	return address, nil
}

// hostPort appends the fixed Sonos port to a bare address. Addresses
// already carrying a port (test fixtures) pass through.
func hostPort(ip string) string {
	if strings.Contains(ip, ":") {
		return ip
	}
	return ip + ":1400"
}

// resolveCoordinator walks the topology document. It returns "" (no error)
// when the document has no zone player entries, so the caller can fall back
// to the device's own address.
func resolveCoordinator(document []byte, uuid string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(string(document), stylesheetPI, ""))
	if cleaned == "" {
		return "", nil
	}

	root, err := xmldoc.Parse([]byte(cleaned))
	if err != nil {
		return "", err
	}

	players, err := root.Child("ZonePlayers")
	if err != nil || len(players.Children) == 0 {
		return "", nil
	}

	var group string
	found := false
	for _, player := range players.Children {
		if player.Attr("uuid") == uuid {
			group = player.Attr("group")
			found = true
			break
		}
	}
	if !found {
		return "", apperrors.NewDeviceNotFound(uuid)
	}

	for _, player := range players.Children {
		if player.Attr("coordinator") != "true" || player.Attr("group") != group {
			continue
		}
		return coordinatorAddress(player.Attr("location"))
	}
	return "", apperrors.NewDeviceNotFound(uuid)
}

// coordinatorAddress extracts the host from a location of the strict shape
// http(s)://<host>:1400/xml.
func coordinatorAddress(location string) (string, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return "", apperrors.NewParseWrap("coordinator location "+location, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", apperrors.NewParse("coordinator location " + location)
	}
	if parsed.Port() != "1400" || !strings.HasPrefix(parsed.Path, "/xml") {
		return "", apperrors.NewParse("coordinator location " + location)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", apperrors.NewParse("coordinator location " + location)
	}
	return host, nil
}
