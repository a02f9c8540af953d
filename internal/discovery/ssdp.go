package discovery

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	ssdpAddr = "239.255.255.250:1900"
	// SonosURN is the root-device service type Sonos speakers advertise.
	SonosURN = "schemas-upnp-org:device:ZonePlayer:1"
)

// Response is one SSDP search response.
type Response struct {
	Location string
	USN      string
	ST       string
	Headers  map[string]string
	FromIP   string
}

// Search sends an SSDP M-SEARCH for the Sonos root device type and collects
// every response that arrives within the window. Multicast discovery has no
// done signal, so the full window is always waited out; ctx can cut it
// short. Responses are deduplicated by USN.
func Search(ctx context.Context, window time.Duration) ([]Response, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Close the socket early if the caller cancels so the read below
	// aborts instead of sleeping out the window.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	addr, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, err
	}
	if err := sendSearch(conn, addr, window); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
		return nil, err
	}

	responses := make(map[string]Response)
	buf := make([]byte, 2048)
	for {
		n, raddr, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			if ctx.Err() != nil {
				return responsesToSlice(responses), ctx.Err()
			}
			return responsesToSlice(responses), err
		}

		resp := parseResponse(string(buf[:n]))
		if resp.Location == "" && resp.USN == "" {
			continue
		}
		if host, _, err := net.SplitHostPort(raddr.String()); err == nil {
			resp.FromIP = host
		}

		if _, exists := responses[resp.USN]; !exists {
			responses[resp.USN] = resp
		}
	}

	return responsesToSlice(responses), nil
}

func sendSearch(conn net.PacketConn, addr *net.UDPAddr, window time.Duration) error {
	mx := int(window / time.Second)
	if mx < 1 {
		mx = 1
	}

	msg := strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"HOST: " + ssdpAddr,
		"MAN: \"ssdp:discover\"",
		"MX: " + strconv.Itoa(mx),
		"ST: urn:" + SonosURN,
		"",
		"",
	}, "\r\n")

	_, err := conn.WriteTo([]byte(msg), addr)
	return err
}

func parseResponse(raw string) Response {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	headers := make(map[string]string)

	// Skip status line
	scanner.Scan()

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(parts[0]))
		headers[key] = strings.TrimSpace(parts[1])
	}

	return Response{
		Location: headers["LOCATION"],
		USN:      headers["USN"],
		ST:       headers["ST"],
		Headers:  headers,
	}
}

// Sonos reports whether a response advertises the Sonos root device type.
// A misbehaving or unrelated device answering the broadcast fails this.
func (r Response) Sonos() bool {
	return strings.Contains(r.USN, SonosURN) || strings.Contains(r.ST, SonosURN)
}

func responsesToSlice(responses map[string]Response) []Response {
	result := make([]Response, 0, len(responses))
	for _, r := range responses {
		result = append(result, r)
	}
	return result
}
