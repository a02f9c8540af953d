package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/xmldoc"
)

const descriptionPath = "/xml/device_description.xml"

// Identity is the immutable record describing one discovered speaker,
// built from its device-description document.
type Identity struct {
	IP              string `json:"ip"`
	Model           string `json:"model"`
	ModelNumber     string `json:"model_number"`
	SoftwareVersion string `json:"software_version"`
	HardwareVersion string `json:"hardware_version"`
	SerialNumber    string `json:"serial_number"`
	RoomName        string `json:"room_name"`
	// UUID is the UDN with its uuid: prefix removed (RINCON_...).
	UUID string `json:"uuid"`
}

// Loader fetches device-description documents.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a descriptor loader bounded by the given timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: timeout}).DialContext,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// Identity fetches and parses the description document of the device at
// ip. Every field is required; a descriptor missing any of them is a parse
// failure, never a partially filled record.
func (l *Loader) Identity(ctx context.Context, ip string) (*Identity, error) {
	endpoint := fmt.Sprintf("http://%s%s", hostPort(ip), descriptionPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewUnreachable(endpoint, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnreachable(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewBadResponse(endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUnreachable(endpoint, err)
	}

	return ParseIdentity(ip, body)
}

// hostPort appends the fixed Sonos port to a bare address. Addresses
// already carrying a port (test fixtures) pass through.
func hostPort(ip string) string {
	if strings.Contains(ip, ":") {
		return ip
	}
	return ip + ":1400"
}

// ParseIdentity decodes a device-description document into an Identity.
func ParseIdentity(ip string, document []byte) (*Identity, error) {
	root, err := xmldoc.Parse(document)
	if err != nil {
		return nil, err
	}

	device, err := root.Child("device")
	if err != nil {
		return nil, err
	}

	model, err := device.ChildText("modelName")
	if err != nil {
		return nil, err
	}
	modelNumber, err := device.ChildText("modelNumber")
	if err != nil {
		return nil, err
	}
	softwareVersion, err := device.ChildText("softwareVersion")
	if err != nil {
		return nil, err
	}
	hardwareVersion, err := device.ChildText("hardwareVersion")
	if err != nil {
		return nil, err
	}
	serialNumber, err := device.ChildText("serialNum")
	if err != nil {
		return nil, err
	}
	roomName, err := device.ChildText("roomName")
	if err != nil {
		return nil, err
	}
	udn, err := device.ChildText("UDN")
	if err != nil {
		return nil, err
	}
	uuid, err := uuidFromUDN(udn)
	if err != nil {
		return nil, err
	}

	return &Identity{
		IP:              ip,
		Model:           model,
		ModelNumber:     modelNumber,
		SoftwareVersion: softwareVersion,
		HardwareVersion: hardwareVersion,
		SerialNumber:    serialNumber,
		RoomName:        roomName,
		UUID:            uuid,
	}, nil
}

// uuidFromUDN strips the fixed 5-character uuid: prefix. A UDN too short to
// carry it is a malformed descriptor, not a slice panic.
func uuidFromUDN(udn string) (string, error) {
	if len(udn) < len("uuid:") || !strings.HasPrefix(udn, "uuid:") {
		return "", apperrors.NewParse("UDN " + udn)
	}
	return udn[len("uuid:"):], nil
}
