package soap

// Well-known Sonos UPnP services and their control endpoints.
const (
	AVTransportService  = "urn:schemas-upnp-org:service:AVTransport:1"
	AVTransportEndpoint = "MediaRenderer/AVTransport/Control"

	RenderingControlService  = "urn:schemas-upnp-org:service:RenderingControl:1"
	RenderingControlEndpoint = "MediaRenderer/RenderingControl/Control"

	ContentDirectoryService  = "urn:schemas-upnp-org:service:ContentDirectory:1"
	ContentDirectoryEndpoint = "MediaServer/ContentDirectory/Control"
)

// Request describes one UPnP action: where it goes, which service it
// belongs to, its name, and the argument fragment. Keeping it in one value
// guarantees the envelope element and the expected response wrapper are
// derived from the same action name.
type Request struct {
	// Endpoint is the control path relative to the device root, without a
	// leading slash (eg. MediaRenderer/AVTransport/Control).
	Endpoint string
	// Service is the full service URN named in the envelope and the
	// SOAPAction header.
	Service string
	// Action is the UPnP action name (eg. Play).
	Action string
	// Payload is the action's argument fragment, already XML-escaped by
	// the caller.
	Payload string
}

// ResponseTag is the element the device wraps a successful result in.
func (r Request) ResponseTag() string {
	return r.Action + "Response"
}

// AVTransport builds a request against the AVTransport service.
func AVTransport(action, payload string) Request {
	return Request{
		Endpoint: AVTransportEndpoint,
		Service:  AVTransportService,
		Action:   action,
		Payload:  payload,
	}
}

// RenderingControl builds a request against the RenderingControl service.
func RenderingControl(action, payload string) Request {
	return Request{
		Endpoint: RenderingControlEndpoint,
		Service:  RenderingControlService,
		Action:   action,
		Payload:  payload,
	}
}

// ContentDirectory builds a request against the ContentDirectory service.
func ContentDirectory(action, payload string) Request {
	return Request{
		Endpoint: ContentDirectoryEndpoint,
		Service:  ContentDirectoryService,
		Action:   action,
		Payload:  payload,
	}
}
