package soap

import "strings"

// BuildEnvelope wraps an action and its payload fragment in a SOAP 1.1
// envelope, namespacing the action element to the service URN. Pure string
// construction; the payload is inserted verbatim and no validation happens
// here, a malformed fragment is the device's to reject.
func BuildEnvelope(service, action, payload string) []byte {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body>`)
	buf.WriteString(`<u:`)
	buf.WriteString(action)
	buf.WriteString(` xmlns:u="`)
	buf.WriteString(service)
	buf.WriteString(`">`)
	buf.WriteString(payload)
	buf.WriteString(`</u:`)
	buf.WriteString(action)
	buf.WriteString(`>`)
	buf.WriteString(`</s:Body>`)
	buf.WriteString(`</s:Envelope>`)
	return []byte(buf.String())
}
