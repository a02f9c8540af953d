package soap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/xmldoc"
)

// controlHostPort appends the fixed Sonos control port to a bare address.
// Addresses already carrying a port (test fixtures) pass through.
func controlHostPort(ip string) string {
	if strings.Contains(ip, ":") {
		return ip
	}
	return ip + ":1400"
}

// Client dispatches SOAP actions to Sonos control endpoints.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a SOAP client bounded by the given timeout.
// Uses connection pooling for better performance when making multiple
// requests against the same device.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Call performs exactly one SOAP POST against the device at ip and decodes
// the response envelope. On success it returns the {action}Response element
// for result-specific decoding; a UPnP Fault in the body is decoded through
// the fixed error-code table and returned as a FaultError. No retries
// happen at this layer.
func (c *Client) Call(ctx context.Context, ip string, req Request) (*xmldoc.Element, error) {
	url := fmt.Sprintf("http://%s/%s", controlHostPort(ip), req.Endpoint)

	c.logger.Debug("dispatching soap action",
		zap.String("ip", ip),
		zap.String("service", req.Service),
		zap.String("action", req.Action))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(BuildEnvelope(req.Service, req.Action, req.Payload)))
	if err != nil {
		return nil, apperrors.NewUnreachable(url, err)
	}
	httpReq.Header.Set("Content-Type", "application/xml")
	httpReq.Header.Set("SOAPAction", fmt.Sprintf("%q", req.Service+"#"+req.Action))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewUnreachable(url, fmt.Errorf("timed out: %w", err))
		}
		return nil, apperrors.NewUnreachable(url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUnreachable(url, err)
	}

	return decodeEnvelope(payload, resp.StatusCode, req)
}

// decodeEnvelope walks a response envelope down to the action result or the
// decoded fault. Faults arrive with HTTP 500, so the body is parsed before
// the status code is considered; the status only matters when the body
// isn't a SOAP envelope at all.
func decodeEnvelope(payload []byte, statusCode int, req Request) (*xmldoc.Element, error) {
	envelope, err := xmldoc.Parse(payload)
	if err != nil {
		if statusCode >= 300 {
			return nil, apperrors.NewBadResponse(req.Endpoint, statusCode)
		}
		return nil, err
	}

	body, err := envelope.Child("Body")
	if err != nil {
		return nil, err
	}

	if fault, faultErr := body.Child("Fault"); faultErr == nil {
		return nil, decodeFault(fault, req.Action)
	}

	return body.Child(req.ResponseTag())
}

// decodeFault extracts detail/UPnPError/errorCode and resolves it through
// the fault table. A fault we can't read the code out of is a parse
// failure; a code we don't recognize is FaultUnknown.
func decodeFault(fault *xmldoc.Element, action string) error {
	detail, err := fault.Child("detail")
	if err != nil {
		return err
	}
	upnpError, err := detail.Child("UPnPError")
	if err != nil {
		return err
	}
	codeText, err := upnpError.ChildText("errorCode")
	if err != nil {
		return err
	}
	code, err := strconv.Atoi(codeText)
	if err != nil {
		return apperrors.NewParseWrap("fault errorCode "+codeText, err)
	}
	return apperrors.NewFault(action, code)
}
