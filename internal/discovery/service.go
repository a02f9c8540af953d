// Package discovery finds Sonos speakers on the local network via SSDP and
// loads their device-description documents into identity records.
package discovery

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/w4/soncon/internal/apperrors"
)

// DefaultWindow is how long a discovery call listens for responses.
const DefaultWindow = 2 * time.Second

// Service runs the full discovery flow: SSDP search, service-type
// filtering, then an identity fetch per responder.
type Service struct {
	loader    *Loader
	logger    *zap.Logger
	window    time.Duration
	staticIPs []string

	// search is swapped out in tests to simulate responders.
	search func(ctx context.Context, window time.Duration) ([]Response, error)
}

// NewService creates a discovery service. window bounds the SSDP listen;
// timeout bounds each descriptor fetch. staticIPs are probed directly on
// top of the SSDP results, for networks that filter multicast.
func NewService(window, timeout time.Duration, staticIPs []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		loader:    NewLoader(timeout),
		logger:    logger,
		window:    window,
		staticIPs: staticIPs,
		search:    Search,
	}
}

// Loader exposes the descriptor loader for callers that already know an
// address and only need its identity.
func (s *Service) Loader() *Loader {
	return s.loader
}

// Discover blocks for the full search window and returns an identity for
// every Sonos device that answered, plus every statically configured
// address that holds one. One device failing its identity fetch is logged
// and skipped, never fatal to the scan; zero responders yields an empty
// slice, not an error. A device found both ways is reported once.
func (s *Service) Discover(ctx context.Context) ([]*Identity, error) {
	responses, err := s.search(ctx, s.window)
	if err != nil {
		return nil, apperrors.NewUnreachable("ssdp multicast", err)
	}

	identities := make([]*Identity, 0, len(responses))
	seen := make(map[string]bool, len(responses))
	for _, resp := range responses {
		if !resp.Sonos() {
			s.logger.Warn("misbehaving client responded to our discovery",
				zap.String("usn", resp.USN),
				zap.String("st", resp.ST),
				zap.String("from", resp.FromIP))
			continue
		}

		ip := responseAddress(resp)
		if ip == "" {
			s.logger.Warn("discovery response carried no usable address",
				zap.String("usn", resp.USN))
			continue
		}

		identity, err := s.loader.Identity(ctx, ip)
		if err != nil {
			s.logger.Warn("failed to load device description",
				zap.String("ip", ip),
				zap.Error(err))
			continue
		}
		if seen[identity.UUID] {
			continue
		}
		seen[identity.UUID] = true
		identities = append(identities, identity)
	}

	for _, ip := range s.staticIPs {
		identity, err := s.loader.Identity(ctx, ip)
		if err != nil {
			s.logger.Warn("static device did not answer",
				zap.String("ip", ip),
				zap.Error(err))
			continue
		}
		if seen[identity.UUID] {
			continue
		}
		seen[identity.UUID] = true
		identities = append(identities, identity)
	}

	return identities, nil
}

// responseAddress prefers the LOCATION header's host and falls back to the
// UDP source address of the response.
func responseAddress(resp Response) string {
	if resp.Location != "" {
		if parsed, err := url.Parse(resp.Location); err == nil && parsed.Hostname() != "" {
			return parsed.Hostname()
		}
	}
	return resp.FromIP
}
