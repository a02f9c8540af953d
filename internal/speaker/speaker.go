// Package speaker exposes Sonos actions as named methods over the protocol
// layer. Everything here is a mechanical caller of the SOAP client: the
// payloads and routing mirror what the device firmware expects, and all
// decoding beyond field extraction lives in the protocol packages.
package speaker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/discovery"
	"github.com/w4/soncon/internal/soap"
	"github.com/w4/soncon/internal/topology"
	"github.com/w4/soncon/internal/xmldoc"
)

// Speaker wraps one device's identity with the clients needed to control
// it. Stateless per call; safe for concurrent use across speakers.
type Speaker struct {
	Identity *discovery.Identity

	client   *soap.Client
	resolver *topology.Resolver
	logger   *zap.Logger
}

// New binds an identity to the protocol clients.
func New(identity *discovery.Identity, client *soap.Client, resolver *topology.Resolver, logger *zap.Logger) *Speaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speaker{
		Identity: identity,
		client:   client,
		resolver: resolver,
		logger:   logger,
	}
}

// Coordinator resolves the address of this speaker's group coordinator.
func (s *Speaker) Coordinator(ctx context.Context) (string, error) {
	return s.resolver.Coordinator(ctx, s.Identity.IP, s.Identity.UUID)
}

// Dispatch sends one SOAP request for this speaker. Group transport
// actions route through the coordinator, which is resolved first; the two
// calls are strictly ordered because the second one's target depends on
// the first's result.
func (s *Speaker) Dispatch(ctx context.Context, req soap.Request, useCoordinator bool) (*xmldoc.Element, error) {
	target := s.Identity.IP
	if useCoordinator {
		coordinator, err := s.Coordinator(ctx)
		if err != nil {
			return nil, err
		}
		target = coordinator
	}
	s.logger.Debug("running action",
		zap.String("service", req.Service),
		zap.String("action", req.Action),
		zap.String("device", s.Identity.IP),
		zap.String("target", target))
	return s.client.Call(ctx, target, req)
}

// Play resumes playback of the current track.
func (s *Speaker) Play(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("Play", "<InstanceID>0</InstanceID><Speed>1</Speed>"), true)
	return err
}

// Pause pauses the current track.
func (s *Speaker) Pause(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("Pause", "<InstanceID>0</InstanceID>"), true)
	return err
}

// Stop stops the current queue.
func (s *Speaker) Stop(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("Stop", "<InstanceID>0</InstanceID>"), true)
	return err
}

// Next skips to the next track.
func (s *Speaker) Next(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("Next", "<InstanceID>0</InstanceID>"), true)
	return err
}

// Previous goes back to the previous track.
func (s *Speaker) Previous(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("Previous", "<InstanceID>0</InstanceID>"), true)
	return err
}

// Seek jumps to a position within the current track.
func (s *Speaker) Seek(ctx context.Context, offset time.Duration) error {
	seconds := int(offset.Seconds())
	if seconds < 0 {
		return apperrors.NewValidation("seek offset must not be negative, got %s", offset)
	}
	target := fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
	payload := fmt.Sprintf("<InstanceID>0</InstanceID><Unit>REL_TIME</Unit><Target>%s</Target>", target)
	_, err := s.Dispatch(ctx, soap.AVTransport("Seek", payload), true)
	return err
}

// PlayQueueItem jumps to the 1-based queue position.
func (s *Speaker) PlayQueueItem(ctx context.Context, position int) error {
	if position < 1 {
		return apperrors.NewValidation("queue position is 1-based, got %d", position)
	}
	payload := fmt.Sprintf("<InstanceID>0</InstanceID><Unit>TRACK_NR</Unit><Target>%d</Target>", position)
	_, err := s.Dispatch(ctx, soap.AVTransport("Seek", payload), true)
	return err
}

// RemoveTrack removes the track at the 1-based queue position.
func (s *Speaker) RemoveTrack(ctx context.Context, position int) error {
	if position < 1 {
		return apperrors.NewValidation("queue position is 1-based, got %d", position)
	}
	payload := fmt.Sprintf("<InstanceID>0</InstanceID><ObjectID>Q:0/%d</ObjectID>", position)
	_, err := s.Dispatch(ctx, soap.AVTransport("RemoveTrackFromQueue", payload), true)
	return err
}

// QueueTrack appends a track to the end of the queue.
func (s *Speaker) QueueTrack(ctx context.Context, uri string) error {
	return s.enqueue(ctx, uri, false)
}

// QueueNext inserts a track directly after the current one.
func (s *Speaker) QueueNext(ctx context.Context, uri string) error {
	return s.enqueue(ctx, uri, true)
}

func (s *Speaker) enqueue(ctx context.Context, uri string, next bool) error {
	asNext := 0
	if next {
		asNext = 1
	}
	payload := fmt.Sprintf(
		"<InstanceID>0</InstanceID><EnqueuedURI>%s</EnqueuedURI><EnqueuedURIMetaData></EnqueuedURIMetaData><DesiredFirstTrackNumberEnqueued>0</DesiredFirstTrackNumberEnqueued><EnqueueAsNext>%d</EnqueueAsNext>",
		uri, asNext)
	_, err := s.Dispatch(ctx, soap.AVTransport("AddURIToQueue", payload), true)
	return err
}

// PlayTrack replaces the transport URI with a new one.
func (s *Speaker) PlayTrack(ctx context.Context, uri string) error {
	payload := fmt.Sprintf(
		"<InstanceID>0</InstanceID><CurrentURI>%s</CurrentURI><CurrentURIMetaData></CurrentURIMetaData>", uri)
	_, err := s.Dispatch(ctx, soap.AVTransport("SetAVTransportURI", payload), true)
	return err
}

// ClearQueue removes every track from the queue.
func (s *Speaker) ClearQueue(ctx context.Context) error {
	_, err := s.Dispatch(ctx, soap.AVTransport("RemoveAllTracksFromQueue", "<InstanceID>0</InstanceID>"), true)
	return err
}
