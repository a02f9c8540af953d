package speaker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/soap"
	"github.com/w4/soncon/internal/xmldoc"
)

// TrackInfo describes the track a group is currently playing. Built fresh
// on every query.
type TrackInfo struct {
	Title  string
	Artist string
	// Album may legitimately be absent (radio streams, line-in).
	Album string
	// QueuePosition is 1-based.
	QueuePosition int
	URI           string
	Duration      time.Duration
	RunningTime   time.Duration
}

// Track queries the coordinator for the current track and decodes its
// DIDL-Lite metadata.
func (s *Speaker) Track(ctx context.Context) (*TrackInfo, error) {
	resp, err := s.Dispatch(ctx, soap.AVTransport("GetPositionInfo", "<InstanceID>0</InstanceID>"), true)
	if err != nil {
		return nil, err
	}

	metadataXML, err := resp.ChildText("TrackMetaData")
	if err != nil {
		return nil, err
	}
	metadata, err := xmldoc.Parse([]byte(metadataXML))
	if err != nil {
		return nil, err
	}
	item, err := metadata.Child("item")
	if err != nil {
		return nil, err
	}

	title, err := item.ChildText("title")
	if err != nil {
		return nil, err
	}
	artist, err := item.ChildText("creator")
	if err != nil {
		return nil, err
	}
	album := ""
	if albumEl, albumErr := item.Child("album"); albumErr == nil {
		album, _ = albumEl.Text()
	}

	durationText, err := resp.ChildText("TrackDuration")
	if err != nil {
		return nil, err
	}
	duration, err := ParseClockDuration(durationText)
	if err != nil {
		return nil, err
	}

	runningText, err := resp.ChildText("RelTime")
	if err != nil {
		return nil, err
	}
	running, err := ParseClockDuration(runningText)
	if err != nil {
		return nil, err
	}

	positionText, err := resp.ChildText("Track")
	if err != nil {
		return nil, err
	}
	position, err := strconv.Atoi(positionText)
	if err != nil {
		return nil, apperrors.NewParseWrap("Track "+positionText, err)
	}

	uri, err := resp.ChildText("TrackURI")
	if err != nil {
		return nil, err
	}

	return &TrackInfo{
		Title:         title,
		Artist:        artist,
		Album:         album,
		QueuePosition: position,
		URI:           uri,
		Duration:      duration,
		RunningTime:   running,
	}, nil
}

// ParseClockDuration converts the wire h:mm:ss form to a Duration. Hours
// are unbounded; nothing may be negative; malformed text is a parse error,
// never a defaulted zero.
func ParseClockDuration(text string) (time.Duration, error) {
	parts := strings.SplitN(text, ":", 3)
	if len(parts) != 3 {
		return 0, apperrors.NewParse("duration " + text)
	}

	var fields [3]int
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0, apperrors.NewParse("duration " + text)
		}
		fields[i] = value
	}

	seconds := fields[0]*3600 + fields[1]*60 + fields[2]
	return time.Duration(seconds) * time.Second, nil
}
