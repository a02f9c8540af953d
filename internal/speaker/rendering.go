package speaker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/soap"
)

// Volume returns the current master volume, 0-100. Rendering control is
// per-device, not per-group, so these never route through the coordinator.
func (s *Speaker) Volume(ctx context.Context) (int, error) {
	resp, err := s.Dispatch(ctx, soap.RenderingControl("GetVolume",
		"<InstanceID>0</InstanceID><Channel>Master</Channel>"), false)
	if err != nil {
		return 0, err
	}

	text, err := resp.ChildText("CurrentVolume")
	if err != nil {
		return 0, err
	}
	volume, err := strconv.Atoi(text)
	if err != nil {
		return 0, apperrors.NewParseWrap("CurrentVolume "+text, err)
	}
	return volume, nil
}

// SetVolume sets the master volume. Values outside 0-100 are rejected
// before any request is made.
func (s *Speaker) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 || volume > 100 {
		return apperrors.NewValidation("volume must be between 0 and 100, got %d", volume)
	}
	payload := fmt.Sprintf(
		"<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredVolume>%d</DesiredVolume>", volume)
	_, err := s.Dispatch(ctx, soap.RenderingControl("SetVolume", payload), false)
	return err
}

// Muted reports whether the speaker is muted.
func (s *Speaker) Muted(ctx context.Context) (bool, error) {
	resp, err := s.Dispatch(ctx, soap.RenderingControl("GetMute",
		"<InstanceID>0</InstanceID><Channel>Master</Channel>"), false)
	if err != nil {
		return false, err
	}

	text, err := resp.ChildText("CurrentMute")
	if err != nil {
		return false, err
	}
	return text == "1", nil
}

// Mute mutes the speaker.
func (s *Speaker) Mute(ctx context.Context) error {
	return s.setMute(ctx, true)
}

// Unmute unmutes the speaker.
func (s *Speaker) Unmute(ctx context.Context) error {
	return s.setMute(ctx, false)
}

func (s *Speaker) setMute(ctx context.Context, muted bool) error {
	desired := "0"
	if muted {
		desired = "1"
	}
	payload := "<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredMute>" + desired + "</DesiredMute>"
	_, err := s.Dispatch(ctx, soap.RenderingControl("SetMute", payload), false)
	return err
}
