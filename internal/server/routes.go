package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/w4/soncon/internal/api"
	"github.com/w4/soncon/internal/apperrors"
	"github.com/w4/soncon/internal/speaker"
)

// RegisterRoutes wires the control routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Route("/v1/devices", func(devices chi.Router) {
		devices.Method(http.MethodGet, "/", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			identities, err := service.Discover(r.Context())
			if err != nil {
				return err
			}
			return api.WriteList(w, "/v1/devices", identities)
		}))

		devices.Method(http.MethodGet, "/{ip}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			return api.WriteJSON(w, http.StatusOK, sp.Identity)
		}))

		devices.Method(http.MethodGet, "/{ip}/coordinator", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			coordinator, err := sp.Coordinator(r.Context())
			if err != nil {
				return err
			}
			return api.WriteJSON(w, http.StatusOK, map[string]any{
				"object":      "coordinator",
				"ip":          sp.Identity.IP,
				"coordinator": coordinator,
			})
		}))

		devices.Method(http.MethodGet, "/{ip}/now-playing", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			state, err := sp.TransportState(r.Context())
			if err != nil {
				return err
			}
			payload := map[string]any{
				"object": "now_playing",
				"ip":     sp.Identity.IP,
				"state":  state.String(),
			}
			// A stopped transport has no current track to report.
			if state != speaker.Stopped && state != speaker.NoMediaPresent {
				track, trackErr := sp.Track(r.Context())
				if trackErr != nil {
					service.logger.Warn("failed to load current track",
						zap.String("ip", sp.Identity.IP),
						zap.Error(trackErr))
				} else {
					payload["track"] = trackView(track)
				}
			}
			return api.WriteJSON(w, http.StatusOK, payload)
		}))

		devices.Method(http.MethodGet, "/{ip}/queue", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			queue, err := sp.Queue(r.Context())
			if err != nil {
				return err
			}
			items := make([]map[string]any, 0, len(queue))
			for _, item := range queue {
				items = append(items, map[string]any{
					"position":      item.Position,
					"uri":           item.URI,
					"title":         item.Title,
					"artist":        item.Artist,
					"album":         item.Album,
					"album_art_uri": item.AlbumArtURI,
					"duration_sec":  int(item.Duration.Seconds()),
				})
			}
			return api.WriteList(w, "/v1/devices/"+sp.Identity.IP+"/queue", items)
		}))

		devices.Method(http.MethodGet, "/{ip}/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			volume, err := sp.Volume(r.Context())
			if err != nil {
				return err
			}
			muted, err := sp.Muted(r.Context())
			if err != nil {
				return err
			}
			return api.WriteJSON(w, http.StatusOK, map[string]any{
				"object": "volume",
				"ip":     sp.Identity.IP,
				"volume": volume,
				"muted":  muted,
			})
		}))

		devices.Method(http.MethodPost, "/{ip}/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			var body struct {
				Volume *int  `json:"volume"`
				Muted  *bool `json:"muted"`
			}
			if err := decodeJSON(r, &body); err != nil {
				return err
			}
			if body.Volume == nil && body.Muted == nil {
				return apperrors.NewValidation("one of volume or muted is required")
			}

			sp, err := service.SpeakerAt(r.Context(), chi.URLParam(r, "ip"))
			if err != nil {
				return err
			}
			if body.Volume != nil {
				if err := sp.SetVolume(r.Context(), *body.Volume); err != nil {
					return err
				}
			}
			if body.Muted != nil {
				var muteErr error
				if *body.Muted {
					muteErr = sp.Mute(r.Context())
				} else {
					muteErr = sp.Unmute(r.Context())
				}
				if muteErr != nil {
					return muteErr
				}
			}
			return api.WriteJSON(w, http.StatusOK, map[string]any{
				"object":     "volume_action",
				"ip":         sp.Identity.IP,
				"applied_at": time.Now().UTC().Format(time.RFC3339),
			})
		}))
	})

	router.Route("/v1/playback", func(playback chi.Router) {
		playback.Method(http.MethodPost, "/{action}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			var body struct {
				IP string `json:"ip"`
				// Seconds is the target offset for seek.
				Seconds *int `json:"seconds"`
			}
			if err := decodeJSON(r, &body); err != nil {
				return err
			}
			if body.IP == "" {
				return apperrors.NewValidation("ip is required")
			}

			sp, err := service.SpeakerAt(r.Context(), body.IP)
			if err != nil {
				return err
			}

			action := chi.URLParam(r, "action")
			switch action {
			case "play":
				err = sp.Play(r.Context())
			case "pause":
				err = sp.Pause(r.Context())
			case "stop":
				err = sp.Stop(r.Context())
			case "next":
				err = sp.Next(r.Context())
			case "previous":
				err = sp.Previous(r.Context())
			case "seek":
				if body.Seconds == nil {
					return apperrors.NewValidation("seconds is required for seek")
				}
				err = sp.Seek(r.Context(), time.Duration(*body.Seconds)*time.Second)
			default:
				return apperrors.NewValidation("unknown playback action %q", action)
			}
			if err != nil {
				return err
			}

			return api.WriteJSON(w, http.StatusOK, map[string]any{
				"object":     "playback_action",
				"ip":         body.IP,
				"action":     action,
				"applied_at": time.Now().UTC().Format(time.RFC3339),
			})
		}))
	})
}

func trackView(track *speaker.TrackInfo) map[string]any {
	return map[string]any{
		"title":            track.Title,
		"artist":           track.Artist,
		"album":            track.Album,
		"queue_position":   track.QueuePosition,
		"uri":              track.URI,
		"duration_sec":     int(track.Duration.Seconds()),
		"running_time_sec": int(track.RunningTime.Seconds()),
	}
}

func decodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperrors.NewValidation("invalid request body")
	}
	return nil
}
