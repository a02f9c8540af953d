package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/w4/soncon/internal/config"
	"github.com/w4/soncon/internal/server"
	"github.com/w4/soncon/internal/speaker"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "soncon",
		Short:         "Control Sonos speakers over UPnP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	loadConfig := func() (config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}

	newLogger := func(cfg config.Config) (*zap.Logger, error) {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		return zapCfg.Build()
	}

	newService := func() (*server.Service, config.Config, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, config.Config{}, err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return nil, config.Config{}, err
		}
		return server.NewService(cfg, logger), cfg, nil
	}

	// speakerCommand builds a command that binds its first argument to a
	// speaker before running.
	speakerCommand := func(name, short string, run func(context.Context, *speaker.Speaker, []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name + " <ip>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				service, cfg, err := newService()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), 3*cfg.SonosTimeout())
				defer cancel()

				sp, err := service.SpeakerAt(ctx, args[0])
				if err != nil {
					return err
				}
				return run(ctx, sp, args)
			},
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "discover",
		Short: "Scan the local network for Sonos speakers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cfg, err := newService()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SSDPWindow()+cfg.SonosTimeout())
			defer cancel()

			identities, err := service.Discover(ctx)
			if err != nil {
				return err
			}
			for _, identity := range identities {
				fmt.Printf("%s\t%s\t%s (%s)\n", identity.IP, identity.RoomName, identity.Model, identity.ModelNumber)
			}
			return nil
		},
	})

	root.AddCommand(speakerCommand("status", "Show transport state", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		state, err := sp.TransportState(ctx)
		if err != nil {
			return err
		}
		fmt.Println(state)
		return nil
	}))

	root.AddCommand(speakerCommand("track", "Show the current track", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		track, err := sp.Track(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s - %s", track.Artist, track.Title)
		if track.Album != "" {
			fmt.Printf(" (%s)", track.Album)
		}
		fmt.Printf("\n%s / %s, queue position %d\n%s\n",
			clock(track.RunningTime), clock(track.Duration), track.QueuePosition, track.URI)
		return nil
	}))

	root.AddCommand(speakerCommand("queue", "List the playback queue", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		queue, err := sp.Queue(ctx)
		if err != nil {
			return err
		}
		for _, item := range queue {
			fmt.Printf("%3d  %s - %s  [%s]\n", item.Position, item.Artist, item.Title, clock(item.Duration))
		}
		return nil
	}))

	root.AddCommand(speakerCommand("play", "Resume playback", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		return sp.Play(ctx)
	}))
	root.AddCommand(speakerCommand("pause", "Pause playback", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		return sp.Pause(ctx)
	}))
	root.AddCommand(speakerCommand("stop", "Stop playback", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		return sp.Stop(ctx)
	}))
	root.AddCommand(speakerCommand("next", "Skip to the next track", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		return sp.Next(ctx)
	}))
	root.AddCommand(speakerCommand("previous", "Go back to the previous track", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		return sp.Previous(ctx)
	}))

	volume := speakerCommand("volume", "Get or set the master volume", func(ctx context.Context, sp *speaker.Speaker, args []string) error {
		if len(args) < 2 {
			level, err := sp.Volume(ctx)
			if err != nil {
				return err
			}
			fmt.Println(level)
			return nil
		}
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("volume must be a number, got %q", args[1])
		}
		return sp.SetVolume(ctx, level)
	})
	volume.Use = "volume <ip> [level]"
	volume.Args = cobra.RangeArgs(1, 2)
	root.AddCommand(volume)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control API",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return serve(loadConfig, newLogger) },
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(loadConfig func() (config.Config, error), newLogger func(config.Config) (*zap.Logger, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := cfg.Host + ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewHandler(cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("soncon listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
