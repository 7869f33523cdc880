package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avhold/capnode/internal/config"
	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/logging"
	"github.com/avhold/capnode/internal/session"
	"github.com/avhold/capnode/internal/source"
)

// CreateCaptureCmd creates the one-shot capture command. It builds a
// session over the chosen backend, applies the profile, records until the
// duration elapses or a signal arrives, and tears down.
func CreateCaptureCmd() *cobra.Command {
	var (
		backend      string
		videoDevice  string
		audioDevice  string
		videoEncoder string
		audioEncoder string
		output       string
		profileFile  string
		configFile   string
		duration     time.Duration
		logJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run a one-shot capture",
		Long: `Records from the configured devices into the output file. ` +
			`The capture stops after --duration, or on SIGINT/SIGTERM when no duration is given. ` +
			`When --profile is set the profile file is applied before the run and watched for changes between runs.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := config.LoadLoggingConfig(configFile)
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("capture")

			provider, err := NewBackend(backend, logger)
			if err != nil {
				logger.Error("Backend selection failed", "error", err)
				os.Exit(1)
			}

			sess, err := session.New(session.Config{
				Provider:     provider,
				VideoDevice:  videoDevice,
				AudioDevice:  audioDevice,
				VideoEncoder: videoEncoder,
				AudioEncoder: audioEncoder,
				OutputPath:   output,
				EventBus:     events.New(),
				Logger:       logging.GetLogger("session"),
			})
			if err != nil {
				logger.Error("Session setup failed", "error", err)
				os.Exit(1)
			}

			if profileFile != "" {
				if p, loadErr := config.LoadProfile(profileFile); loadErr != nil {
					logger.Warn("Profile load failed, using flag values", "error", loadErr)
				} else {
					ApplyProfile(sess, p, logger)
				}

				watcher := config.NewWatcher(profileFile, config.LoadProfile, logger)
				watcher.OnReload(func(p config.CaptureProfile) {
					if sess.State() == session.StateCapturing {
						logger.Warn("Profile changed during capture, not applied")
						return
					}
					ApplyProfile(sess, p, logger)
				})
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Profile watcher failed", "error", watchErr)
				}
				defer watcher.Stop()
			}

			done := make(chan struct{})
			sess.OnCaptureComplete(func() { close(done) })

			if startErr := sess.Start(); startErr != nil {
				var busy *session.DeviceInUseError
				if errors.As(startErr, &busy) {
					logger.Error("Device is in use by another application", "device", busy.Device)
				} else {
					logger.Error("Capture start failed", "error", startErr)
				}
				os.Exit(1)
			}
			logger.Info("Capture running", "output", sess.OutputPath())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(duration):
				}
			} else {
				<-ctx.Done()
			}

			if stopErr := sess.Stop(); stopErr != nil {
				logger.Warn("Capture stop reported an error", "error", stopErr)
			}
			<-done
			if closeErr := sess.Close(); closeErr != nil {
				logger.Warn("Session teardown failed", "error", closeErr)
			}
			logger.Info("Capture complete", "output", sess.OutputPath())
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "gst", "Pipeline backend (gst, mem)")
	cmd.Flags().StringVar(&videoDevice, "video-device", "v4l2:/dev/video0", "Video capture device ID")
	cmd.Flags().StringVar(&audioDevice, "audio-device", "", "Audio capture device ID")
	cmd.Flags().StringVar(&videoEncoder, "video-encoder", "enc:x264", "Video encoder ID")
	cmd.Flags().StringVar(&audioEncoder, "audio-encoder", "enc:aac", "Audio encoder ID")
	cmd.Flags().StringVarP(&output, "output", "o", "capture.mkv", "Output file path")
	cmd.Flags().StringVar(&profileFile, "profile", "", "Capture profile TOML file")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file with [logging] overrides")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Capture duration (0 records until interrupted)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}

// ApplyProfile pushes a capture profile's settings into a session. Zero
// values leave the corresponding device setting alone; individual
// failures are logged and do not abort the rest of the profile.
func ApplyProfile(s *session.Session, p config.CaptureProfile, logger logging.Logger) {
	if p.OutputPath != "" {
		if err := s.SetOutputPath(p.OutputPath); err != nil {
			logger.Warn("Profile output path not applied", "error", err)
		}
	}
	if s.HasVideo() {
		if p.Video.FrameRate > 0 {
			if err := s.SetFrameRate(p.Video.FrameRate); err != nil {
				logger.Warn("Profile frame rate not applied", "error", err)
			}
		}
		if p.Video.Width > 0 && p.Video.Height > 0 {
			if err := s.SetFrameSize(p.Video.Width, p.Video.Height); err != nil {
				logger.Warn("Profile frame size not applied", "error", err)
			}
		}
		if p.Video.Source != "" {
			selectProfileSource(s, s.VideoSources, p.Video.Source, logger)
		}
	}
	if s.HasAudio() {
		if p.Audio.Channels > 0 {
			if err := s.SetChannels(p.Audio.Channels); err != nil {
				logger.Warn("Profile channel count not applied", "error", err)
			}
		}
		if p.Audio.SampleRate > 0 {
			if err := s.SetSampleRate(p.Audio.SampleRate); err != nil {
				logger.Warn("Profile sample rate not applied", "error", err)
			}
		}
		if p.Audio.SampleSize > 0 {
			if err := s.SetSampleSize(p.Audio.SampleSize); err != nil {
				logger.Warn("Profile sample size not applied", "error", err)
			}
		}
		if p.Audio.Source != "" {
			selectProfileSource(s, s.AudioSources, p.Audio.Source, logger)
		}
	}
	if p.Tuner.Channel > 0 {
		t, err := s.Tuner()
		if err != nil {
			logger.Warn("Profile tuner channel not applied", "error", err)
		} else if err := t.SetChannel(p.Tuner.Channel); err != nil {
			logger.Warn("Profile tuner channel not applied", "error", err)
		}
	}
}

func selectProfileSource(s *session.Session, registry func() (*source.Registry, error), name string, logger logging.Logger) {
	reg, err := registry()
	if err != nil {
		logger.Warn("Profile source not applied", "source", name, "error", err)
		return
	}
	src := reg.ByName(name)
	if src == nil {
		logger.Warn("Profile source not found", "source", name)
		return
	}
	if err := s.SelectSource(reg, src); err != nil {
		logger.Warn("Profile source not applied", "source", name, "error", err)
	}
}
