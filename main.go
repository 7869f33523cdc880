package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/avhold/capnode/cmd"
	"github.com/avhold/capnode/internal/api"
	"github.com/avhold/capnode/internal/config"
	"github.com/avhold/capnode/internal/devices"
	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/led"
	"github.com/avhold/capnode/internal/logging"
	"github.com/avhold/capnode/internal/metrics"
	"github.com/avhold/capnode/internal/session"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Address to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Pipeline settings
	Backend string `help:"Pipeline backend (gst, mem)" default:"gst" toml:"pipeline.backend" env:"PIPELINE_BACKEND"`

	// Device settings
	VideoDevice  string `help:"Video capture device ID" default:"v4l2:/dev/video0" toml:"devices.video" env:"DEVICES_VIDEO"`
	AudioDevice  string `help:"Audio capture device ID" default:"" toml:"devices.audio" env:"DEVICES_AUDIO"`
	VideoEncoder string `help:"Video encoder ID" default:"enc:x264" toml:"devices.video_encoder" env:"DEVICES_VIDEO_ENCODER"`
	AudioEncoder string `help:"Audio encoder ID" default:"enc:aac" toml:"devices.audio_encoder" env:"DEVICES_AUDIO_ENCODER"`

	// Capture settings
	OutputPath  string `help:"Capture output file" default:"capture.mkv" toml:"capture.output_path" env:"CAPTURE_OUTPUT_PATH"`
	ProfileFile string `help:"Capture profile file, watched for changes" default:"" toml:"capture.profile_file" env:"CAPTURE_PROFILE_FILE"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Features settings
	FeaturesLEDControl bool `help:"Enable LED control" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSession string `help:"Session logging level" default:"info" toml:"logging.session" env:"LOGGING_SESSION"`
	LoggingDevices string `help:"Devices logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.Load(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"session": opts.LoggingSession,
				"devices": opts.LoggingDevices,
				"api":     opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()

		// Bridge log records onto the event bus so /api/logs/stream sees
		// records written after a client's ring buffer replay.
		var logSeq atomic.Uint64
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        logSeq.Add(1),
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		provider, err := cmd.NewBackend(opts.Backend, logger)
		if err != nil {
			logger.Error("Backend selection failed", "error", err)
			os.Exit(1)
		}

		recorder := metrics.NewRecorder()

		sess, err := session.New(session.Config{
			Provider:     provider,
			VideoDevice:  opts.VideoDevice,
			AudioDevice:  opts.AudioDevice,
			VideoEncoder: opts.VideoEncoder,
			AudioEncoder: opts.AudioEncoder,
			OutputPath:   opts.OutputPath,
			EventBus:     eventBus,
			Metrics:      recorder,
			Logger:       logging.GetLogger("session"),
		})
		if err != nil {
			logger.Error("Session setup failed", "error", err)
			os.Exit(1)
		}

		catalog := devices.NewCatalog(provider, logging.GetLogger("devices"))

		// Initialize LED control if enabled
		var ledManager *led.Manager
		var ledController led.Controller
		if opts.FeaturesLEDControl {
			logger.Info("LED control enabled, initializing")
			ledController = led.New(logger)
			ledManager = led.NewManager(ledController, eventBus, logger)
		}

		// Apply and watch the capture profile if one is configured
		var watcher *config.Watcher[config.CaptureProfile]
		if opts.ProfileFile != "" {
			if p, loadErr := config.LoadProfile(opts.ProfileFile); loadErr != nil {
				logger.Warn("Failed to load capture profile", "error", loadErr)
			} else {
				cmd.ApplyProfile(sess, p, logger)
			}

			watcher = config.NewWatcher(opts.ProfileFile, config.LoadProfile, logger)
			watcher.OnReload(func(p config.CaptureProfile) {
				if sess.State() == session.StateCapturing {
					logger.Warn("Capture profile changed during capture, not applied")
					return
				}
				cmd.ApplyProfile(sess, p, logger)
			})
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Session:           sess,
			Catalog:           catalog,
			EventBus:          eventBus,
			PrometheusHandler: recorder.Handler(),
			LEDController:     ledController,
		})

		hooks.OnStart(func() {
			if ledManager != nil {
				ledManager.Start()
			}
			if watcher != nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to start profile watcher", "error", startErr)
				}
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if watcher != nil {
				watcher.Stop()
			}
			if ledManager != nil {
				ledManager.Stop()
			}
			if closeErr := sess.Close(); closeErr != nil {
				logger.Warn("Session teardown failed", "error", closeErr)
			}
		})
	})

	// Add one-shot capture command
	cli.Root().AddCommand(cmd.CreateCaptureCmd())

	// Add source inspection command
	cli.Root().AddCommand(cmd.CreateSourcesCmd())

	// Run the CLI
	cli.Run()
}
