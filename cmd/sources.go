package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/logging"
	"github.com/avhold/capnode/internal/session"
	"github.com/avhold/capnode/internal/source"
)

// CreateSourcesCmd creates the source inspection command. It lists the
// physical inputs a device exposes and optionally switches to one.
func CreateSourcesCmd() *cobra.Command {
	var (
		backend     string
		videoDevice string
		audioDevice string
		selectName  string
		disable     bool
	)

	cmd := &cobra.Command{
		Use:   "sources [video|audio]",
		Short: "List or select a device's physical inputs",
		Long: `Discovers the physical inputs (composite, S-Video, tuner, mixer pins) ` +
			`reachable upstream of the capture device and prints them. ` +
			`--select switches to a named input; --disable turns all inputs off.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			kind := args[0]
			if kind != "video" && kind != "audio" {
				fmt.Fprintf(os.Stderr, "unknown source kind %q (want video or audio)\n", kind)
				os.Exit(1)
			}

			logging.Initialize(logging.Config{Level: "warn", Format: "text"})
			logger := logging.GetLogger("sources")

			provider, err := NewBackend(backend, logger)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			sess, err := session.New(session.Config{
				Provider:    provider,
				VideoDevice: videoDevice,
				AudioDevice: audioDevice,
				EventBus:    events.New(),
				Logger:      logger,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer sess.Close()

			var reg *source.Registry
			if kind == "video" {
				reg, err = sess.VideoSources()
			} else {
				reg, err = sess.AudioSources()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "source discovery failed: %v\n", err)
				os.Exit(1)
			}

			switch {
			case disable:
				err = sess.SelectSource(reg, nil)
			case selectName != "":
				src := reg.ByName(selectName)
				if src == nil {
					fmt.Fprintf(os.Stderr, "unknown source %q\n", selectName)
					os.Exit(1)
				}
				err = sess.SelectSource(reg, src)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "source selection failed: %v\n", err)
				os.Exit(1)
			}

			if reg.Len() == 0 {
				fmt.Println("no selectable sources")
				return
			}
			current, _ := reg.Current()
			for _, src := range reg.Sources() {
				marker := " "
				if src == current {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, src.Name())
			}
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "gst", "Pipeline backend (gst, mem)")
	cmd.Flags().StringVar(&videoDevice, "video-device", "v4l2:/dev/video0", "Video capture device ID")
	cmd.Flags().StringVar(&audioDevice, "audio-device", "", "Audio capture device ID")
	cmd.Flags().StringVar(&selectName, "select", "", "Switch to the named source")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable every source")

	return cmd
}
