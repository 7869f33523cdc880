package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// CaptureProfile is the hot-reloadable capture description: where the
// recording goes and which formats and inputs to negotiate before the
// next run. Zero values mean "leave the device's current setting alone".
type CaptureProfile struct {
	OutputPath string `toml:"output_path"`

	Video struct {
		FrameRate float64 `toml:"frame_rate"`
		Width     int     `toml:"width"`
		Height    int     `toml:"height"`
		Source    string  `toml:"source"`
	} `toml:"video"`

	Audio struct {
		Channels   int    `toml:"channels"`
		SampleRate int    `toml:"sample_rate"`
		SampleSize int    `toml:"sample_size"`
		Source     string `toml:"source"`
	} `toml:"audio"`

	Tuner struct {
		Channel int `toml:"channel"`
	} `toml:"tuner"`
}

// LoadProfile reads a capture profile from a TOML file.
func LoadProfile(path string) (CaptureProfile, error) {
	var p CaptureProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read profile %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: parse profile %s: %w", path, err)
	}
	return p, nil
}
