package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"queuewatch/internal/capture"
)

// Capture engines.
const (
	EnginePcap     = "pcap"
	EngineAFPacket = "afpacket"
	EngineTshark   = "tshark"
)

// Output formats.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all queuewatch configuration.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// CaptureConfig selects where and how packets are captured.
type CaptureConfig struct {
	Interface   string         `yaml:"interface"`   // network interface to sniff (e.g. "ens7")
	Engine      string         `yaml:"engine"`      // "pcap" (default), "afpacket" or "tshark"
	ReadFile    string         `yaml:"read_file"`   // replay a pcap/pcapng file instead of a live interface
	SnapLen     int            `yaml:"snaplen"`     // bytes captured per packet
	Promiscuous bool           `yaml:"promiscuous"` // open the interface in promiscuous mode
	Filter      string         `yaml:"filter"`      // libpcap/tshark capture filter
	AFPacket    AFPacketConfig `yaml:"afpacket"`
}

// AFPacketConfig sizes the TPACKET ring used by the afpacket engine.
type AFPacketConfig struct {
	FrameSize int `yaml:"frame_size"`
	BlockSize int `yaml:"block_size"`
	NumBlocks int `yaml:"num_blocks"`
}

// OutputConfig controls how decoded values are reported.
type OutputConfig struct {
	Format      string `yaml:"format"`       // "plain" (one decimal per line) or "json"
	TUI         bool   `yaml:"tui"`          // show the interactive view instead of printing
	RecentLimit int    `yaml:"recent_limit"` // samples kept for the interactive view
}

// LogConfig controls diagnostic logging. Logs never go to stdout.
type LogConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // console or json
	File     string `yaml:"file"`     // optional log file; stderr when empty
}

// Defaults returns a Config populated with sensible default values.
func Defaults() Config {
	return Config{
		Capture: CaptureConfig{
			Interface:   "ens7",
			Engine:      EnginePcap,
			SnapLen:     65535,
			Promiscuous: true,
			Filter:      capture.FilterExpression,
			AFPacket: AFPacketConfig{
				FrameSize: 4096,
				BlockSize: 4096 * 128,
				NumBlocks: 64,
			},
		},
		Output: OutputConfig{
			Format:      FormatPlain,
			RecentLimit: 20,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads a YAML configuration file from path and returns a Config.
// Values not specified in the file retain their defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Capture.Engine {
	case EnginePcap, EngineAFPacket, EngineTshark:
	default:
		return fmt.Errorf("%w: unknown capture engine %q", ErrInvalid, c.Capture.Engine)
	}
	if c.Capture.ReadFile == "" && c.Capture.Interface == "" {
		return fmt.Errorf("%w: an interface or a capture file is required", ErrInvalid)
	}
	if c.Capture.SnapLen <= 0 {
		return fmt.Errorf("%w: snaplen must be positive, got %d", ErrInvalid, c.Capture.SnapLen)
	}
	if c.Capture.Engine == EngineAFPacket {
		af := c.Capture.AFPacket
		if af.FrameSize <= 0 || af.BlockSize <= 0 || af.NumBlocks <= 0 {
			return fmt.Errorf("%w: afpacket ring sizes must be positive", ErrInvalid)
		}
		if af.BlockSize%af.FrameSize != 0 {
			return fmt.Errorf("%w: afpacket block_size must be a multiple of frame_size", ErrInvalid)
		}
	}
	switch c.Output.Format {
	case FormatPlain, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.Output.Format)
	}
	if c.Output.TUI && c.Output.RecentLimit <= 0 {
		return fmt.Errorf("%w: recent_limit must be positive", ErrInvalid)
	}
	return nil
}
