package live

import (
	"fmt"

	"queuewatch/internal/capture"
	"queuewatch/internal/config"
)

// Open opens a live source using the engine named in cfg.
func Open(cfg config.CaptureConfig) (*capture.Source, error) {
	switch cfg.Engine {
	case config.EnginePcap:
		return OpenPcap(cfg)
	case config.EngineAFPacket:
		return OpenAFPacket(cfg)
	default:
		return nil, fmt.Errorf("live: engine %q does not capture through gopacket", cfg.Engine)
	}
}
