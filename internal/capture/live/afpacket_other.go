//go:build !linux

package live

import (
	"fmt"
	"runtime"

	"queuewatch/internal/capture"
	"queuewatch/internal/config"
)

// OpenAFPacket is a stub for platforms without AF_PACKET sockets.
func OpenAFPacket(cfg config.CaptureConfig) (*capture.Source, error) {
	return nil, fmt.Errorf("afpacket: not supported on %s (requires Linux AF_PACKET), use the pcap engine", runtime.GOOS)
}
