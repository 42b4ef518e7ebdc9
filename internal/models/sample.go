package models

import "time"

// Sample is one decoded queue-occupancy reading.
type Sample struct {
	Timestamp time.Time
	Interface string // Capture interface or file the packet came from
	SrcIP     string
	DstIP     string
	Occupancy uint64
}
