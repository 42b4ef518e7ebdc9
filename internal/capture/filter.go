package capture

import (
	"fmt"

	"golang.org/x/net/bpf"

	"queuewatch/internal/qlayer"
)

// FilterExpression is the libpcap/tshark capture filter selecting
// queue-occupancy packets.
var FilterExpression = fmt.Sprintf("ip proto %d", uint8(qlayer.IPProtocolQueueOccupancy))

// FilterProgram returns a classic BPF program for Ethernet frames that keeps
// IPv4 packets with protocol 0x99, truncated to snapLen bytes.
func FilterProgram(snapLen uint32) []bpf.Instruction {
	return []bpf.Instruction{
		// eth.type
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x0800, SkipTrue: 0, SkipFalse: 3},
		// ip.proto
		bpf.LoadAbsolute{Off: 23, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(qlayer.IPProtocolQueueOccupancy), SkipTrue: 0, SkipFalse: 1},
		bpf.RetConstant{Val: snapLen},
		bpf.RetConstant{Val: 0},
	}
}

// AssembleFilter assembles FilterProgram into raw instructions ready to be
// attached to a socket.
func AssembleFilter(snapLen uint32) ([]bpf.RawInstruction, error) {
	raw, err := bpf.Assemble(FilterProgram(snapLen))
	if err != nil {
		return nil, fmt.Errorf("capture: assembling filter: %w", err)
	}
	return raw, nil
}
