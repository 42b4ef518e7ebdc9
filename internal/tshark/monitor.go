// Package tshark captures queue-occupancy packets by driving an external
// tshark process and decoding the raw IP payload it reports.
package tshark

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"queuewatch/internal/models"
	"queuewatch/internal/qlayer"
)

// protoField is the ip.proto value tshark reports for queue-occupancy packets.
var protoField = strconv.Itoa(int(qlayer.IPProtocolQueueOccupancy))

// Monitor runs tshark against one interface or capture file.
type Monitor struct {
	Interface string
	ReadFile  string // read from a capture file instead of Interface
	Filter    string // capture filter, only applied to live interfaces
	Command   string // tshark binary, "tshark" when empty

	// Promiscuous leaves the interface in promiscuous mode; false adds -p.
	Promiscuous bool

	logger *zap.SugaredLogger
}

// NewMonitor creates a monitor for a live interface.
func NewMonitor(iface, filter string, logger *zap.SugaredLogger) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Monitor{Interface: iface, Filter: filter, Promiscuous: true, logger: logger}
}

// Name returns the interface or file being read.
func (m *Monitor) Name() string {
	if m.ReadFile != "" {
		return m.ReadFile
	}
	return m.Interface
}

func (m *Monitor) args() []string {
	// -l: flush stdout after each packet
	// -n: disable name resolution
	// -T ek: output in Elasticsearch JSON format
	// -e ...: fields to extract
	args := []string{
		"-l", "-n", "-T", "ek",
		"-e", "ip.src", "-e", "ip.dst",
		"-e", "ip.proto",
		"-e", "data.data",
	}

	if m.ReadFile != "" {
		args = append([]string{"-r", m.ReadFile}, args...)
		args = append(args, "-Y", "ip.proto == "+protoField)
		return args
	}

	if m.Interface != "" {
		args = append([]string{"-i", m.Interface}, args...)
	}
	if !m.Promiscuous {
		args = append(args, "-p")
	}
	if m.Filter != "" {
		args = append(args, "-f", m.Filter)
	}
	return args
}

// Run starts tshark and streams decoded samples to out until tshark exits or
// ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, out chan<- models.Sample) error {
	command := m.Command
	if command == "" {
		command = "tshark"
	}

	cmd := exec.CommandContext(ctx, command, m.args()...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start tshark: %w", err)
	}
	m.logger.Infof("tshark capture started on %s", m.Name())

	scanErr := m.scan(ctx, stdout, out)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil
	}
	if scanErr != nil {
		return scanErr
	}
	if waitErr != nil {
		return fmt.Errorf("tshark exited: %w", waitErr)
	}
	return nil
}

// scan reads ek lines from r and sends a sample per queue-occupancy packet.
func (m *Monitor) scan(ctx context.Context, r io.Reader, out chan<- models.Sample) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		// Tshark -T ek outputs an index line before each packet.
		// We look for lines containing "layers".
		if !strings.Contains(line, "\"layers\"") {
			continue
		}

		var ekPkt EkPacket
		if err := json.Unmarshal([]byte(line), &ekPkt); err != nil {
			m.logger.Debugf("skipping malformed tshark line: %v", err)
			continue
		}

		sample, ok, err := convertToModel(ekPkt, m.Name())
		if err != nil {
			m.logger.Debugf("skipping packet on %s: %v", m.Name(), err)
			continue
		}
		if !ok {
			continue
		}

		select {
		case out <- sample:
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}

// convertToModel decodes one ek packet. ok is false for packets that are not
// queue-occupancy packets.
func convertToModel(ek EkPacket, iface string) (models.Sample, bool, error) {
	if len(ek.Layers.IPProto) == 0 || ek.Layers.IPProto[0] != protoField {
		return models.Sample{}, false, nil
	}
	if len(ek.Layers.Data) == 0 {
		return models.Sample{}, false, qlayer.ErrTruncated
	}

	payload, err := decodeHex(ek.Layers.Data[0])
	if err != nil {
		return models.Sample{}, false, err
	}
	v, err := qlayer.Decode(payload)
	if err != nil {
		return models.Sample{}, false, err
	}

	p := models.Sample{
		Timestamp: parseTimestamp(ek.Timestamp),
		Interface: iface,
		Occupancy: v,
	}
	if len(ek.Layers.IPSrc) > 0 {
		p.SrcIP = ek.Layers.IPSrc[0]
	}
	if len(ek.Layers.IPDst) > 0 {
		p.DstIP = ek.Layers.IPDst[0]
	}
	return p, true, nil
}

// decodeHex accepts both "000000000005" and "00:00:00:00:00:05" renderings.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil {
		return nil, fmt.Errorf("bad data.data %q: %w", s, err)
	}
	return b, nil
}

func parseTimestamp(ms string) time.Time {
	if v, err := strconv.ParseInt(ms, 10, 64); err == nil {
		return time.UnixMilli(v)
	}
	return time.Now()
}
