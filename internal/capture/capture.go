// Package capture reads packets from a gopacket data source and turns the
// ones carrying a queue-occupancy header into models.Sample values.
//
// Live backends (libpcap, AF_PACKET) live in the live subpackage; offline
// pcap/pcapng files are opened with OpenFile.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"go.uber.org/zap"

	"queuewatch/internal/models"
	"queuewatch/internal/qlayer"
)

// ErrReadTimeout is returned by wrapped data sources when no packet arrived
// within the read timeout. Run treats it as a chance to check for cancellation.
var ErrReadTimeout = errors.New("capture: read timeout")

// Source is a single packet source bound to one interface or file.
type Source struct {
	name    string
	data    gopacket.PacketDataSource
	decoder gopacket.Decoder
	closeFn func()
	logger  *zap.SugaredLogger
}

// NewSource wraps data. decoder decodes the first layer of each packet,
// usually the handle's link type. closeFn, if non-nil, is called once when
// Run returns.
func NewSource(name string, data gopacket.PacketDataSource, decoder gopacket.Decoder, closeFn func()) *Source {
	return &Source{
		name:    name,
		data:    data,
		decoder: decoder,
		closeFn: closeFn,
		logger:  zap.NewNop().Sugar(),
	}
}

// SetLogger sets the logger used for per-packet diagnostics.
func (s *Source) SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		s.logger = l
	}
}

// Name returns the interface or file name of the source.
func (s *Source) Name() string {
	return s.name
}

// Run reads packets until ctx is done or the source is exhausted, sending a
// Sample for each queue-occupancy packet. It returns nil on cancellation and
// on end of file.
func (s *Source) Run(ctx context.Context, out chan<- models.Sample) error {
	if s.closeFn != nil {
		defer s.closeFn()
	}

	opts := gopacket.DecodeOptions{Lazy: true, NoCopy: true}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, ci, err := s.data.ReadPacketData()
		switch {
		case err == nil:
		case errors.Is(err, ErrReadTimeout):
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			s.logger.Debugf("end of capture on %s", s.name)
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("capture: reading from %s: %w", s.name, err)
		}

		pkt := gopacket.NewPacket(data, s.decoder, opts)
		md := pkt.Metadata()
		md.CaptureInfo = ci

		sample, ok, err := Extract(pkt, s.name)
		if err != nil {
			s.logger.Debugf("skipping packet on %s: %v", s.name, err)
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
}

// Extract returns the queue-occupancy sample carried by pkt. ok is false when
// the packet is not a queue-occupancy packet. A packet bound for the decoder
// whose header is too short yields an error wrapping qlayer.ErrTruncated.
func Extract(pkt gopacket.Packet, iface string) (sample models.Sample, ok bool, err error) {
	l := pkt.Layer(qlayer.LayerTypeQueueOccupancy)
	if l == nil {
		if e := pkt.ErrorLayer(); e != nil && errors.Is(e.Error(), qlayer.ErrTruncated) {
			return models.Sample{}, false, e.Error()
		}
		return models.Sample{}, false, nil
	}
	q := l.(*qlayer.QueueOccupancy)

	sample = models.Sample{
		Timestamp: pkt.Metadata().Timestamp,
		Interface: iface,
		Occupancy: q.Occupancy,
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	if nl := pkt.NetworkLayer(); nl != nil {
		flow := nl.NetworkFlow()
		sample.SrcIP = flow.Src().String()
		sample.DstIP = flow.Dst().String()
	}
	return sample, true, nil
}
