// Package qlayer decodes the queue-occupancy telemetry header that switches
// stamp onto IP packets carrying protocol number 0x99.
//
// Wire layout, offset from the start of the IP payload:
//
//	0               6
//	+---------------+------------
//	| occupancy u48 | payload ...
//	+---------------+------------
//
// Importing the package binds the layer to IP protocol 0x99, so gopacket only
// hands it packets whose protocol field matches.
package qlayer

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// IPProtocolQueueOccupancy marks IP packets carrying the telemetry header.
	IPProtocolQueueOccupancy layers.IPProtocol = 0x99

	// HeaderLen is the width of the occupancy field in bytes.
	HeaderLen = 6

	// MaxOccupancy is the largest value a 48-bit field can hold.
	MaxOccupancy uint64 = 1<<48 - 1
)

var (
	// ErrTruncated is returned when fewer than HeaderLen bytes are available.
	ErrTruncated = errors.New("queue occupancy header truncated")

	// ErrOccupancyRange is returned when serializing a value wider than 48 bits.
	ErrOccupancyRange = errors.New("queue occupancy exceeds 48 bits")
)

// LayerTypeQueueOccupancy type registration
var LayerTypeQueueOccupancy = gopacket.RegisterLayerType(1153, gopacket.LayerTypeMetadata{Name: "QueueOccupancy", Decoder: gopacket.DecodeFunc(decodeQueueOccupancy)})

func init() {
	layers.IPProtocolMetadata[IPProtocolQueueOccupancy] = layers.EnumMetadata{
		DecodeWith: gopacket.DecodeFunc(decodeQueueOccupancy),
		Name:       "QueueOccupancy",
		LayerType:  LayerTypeQueueOccupancy,
	}
}

// Decode interprets the first HeaderLen bytes of payload as a big-endian
// unsigned integer.
func Decode(payload []byte) (uint64, error) {
	if len(payload) < HeaderLen {
		return 0, fmt.Errorf("%w: got %d bytes, need %d", ErrTruncated, len(payload), HeaderLen)
	}
	return uint64(payload[0])<<40 |
		uint64(payload[1])<<32 |
		uint64(payload[2])<<24 |
		uint64(payload[3])<<16 |
		uint64(payload[4])<<8 |
		uint64(payload[5]), nil
}

// Encode writes v into the first HeaderLen bytes of dst.
func Encode(dst []byte, v uint64) error {
	if len(dst) < HeaderLen {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrTruncated, len(dst), HeaderLen)
	}
	if v > MaxOccupancy {
		return fmt.Errorf("%w: %d", ErrOccupancyRange, v)
	}
	for i := 0; i < HeaderLen; i++ {
		dst[i] = byte(v >> (8 * uint(HeaderLen-1-i)))
	}
	return nil
}

// QueueOccupancy is the telemetry header.
type QueueOccupancy struct {
	layers.BaseLayer
	Occupancy uint64
}

// LayerType returns LayerTypeQueueOccupancy
func (q *QueueOccupancy) LayerType() gopacket.LayerType {
	return LayerTypeQueueOccupancy
}

// DecodeFromBytes decodes the given bytes into this layer.
func (q *QueueOccupancy) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	v, err := Decode(data)
	if err != nil {
		df.SetTruncated()
		return err
	}

	q.Occupancy = v
	q.Contents = data[:HeaderLen]
	q.Payload = data[HeaderLen:]
	return nil
}

// CanDecode returns the set of layer types that this DecodingLayer can decode.
func (q *QueueOccupancy) CanDecode() gopacket.LayerClass {
	return LayerTypeQueueOccupancy
}

// NextLayerType returns the layer type contained by this DecodingLayer.
func (q *QueueOccupancy) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// SerializeTo writes the header into b, prepending to any existing payload.
func (q *QueueOccupancy) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(HeaderLen)
	if err != nil {
		return err
	}
	return Encode(bytes, q.Occupancy)
}

func decodeQueueOccupancy(data []byte, p gopacket.PacketBuilder) error {
	q := &QueueOccupancy{}
	if err := q.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(q)
	return p.NextDecoder(q.NextLayerType())
}
