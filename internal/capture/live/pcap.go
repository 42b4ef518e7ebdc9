// Package live opens queue-occupancy capture sources on network interfaces,
// either through libpcap or, on Linux, an AF_PACKET ring.
package live

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"queuewatch/internal/capture"
	"queuewatch/internal/config"
)

// pollTimeout bounds how long a read may block before cancellation is checked.
const pollTimeout = 500 * time.Millisecond

// OpenPcap opens cfg.Interface through libpcap with the queue-occupancy
// capture filter installed.
func OpenPcap(cfg config.CaptureConfig) (*capture.Source, error) {
	inactive, err := pcap.NewInactiveHandle(cfg.Interface)
	if err != nil {
		return nil, errors.WrapPrefix(err, "pcap: "+cfg.Interface, 0)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(cfg.SnapLen); err != nil {
		return nil, errors.WrapPrefix(err, "pcap: snaplen", 0)
	}
	if err := inactive.SetPromisc(cfg.Promiscuous); err != nil {
		return nil, errors.WrapPrefix(err, "pcap: promiscuous mode", 0)
	}
	if err := inactive.SetTimeout(pollTimeout); err != nil {
		return nil, errors.WrapPrefix(err, "pcap: timeout", 0)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, errors.WrapPrefix(err, "pcap: activate "+cfg.Interface, 0)
	}

	if err := handle.SetBPFFilter(cfg.Filter); err != nil {
		handle.Close()
		return nil, errors.WrapPrefix(err, "pcap: filter "+cfg.Filter, 0)
	}

	return capture.NewSource(cfg.Interface, pcapReader{handle}, handle.LinkType(), handle.Close), nil
}

// packetReader is the read side shared by pcap handles and TPACKET rings.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
}

// pcapReader maps libpcap's timeout result onto capture.ErrReadTimeout.
type pcapReader struct {
	h packetReader
}

func (r pcapReader) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := r.h.ReadPacketData()
	if err == pcap.NextErrorTimeoutExpired {
		err = capture.ErrReadTimeout
	}
	return data, ci, err
}
