//go:build linux

package live

import (
	"net"

	"github.com/go-errors/errors"
	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/sys/unix"

	"queuewatch/internal/capture"
	"queuewatch/internal/config"
)

// OpenAFPacket opens cfg.Interface as a TPACKET ring with the
// queue-occupancy BPF program attached to the socket. With cfg.Promiscuous
// set the interface stays promiscuous until the source is closed.
func OpenAFPacket(cfg config.CaptureConfig) (*capture.Source, error) {
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(cfg.AFPacket.FrameSize),
		afpacket.OptBlockSize(cfg.AFPacket.BlockSize),
		afpacket.OptNumBlocks(cfg.AFPacket.NumBlocks),
		afpacket.OptPollTimeout(pollTimeout),
	)
	if err != nil {
		return nil, errors.WrapPrefix(err, "afpacket: "+cfg.Interface, 0)
	}

	filter, err := capture.AssembleFilter(uint32(cfg.SnapLen))
	if err != nil {
		tp.Close()
		return nil, errors.Wrap(err, 0)
	}
	if err := tp.SetBPF(filter); err != nil {
		tp.Close()
		return nil, errors.WrapPrefix(err, "afpacket: attach filter", 0)
	}

	closeFn := tp.Close
	if cfg.Promiscuous {
		fd, err := enablePromisc(cfg.Interface)
		if err != nil {
			tp.Close()
			return nil, err
		}
		closeFn = func() {
			tp.Close()
			unix.Close(fd)
		}
	}

	return capture.NewSource(cfg.Interface, afpacketReader{tp}, layers.LinkTypeEthernet, closeFn), nil
}

// enablePromisc joins the PACKET_MR_PROMISC membership for iface on a
// dedicated AF_PACKET socket. The kernel counts memberships per socket, so
// the interface leaves promiscuous mode once the returned fd is closed.
// The TPACKET ring does not expose its own descriptor.
func enablePromisc(iface string) (int, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return -1, errors.WrapPrefix(err, "afpacket: "+iface, 0)
	}

	// Protocol 0 receives nothing; the socket only carries the membership.
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, errors.WrapPrefix(err, "afpacket: promiscuous socket", 0)
	}
	mreq := promiscMreq(ifi.Index)
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		unix.Close(fd)
		return -1, errors.WrapPrefix(err, "afpacket: promiscuous mode on "+iface, 0)
	}
	return fd, nil
}

func promiscMreq(ifindex int) unix.PacketMreq {
	return unix.PacketMreq{Ifindex: int32(ifindex), Type: unix.PACKET_MR_PROMISC}
}

// afpacketReader maps poll timeouts onto capture.ErrReadTimeout.
type afpacketReader struct {
	tp packetReader
}

func (r afpacketReader) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := r.tp.ReadPacketData()
	if err == afpacket.ErrTimeout {
		err = capture.ErrReadTimeout
	}
	return data, ci, err
}
