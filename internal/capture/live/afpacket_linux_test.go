//go:build linux

package live

import (
	"errors"
	"testing"

	goerrors "github.com/go-errors/errors"
	"github.com/google/gopacket/afpacket"
	"golang.org/x/sys/unix"

	"queuewatch/internal/capture"
	"queuewatch/internal/config"
)

func TestAFPacketReaderMapsTimeout(t *testing.T) {
	r := afpacketReader{&fakeReader{errs: []error{afpacket.ErrTimeout, nil}}}

	if _, _, err := r.ReadPacketData(); !errors.Is(err, capture.ErrReadTimeout) {
		t.Errorf("timeout read err = %v, want capture.ErrReadTimeout", err)
	}
	if data, _, err := r.ReadPacketData(); err != nil || len(data) != 1 {
		t.Errorf("second read = %v, %v; want one byte", data, err)
	}
}

func TestOpenAFPacketMissingInterface(t *testing.T) {
	cfg := config.Defaults().Capture
	cfg.Interface = "nosuchif0"
	cfg.Engine = config.EngineAFPacket

	if _, err := Open(cfg); err == nil {
		t.Fatal("Open(nosuchif0) succeeded")
	} else {
		var stackErr *goerrors.Error
		if !goerrors.As(err, &stackErr) {
			t.Errorf("Open(nosuchif0) err = %T %v, want *errors.Error", err, err)
		}
	}
}

func TestEnablePromiscMissingInterface(t *testing.T) {
	if fd, err := enablePromisc("nosuchif0"); err == nil {
		unix.Close(fd)
		t.Fatal("enablePromisc(nosuchif0) succeeded")
	}
}

func TestPromiscMreq(t *testing.T) {
	m := promiscMreq(7)
	if m.Ifindex != 7 {
		t.Errorf("Ifindex = %d, want 7", m.Ifindex)
	}
	if m.Type != unix.PACKET_MR_PROMISC {
		t.Errorf("Type = %d, want PACKET_MR_PROMISC", m.Type)
	}
	if m.Alen != 0 {
		t.Errorf("Alen = %d, want 0", m.Alen)
	}
}
