package capture

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// linkTypeReader is satisfied by both pcapgo.Reader and pcapgo.NgReader.
type linkTypeReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// OpenFile opens a pcap or pcapng file for offline replay.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}

	r, err := newFileReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: read %s: %w", path, err)
	}

	return NewSource(path, r, r.LinkType(), func() { f.Close() }), nil
}

// newFileReader tries the classic pcap format first and falls back to pcapng.
func newFileReader(rs io.ReadSeeker) (linkTypeReader, error) {
	r, err := pcapgo.NewReader(rs)
	if err == nil {
		return r, nil
	}
	if _, serr := rs.Seek(0, io.SeekStart); serr != nil {
		return nil, serr
	}
	ng, ngErr := pcapgo.NewNgReader(rs, pcapgo.DefaultNgReaderOptions)
	if ngErr != nil {
		return nil, fmt.Errorf("not a pcap (%v) or pcapng (%v) file", err, ngErr)
	}
	return ng, nil
}
