// Package output writes decoded queue-occupancy samples.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"queuewatch/internal/config"
	"queuewatch/internal/models"
)

// Printer writes one line per sample.
type Printer struct {
	w      io.Writer
	format string
	buf    []byte
}

// jsonSample is the line format for FormatJSON.
type jsonSample struct {
	Timestamp string `json:"timestamp"`
	Interface string `json:"interface,omitempty"`
	SrcIP     string `json:"src_ip,omitempty"`
	DstIP     string `json:"dst_ip,omitempty"`
	Occupancy uint64 `json:"queue_occupancy"`
}

// NewPrinter returns a printer writing format to w.
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case config.FormatPlain, config.FormatJSON:
	default:
		return nil, fmt.Errorf("output: unsupported format: %s", format)
	}
	return &Printer{w: w, format: format}, nil
}

// Write prints s. In plain format that is the decimal occupancy alone.
func (p *Printer) Write(s models.Sample) error {
	if p.format == config.FormatJSON {
		line, err := json.Marshal(jsonSample{
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
			Interface: s.Interface,
			SrcIP:     s.SrcIP,
			DstIP:     s.DstIP,
			Occupancy: s.Occupancy,
		})
		if err != nil {
			return err
		}
		p.buf = append(append(p.buf[:0], line...), '\n')
	} else {
		p.buf = strconv.AppendUint(p.buf[:0], s.Occupancy, 10)
		p.buf = append(p.buf, '\n')
	}

	_, err := p.w.Write(p.buf)
	return err
}
