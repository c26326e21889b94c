// Package sink provides cluster publishers that write the reachability
// ordering somewhere durable.
package sink

import (
	"bufio"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/TrevorS/opticsphere"
)

// ZstdPublisher implements opticsphere.ClusterPublisher by writing each
// cluster as zstd-compressed newline-delimited records, with a blank
// line between clusters. Records must be []byte or string.
type ZstdPublisher struct {
	file     *os.File
	buf      *bufio.Writer
	enc      *zstd.Encoder
	clusters int
}

// NewZstdPublisher creates (or truncates) the output file at path.
func NewZstdPublisher(path string) (*ZstdPublisher, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: failed to create %s: %w", path, err)
	}
	buf := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(buf,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("sink: failed to create zstd writer: %w", err)
	}
	return &ZstdPublisher{file: file, buf: buf, enc: enc}, nil
}

// Publish writes one cluster. The final, possibly empty, cluster the
// driver publishes at termination writes nothing.
func (p *ZstdPublisher) Publish(cluster []opticsphere.Record) error {
	if len(cluster) == 0 {
		return nil
	}
	if p.clusters > 0 {
		if err := p.writeByte('\n'); err != nil {
			return err
		}
	}
	for _, rec := range cluster {
		line, err := recordBytes(rec)
		if err != nil {
			return err
		}
		if _, err := p.enc.Write(line); err != nil {
			return fmt.Errorf("sink: failed to write record: %w", err)
		}
		if err := p.writeByte('\n'); err != nil {
			return err
		}
	}
	p.clusters++
	return nil
}

// Clusters returns the number of non-empty clusters published so far.
func (p *ZstdPublisher) Clusters() int { return p.clusters }

// Close flushes all buffered output and closes the file.
func (p *ZstdPublisher) Close() error {
	if err := p.enc.Close(); err != nil {
		p.file.Close()
		return fmt.Errorf("sink: failed to close zstd writer: %w", err)
	}
	if err := p.buf.Flush(); err != nil {
		p.file.Close()
		return fmt.Errorf("sink: failed to flush: %w", err)
	}
	return p.file.Close()
}

func (p *ZstdPublisher) writeByte(b byte) error {
	if _, err := p.enc.Write([]byte{b}); err != nil {
		return fmt.Errorf("sink: failed to write record: %w", err)
	}
	return nil
}

func recordBytes(rec opticsphere.Record) ([]byte, error) {
	switch r := rec.(type) {
	case []byte:
		return r, nil
	case string:
		return []byte(r), nil
	default:
		return nil, fmt.Errorf("sink: unsupported record type %T", rec)
	}
}
