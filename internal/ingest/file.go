// Package ingest reads lon,lat records from CSV input and converts them
// into the point array the clustering core operates on. The input file
// is memory-mapped read-only; record handles produced here are
// subslices of the mapping, so the [File] must stay open until
// clustering (and publishing) has finished with them.
package ingest

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// File is a read-only memory-mapped input file.
type File struct {
	f    *os.File
	data mmap.MMap
}

// Open memory-maps path read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ingest: failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("ingest: %s is empty", path)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ingest: failed to mmap %s: %w", path, err)
	}
	return &File{f: f, data: data}, nil
}

// Data returns the mapped bytes. The slice is valid until Close.
func (f *File) Data() []byte { return f.data }

// Close unmaps and closes the file, invalidating Data and every record
// handle pointing into it.
func (f *File) Close() error {
	if err := f.data.Unmap(); err != nil {
		f.f.Close()
		return fmt.Errorf("ingest: failed to unmap: %w", err)
	}
	return f.f.Close()
}
