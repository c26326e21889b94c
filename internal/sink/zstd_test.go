package sink

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/TrevorS/opticsphere"
)

func readZstd(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestZstdPublisher_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.zst")
	p, err := NewZstdPublisher(path)
	if err != nil {
		t.Fatal(err)
	}

	clusters := [][]opticsphere.Record{
		{[]byte("10,20"), "30,40"},
		{}, // the driver's final publish may be empty
		{[]byte("50,60")},
	}
	for _, c := range clusters {
		if err := p.Publish(c); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if got := p.Clusters(); got != 2 {
		t.Errorf("Clusters() = %d, want 2 (empty clusters are not counted)", got)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "10,20\n30,40\n\n50,60\n"
	if got := readZstd(t, path); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestZstdPublisher_UnsupportedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.zst")
	p, err := NewZstdPublisher(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Publish([]opticsphere.Record{42}); err == nil {
		t.Error("Publish of an int record succeeded, want error")
	}
}

func TestNewZstdPublisher_BadPath(t *testing.T) {
	if _, err := NewZstdPublisher(filepath.Join(t.TempDir(), "no", "such", "dir", "out.zst")); err == nil {
		t.Error("NewZstdPublisher with missing directory succeeded, want error")
	}
}
