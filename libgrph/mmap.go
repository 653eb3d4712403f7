package libgrph

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only view of a file's bytes, memory-mapped when
// the platform allows and read whole into memory otherwise.
type MappedFile struct {
	data []byte
	mm   mmap.MMap
}

// OpenMapped opens a read-only view of path.  Zero-length files yield
// an empty valid view, since mapping zero bytes fails on most
// platforms.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return &MappedFile{}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err == nil {
		return &MappedFile{data: mm, mm: mm}, nil
	}

	// Some filesystems refuse to map; fall back to a plain read.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &MappedFile{data: data}, nil
}

// Bytes is valid until Close.
func (mf *MappedFile) Bytes() []byte {
	return mf.data
}

func (mf *MappedFile) Close() error {
	mm := mf.mm
	mf.mm = nil
	mf.data = nil
	if mm != nil {
		return mm.Unmap()
	}
	return nil
}
