// Package pointfile reads and writes hull3d point-set files.
//
// The binary format is little-endian throughout:
//
//	Offset  Size  Field
//	0       8     Magic ("HUL3PTS\x01")
//	8       4     Version (0x0001)
//	12      4     Reserved (zero)
//	16      8     Count (number of points)
//	24      28*N  Points: per point int32 id, then float64 x, y, z
//	24+28N  8     Checksum: xxHash64 of everything before this field
//
// Readers memory-map the file and validate magic, version, length, and
// checksum before decoding. Writers preallocate the full file size up front
// so a full disk surfaces as an error instead of a SIGBUS later.
//
// This package is a collaborator of the hull core, not part of it: the hull
// builder itself performs no I/O.
package pointfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	"github.com/tamirms/hull3d"
	hullerrors "github.com/tamirms/hull3d/errors"
)

const (
	// magic identifies hull3d point files: "HUL3PTS" plus a format byte.
	magic = "HUL3PTS\x01"

	version = uint32(0x0001)

	headerSize   = 24
	pointSize    = 28 // int32 id + 3 * float64
	checksumSize = 8
)

// Write serializes points to path in the binary point-file format. The file
// is preallocated to its final size before any data is written.
func Write(path string, points []hull3d.Point) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create point file: %w", err)
	}
	defer f.Close()

	total := int64(headerSize) + int64(len(points))*pointSize + checksumSize
	if err := fallocateFile(f, total); err != nil {
		return fmt.Errorf("preallocate point file: %w", err)
	}

	h := xxhash.New()
	w := bufio.NewWriter(io.MultiWriter(f, h))

	var hdr [headerSize]byte
	copy(hdr[0:8], magic)
	binary.LittleEndian.PutUint32(hdr[8:12], version)
	binary.LittleEndian.PutUint64(hdr[16:24], uint64(len(points)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write point file header: %w", err)
	}

	var rec [pointSize]byte
	for _, p := range points {
		binary.LittleEndian.PutUint32(rec[0:4], uint32(p.ID))
		binary.LittleEndian.PutUint64(rec[4:12], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(rec[12:20], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(rec[20:28], math.Float64bits(p.Z))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write point record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush point records: %w", err)
	}

	var footer [checksumSize]byte
	binary.LittleEndian.PutUint64(footer[:], h.Sum64())
	if _, err := f.Write(footer[:]); err != nil {
		return fmt.Errorf("write point file checksum: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync point file: %w", err)
	}
	return f.Close()
}

// Read memory-maps the file at path, validates it, and decodes its points.
// Validation failures are reported via the errors package sentinels
// (ErrInvalidMagic, ErrInvalidVersion, ErrTruncatedFile, ErrChecksumFailed,
// ErrPointCountMismatch), all wrapped with file context.
func Read(path string) ([]hull3d.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open point file: %w", err)
	}
	// Per POSIX mmap(2), the descriptor may be closed once the mapping
	// exists; the mapping stays valid.
	defer f.Close()

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap point file: %w", err)
	}
	defer mm.Unmap()

	fadviseSequential(int(f.Fd()), 0, int64(len(mm)))

	points, err := decode(mm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

func decode(data []byte) ([]hull3d.Point, error) {
	if len(data) < headerSize+checksumSize {
		return nil, hullerrors.ErrTruncatedFile
	}
	if string(data[0:8]) != magic {
		return nil, hullerrors.ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(data[8:12]); v != version {
		return nil, fmt.Errorf("%w: version %d", hullerrors.ErrInvalidVersion, v)
	}
	count := binary.LittleEndian.Uint64(data[16:24])

	body := int64(len(data)) - headerSize - checksumSize
	if body < 0 || body%pointSize != 0 {
		return nil, hullerrors.ErrTruncatedFile
	}
	if uint64(body/pointSize) != count {
		return nil, fmt.Errorf("%w: header says %d, file holds %d",
			hullerrors.ErrPointCountMismatch, count, body/pointSize)
	}

	payload := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint64(data[len(data)-checksumSize:])
	if got := xxhash.Sum64(payload); got != want {
		return nil, fmt.Errorf("%w: got %016x, want %016x", hullerrors.ErrChecksumFailed, got, want)
	}

	points := make([]hull3d.Point, count)
	for i := range points {
		rec := data[headerSize+i*pointSize:]
		points[i] = hull3d.Point{
			ID: int32(binary.LittleEndian.Uint32(rec[0:4])),
			X:  math.Float64frombits(binary.LittleEndian.Uint64(rec[4:12])),
			Y:  math.Float64frombits(binary.LittleEndian.Uint64(rec[12:20])),
			Z:  math.Float64frombits(binary.LittleEndian.Uint64(rec[20:28])),
		}
	}
	return points, nil
}

// WriteHullText writes one line per triangle: the 9 coordinates of its three
// vertices, space separated. This matches the text form emitted by the
// reference driver and is convenient to feed to plotting scripts.
func WriteHullText(w io.Writer, points []hull3d.Point, tris []hull3d.Triangle) error {
	bw := bufio.NewWriter(w)
	for _, t := range tris {
		for i, id := range t {
			p := points[id]
			sep := " "
			if i == 0 {
				sep = ""
			}
			if _, err := fmt.Fprintf(bw, "%s%g %g %g", sep, p.X, p.Y, p.Z); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}
