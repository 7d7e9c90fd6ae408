// Package persist implements the CSR snapshot's on-disk binary format:
// a fixed magic and version, the four parallel CSR arrays, and a
// varint-length-prefixed UTF-8 string table for the index-to-id mapping.
// Grounded on the teacher's internal/serialization writer/reader pair —
// magic bytes, a little-endian fixed header, then bulk binary.Write of
// typed sections — generalized from the teacher's tensor state-dict
// layout to the sparse CSR layout this format needs.
package persist

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/forge-ml/forge/internal/csr"
	"github.com/forge-ml/forge/internal/tensor"
)

// Magic identifies a forge CSR file: 0x46524745, which spells "FRGE" when
// its bytes are read most-significant first. It is written little-endian,
// so a file's first four bytes are "EGRF".
const Magic uint32 = 0x46524745

// FormatVersion is the current on-disk schema version.
const FormatVersion uint32 = 1

var (
	// ErrInvalidMagic is returned when a file does not begin with Magic.
	ErrInvalidMagic = errors.New("persist: invalid magic bytes")
	// ErrUnsupportedVersion is returned when a file's version is anything
	// other than FormatVersion.
	ErrUnsupportedVersion = errors.New("persist: unsupported format version")
)

// Save writes s to w in the persisted CSR format. Weights are narrowed
// to IEEE-754 binary32 regardless of T's native width, matching the
// format's fixed 32-bit weight representation.
func Save[T tensor.Numeric](w io.Writer, s *csr.Snapshot[T]) error {
	if err := binary.Write(w, binary.LittleEndian, Magic); err != nil {
		return fmt.Errorf("persist: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, FormatVersion); err != nil {
		return fmt.Errorf("persist: write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(s.NodeCount)); err != nil {
		return fmt.Errorf("persist: write node_count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(s.EdgeCount)); err != nil {
		return fmt.Errorf("persist: write edge_count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.RowPtr); err != nil {
		return fmt.Errorf("persist: write row_ptr: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.ColIdx); err != nil {
		return fmt.Errorf("persist: write col_idx: %w", err)
	}
	weights32 := make([]float32, len(s.Weights))
	for i, x := range s.Weights {
		weights32[i] = float32(x)
	}
	if err := binary.Write(w, binary.LittleEndian, weights32); err != nil {
		return fmt.Errorf("persist: write weights: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.LastModified); err != nil {
		return fmt.Errorf("persist: write last_modified: %w", err)
	}
	for _, id := range s.IndexToID {
		if err := writeVarintString(w, id); err != nil {
			return fmt.Errorf("persist: write index_to_id: %w", err)
		}
	}
	return nil
}

// Load reads a Snapshot from r in the persisted CSR format, failing with
// ErrInvalidMagic or ErrUnsupportedVersion when the header does not
// match what this package produces.
func Load[T tensor.Numeric](r io.Reader) (*csr.Snapshot[T], error) {
	br := bufio.NewReader(r)

	var magic uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("persist: read magic: %w", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("persist: read version: %w", err)
	}
	if version != FormatVersion {
		return nil, ErrUnsupportedVersion
	}

	var nodeCount, edgeCount int32
	if err := binary.Read(br, binary.LittleEndian, &nodeCount); err != nil {
		return nil, fmt.Errorf("persist: read node_count: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &edgeCount); err != nil {
		return nil, fmt.Errorf("persist: read edge_count: %w", err)
	}

	rowPtr := make([]int32, nodeCount+1)
	if err := binary.Read(br, binary.LittleEndian, rowPtr); err != nil {
		return nil, fmt.Errorf("persist: read row_ptr: %w", err)
	}
	colIdx := make([]int32, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, colIdx); err != nil {
		return nil, fmt.Errorf("persist: read col_idx: %w", err)
	}
	weights32 := make([]float32, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, weights32); err != nil {
		return nil, fmt.Errorf("persist: read weights: %w", err)
	}
	weights := make([]T, edgeCount)
	for i, x := range weights32 {
		weights[i] = T(x)
	}
	lastModified := make([]int64, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, lastModified); err != nil {
		return nil, fmt.Errorf("persist: read last_modified: %w", err)
	}

	indexToID := make([]string, nodeCount)
	idToIndex := make(map[string]int32, nodeCount)
	for i := range indexToID {
		id, err := readVarintString(br)
		if err != nil {
			return nil, fmt.Errorf("persist: read index_to_id[%d]: %w", i, err)
		}
		indexToID[i] = id
		idToIndex[id] = int32(i)
	}

	return &csr.Snapshot[T]{
		NodeCount:    int(nodeCount),
		EdgeCount:    int(edgeCount),
		RowPtr:       rowPtr,
		ColIdx:       colIdx,
		Weights:      weights,
		LastModified: lastModified,
		IndexToID:    indexToID,
		IDToIndex:    idToIndex,
	}, nil
}

func writeVarintString(w io.Writer, s string) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, uint64(len(s)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readVarintString(r io.ByteReader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}
