// Package assets loads external renderer resources: NanoVDB volumetric grids
// and texture images. Loaders only read file headers and raw payloads; grid
// traversal and shading belong to the rendering backend.
package assets

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// nvdbMagic is the NanoVDB file magic, "NanoVDB0" read as a little-endian
// 64-bit integer.
const nvdbMagic uint64 = 0x304244566f6e614e

var (
	ErrBadMagic         = errors.New("nvdb: bad file magic")
	ErrUnsupportedCodec = errors.New("nvdb: compressed grids not supported")
	ErrGridNotFound     = errors.New("nvdb: grid not found")
)

// GridType identifies the voxel value type of a grid.
type GridType uint32

const (
	GridTypeUnknown GridType = iota
	GridTypeFloat
	GridTypeDouble
	GridTypeInt16
	GridTypeInt32
	GridTypeInt64
	GridTypeVec3f
	GridTypeVec3d
	GridTypeMask
	GridTypeFP16
	GridTypeUInt32
)

func (t GridType) String() string {
	switch t {
	case GridTypeFloat:
		return "float"
	case GridTypeDouble:
		return "double"
	case GridTypeInt16:
		return "int16"
	case GridTypeInt32:
		return "int32"
	case GridTypeInt64:
		return "int64"
	case GridTypeVec3f:
		return "vec3f"
	case GridTypeVec3d:
		return "vec3d"
	case GridTypeMask:
		return "mask"
	case GridTypeFP16:
		return "fp16"
	case GridTypeUInt32:
		return "uint32"
	default:
		return "unknown"
	}
}

// GridMeta is the per-grid header of an .nvdb container.
type GridMeta struct {
	Name         string
	Type         GridType
	VoxelCount   uint64
	NodeCounts   [4]uint32 // tree node count per level, leaf first
	WorldBBoxMin [3]float64
	WorldBBoxMax [3]float64
	IndexBBoxMin [3]int32
	IndexBBoxMax [3]int32

	payloadSize uint64
}

// Grid couples a grid's metadata with its raw voxel payload. A *Grid is a
// shared handle: components and other subsystems may hold it concurrently
// and the payload stays alive until the last reference is dropped.
type Grid struct {
	Meta GridMeta
	Data []byte
}

type fileHeader struct {
	Magic     uint64
	Version   uint32
	GridCount uint16
	Codec     uint16
}

// ReadGridMetaData reads the container and per-grid headers of an .nvdb
// file without loading any voxel payloads.
func ReadGridMetaData(path string) ([]GridMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	limit, err := payloadLimit(f)
	if err != nil {
		return nil, err
	}

	metas := make([]GridMeta, 0, hdr.GridCount)
	for i := 0; i < int(hdr.GridCount); i++ {
		meta, err := readGridMeta(br, limit)
		if err != nil {
			return nil, fmt.Errorf("nvdb: grid %d header: %w", i, err)
		}
		if _, err := br.Discard(int(meta.payloadSize)); err != nil {
			return nil, fmt.Errorf("nvdb: grid %d payload: %w", i, err)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// ReadGrid loads the named grid, payload included. An empty name selects the
// first grid in the file.
func ReadGrid(path, name string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	limit, err := payloadLimit(f)
	if err != nil {
		return nil, err
	}

	for i := 0; i < int(hdr.GridCount); i++ {
		meta, err := readGridMeta(br, limit)
		if err != nil {
			return nil, fmt.Errorf("nvdb: grid %d header: %w", i, err)
		}
		if name == "" || meta.Name == name {
			data := make([]byte, meta.payloadSize)
			if _, err := io.ReadFull(br, data); err != nil {
				return nil, fmt.Errorf("nvdb: grid %q payload: %w", meta.Name, err)
			}
			return &Grid{Meta: meta, Data: data}, nil
		}
		if _, err := br.Discard(int(meta.payloadSize)); err != nil {
			return nil, fmt.Errorf("nvdb: grid %d payload: %w", i, err)
		}
	}
	return nil, fmt.Errorf("nvdb: grid %q in %s: %w", name, path, ErrGridNotFound)
}

func readHeader(r io.Reader) (fileHeader, error) {
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("nvdb: file header: %w", err)
	}
	if hdr.Magic != nvdbMagic {
		return hdr, ErrBadMagic
	}
	if hdr.Codec != 0 {
		return hdr, ErrUnsupportedCodec
	}
	return hdr, nil
}

// payloadLimit returns the file size as an upper bound on any declared
// payload length, so a corrupt header cannot demand a huge allocation.
func payloadLimit(f *os.File) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("nvdb: stat: %w", err)
	}
	return uint64(fi.Size()), nil
}

func readGridMeta(r io.Reader, limit uint64) (GridMeta, error) {
	var meta GridMeta

	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return meta, err
	}
	if nameLen > 1<<16 {
		return meta, fmt.Errorf("implausible grid name length %d", nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return meta, err
	}
	meta.Name = string(name)

	fields := []any{
		(*uint32)(&meta.Type),
		&meta.VoxelCount,
		&meta.NodeCounts,
		&meta.WorldBBoxMin,
		&meta.WorldBBoxMax,
		&meta.IndexBBoxMin,
		&meta.IndexBBoxMax,
		&meta.payloadSize,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return meta, err
		}
	}
	if meta.payloadSize > limit {
		return meta, fmt.Errorf("implausible grid payload size %d", meta.payloadSize)
	}
	return meta, nil
}

// Encode writes grids into a single .nvdb container. Used by the dump tool's
// fixtures and by tests; production grids come from DCC exporters.
func Encode(grids ...*Grid) ([]byte, error) {
	var buf bytes.Buffer
	hdr := fileHeader{
		Magic:     nvdbMagic,
		Version:   1,
		GridCount: uint16(len(grids)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	for _, g := range grids {
		meta := g.Meta
		meta.payloadSize = uint64(len(g.Data))
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(meta.Name))); err != nil {
			return nil, err
		}
		buf.WriteString(meta.Name)
		fields := []any{
			uint32(meta.Type),
			meta.VoxelCount,
			meta.NodeCounts,
			meta.WorldBBoxMin,
			meta.WorldBBoxMax,
			meta.IndexBBoxMin,
			meta.IndexBBoxMax,
			meta.payloadSize,
		}
		for _, f := range fields {
			if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
				return nil, err
			}
		}
		buf.Write(g.Data)
	}
	return buf.Bytes(), nil
}
