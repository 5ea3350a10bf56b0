package world

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Chunk payloads travel as a versioned palette+RLE byte stream:
//
//	magic "FBCH" | version u8 | palette len u16 | palette bytes |
//	run count u32 | runs of (palette index u16, length u16)
//
// All multi-byte fields are little-endian. A payload is only valid when its
// run lengths sum to exactly ChunkVolume.
const (
	payloadMagic   = "FBCH"
	payloadVersion = 1

	maxPaletteSize = 0xFFFF
	maxRunLength   = 0xFFFF
)

var (
	ErrInvalidMagic            = errors.New("chunk payload: invalid magic")
	ErrUnsupportedVersion      = errors.New("chunk payload: unsupported version")
	ErrUnexpectedEOF           = errors.New("chunk payload: unexpected end of data")
	ErrPaletteTooLarge         = errors.New("chunk payload: palette too large")
	ErrUnknownBlock            = errors.New("chunk payload: unknown block type")
	ErrPaletteIndexOutOfBounds = errors.New("chunk payload: palette index out of bounds")
	ErrRunOverflow             = errors.New("chunk payload: run overflows chunk volume")
	ErrLengthMismatch          = errors.New("chunk payload: run lengths do not cover chunk volume")
)

// PayloadRun is a single run of identical voxels.
type PayloadRun struct {
	PaletteIndex uint16
	Length       uint16
}

// ChunkPayload is the decoded form of the chunk wire format.
type ChunkPayload struct {
	Version uint8
	Palette []BlockType
	Runs    []PayloadRun
}

// TotalVoxels returns the number of voxels the payload's runs cover.
func (p *ChunkPayload) TotalVoxels() int {
	total := 0
	for _, run := range p.Runs {
		total += int(run.Length)
	}
	return total
}

// EncodeChunk converts storage into its payload representation. The palette
// records block types in first-seen order; runs are maximal.
func EncodeChunk(storage *ChunkStorage) *ChunkPayload {
	payload := &ChunkPayload{Version: payloadVersion}
	paletteIndex := make(map[BlockType]uint16, 8)

	lookup := func(b BlockType) uint16 {
		if idx, ok := paletteIndex[b]; ok {
			return idx
		}
		idx := uint16(len(payload.Palette))
		payload.Palette = append(payload.Palette, b)
		paletteIndex[b] = idx
		return idx
	}

	current := storage.At(0)
	currentIdx := lookup(current)
	runLength := 1

	flush := func() {
		for runLength > maxRunLength {
			payload.Runs = append(payload.Runs, PayloadRun{PaletteIndex: currentIdx, Length: maxRunLength})
			runLength -= maxRunLength
		}
		payload.Runs = append(payload.Runs, PayloadRun{PaletteIndex: currentIdx, Length: uint16(runLength)})
	}

	for i := 1; i < ChunkVolume; i++ {
		b := storage.At(i)
		if b == current {
			runLength++
			continue
		}
		flush()
		current = b
		currentIdx = lookup(b)
		runLength = 1
	}
	flush()

	return payload
}

// Marshal serializes the payload to wire bytes.
func (p *ChunkPayload) Marshal() ([]byte, error) {
	if len(p.Palette) > maxPaletteSize {
		return nil, fmt.Errorf("%w: %d entries", ErrPaletteTooLarge, len(p.Palette))
	}

	size := 4 + 1 + 2 + len(p.Palette) + 4 + 4*len(p.Runs)
	buf := make([]byte, 0, size)
	buf = append(buf, payloadMagic...)
	buf = append(buf, p.Version)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Palette)))
	for _, b := range p.Palette {
		buf = append(buf, byte(b))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Runs)))
	for _, run := range p.Runs {
		buf = binary.LittleEndian.AppendUint16(buf, run.PaletteIndex)
		buf = binary.LittleEndian.AppendUint16(buf, run.Length)
	}
	return buf, nil
}

// MarshalChunk encodes storage straight to wire bytes.
func MarshalChunk(storage *ChunkStorage) ([]byte, error) {
	return EncodeChunk(storage).Marshal()
}

// UnmarshalPayload parses wire bytes into a payload, validating structure but
// not yet expanding runs into voxels.
func UnmarshalPayload(data []byte) (*ChunkPayload, error) {
	if len(data) < 4 {
		return nil, ErrUnexpectedEOF
	}
	if string(data[:4]) != payloadMagic {
		return nil, ErrInvalidMagic
	}
	data = data[4:]

	if len(data) < 1 {
		return nil, ErrUnexpectedEOF
	}
	version := data[0]
	if version != payloadVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	data = data[1:]

	if len(data) < 2 {
		return nil, ErrUnexpectedEOF
	}
	paletteLen := int(binary.LittleEndian.Uint16(data))
	data = data[2:]

	if len(data) < paletteLen {
		return nil, ErrUnexpectedEOF
	}
	palette := make([]BlockType, paletteLen)
	for i := 0; i < paletteLen; i++ {
		b := BlockType(data[i])
		if !b.IsValid() {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownBlock, data[i])
		}
		palette[i] = b
	}
	data = data[paletteLen:]

	if len(data) < 4 {
		return nil, ErrUnexpectedEOF
	}
	runCount := int(binary.LittleEndian.Uint32(data))
	data = data[4:]

	if len(data) < 4*runCount {
		return nil, ErrUnexpectedEOF
	}
	runs := make([]PayloadRun, runCount)
	for i := 0; i < runCount; i++ {
		runs[i] = PayloadRun{
			PaletteIndex: binary.LittleEndian.Uint16(data[4*i:]),
			Length:       binary.LittleEndian.Uint16(data[4*i+2:]),
		}
	}

	return &ChunkPayload{Version: version, Palette: palette, Runs: runs}, nil
}

// Decode expands the payload into voxel storage. It fails rather than clamp
// when runs overflow the chunk volume, reference a missing palette entry, or
// do not cover the volume exactly.
func (p *ChunkPayload) Decode() (*ChunkStorage, error) {
	storage := NewChunkStorage()
	cursor := 0
	for _, run := range p.Runs {
		if int(run.PaletteIndex) >= len(p.Palette) {
			return nil, fmt.Errorf("%w: index %d, palette %d", ErrPaletteIndexOutOfBounds, run.PaletteIndex, len(p.Palette))
		}
		length := int(run.Length)
		if cursor+length > ChunkVolume {
			return nil, fmt.Errorf("%w: %d voxels", ErrRunOverflow, cursor+length)
		}
		block := p.Palette[run.PaletteIndex]
		for i := 0; i < length; i++ {
			storage.blocks[cursor+i] = block
		}
		cursor += length
	}
	if cursor != ChunkVolume {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, cursor, ChunkVolume)
	}
	return storage, nil
}

// UnmarshalChunk parses and expands wire bytes in one step.
func UnmarshalChunk(data []byte) (*ChunkStorage, error) {
	payload, err := UnmarshalPayload(data)
	if err != nil {
		return nil, err
	}
	return payload.Decode()
}
