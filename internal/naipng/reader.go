package naipng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// See https://www.w3.org/TR/png/#5DataRep
const (
	pngSignature   = "\x89PNG\r\n\x1a\n"
	maxChunkLength = 1<<31 - 1

	typeIHDR = "IHDR"
	typeIEND = "IEND"
	typeTEXT = "tEXt"
)

// RawChunk is one chunk as framed in the datastream. Data is only
// populated for chunks the reader needs to look at (IHDR and tEXt).
type RawChunk struct {
	Type   [4]byte
	Length uint32
	Data   []byte
	CRC    uint32
	Offset int64
}

func (c RawChunk) TypeString() string { return string(c.Type[:]) }

// ImageHeader holds the IHDR fields worth reporting. It is filled leniently
// and never validated.
type ImageHeader struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType uint8
}

func (h ImageHeader) ColorSpace() string {
	switch h.ColorType {
	case 0, 4: // grayscale / grayscale+alpha
		return "Y"
	case 2, 3, 6: // truecolor / indexed / truecolor+alpha
		return "RGB"
	}
	return ""
}

func parseImageHeader(data []byte) (ImageHeader, bool) {
	if len(data) < 13 {
		return ImageHeader{}, false
	}
	return ImageHeader{
		Width:     binary.BigEndian.Uint32(data[0:4]),
		Height:    binary.BigEndian.Uint32(data[4:8]),
		BitDepth:  data[8],
		ColorType: data[9],
	}, true
}

func readSignature(src source) error {
	sig, err := src.read(len(pngSignature))
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return structural(KindMissingSignature, 0, errors.New("too short"))
		}
		return fmt.Errorf("read signature: %w", err)
	}
	if string(sig) != pngSignature {
		return structural(KindMissingSignature, 0, errors.New("incorrect PNG signature"))
	}
	return nil
}

// chunkReader pulls chunks one at a time after the signature has been
// consumed. It stops at IEND.
type chunkReader struct {
	src        source
	verifyAll  bool
	seenHeader bool
	done       bool
	header     ImageHeader
}

func (cr *chunkReader) next() (RawChunk, bool, error) {
	if cr.done {
		return RawChunk{}, false, nil
	}
	offset := cr.src.offset()
	head, err := cr.src.read(8)
	if err != nil {
		cr.done = true
		if err == io.EOF {
			return RawChunk{}, false, structural(KindUnexpectedEOF, offset, errors.New("no IEND chunk"))
		}
		return RawChunk{}, false, cr.truncated(offset, err)
	}

	chunk := RawChunk{
		Length: binary.BigEndian.Uint32(head[0:4]),
		Offset: offset,
	}
	copy(chunk.Type[:], head[4:8])
	typ := chunk.TypeString()

	if chunk.Length > maxChunkLength {
		cr.done = true
		return RawChunk{}, false, structural(KindTruncated, offset,
			fmt.Errorf("%s chunk length %d exceeds 2^31-1", typ, chunk.Length))
	}
	if cr.seenHeader == (typ == typeIHDR) {
		cr.done = true
		return RawChunk{}, false, structural(KindMisplacedHeader, offset, nil)
	}
	cr.seenHeader = true

	if typ == typeIEND {
		cr.done = true
		if cr.verifyAll {
			if _, _, err := cr.finish(chunk); err != nil {
				return RawChunk{}, false, err
			}
		}
		return RawChunk{}, false, nil
	}

	switch typ {
	case typeTEXT, typeIHDR:
		data, err := cr.src.read(int(chunk.Length))
		if err != nil {
			cr.done = true
			return RawChunk{}, false, cr.truncated(offset, err)
		}
		chunk.Data = data
		if typ == typeIHDR {
			if h, ok := parseImageHeader(data); ok {
				cr.header = h
			}
		}
	}
	return cr.finish(chunk)
}

// finish reads the trailing CRC, skipping over any payload that was not
// read. tEXt chunks are always verified; others only in verifyAll mode.
func (cr *chunkReader) finish(chunk RawChunk) (RawChunk, bool, error) {
	var crc hash.Hash32
	if cr.verifyAll || chunk.TypeString() == typeTEXT {
		crc = crc32.NewIEEE()
		crc.Write(chunk.Type[:])
	}
	if chunk.Data == nil && chunk.Length > 0 {
		if err := cr.src.discard(int64(chunk.Length), crc); err != nil {
			cr.done = true
			return RawChunk{}, false, cr.truncated(chunk.Offset, err)
		}
	} else if crc != nil {
		crc.Write(chunk.Data)
	}

	tail, err := cr.src.read(4)
	if err != nil {
		cr.done = true
		return RawChunk{}, false, cr.truncated(chunk.Offset, err)
	}
	chunk.CRC = binary.BigEndian.Uint32(tail)
	if crc != nil && crc.Sum32() != chunk.CRC {
		cr.done = true
		return RawChunk{}, false, structural(KindChecksumMismatch, chunk.Offset,
			fmt.Errorf("%s chunk: computed %08x, stored %08x", chunk.TypeString(), crc.Sum32(), chunk.CRC))
	}
	return chunk, true, nil
}

func (cr *chunkReader) truncated(offset int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return structural(KindTruncated, offset, errors.New("ends prematurely"))
	}
	return fmt.Errorf("read chunk at offset %d: %w", offset, err)
}
