package naipng

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"testing/iotest"
)

func makeChunk(typ string, data []byte) []byte {
	out := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(data)))
	copy(out[4:8], typ)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[4:]))
}

func ihdrChunk() []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], 832)
	binary.BigEndian.PutUint32(data[4:8], 1216)
	data[8] = 8 // bit depth
	data[9] = 6 // truecolor+alpha
	return makeChunk("IHDR", data)
}

func iendChunk() []byte { return makeChunk("IEND", nil) }

func textChunk(keyword, text string) []byte {
	return makeChunk("tEXt", []byte(keyword+"\x00"+text))
}

func naidataChunk(json string) []byte {
	return textChunk(KeywordNAIData, base64.StdEncoding.EncodeToString([]byte(json)))
}

// buildPNG wraps chunks in a signature, IHDR and IEND.
func buildPNG(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(pngSignature)
	buf.Write(ihdrChunk())
	for _, c := range chunks {
		buf.Write(c)
	}
	buf.Write(iendChunk())
	return buf.Bytes()
}

func rawPNG(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(pngSignature)
	for _, c := range chunks {
		buf.Write(c)
	}
	return buf.Bytes()
}

func corruptCRC(c []byte) []byte {
	out := bytes.Clone(c)
	out[len(out)-1] ^= 0xFF
	return out
}

// readers runs the same input through each source implementation.
var readers = []struct {
	name string
	read func(data []byte, opts Options) (Result, bool, error)
}{
	{name: "bytes", read: ReadBytes},
	{name: "seeker", read: func(data []byte, opts Options) (Result, bool, error) {
		return Read(bytes.NewReader(data), opts)
	}},
	{name: "stream", read: func(data []byte, opts Options) (Result, bool, error) {
		return Read(iotest.HalfReader(bytes.NewReader(data)), opts)
	}},
}
