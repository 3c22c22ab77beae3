package naipng

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNewSourceSelection(t *testing.T) {
	data := buildPNG(naidataChunk(`{"a":1}`))

	buf := bytes.NewBuffer(data)
	if _, ok := newSource(buf).(*streamSource); !ok {
		t.Fatalf("bytes.Buffer did not select streamSource")
	}
	if _, found, err := Read(buf, Options{}); err != nil || !found {
		t.Fatalf("buffer read: found=%v err=%v", found, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer has %d unread bytes after Read", buf.Len())
	}
	if _, ok := newSource(bytes.NewReader(data)).(*seekSource); !ok {
		t.Fatalf("bytes.Reader did not select seekSource")
	}

	path := filepath.Join(t.TempDir(), "image.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	if _, ok := newSource(file).(*seekSource); !ok {
		t.Fatalf("regular file did not select seekSource")
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer pr.Close()
	go func() {
		_, _ = pw.Write(data)
		pw.Close()
	}()
	src := newSource(pr)
	if _, ok := src.(*streamSource); !ok {
		t.Fatalf("pipe selected %T, want *streamSource", src)
	}
	res, found, err := extract(src, Options{})
	if err != nil || !found || res.Keyword != KeywordNAIData {
		t.Fatalf("pipe extract=%+v,%v,%v", res, found, err)
	}
}

func TestSourceShortReads(t *testing.T) {
	data := []byte("0123456789")
	sources := map[string]func() source{
		"bytes": func() source { return newBytesSource(data) },
		"seek": func() source {
			s, _ := newSeekSource(bytes.NewReader(data))
			return s
		},
		"stream": func() source { return &streamSource{r: bufio.NewReader(bytes.NewReader(data))} },
	}
	for name, mk := range sources {
		t.Run(name, func(t *testing.T) {
			src := mk()
			if got, err := src.read(4); err != nil || string(got) != "0123" {
				t.Fatalf("read(4)=%q,%v", got, err)
			}
			if err := src.discard(2, nil); err != nil {
				t.Fatalf("discard(2): %v", err)
			}
			if src.offset() != 6 {
				t.Fatalf("offset=%d want 6", src.offset())
			}
			if _, err := src.read(8); err != io.ErrUnexpectedEOF {
				t.Fatalf("read past end err=%v want %v", err, io.ErrUnexpectedEOF)
			}
			if _, err := src.read(1); err != io.EOF {
				t.Fatalf("read at end err=%v want %v", err, io.EOF)
			}
			if err := src.discard(1, nil); err != io.ErrUnexpectedEOF {
				t.Fatalf("discard at end err=%v want %v", err, io.ErrUnexpectedEOF)
			}
		})
	}
}

func TestSeekSourceBogusLength(t *testing.T) {
	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], maxChunkLength)
	copy(head[4:8], typeTEXT)
	data := rawPNG(ihdrChunk(), head[:], []byte("naidata\x00e30="))

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, found, err := Read(bytes.NewReader(data), Options{})
	runtime.ReadMemStats(&after)

	if found || KindOf(err) != KindTruncated {
		t.Fatalf("found=%v err=%v want truncated", found, err)
	}
	if delta := after.TotalAlloc - before.TotalAlloc; delta > 1<<20 {
		t.Fatalf("allocated %d bytes for a %d byte input", delta, len(data))
	}
}
