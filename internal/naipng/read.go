// Package naipng scans PNG datastreams for NovelAI JSON metadata stored in
// tEXt chunks.
//
// Two keywords are recognised. naidata carries base64-encoded JSON (text
// generation); a naidata chunk that does not decode is an error. Comment
// carries plain JSON (image generation); since Comment is a standard
// keyword, non-JSON comments are skipped.
package naipng

import (
	"errors"
	"io"
	"log/slog"
)

// ErrStopWalk may be returned from a WalkText callback to end the walk
// without error.
var ErrStopWalk = errors.New("stop walk")

type Options struct {
	// Domains restricts the search. Zero means DomainAll.
	Domains Domain
	// VerifyAllChecksums checks the CRC of every chunk rather than only
	// tEXt chunks.
	VerifyAllChecksums bool
	Logger             *slog.Logger
}

func (o Options) domains() Domain {
	if o.Domains == 0 {
		return DomainAll
	}
	return o.Domains
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result is the first metadata payload found.
type Result struct {
	Domain  Domain
	Keyword string
	Offset  int64
	Data    map[string]any
	Header  ImageHeader
}

// Read scans r for the first tEXt chunk holding metadata in one of the
// requested domains. found is false when the datastream ends without one.
// Seekable readers are skipped through with Seek.
func Read(r io.Reader, opts Options) (Result, bool, error) {
	return extract(newSource(r), opts)
}

// ReadBytes is Read over an in-memory PNG.
func ReadBytes(data []byte, opts Options) (Result, bool, error) {
	return extract(newBytesSource(data), opts)
}

// ReadTextGen looks only for naidata chunks.
func ReadTextGen(r io.Reader) (Result, bool, error) {
	return Read(r, Options{Domains: DomainTextGen})
}

// ReadImageGen looks only for Comment chunks.
func ReadImageGen(r io.Reader) (Result, bool, error) {
	return Read(r, Options{Domains: DomainImageGen})
}

// WalkText calls fn for every well-formed tEXt chunk in stream order. The
// same framing and checksum rules as Read apply. The returned header is
// whatever IHDR held, even when err is non-nil.
func WalkText(r io.Reader, opts Options, fn func(TextChunk) error) (ImageHeader, error) {
	return walk(newSource(r), opts, fn)
}

func walk(src source, opts Options, fn func(TextChunk) error) (ImageHeader, error) {
	if err := readSignature(src); err != nil {
		return ImageHeader{}, err
	}
	log := opts.logger()
	cr := &chunkReader{src: src, verifyAll: opts.VerifyAllChecksums}
	for {
		chunk, ok, err := cr.next()
		if err != nil {
			return cr.header, err
		}
		if !ok {
			return cr.header, nil
		}
		tc, ok := parseTextChunk(chunk)
		if !ok {
			if chunk.TypeString() == typeTEXT {
				log.Debug("tEXt chunk without keyword", "offset", chunk.Offset, "length", chunk.Length)
			}
			continue
		}
		if err := fn(tc); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return cr.header, nil
			}
			return cr.header, err
		}
	}
}

func extract(src source, opts Options) (Result, bool, error) {
	domains := opts.domains()
	log := opts.logger()

	var res Result
	found := false
	header, err := walk(src, opts, func(tc TextChunk) error {
		domain, ok := classify(tc.Keyword, domains)
		if !ok {
			log.Debug("skipping text chunk", "keyword", tc.Keyword, "offset", tc.Offset)
			return nil
		}
		var data map[string]any
		switch domain {
		case DomainTextGen:
			obj, err := decodeNAIData(tc.Text)
			if err != nil {
				return err
			}
			data = obj
		case DomainImageGen:
			obj, ok := decodeComment(tc.Text)
			if !ok {
				log.Debug("Comment chunk is not a JSON object", "offset", tc.Offset, "length", len(tc.Text))
				return nil
			}
			data = obj
		}
		res = Result{Domain: domain, Keyword: tc.Keyword, Offset: tc.Offset, Data: data}
		found = true
		return ErrStopWalk
	})
	if err != nil {
		return Result{}, false, err
	}
	if !found {
		return Result{}, false, nil
	}
	res.Header = header
	log.Debug("found metadata", "keyword", res.Keyword, "offset", res.Offset, "keys", len(res.Data))
	return res, true, nil
}
