package naipng

import (
	"bytes"
	"strings"
)

const (
	// KeywordNAIData is the nonstandard tEXt keyword used for text
	// generation metadata.
	KeywordNAIData = "naidata"
	// KeywordComment is the standard tEXt keyword NovelAI uses for image
	// generation metadata. Other software uses it too.
	KeywordComment = "Comment"

	maxKeywordLength = 79
)

// Domain selects which kinds of metadata to look for. Values combine as a
// bit set.
type Domain uint8

const (
	DomainTextGen Domain = 1 << iota
	DomainImageGen

	DomainAll = DomainTextGen | DomainImageGen
)

func (d Domain) Has(other Domain) bool { return d&other != 0 }

func (d Domain) String() string {
	var parts []string
	if d.Has(DomainTextGen) {
		parts = append(parts, "text")
	}
	if d.Has(DomainImageGen) {
		parts = append(parts, "image")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// TextChunk is a tEXt chunk split into its keyword and text. Text aliases
// the input buffer when reading from memory.
type TextChunk struct {
	Keyword string
	Text    []byte
	Offset  int64
}

// parseTextChunk splits a tEXt payload at the first NUL. A payload with
// no separator or an out-of-range keyword is not usable as text.
func parseTextChunk(c RawChunk) (TextChunk, bool) {
	if c.TypeString() != typeTEXT {
		return TextChunk{}, false
	}
	sep := bytes.IndexByte(c.Data, 0)
	if sep < 1 || sep > maxKeywordLength {
		return TextChunk{}, false
	}
	return TextChunk{
		Keyword: string(c.Data[:sep]),
		Text:    c.Data[sep+1:],
		Offset:  c.Offset,
	}, true
}

func classify(keyword string, domains Domain) (Domain, bool) {
	switch keyword {
	case KeywordNAIData:
		return DomainTextGen, domains.Has(DomainTextGen)
	case KeywordComment:
		return DomainImageGen, domains.Has(DomainImageGen)
	}
	return 0, false
}
