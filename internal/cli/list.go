package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/autobrr/go-naipng/internal/naipng"
)

// errListWrite marks failures of the listing writer, as opposed to the input.
var errListWrite = errors.New("write listing")

// listText prints one line per tEXt chunk and returns how many were seen.
func listText(r io.Reader, w io.Writer, opts naipng.Options) (int, error) {
	count := 0
	header, err := naipng.WalkText(r, opts, func(tc naipng.TextChunk) error {
		count++
		if _, werr := fmt.Fprintf(w, "%-10d %-24s %s\n", tc.Offset, tc.Keyword, formatBytes(int64(len(tc.Text)))); werr != nil {
			return fmt.Errorf("%w: %w", errListWrite, werr)
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	if header.Width > 0 {
		if _, err := fmt.Fprintf(w, "IHDR %dx%d, %d-bit %s\n", header.Width, header.Height, header.BitDepth, colorSpaceOrType(header)); err != nil {
			return count, fmt.Errorf("%w: %w", errListWrite, err)
		}
	}
	return count, nil
}

func colorSpaceOrType(h naipng.ImageHeader) string {
	if cs := h.ColorSpace(); cs != "" {
		return cs
	}
	return fmt.Sprintf("color type %d", h.ColorType)
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div := float64(size)
	exp := 0
	units := []string{"KiB", "MiB", "GiB"}
	for div >= unit && exp < len(units) {
		div /= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", div, units[exp-1])
}
