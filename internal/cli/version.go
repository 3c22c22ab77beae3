package cli

import (
	"fmt"
	"io"
)

// AppVersion is overridden at build time with -ldflags "-X".
var AppVersion = "dev"

func Version(stdout io.Writer) {
	fmt.Fprintf(stdout, "naipng %s\n", AppVersion)
}
