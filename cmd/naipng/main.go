package main

import (
	"os"

	"github.com/autobrr/go-naipng/internal/cli"
)

func main() {
	exitCode := cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
