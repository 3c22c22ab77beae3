package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/pflag"

	"github.com/autobrr/go-naipng/internal/naipng"
)

// Exit codes. 100-102 match the long-standing naipng tool.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitInvalid  = 100
	ExitNotFound = 101
	ExitWrite    = 102
	ExitSchema   = 103
)

type options struct {
	quiet   bool
	compact bool
	text    bool
	image   bool
	format  string
	schema  string
	list    bool
	strict  bool
	verbose bool
	version bool
	help    bool
}

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	prog := "naipng"
	if len(args) > 0 {
		args = args[1:]
	}

	cfg := LoadConfig()
	var opts options
	flagSet := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVarP(&opts.quiet, "quiet", "q", false, "don't print errors")
	flagSet.BoolVarP(&opts.compact, "compact", "c", false, "don't pretty-print decoded JSON")
	flagSet.BoolVarP(&opts.text, "text", "t", false, "only check for text generation data")
	flagSet.BoolVarP(&opts.image, "image", "i", false, "only check for image generation data")
	flagSet.StringVarP(&opts.format, "format", "f", cfg.Format, "output format: json, yaml or cbor")
	flagSet.StringVar(&opts.schema, "schema", "", "validate decoded data against a JSON Schema file")
	flagSet.BoolVar(&opts.list, "list", false, "list tEXt chunks instead of decoding")
	flagSet.BoolVar(&opts.strict, "strict", false, "verify the CRC of every chunk, not just tEXt")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log chunk decisions to stderr")
	flagSet.BoolVar(&opts.version, "version", false, "print version and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if opts.help {
		printUsage(stdout, flagSet)
		return ExitOK
	}
	if opts.version {
		Version(stdout)
		return ExitOK
	}

	cfg.Format = opts.format
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsage
	}
	positional := flagSet.Args()
	if len(positional) < 1 || len(positional) > 2 {
		printUsage(stderr, flagSet)
		return ExitUsage
	}

	logger := newLogger(stderr, cfg, opts)
	report := func(format string, a ...any) {
		if !opts.quiet {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}

	var schema *jsonschema.Schema
	if opts.schema != "" {
		s, err := loadSchema(opts.schema)
		if err != nil {
			report("Error: %v", err)
			return ExitUsage
		}
		schema = s
	}

	in, closeIn, err := openInput(positional[0], stdin)
	if err != nil {
		report("Error: %v", err)
		return ExitUsage
	}
	defer closeIn()

	readOpts := naipng.Options{
		Domains:            domainsFor(opts),
		VerifyAllChecksums: opts.strict,
		Logger:             logger,
	}
	logger.Debug("scanning", "input", positional[0], "domains", readOpts.Domains.String(), "strict", opts.strict)

	if opts.list {
		return runList(in, positional, stdout, readOpts, report)
	}

	res, found, err := naipng.Read(in, readOpts)
	if err != nil {
		report("Error: %v", err)
		if errors.Is(err, naipng.ErrInvalidPNG) || errors.Is(err, naipng.ErrNAIData) {
			return ExitInvalid
		}
		return ExitFailure
	}
	if !found {
		report("No NovelAI data was found in the file.")
		return ExitNotFound
	}
	logger.Debug("decoded", "domain", res.Domain.String(), "offset", res.Offset)

	if schema != nil {
		if err := validateSchema(schema, res.Data); err != nil {
			report("Error: %v", err)
			return ExitSchema
		}
	}

	out, err := render(res.Data, cfg.Format, !opts.compact)
	if err != nil {
		report("Error: %v", err)
		return ExitFailure
	}
	if err := writeOutput(outputPath(positional), stdout, out); err != nil {
		report("Error: failed to write to output stream: %v", err)
		return ExitWrite
	}
	return ExitOK
}

func runList(in io.Reader, positional []string, stdout io.Writer, readOpts naipng.Options, report func(string, ...any)) int {
	w := stdout
	var file *os.File
	if path := outputPath(positional); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			report("Error: failed to write to output stream: %v", err)
			return ExitWrite
		}
		file = f
		w = f
	}
	count, err := listText(in, w, readOpts)
	if file != nil {
		if cerr := file.Close(); cerr != nil && err == nil {
			report("Error: failed to write to output stream: %v", cerr)
			return ExitWrite
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, errListWrite):
			report("Error: failed to write to output stream: %v", err)
			return ExitWrite
		case errors.Is(err, naipng.ErrInvalidPNG):
			report("Error: %v", err)
			return ExitInvalid
		}
		report("Error: %v", err)
		return ExitFailure
	}
	if count == 0 {
		report("No tEXt chunks were found in the file.")
		return ExitNotFound
	}
	return ExitOK
}

func domainsFor(opts options) naipng.Domain {
	var d naipng.Domain
	if opts.text {
		d |= naipng.DomainTextGen
	}
	if opts.image {
		d |= naipng.DomainImageGen
	}
	if d == 0 {
		return naipng.DomainAll
	}
	return d
}

func newLogger(stderr io.Writer, cfg Config, opts options) *slog.Logger {
	if opts.quiet {
		return slog.New(slog.DiscardHandler)
	}
	level, _ := parseLevel(cfg.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func outputPath(positional []string) string {
	if len(positional) < 2 {
		return "-"
	}
	return positional[1]
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `naipng reads NovelAI data encoded in a PNG file.

Usage:
  naipng [flags] <file|-> [outfile|-]

Examples:
  naipng image.png
  naipng image.png naidata.json
  naipng - < image.png > naidata.json
  curl -fs https://files.catbox.moe/3b6dux.png | naipng -c - | jq

Flags:
%s`, flagSet.FlagUsages())
}
