package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/quic-go/qpack-interop/interop"
)

func main() {
	configPath := flag.String("config", "", "optional TOML file overriding the corpus layout")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <encoded file or directory>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	if err := run(logger, *configPath, flag.Arg(0)); err != nil {
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, configPath, path string) error {
	conv, err := loadConvention(configPath)
	if err != nil {
		return err
	}

	in, err := conv.Classify(path)
	if err != nil {
		return err
	}
	switch in.Kind {
	case interop.InputQIFFile:
		return fmt.Errorf("%s is a plaintext reference file, nothing to decode", path)
	case interop.InputUnknown:
		return fmt.Errorf("%s is neither an encoded file nor an encoded results directory", path)
	case interop.InputEncodedDir:
		logger.Debug().Str("dir", in.Dir).Str("impl", in.Impl).Msg("decoding encoded results directory")
	}

	results, err := interop.NewRunner(conv).Run(in)
	if err != nil {
		return err
	}

	var failures int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failures++
			logger.Error().Err(res.Err).Str("file", res.File.Path).Msg("failed")
		case res.Verified:
			logger.Info().Str("file", res.File.Path).Int("blocks", len(res.Blocks)).Msg("ok, verified against reference")
		default:
			logger.Info().Str("file", res.File.Path).Int("blocks", len(res.Blocks)).Msg("ok, no reference found")
		}
	}
	logger.Info().Int("total", len(results)).Int("failed", failures).Msg("done")
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(results))
	}
	return nil
}
