package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/quic-go/qpack-interop/interop"
)

// fileConfig maps the optional config.toml keys onto the corpus
// layout convention.
type fileConfig struct {
	ResultsDir    string `toml:"results_dir"`
	VersionDir    string `toml:"version_dir"`
	EncodedMarker string `toml:"encoded_marker"`
	QIFSuffix     string `toml:"qif_suffix"`
	QIFDir        string `toml:"qif_dir"`
	SearchDepth   int    `toml:"search_depth"`
}

// loadConvention overlays the TOML file at path onto the default
// convention. An empty path returns the defaults.
func loadConvention(path string) (interop.Convention, error) {
	conv := interop.DefaultConvention()
	if path == "" {
		return conv, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return interop.Convention{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return interop.Convention{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("results_dir") {
		conv.ResultsDirName = strings.TrimSpace(raw.ResultsDir)
	}
	if meta.IsDefined("version_dir") {
		conv.VersionDirName = strings.TrimSpace(raw.VersionDir)
	}
	if meta.IsDefined("encoded_marker") {
		conv.EncodedMarker = raw.EncodedMarker
	}
	if meta.IsDefined("qif_suffix") {
		conv.QIFSuffix = raw.QIFSuffix
	}
	if meta.IsDefined("qif_dir") {
		conv.QIFDirName = strings.TrimSpace(raw.QIFDir)
	}
	if meta.IsDefined("search_depth") {
		if raw.SearchDepth < 1 {
			return interop.Convention{}, fmt.Errorf("load config: search_depth must be at least 1, got %d", raw.SearchDepth)
		}
		conv.SearchDepth = raw.SearchDepth
	}
	return conv, nil
}
