package interop

import (
	"fmt"
	"os"

	"github.com/quic-go/qpack-interop/qpack"
)

// A FileResult is the outcome of decoding one encoded file.
type FileResult struct {
	File   EncodedFile
	Blocks [][]qpack.HeaderField
	// Verified is true when the decode matched the file's reference.
	// It stays false when no reference was found.
	Verified bool
	Err      error
}

// A Runner decodes encoded files with a fresh codec per file.
type Runner struct {
	Convention Convention
	// NewCodec constructs the codec for one file's pass.
	NewCodec func() Codec
}

// NewRunner returns a Runner decoding with a new qpack.Decoder per file.
func NewRunner(c Convention) *Runner {
	return &Runner{
		Convention: c,
		NewCodec:   func() Codec { return qpack.NewDecoder() },
	}
}

// Run decodes all encoded files the input resolves to.
// A file's failure is recorded in its FileResult and never stops the
// remaining files; the returned error covers only resolving the input
// itself.
func (r *Runner) Run(in Input) ([]FileResult, error) {
	switch in.Kind {
	case InputEncodedFile:
		return []FileResult{r.RunFile(in.File)}, nil
	case InputEncodedDir:
		files, err := r.Convention.ListEncodedDir(in.Dir)
		if err != nil {
			return nil, err
		}
		results := make([]FileResult, 0, len(files))
		for _, f := range files {
			results = append(results, r.RunFile(f))
		}
		return results, nil
	default:
		return nil, fmt.Errorf("cannot decode input of kind %q", in.Kind)
	}
}

// RunFile decodes a single encoded file and, if it has a reference,
// checks the result against it.
func (r *Runner) RunFile(f EncodedFile) FileResult {
	res := FileResult{File: f}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Blocks, res.Err = DecodeStream(data, r.NewCodec())
	if res.Err != nil || f.QIF == "" {
		return res
	}

	expected, err := ReadQIF(f.QIF)
	if err != nil {
		res.Err = err
		return res
	}
	if err := compareBlocks(expected, res.Blocks); err != nil {
		res.Err = err
		return res
	}
	res.Verified = true
	return res
}

func compareBlocks(expected, got [][]qpack.HeaderField) error {
	if len(got) != len(expected) {
		return fmt.Errorf("decoded %d header blocks, reference lists %d", len(got), len(expected))
	}
	for i := range expected {
		if len(got[i]) != len(expected[i]) {
			return fmt.Errorf("block %d: decoded %d header fields, reference lists %d", i+1, len(got[i]), len(expected[i]))
		}
		for j, hf := range expected[i] {
			if got[i][j] != hf {
				return fmt.Errorf("block %d, field %d: decoded %s: %s, reference lists %s: %s",
					i+1, j+1, got[i][j].Name, got[i][j].Value, hf.Name, hf.Value)
			}
		}
	}
	return nil
}
