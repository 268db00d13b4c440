package interop

import (
	"os"
	"path/filepath"
	"strings"
)

// An InputKind says what kind of test input a path names.
type InputKind int

const (
	// InputUnknown is a path that matches none of the conventions.
	InputUnknown InputKind = iota
	// InputEncodedFile is a single encoded file.
	InputEncodedFile
	// InputQIFFile is a plaintext reference file.
	InputQIFFile
	// InputEncodedDir is one implementation's directory of encoded
	// files inside the results tree.
	InputEncodedDir
)

func (k InputKind) String() string {
	switch k {
	case InputEncodedFile:
		return "encoded file"
	case InputQIFFile:
		return "qif file"
	case InputEncodedDir:
		return "encoded results directory"
	default:
		return "unknown"
	}
}

// An EncodedFile is one encoded test input, paired with its plaintext
// reference if one was found. QIF stays empty when there is none.
type EncodedFile struct {
	Path string
	QIF  string
}

// An Input is the classification of a path, computed once by Classify.
type Input struct {
	Kind InputKind
	// File is set for InputEncodedFile.
	File EncodedFile
	// Dir and Impl are set for InputEncodedDir. Impl labels the
	// implementation the encoded files originate from.
	Dir  string
	Impl string
}

// Classify decides what kind of test input path names.
// For an encoded file the reference lookup is best-effort: a failed
// lookup classifies fine, just without a reference.
func (c Convention) Classify(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, err
	}

	if !info.IsDir() {
		name := filepath.Base(path)
		switch {
		case strings.Contains(name, c.EncodedMarker):
			f := EncodedFile{Path: path}
			if qif, err := c.FindQIF(path); err == nil {
				f.QIF = qif
			}
			return Input{Kind: InputEncodedFile, File: f}, nil
		case strings.HasSuffix(name, c.QIFSuffix):
			return Input{Kind: InputQIFFile}, nil
		default:
			return Input{Kind: InputUnknown}, nil
		}
	}

	if !c.isEncodedDir(path) {
		return Input{Kind: InputUnknown}, nil
	}
	return Input{
		Kind: InputEncodedDir,
		Dir:  path,
		Impl: filepath.Base(filepath.Dir(path)),
	}, nil
}

// isEncodedDir reports whether dir sits at
// <...>/<ResultsDirName>/<VersionDirName>/<dir>.
func (c Convention) isEncodedDir(dir string) bool {
	parent := filepath.Dir(dir)
	grandparent := filepath.Dir(parent)
	if parent == dir || grandparent == parent {
		return false
	}
	return filepath.Base(parent) == c.VersionDirName &&
		filepath.Base(grandparent) == c.ResultsDirName
}

// ListEncodedDir enumerates the direct file entries of an encoded
// results directory, resolving each file's reference independently.
// Subdirectories and unreadable entries are skipped.
func (c Convention) ListEncodedDir(dir string) ([]EncodedFile, error) {
	entries, err := c.readDir(dir)
	if err != nil {
		return nil, err
	}
	var files []EncodedFile
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		f := EncodedFile{Path: filepath.Join(dir, e.Name())}
		if qif, err := c.FindQIF(f.Path); err == nil {
			f.QIF = qif
		}
		files = append(files, f)
	}
	return files, nil
}
