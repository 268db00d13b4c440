package interop

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quic-go/qpack-interop/qpack"
)

// A Convention describes how the test corpus is laid out on disk.
// The zero value is not usable; start from DefaultConvention.
type Convention struct {
	// ResultsDirName and VersionDirName are the two directory names an
	// encoded results directory is nested under,
	// e.g. encoded/qpack-05/<implementation>.
	ResultsDirName string
	VersionDirName string
	// EncodedMarker is the substring marking a file as decoder input.
	EncodedMarker string
	// QIFSuffix is the suffix of plaintext reference files.
	QIFSuffix string
	// QIFDirName is the name of the directory holding the reference files.
	QIFDirName string
	// SearchDepth is the number of ancestor directories searched for
	// QIFDirName, starting at an encoded file's own directory.
	SearchDepth int

	// ReadDir lists a directory. It defaults to os.ReadDir; tests
	// replace it to run against a synthetic tree.
	ReadDir func(path string) ([]os.DirEntry, error)
}

// DefaultConvention returns the layout of the qpackers interop corpus.
func DefaultConvention() Convention {
	return Convention{
		ResultsDirName: "encoded",
		VersionDirName: "qpack-05",
		EncodedMarker:  ".out",
		QIFSuffix:      ".qif",
		QIFDirName:     "qifs",
		SearchDepth:    4,
	}
}

func (c Convention) readDir(path string) ([]os.DirEntry, error) {
	if c.ReadDir != nil {
		return c.ReadDir(path)
	}
	return os.ReadDir(path)
}

// FindQIF locates the plaintext reference for an encoded file: the
// file's base name truncated at the first dot, joined to the nearest
// qifs directory (see findQIFDir), with the QIF suffix appended.
// It returns "" if no qifs directory is found within the search depth;
// that is not an error.
func (c Convention) FindQIF(path string) (string, error) {
	name := filepath.Base(path)
	canonical, _, _ := strings.Cut(name, ".")
	if canonical == "" || canonical == "." || canonical == string(filepath.Separator) {
		return "", ErrBadFilename
	}
	dir, err := c.findQIFDir(path)
	if err != nil || dir == "" {
		return "", err
	}
	return filepath.Join(dir, canonical+c.QIFSuffix), nil
}

// findQIFDir walks up from the file's directory through at most
// SearchDepth ancestors and returns the first one containing a direct
// child named QIFDirName. The nearest ancestor wins.
func (c Convention) findQIFDir(path string) (string, error) {
	dir := filepath.Dir(path)
	for i := 0; i < c.SearchDepth; i++ {
		entries, err := c.readDir(dir)
		if err != nil {
			return "", err
		}
		for _, e := range entries {
			if e.IsDir() && e.Name() == c.QIFDirName {
				return filepath.Join(dir, c.QIFDirName), nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// ReadQIF reads and parses the reference file at path.
func ReadQIF(path string) ([][]qpack.HeaderField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseQIF(file)
}

// ParseQIF parses a plaintext reference file: one header field per
// line, name and value separated by a tab, header blocks separated by
// blank lines.
func ParseQIF(r io.Reader) ([][]qpack.HeaderField, error) {
	sc := bufio.NewScanner(r)
	var blocks [][]qpack.HeaderField
	var current []qpack.HeaderField
	for sc.Scan() {
		line := sc.Text()
		if len(line) == 0 {
			if current != nil {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		name, value, _ := strings.Cut(line, "\t")
		current = append(current, qpack.HeaderField{Name: name, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks, nil
}
