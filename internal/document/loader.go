package document

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SupportedSuffix is the only accepted filename suffix. The check is a
// literal, case-sensitive suffix match.
const SupportedSuffix = ".txt"

var (
	// ErrUnsupportedType is returned for filenames not ending in ".txt".
	ErrUnsupportedType = errors.New("Only .txt files are supported in this demo")
	// ErrDecode is returned when the payload is not valid UTF-8.
	ErrDecode = errors.New("content is not valid UTF-8")
)

// Document is a decoded plain-text upload with derived metadata.
type Document struct {
	Filename  string
	Hash      string // "sha256:<hex>" of the raw bytes
	Text      string
	SizeBytes int
	LineCount int
}

// Decode validates the filename and payload of an upload and returns the
// decoded document. The filename check runs before any decoding.
func Decode(filename string, data []byte) (*Document, error) {
	if !strings.HasSuffix(filename, SupportedSuffix) {
		return nil, ErrUnsupportedType
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("decoding %s: %w at byte %d", filename, ErrDecode, invalidOffset(data))
	}

	sum := sha256.Sum256(data)
	text := string(data)
	return &Document{
		Filename:  filename,
		Hash:      fmt.Sprintf("sha256:%x", sum),
		Text:      text,
		SizeBytes: len(data),
		LineCount: countLines(text),
	}, nil
}

// Load reads a document from disk. The base name is used as the filename.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// LoadAll loads every path in order and stops at the first failure.
func LoadAll(paths []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		d, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// countLines counts lines the way an editor does: a trailing newline does
// not open a new line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
