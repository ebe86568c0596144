package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// SourceKind distinguishes on-disk files from uploaded bytes.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceUpload SourceKind = "upload"
)

// Source is where a dataset comes from: a path (the builtin dataset, or a file
// given on the command line) or an uploaded byte stream.
type Source struct {
	Kind SourceKind
	Name string
	Path string
	Data []byte
}

// FileSource returns a source reading path.
func FileSource(path string) Source {
	return Source{Kind: SourceFile, Name: filepath.Base(path), Path: path}
}

// UploadSource returns a source over uploaded bytes. name is the client file name
// and selects the format by extension.
func UploadSource(name string, data []byte) Source {
	if name == "" {
		name = "upload.csv"
	}
	return Source{Kind: SourceUpload, Name: filepath.Base(name), Data: data}
}

// Identity returns the cache key of the source: path, modification time and size
// for files, a content hash for uploads.
func (s Source) Identity() (string, error) {
	switch s.Kind {
	case SourceFile:
		abs, err := filepath.Abs(s.Path)
		if err != nil {
			abs = s.Path
		}
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", &LoadError{Kind: FileNotFound, Source: s.Path}
			}
			return "", &LoadError{Kind: FileNotFound, Source: s.Path, Err: err}
		}
		if info.IsDir() {
			return "", &LoadError{Kind: FileNotFound, Source: s.Path, Err: errors.New("is a directory")}
		}
		return fmt.Sprintf("file:%s@%d:%d", abs, info.ModTime().UnixNano(), info.Size()), nil
	case SourceUpload:
		return "upload:" + strconv.FormatUint(xxhash.Sum64(s.Data), 16), nil
	default:
		return "", fmt.Errorf("unknown source kind %q", s.Kind)
	}
}

func (s Source) label() string {
	if s.Kind == SourceFile {
		return s.Path
	}
	return s.Name
}
