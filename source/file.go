package source

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// File reads a scan payload from a snapshot previously written by Save.
// Snapshots ending in .gz are transparently decompressed.
type File struct {
	path  string
	appFs afero.Fs
}

type FileOption func(*File)

func WithAppFs(fs afero.Fs) FileOption {
	return func(f *File) { f.appFs = fs }
}

func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:  path,
		appFs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) Images() ([]byte, error) {
	file, err := f.appFs.Open(f.path)
	if err != nil {
		return nil, xerrors.Errorf("unable to open a snapshot: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(f.path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, xerrors.Errorf("unable to decompress %s: %w", f.path, err)
		}
		defer gz.Close()
		r = gz
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("unable to read %s: %w", f.path, err)
	}
	return body, nil
}

// Save persists a fetched payload as an indented JSON snapshot so that
// file-sourced queries replay the same data. Paths ending in .gz are
// gzip-compressed.
func Save(appFs afero.Fs, filePath string, payload []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return xerrors.Errorf("invalid payload: %w", err)
	}

	f, err := appFs.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(filePath, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return xerrors.Errorf("failed to flush %s: %w", filePath, err)
		}
	}
	return nil
}
