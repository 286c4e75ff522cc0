package disasm

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Source is a read-only view of a whole input file.
type Source struct {
	path    string
	file    *os.File
	data    []byte
	mapped  bool
	release func() error
}

// Open maps path into memory. Regular files are mapped where the platform
// allows it, anything else is read in full.
func Open(path string) (*Source, error) {
	return open(path, true)
}

// Read copies path into memory. Use it for files another process may be
// rewriting.
func Read(path string) (*Source, error) {
	return open(path, false)
}

func open(path string, mmap bool) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file size: %w", err)
	}

	src := &Source{path: path, file: file, release: func() error { return nil }}
	if mmap && info.Mode().IsRegular() && info.Size() > 0 {
		data, release, err := mapFile(file, info.Size())
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to map file: %w", err)
		}
		src.data, src.release, src.mapped = data, release, true
		return src, nil
	}

	src.data, err = io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return src, nil
}

func (s *Source) Path() string {
	return s.path
}

// Bytes is valid until Close.
func (s *Source) Bytes() []byte {
	return s.data
}

func (s *Source) Mapped() bool {
	return s.mapped
}

func (s *Source) Close() error {
	err := errors.Join(s.release(), s.file.Close())
	s.data = nil
	s.release = func() error { return nil }
	return err
}
