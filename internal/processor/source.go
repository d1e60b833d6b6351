package processor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a detected input format
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
	FormatZIP
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatZIP:
		return "zip"
	default:
		return "unknown"
	}
}

// Source is one named input document held in memory. Err is set on ZIP
// entries that could not be read; Data is then nil.
type Source struct {
	Name string
	Data []byte
	Err  error
}

// DetectFormat detects the input format from content
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) || bytes.HasPrefix(data, []byte("PK\x05\x06")) {
		return FormatZIP
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}

	return FormatUnknown
}

// ExpandZip returns every .xml entry of the archive, in archive order,
// named by its path inside the archive. An entry that cannot be read is
// returned with Err set; the error return is for an unreadable archive.
func ExpandZip(data []byte) ([]Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var out []Source
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isXMLName(f.Name) {
			continue
		}
		content, err := readZipEntry(f)
		if err != nil {
			out = append(out, Source{Name: f.Name, Err: err})
			continue
		}
		out = append(out, Source{Name: f.Name, Data: content})
	}
	return out, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// CollectPaths expands directories into the .xml and .zip files below them.
// Plain file arguments are kept as given.
func CollectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if isXMLName(path) || isZipName(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

// LoadSources reads each path into a Source. Names are the base names
// unless two paths share one, in which case all are named by their
// slash-separated path.
func LoadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		sources = append(sources, Source{Name: SourceName(p, paths), Data: data})
	}
	return sources, nil
}

// SourceName names path for reports: its base name when that is unique in
// paths, otherwise the cleaned path with forward slashes.
func SourceName(path string, paths []string) string {
	base := filepath.Base(path)
	for _, other := range paths {
		if other != path && filepath.Base(other) == base {
			return filepath.ToSlash(filepath.Clean(path))
		}
	}
	return base
}

func isXMLName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xml")
}

func isZipName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}
