package polymesh

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

var ErrUnknownFormat = errors.New("unrecognised mesh format")

// sniffLen is how many leading bytes DetectFormat is given.
const sniffLen = 262

var (
	// PMSHType is the binary mesh format written by WriteTo.
	PMSHType = filetype.NewType("pmsh", "application/x-polymesh")
	// PLYType is the ASCII or binary Stanford polygon format.
	PLYType = filetype.NewType("ply", "model/x-ply")
	// DXFType is the ASCII drawing exchange format.
	DXFType = filetype.NewType("dxf", "image/vnd.dxf")
)

func init() {
	filetype.AddMatcher(PMSHType, func(buf []byte) bool {
		return bytes.HasPrefix(buf, []byte(fileMagic))
	})
	filetype.AddMatcher(PLYType, func(buf []byte) bool {
		return bytes.HasPrefix(buf, []byte("ply\n")) || bytes.HasPrefix(buf, []byte("ply\r\n"))
	})
	filetype.AddMatcher(DXFType, isDXF)
}

// isDXF reports whether buf opens with a "0 / SECTION" group pair.
func isDXF(buf []byte) bool {
	lines := bytes.SplitN(buf, []byte("\n"), 3)
	return len(lines) == 3 &&
		string(bytes.TrimSpace(lines[0])) == "0" &&
		string(bytes.TrimSpace(lines[1])) == "SECTION"
}

// DetectFormat names the format of a file from its first bytes: "pmsh",
// "ply", the extension of any other type filetype recognises, or "unknown".
func DetectFormat(header []byte) string {
	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown {
		return "unknown"
	}
	return kind.Extension
}

// LoadAny reads a PMSH, PLY or DXF file, telling them apart by content
// rather than by extension.
func LoadAny(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// a short file still yields the bytes it has
	header, _ := br.Peek(sniffLen)

	switch format := DetectFormat(header); format {
	case "pmsh":
		m := NewMesh(TriMesh)
		if err := m.loadNamed(path, br); err != nil {
			return nil, err
		}
		return m, nil
	case "ply", "dxf":
		importer := ImportPLY
		if format == "dxf" {
			importer = ImportDXF
		}
		m, err := importer(br)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		slog.Debug("imported mesh", "path", path, "type", m.MeshType(), "polygons", m.PolygonCount())
		return m, nil
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnknownFormat, format)}
	}
}

// SaveAny picks the format from the extension of path: .ply and .dxf are
// exported, anything else is written as PMSH.
func (m *Mesh) SaveAny(path string) error {
	var export func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		export = m.ExportPLY
	case ".dxf":
		export = m.ExportDXF
	default:
		return m.SaveFile(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()
	if err := export(f); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
