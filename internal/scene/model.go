package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

var ErrInvalidModel = errors.New("invalid glb model")

// Placeholder describes the shape shown when the model cannot be loaded.
type Placeholder struct {
	Geometry string     `json:"geometry"`
	Size     [3]float64 `json:"size"`
	Color    string     `json:"color"`
	Emissive string     `json:"emissive"`
}

// FallbackShape is the box rendered instead of a missing model.
var FallbackShape = Placeholder{
	Geometry: "box",
	Size:     [3]float64{0.3, 1.5, 0.1},
	Color:    "#4a9eff",
	Emissive: "#1a3a5c",
}

// Model is the loaded hero asset, or its placeholder.
type Model struct {
	Data        []byte       `json:"-"`
	Bytes       int          `json:"bytes"`
	URL         string       `json:"url,omitempty"`
	Meshes      int          `json:"meshes"`
	Generator   string       `json:"generator,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
}

// Usable reports whether real model bytes are available.
func (m *Model) Usable() bool { return m.Placeholder == nil }

// LoadModel reads a binary glTF asset. Any failure is logged and yields the
// placeholder; it is never returned as an error.
func LoadModel(fsys fs.FS, path, url string, log *zap.Logger) *Model {
	data, err := fs.ReadFile(fsys, path)
	var doc *gltf.Document
	if err == nil {
		doc, err = DecodeGLB(data)
	}
	if err != nil {
		log.Warn("using placeholder model", zap.String("path", path), zap.Error(err))
		shape := FallbackShape
		return &Model{Placeholder: &shape}
	}
	log.Info("model loaded",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.Int("meshes", len(doc.Meshes)),
	)
	return &Model{
		Data:      data,
		Bytes:     len(data),
		URL:       url,
		Meshes:    len(doc.Meshes),
		Generator: doc.Asset.Generator,
	}
}

// DecodeGLB parses a binary glTF 2.0 container, including its JSON chunk.
func DecodeGLB(data []byte) (*gltf.Document, error) {
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: unsupported asset version %q", ErrInvalidModel, doc.Asset.Version)
	}
	return &doc, nil
}
