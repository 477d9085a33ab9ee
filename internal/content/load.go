package content

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// DataFS returns the embedded content files rooted at data/.
func DataFS() fs.FS {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load decodes and validates the embedded content.
func Load() (*Portfolio, error) {
	return LoadFS(DataFS())
}

// LoadFS decodes content from fsys, which must hold one YAML file per
// collection.
func LoadFS(fsys fs.FS) (*Portfolio, error) {
	p := &Portfolio{}
	files := []struct {
		name string
		dst  any
	}{
		{"profile.yml", &p.Profile},
		{"work.yml", &p.Work},
		{"education.yml", &p.Education},
		{"skills.yml", &p.Skills},
		{"learning.yml", &p.Learning},
		{"projects.yml", &p.Projects},
		{"languages.yml", &p.Languages},
	}
	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.dst); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	if err := p.render(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeFile(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (p *Portfolio) render() error {
	html, err := RenderMarkdown(p.Profile.About)
	if err != nil {
		return fmt.Errorf("rendering about: %w", err)
	}
	p.Profile.AboutHTML = html
	for i := range p.Projects {
		html, err := RenderMarkdown(p.Projects[i].Description)
		if err != nil {
			return fmt.Errorf("rendering project %q: %w", p.Projects[i].Title, err)
		}
		p.Projects[i].DescriptionHTML = html
	}
	return nil
}
