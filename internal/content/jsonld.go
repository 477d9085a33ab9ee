package content

import (
	"encoding/json"
	"strings"
)

const schemaContext = "https://schema.org"

type personSchema struct {
	Context     string   `json:"@context,omitempty"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	JobTitle    string   `json:"jobTitle,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Image       string   `json:"image,omitempty"`
	Email       string   `json:"email,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
	KnowsAbout  []string `json:"knowsAbout,omitempty"`
}

type websiteSchema struct {
	Context string       `json:"@context"`
	Type    string       `json:"@type"`
	Name    string       `json:"name"`
	URL     string       `json:"url"`
	Author  personSchema `json:"author"`
}

// StructuredData returns the Person and WebSite JSON-LD documents for the
// site at baseURL.
func (p *Portfolio) StructuredData(baseURL string) ([][]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	prof := p.Profile

	var sameAs []string
	for _, s := range prof.Socials {
		if strings.HasPrefix(s.URL, "https://") {
			sameAs = append(sameAs, s.URL)
		}
	}
	person := personSchema{
		Context:     schemaContext,
		Type:        "Person",
		Name:        prof.Name,
		JobTitle:    prof.JobTitle,
		Description: prof.Description,
		URL:         baseURL,
		Email:       prof.Email,
		SameAs:      sameAs,
		KnowsAbout:  prof.KnowsAbout,
	}
	if prof.Image != "" {
		person.Image = baseURL + prof.Image
	}
	site := websiteSchema{
		Context: schemaContext,
		Type:    "WebSite",
		Name:    prof.Name + " Portfolio",
		URL:     baseURL,
		Author:  personSchema{Type: "Person", Name: prof.Name},
	}

	var out [][]byte
	for _, doc := range []any{person, site} {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
