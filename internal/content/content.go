// Package content holds the static portfolio data: profile, timeline,
// skills, projects and languages. It is decoded once from embedded YAML.
package content

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// TechKind tells the renderer how to draw a technology badge.
type TechKind string

const (
	TechLogo  TechKind = "logo"
	TechIcon  TechKind = "icon"
	TechPlain TechKind = "plain"
)

// TechItem is a technology badge. In YAML it is either a bare name or a
// mapping with an optional logo path or icon name.
type TechItem struct {
	Name string `yaml:"name" json:"name"`
	Logo string `yaml:"logo,omitempty" json:"logo,omitempty"`
	Icon string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

func (t *TechItem) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*t = TechItem{Name: n.Value}
		return nil
	}
	type plain TechItem
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*t = TechItem(p)
	return nil
}

// Kind picks the badge variant. A logo wins over an icon.
func (t TechItem) Kind() TechKind {
	switch {
	case t.Logo != "":
		return TechLogo
	case t.Icon != "":
		return TechIcon
	}
	return TechPlain
}

// Skill is a group of related technologies.
type Skill struct {
	Icon string     `yaml:"icon" json:"icon"`
	Name string     `yaml:"name" json:"name"`
	Tech []TechItem `yaml:"tech" json:"tech"`
}

// Work is one job in the experience timeline.
type Work struct {
	Icon           string     `yaml:"icon" json:"icon"`
	Title          string     `yaml:"title" json:"title"`
	Subtitle       string     `yaml:"subtitle" json:"subtitle"`
	Period         string     `yaml:"period" json:"period"`
	Location       string     `yaml:"location" json:"location"`
	Description    []string   `yaml:"description" json:"description"`
	Specialization []TechItem `yaml:"specialization" json:"specialization"`
}

// CollapsedBullets is how many description lines show before "Read more".
const CollapsedBullets = 2

// Expandable reports whether the entry has more bullets than are shown
// collapsed.
func (w Work) Expandable() bool { return len(w.Description) > CollapsedBullets }

// Education is one school or certification in the timeline.
type Education struct {
	Icon     string `yaml:"icon" json:"icon"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
	Period   string `yaml:"period" json:"period"`
	Location string `yaml:"location" json:"location"`
	CGPA     string `yaml:"cgpa,omitempty" json:"cgpa,omitempty"`
	Honors   string `yaml:"honors,omitempty" json:"honors,omitempty"`
}

// notApplicable marks an optional field that was filled in as absent.
const notApplicable = "N/A"

func present(s string) bool { return s != "" && s != notApplicable }

func (e Education) HasCGPA() bool   { return present(e.CGPA) }
func (e Education) HasHonors() bool { return present(e.Honors) }

// TimelineKind selects the experience tab.
type TimelineKind string

const (
	TimelineWork      TimelineKind = "work"
	TimelineEducation TimelineKind = "education"
)

// ParseTimelineKind validates a tab name.
func ParseTimelineKind(s string) (TimelineKind, error) {
	switch k := TimelineKind(s); k {
	case TimelineWork, TimelineEducation:
		return k, nil
	}
	return "", fmt.Errorf("unknown timeline %q", s)
}

// TimelineEntry is a work or education entry; exactly one pointer is set.
type TimelineEntry struct {
	Kind      TimelineKind
	Work      *Work
	Education *Education
}

// Title is shared by both variants.
func (e TimelineEntry) Title() string {
	if e.Work != nil {
		return e.Work.Title
	}
	return e.Education.Title
}

// Project is a showcased project. Website, GitHub and Video are optional.
type Project struct {
	Image       string     `yaml:"image" json:"image"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Tags        []TechItem `yaml:"tags" json:"tags"`
	Website     string     `yaml:"website,omitempty" json:"website,omitempty"`
	GitHub      string     `yaml:"github,omitempty" json:"github,omitempty"`
	Video       string     `yaml:"video,omitempty" json:"video,omitempty"`

	DescriptionHTML string `yaml:"-" json:"-"`
}

// CardTags is how many tags a project card shows.
const CardTags = 3

// VisibleTags returns the tags shown on the card.
func (p Project) VisibleTags() []TechItem {
	if len(p.Tags) <= CardTags {
		return p.Tags
	}
	return p.Tags[:CardTags]
}

// HasVideo reports whether the project preview is a playable video.
func (p Project) HasVideo() bool { return IsVideo(p.Video) }

var videoExtensions = []string{".mp4", ".webm", ".mov", ".ogg", ".avi"}

// IsVideo reports whether a media path names a video file.
func IsVideo(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, v := range videoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// Language is one entry in the languages showcase. Translation is empty for
// phrases that need none.
type Language struct {
	Language    string `yaml:"language" json:"language"`
	Text        string `yaml:"text" json:"text"`
	Translation string `yaml:"translation,omitempty" json:"translation,omitempty"`
	Level       string `yaml:"level" json:"level"`
}

// Social is a footer link.
type Social struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
	Icon string `yaml:"icon" json:"icon"`
}

// Profile is the site owner.
type Profile struct {
	Name        string   `yaml:"name" json:"name"`
	Greeting    string   `yaml:"greeting" json:"greeting"`
	JobTitle    string   `yaml:"jobTitle" json:"jobTitle"`
	Description string   `yaml:"description" json:"description"`
	Email       string   `yaml:"email" json:"email"`
	Image       string   `yaml:"image" json:"image"`
	Resume      string   `yaml:"resume" json:"resume"`
	Roles       []string `yaml:"roles" json:"roles"`
	About       string   `yaml:"about" json:"about"`
	KnowsAbout  []string `yaml:"knowsAbout" json:"knowsAbout"`
	Socials     []Social `yaml:"socials" json:"socials"`

	AboutHTML string `yaml:"-" json:"-"`
}

// Portfolio is all the content of the site.
type Portfolio struct {
	Profile   Profile     `json:"profile"`
	Work      []Work      `json:"work"`
	Education []Education `json:"education"`
	Skills    []Skill     `json:"skills"`
	Learning  []Skill     `json:"learning"`
	Projects  []Project   `json:"projects"`
	Languages []Language  `json:"languages"`
}

// Timeline returns the entries for one experience tab.
func (p *Portfolio) Timeline(kind TimelineKind) []TimelineEntry {
	var out []TimelineEntry
	switch kind {
	case TimelineWork:
		for i := range p.Work {
			out = append(out, TimelineEntry{Kind: kind, Work: &p.Work[i]})
		}
	case TimelineEducation:
		for i := range p.Education {
			out = append(out, TimelineEntry{Kind: kind, Education: &p.Education[i]})
		}
	}
	return out
}

// Validate reports every structural problem at once.
func (p *Portfolio) Validate() error {
	var errs []error
	if p.Profile.Name == "" {
		errs = append(errs, errors.New("profile: name is required"))
	}
	if len(p.Profile.Roles) == 0 {
		errs = append(errs, errors.New("profile: at least one role is required"))
	}
	for i, w := range p.Work {
		if w.Title == "" {
			errs = append(errs, fmt.Errorf("work[%d]: title is required", i))
		}
		errs = append(errs, checkTech(fmt.Sprintf("work[%d].specialization", i), w.Specialization)...)
	}
	for i, e := range p.Education {
		if e.Title == "" {
			errs = append(errs, fmt.Errorf("education[%d]: title is required", i))
		}
	}
	for _, group := range []struct {
		name   string
		skills []Skill
	}{{"skills", p.Skills}, {"learning", p.Learning}} {
		for i, s := range group.skills {
			if s.Name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: name is required", group.name, i))
			}
			errs = append(errs, checkTech(fmt.Sprintf("%s[%d].tech", group.name, i), s.Tech)...)
		}
	}
	for i, pr := range p.Projects {
		if pr.Title == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: title is required", i))
		}
		if pr.Video != "" && !IsVideo(pr.Video) {
			errs = append(errs, fmt.Errorf("projects[%d]: %q is not a video file", i, pr.Video))
		}
		errs = append(errs, checkTech(fmt.Sprintf("projects[%d].tags", i), pr.Tags)...)
	}
	for i, l := range p.Languages {
		if l.Language == "" || l.Text == "" {
			errs = append(errs, fmt.Errorf("languages[%d]: language and text are required", i))
		}
	}
	return errors.Join(errs...)
}

func checkTech(where string, items []TechItem) []error {
	var errs []error
	for i, t := range items {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", where, i))
		}
	}
	return errs
}
