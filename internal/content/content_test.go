package content

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_Embedded(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Atta Navaid", p.Profile.Name)
	assert.Equal(t, []string{"Developer", "Designer", "Creator", "Innovator"}, p.Profile.Roles)
	assert.Contains(t, p.Profile.AboutHTML, "<strong>Next.js</strong>")
	assert.NotEmpty(t, p.Work)
	assert.NotEmpty(t, p.Education)
	assert.NotEmpty(t, p.Skills)
	assert.NotEmpty(t, p.Learning)
	assert.NotEmpty(t, p.Projects)
	assert.NotEmpty(t, p.Languages)
}

func TestTechItem_BareNameAndMapping(t *testing.T) {
	var items []TechItem
	src := `
- MetaMask
- name: Go
  logo: /skills/tech/go.svg
- name: Three.js
  icon: Box
`
	require.NoError(t, yaml.Unmarshal([]byte(src), &items))
	require.Len(t, items, 3)

	assert.Equal(t, TechItem{Name: "MetaMask"}, items[0])
	assert.Equal(t, TechPlain, items[0].Kind())
	assert.Equal(t, TechLogo, items[1].Kind())
	assert.Equal(t, TechIcon, items[2].Kind())
}

func TestEducation_OptionalFields(t *testing.T) {
	tests := []struct {
		name string
		e    Education
		cgpa bool
		hon  bool
	}{
		{"both", Education{CGPA: "3.6", Honors: "Dean's List"}, true, true},
		{"missing", Education{}, false, false},
		{"not applicable", Education{CGPA: "N/A", Honors: "N/A"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cgpa, tt.e.HasCGPA())
			assert.Equal(t, tt.hon, tt.e.HasHonors())
		})
	}
}

func TestTimeline(t *testing.T) {
	p := &Portfolio{
		Work:      []Work{{Title: "LearnPrompting"}},
		Education: []Education{{Title: "University"}, {Title: "College"}},
	}
	work := p.Timeline(TimelineWork)
	require.Len(t, work, 1)
	assert.Nil(t, work[0].Education)
	assert.Equal(t, "LearnPrompting", work[0].Title())

	edu := p.Timeline(TimelineEducation)
	require.Len(t, edu, 2)
	assert.Equal(t, "College", edu[1].Title())

	_, err := ParseTimelineKind("hobbies")
	assert.Error(t, err)
}

func TestProject_VisibleTagsAndVideo(t *testing.T) {
	p := Project{Tags: []TechItem{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}}
	assert.Len(t, p.VisibleTags(), 3)
	assert.False(t, p.HasVideo())

	p.Video = "/projects/demo.MP4"
	assert.True(t, p.HasVideo())

	for _, path := range []string{"a.webm", "a.mov", "a.ogg", "a.avi"} {
		assert.True(t, IsVideo(path), path)
	}
	assert.False(t, IsVideo("a.png"))
	assert.False(t, IsVideo(""))
}

func TestWork_Expandable(t *testing.T) {
	assert.False(t, Work{Description: []string{"a", "b"}}.Expandable())
	assert.True(t, Work{Description: []string{"a", "b", "c"}}.Expandable())
}

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		"profile.yml":   {Data: []byte("name: Test\nroles: [Developer]\nabout: hi\n")},
		"work.yml":      {Data: []byte("[]")},
		"education.yml": {Data: []byte("[]")},
		"skills.yml":    {Data: []byte("[]")},
		"learning.yml":  {Data: []byte("[]")},
		"projects.yml":  {Data: []byte("[]")},
		"languages.yml": {Data: []byte("- language: English\n  text: Hi\n  level: Native\n")},
	}
}

func TestLoadFS_Errors(t *testing.T) {
	_, err := LoadFS(minimalFS())
	require.NoError(t, err)

	missing := minimalFS()
	delete(missing, "skills.yml")
	_, err = LoadFS(missing)
	assert.ErrorContains(t, err, "skills.yml")

	broken := minimalFS()
	broken["work.yml"] = &fstest.MapFile{Data: []byte("- title: [unterminated")}
	_, err = LoadFS(broken)
	assert.ErrorContains(t, err, "decoding work.yml")

	invalid := minimalFS()
	invalid["profile.yml"] = &fstest.MapFile{Data: []byte("roles: []\n")}
	invalid["projects.yml"] = &fstest.MapFile{Data: []byte("- title: X\n  video: clip.png\n  tags: [{logo: x.svg}]\n")}
	_, err = LoadFS(invalid)
	require.Error(t, err)
	for _, want := range []string{"name is required", "at least one role", "not a video file", "projects[0].tags[0]"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestRenderMarkdown_EscapesRawHTML(t *testing.T) {
	out, err := RenderMarkdown("hello <script>alert(1)</script> **there**")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>there</strong>")
}

func TestStructuredData(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	docs, err := p.StructuredData("https://attanavaid.com/")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var person map[string]any
	require.NoError(t, json.Unmarshal(docs[0], &person))
	assert.Equal(t, "Person", person["@type"])
	assert.Equal(t, "https://attanavaid.com", person["url"])
	assert.Equal(t, "https://attanavaid.com/logo512.png", person["image"])
	assert.Contains(t, person["sameAs"], "https://github.com/attanavaid")

	var site map[string]any
	require.NoError(t, json.Unmarshal(docs[1], &site))
	assert.Equal(t, "WebSite", site["@type"])
	assert.True(t, strings.HasSuffix(site["name"].(string), "Portfolio"))
}
