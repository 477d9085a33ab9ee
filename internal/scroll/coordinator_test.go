package scroll

import (
	"testing"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSections() Layout {
	return Layout{
		Viewport: 800,
		Sections: []Section{
			{ID: "hero", Top: 0, Height: 1000},
			{ID: "experience", Top: 1000, Height: 1000},
			{ID: "skills", Top: 2000, Height: 1000},
		},
	}
}

func TestActiveSection(t *testing.T) {
	sections := threeSections().Sections
	tests := []struct {
		name    string
		scrollY float64
		want    string
	}{
		{"top of page", 0, "hero"},
		{"below threshold", 99, "hero"},
		{"still hero", 500, "hero"},
		{"experience by header offset", 850, "experience"},
		{"experience", 1200, "experience"},
		{"skills", 2200, "skills"},
		{"far below", 10000, "skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveSection(sections, tt.scrollY))
		})
	}
}

func TestActiveSection_TopThresholdOverridesOffsets(t *testing.T) {
	sections := []Section{{ID: "hero", Top: 500}, {ID: "experience", Top: 0}}
	assert.Equal(t, "hero", ActiveSection(sections, 50))
	assert.Equal(t, "experience", ActiveSection(sections, 150))
}

func TestActiveSection_NoneQualifyFallsBackToFirst(t *testing.T) {
	sections := []Section{{ID: "hero", Top: 5000}, {ID: "experience", Top: 6000}}
	assert.Equal(t, "hero", ActiveSection(sections, 1000))
	assert.Empty(t, ActiveSection(nil, 1000))
}

func TestCompute(t *testing.T) {
	v := Compute(threeSections(), 1200)
	assert.Equal(t, "experience", v.Active)
	assert.True(t, v.Scrolled)
	assert.InDelta(t, 1000.0, v.Offsets["experience"], 1e-9)
	assert.InDelta(t, 250.0, v.Parallax["experience"], 1e-9)
	assert.InDelta(t, 0.0, v.Offsets["skills"], 1e-9)
	assert.InDelta(t, 600.0, v.Parallax["hero"], 1e-9)

	assert.False(t, Compute(threeSections(), 50).Scrolled)
}

func TestSectionOffset_MonotonicInScroll(t *testing.T) {
	s := Section{ID: "skills", Top: 2000}
	prev := SectionOffset(s, 0, 800)
	for y := 10.0; y < 5000; y += 10 {
		cur := SectionOffset(s, y, 800)
		require.Greater(t, cur, prev)
		prev = cur
	}
}

func TestCoordinator_CoalescesWithinFrame(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	co := NewCoordinator(fc, threeSections())

	var views []View
	co.Subscribe(func(v View) { views = append(views, v) })

	co.Observe(100)
	co.Observe(900)
	co.Observe(1200)
	require.Equal(t, 1, fc.Pending())
	require.Empty(t, views)

	fc.Advance(FrameInterval)
	require.Len(t, views, 1)
	assert.Equal(t, 1200.0, views[0].ScrollY)
	assert.Equal(t, "experience", co.View().Active)

	co.Observe(2200)
	fc.Advance(FrameInterval)
	require.Len(t, views, 2)
	assert.Equal(t, "skills", views[1].Active)
}

func TestCoordinator_MeasureTriggersRecompute(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	co := NewCoordinator(fc, Layout{})
	co.Observe(1200)
	co.Measure(threeSections())
	fc.Advance(FrameInterval)
	assert.Equal(t, "experience", co.View().Active)
}

func TestCoordinator_FlushCancelsPendingFrame(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	co := NewCoordinator(fc, threeSections())
	calls := 0
	co.Subscribe(func(View) { calls++ })

	co.Observe(2200)
	co.Flush()
	assert.Equal(t, 1, calls)
	assert.Zero(t, fc.Pending())

	fc.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestCoordinator_CloseLeavesNoTimers(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	co := NewCoordinator(fc, threeSections())
	calls := 0
	co.Subscribe(func(View) { calls++ })

	co.Observe(500)
	co.Close()
	assert.Zero(t, fc.Pending())

	co.Observe(900)
	assert.Zero(t, fc.Pending())
	fc.Advance(time.Second)
	assert.Zero(t, calls)
}

func TestCoordinator_Unsubscribe(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	co := NewCoordinator(fc, threeSections())
	calls := 0
	unsubscribe := co.Subscribe(func(View) { calls++ })
	unsubscribe()
	co.Flush()
	assert.Zero(t, calls)
}

func TestNav_NavigateClosesMenu(t *testing.T) {
	co := NewCoordinator(clock.NewFake(time.Unix(0, 0)), threeSections())
	nav := NewNav(co)

	require.True(t, nav.ToggleMenu())
	top, err := nav.Navigate("skills")
	require.NoError(t, err)
	assert.Equal(t, 1920.0, top)
	assert.False(t, nav.MenuOpen())

	top, err = nav.Navigate("hero")
	require.NoError(t, err)
	assert.Zero(t, top)

	_, err = nav.Navigate("blog")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestSectionIDs(t *testing.T) {
	assert.Equal(t, []string{"hero", "experience", "skills", "projects", "languages", "contact"}, SectionIDs())
}
