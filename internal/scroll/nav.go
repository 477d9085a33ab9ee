package scroll

import "sync"

// NavItem is one entry in the navigation bar.
type NavItem struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NavItems are the linked sections, in page order after the hero.
var NavItems = []NavItem{
	{Name: "Experience", ID: "experience"},
	{Name: "Skills", ID: "skills"},
	{Name: "Projects", ID: "projects"},
	{Name: "Languages", ID: "languages"},
	{Name: "Contact", ID: "contact"},
}

// SectionIDs lists every tracked section id in page order.
func SectionIDs() []string {
	ids := []string{"hero"}
	for _, item := range NavItems {
		ids = append(ids, item.ID)
	}
	return ids
}

// Nav holds the navigation bar's local toggle state.
type Nav struct {
	mu       sync.Mutex
	menuOpen bool
	co       *Coordinator
}

func NewNav(co *Coordinator) *Nav {
	return &Nav{co: co}
}

// ToggleMenu flips the mobile menu and returns the new state.
func (n *Nav) ToggleMenu() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.menuOpen = !n.menuOpen
	return n.menuOpen
}

// MenuOpen reports whether the mobile menu is open.
func (n *Nav) MenuOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.menuOpen
}

// Navigate closes the mobile menu and returns the smooth-scroll target for
// the section.
func (n *Nav) Navigate(id string) (float64, error) {
	n.mu.Lock()
	n.menuOpen = false
	n.mu.Unlock()
	return n.co.ScrollTarget(id)
}
