// Package live runs one session per open page. The browser forwards DOM
// events over a websocket and the session pushes state patches back.
package live

import (
	"encoding/json"

	"github.com/attanavaid/portfolio/internal/scroll"
)

// Client to server message types.
const (
	TypeHello          = "hello"
	TypeScroll         = "scroll"
	TypeLayout         = "layout"
	TypeThemeSet       = "theme.set"
	TypeThemeToggle    = "theme.toggle"
	TypeScheme         = "scheme"
	TypeNav            = "nav"
	TypeMenuToggle     = "menu.toggle"
	TypeLanguageSelect = "language.select"
	TypeContactField   = "contact.field"
	TypeContactSubmit  = "contact.submit"
	TypeDragBegin      = "drag.begin"
	TypeDragMove       = "drag.move"
	TypeDragEnd        = "drag.end"
)

// Server to client message types.
const (
	TypeTheme      = "theme"
	TypeRoot       = "root"
	TypeStorageSet = "storage.set"
	TypeView       = "view"
	TypeScrollTo   = "scroll.to"
	TypeMenu       = "menu"
	TypeTypewriter = "typewriter"
	TypeContact    = "contact"
	TypeScene      = "scene"
	TypeRoles      = "roles"
	TypeError      = "error"
)

// Inbound is a message from the browser. Data is decoded according to Type.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is a patch pushed to the browser.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hello is the first message of every session. Theme is nil when nothing
// is stored; StorageError is set when localStorage threw.
type Hello struct {
	Theme        *string       `json:"theme"`
	StorageError string        `json:"storageError,omitempty"`
	PrefersDark  bool          `json:"prefersDark"`
	Layout       scroll.Layout `json:"layout"`
	ScrollY      float64       `json:"scrollY"`
}

type scrollData struct {
	Y float64 `json:"y"`
}

type themeSetData struct {
	Preference string `json:"preference"`
}

type schemeData struct {
	PrefersDark bool `json:"prefersDark"`
}

type navData struct {
	ID string `json:"id"`
}

type languageData struct {
	Index int `json:"index"`
}

type fieldData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type pointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type scrollToData struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

type menuData struct {
	Open bool `json:"open"`
}

type rootData struct {
	Resolved string `json:"resolved"`
}

// storageSetData asks the page to write localStorage and to mirror the
// value into Cookie, a document.cookie string.
type storageSetData struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Cookie string `json:"cookie"`
}

type rolesData struct {
	Index int    `json:"index"`
	Role  string `json:"role"`
}

type errorData struct {
	Message string `json:"message"`
}
