package theme

import (
	"net/http"
	"time"
)

// ClientHintHeader carries the browser's prefers-color-scheme value when
// the server has asked for it through Accept-CH.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

const cookieMaxAge = 365 * 24 * time.Hour

// CookieStorage persists the preference in a cookie of the same name as
// the localStorage key, so the server can render the first paint.
type CookieStorage struct {
	r *http.Request
	w http.ResponseWriter
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{r: r, w: w}
}

func (s *CookieStorage) Get(key string) (string, error) {
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", ErrNotFound
	}
	return c.Value, nil
}

func (s *CookieStorage) Set(key, value string) error {
	http.SetCookie(s.w, MirrorCookie(key, value))
	return nil
}

// MirrorCookie is the cookie that shadows a localStorage entry. It is not
// HttpOnly: the page writes it from script after a live change.
func MirrorCookie(key, value string) *http.Cookie {
	return &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

// PrefersDarkFromRequest reads the color-scheme client hint.
func PrefersDarkFromRequest(r *http.Request) bool {
	return r.Header.Get(ClientHintHeader) == "dark"
}

// FromRequest resolves the theme for a server-rendered response.
func FromRequest(r *http.Request, def Preference) State {
	c := NewController(&CookieStorage{r: r}, StaticScheme(PrefersDarkFromRequest(r)), RootFunc(func(Resolved) {}), WithDefault(def))
	c.Mount()
	return c.State()
}

// RequestClientHints asks the browser to send the color-scheme hint on
// subsequent requests.
func RequestClientHints(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", ClientHintHeader)
	w.Header().Add("Vary", ClientHintHeader)
	w.Header().Add("Vary", "Cookie")
}
