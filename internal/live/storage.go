package live

import (
	"errors"
	"sync"

	"github.com/attanavaid/portfolio/internal/theme"
)

var errStorageUnavailable = errors.New("client storage unavailable")

// clientStorage mirrors the browser's localStorage. The initial value comes
// from hello; writes are forwarded to the page.
type clientStorage struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	sink   Sink
}

func newClientStorage(h Hello, sink Sink) *clientStorage {
	s := &clientStorage{values: make(map[string]string), sink: sink}
	if h.StorageError != "" {
		s.err = errors.Join(errStorageUnavailable, errors.New(h.StorageError))
	}
	if h.Theme != nil {
		s.values[theme.StorageKey] = *h.Theme
	}
	return s
}

func (s *clientStorage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", theme.ErrNotFound
	}
	return v, nil
}

func (s *clientStorage) Set(key, value string) error {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	s.values[key] = value
	s.mu.Unlock()
	s.sink.Send(Message{Type: TypeStorageSet, Data: storageSetData{
		Key:    key,
		Value:  value,
		Cookie: theme.MirrorCookie(key, value).String(),
	}})
	return nil
}
