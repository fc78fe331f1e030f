package utils

import (
	"regexp"
	"sync"
)

// RegexpStore memoises compiled expressions by their source.
// It is safe for concurrent use.
type RegexpStore struct {
	l     sync.RWMutex
	store map[string]*regexp.Regexp
}

func NewRegexpStore() *RegexpStore {
	return &RegexpStore{
		store: make(map[string]*regexp.Regexp),
	}
}

func (rxps *RegexpStore) Get(raw string) (*regexp.Regexp, error) {
	rxps.l.RLock()
	r, exists := rxps.store[raw]
	rxps.l.RUnlock()
	if exists {
		return r, nil
	}

	c, err := regexp.Compile(raw)
	if err != nil {
		return nil, err
	}

	rxps.l.Lock()
	defer rxps.l.Unlock()
	if r, exists := rxps.store[raw]; exists {
		return r, nil
	}
	rxps.store[raw] = c
	return c, nil
}

// MustGet is like Get but panics if the expression cannot be compiled.
// Only use it with sources built from regexp.QuoteMeta or constant patterns.
func (rxps *RegexpStore) MustGet(raw string) *regexp.Regexp {
	r, err := rxps.Get(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of cached expressions.
func (rxps *RegexpStore) Len() int {
	rxps.l.RLock()
	defer rxps.l.RUnlock()
	return len(rxps.store)
}
