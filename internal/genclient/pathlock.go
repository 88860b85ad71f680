package genclient

import (
	"path/filepath"
	"sync"
)

// pathLocks serializes generations that target the same output directory.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

// lock blocks until path is free and returns the matching unlock func.
func (p *pathLocks) lock(path string) func() {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pathLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

// len reports how many paths currently have holders or waiters.
func (p *pathLocks) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
