// Package session keeps the working directory of each chat session.
package session

import "sync"

// Store maps session ids to their current working directory.
//
// Sessions are created lazily and live for the lifetime of the store. The
// store does not serialize commands of one session: each command reads the
// directory stored when it started, and the last commit wins.
type Store struct {
	mu   sync.RWMutex
	dirs map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{dirs: make(map[string]string)}
}

// Current returns the directory of a session, or root for a session that
// has not committed a directory yet.
func (s *Store) Current(id, root string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dir, ok := s.dirs[id]; ok && dir != "" {
		return dir
	}
	return root
}

// Commit stores dir as the session's working directory.
func (s *Store) Commit(id, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirs == nil {
		s.dirs = make(map[string]string)
	}
	s.dirs[id] = dir
}

// Forget drops a session so its next command starts at root again.
func (s *Store) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirs, id)
}

// Len returns the number of sessions with a committed directory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirs)
}
