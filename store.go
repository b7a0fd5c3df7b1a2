package devbolt

import "sync"

// Store holds the active, validated flags configuration. Replacement swaps
// the whole map reference under the lock and configs are never mutated in
// place, so every reader observes a map that was complete and valid at some
// point in time, never a partial update.
type Store struct {
	mu    sync.RWMutex
	flags FlagsConfig
}

// NewStore creates a Store holding cfg. A nil cfg behaves as empty.
func NewStore(cfg FlagsConfig) *Store {
	if cfg == nil {
		cfg = FlagsConfig{}
	}
	return &Store{flags: cfg}
}

// Get returns the config for name from the current snapshot.
func (s *Store) Get(name string) (FlagConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.flags[name]
	return cfg, ok
}

// Snapshot returns the active map. Callers must treat it as read-only.
func (s *Store) Snapshot() FlagsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// Replace atomically installs cfg as the active configuration.
func (s *Store) Replace(cfg FlagsConfig) {
	if cfg == nil {
		cfg = FlagsConfig{}
	}
	s.mu.Lock()
	s.flags = cfg
	s.mu.Unlock()
}

// Len reports the number of flags in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flags)
}
