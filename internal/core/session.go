package core

import "sync"

// SessionState represents the conversational state of one user on one
// platform. The core only knows StateIdle; workflows define their own tags.
type SessionState string

// StateIdle is the initial state. A missing session is equivalent to an
// idle one.
const StateIdle SessionState = "idle"

// Session is per-user conversational state surviving across messages on
// one platform.
type Session struct {
	State SessionState
	Data  map[string]string
}

type sessionEntry struct {
	// step serializes workflow steps for this key; see Acquire
	step    sync.Mutex
	session Session
}

// SessionStore holds sessions keyed by (platform, userID). It is safe for
// concurrent use from multiple platform receive loops. Entries are created
// lazily on first write and reset to idle rather than destroyed; the key
// space is bounded by the number of distinct users.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]*sessionEntry),
	}
}

func sessionKey(platform, userID string) string {
	return platform + ":" + userID
}

// Get returns a copy of the session for (platform, userID), or an idle
// session with empty data if none exists. It never fails.
func (s *SessionStore) Get(platform, userID string) Session {
	s.mu.RLock()
	entry, ok := s.entries[sessionKey(platform, userID)]
	var sess Session
	if ok {
		sess = entry.session
	}
	s.mu.RUnlock()

	if !ok || sess.State == "" {
		return Session{State: StateIdle, Data: map[string]string{}}
	}

	// Copy the data map so callers cannot mutate stored state in place
	data := make(map[string]string, len(sess.Data))
	for k, v := range sess.Data {
		data[k] = v
	}
	return Session{State: sess.State, Data: data}
}

// Set replaces the session for (platform, userID) atomically.
func (s *SessionStore) Set(platform, userID string, state SessionState, data map[string]string) {
	stored := make(map[string]string, len(data))
	for k, v := range data {
		stored[k] = v
	}

	s.mu.Lock()
	entry := s.entry(platform, userID)
	entry.session = Session{State: state, Data: stored}
	s.mu.Unlock()
}

// Clear resets the session for (platform, userID) to idle with empty data.
// Clearing an absent or already idle session is a no-op.
func (s *SessionStore) Clear(platform, userID string) {
	s.mu.Lock()
	if entry, ok := s.entries[sessionKey(platform, userID)]; ok {
		entry.session = Session{State: StateIdle, Data: map[string]string{}}
	}
	s.mu.Unlock()
}

// Acquire locks the per-key workflow step mutex for (platform, userID) and
// returns the release function. The dispatcher holds it around one workflow
// step so get-then-set sequences are a critical section per key; steps for
// different keys proceed independently. The store's internal map lock is
// never held while the step lock is held.
func (s *SessionStore) Acquire(platform, userID string) func() {
	s.mu.Lock()
	entry := s.entry(platform, userID)
	s.mu.Unlock()

	entry.step.Lock()
	return entry.step.Unlock
}

// Len returns the number of materialized sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// entry returns the entry for the key, creating it if needed.
// Caller must hold s.mu.
func (s *SessionStore) entry(platform, userID string) *sessionEntry {
	key := sessionKey(platform, userID)
	entry, ok := s.entries[key]
	if !ok {
		entry = &sessionEntry{session: Session{State: StateIdle, Data: map[string]string{}}}
		s.entries[key] = entry
	}
	return entry
}
