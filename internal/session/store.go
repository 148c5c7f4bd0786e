package session

import "sync"

// Store maps auth tokens to their server-side sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// Active is the process-wide store used by the HTTP layer.
var Active = NewStore()

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Get(token string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[token]
	return sess, ok
}

// GetOrCreate returns the session for token, creating it when absent. A
// valid token without a session happens after a process restart; the
// recreated session simply starts with no pending UI state.
func (st *Store) GetOrCreate(token string, userID uint, username string) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[token]
	st.mu.RUnlock()

	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[token]; ok {
		return sess
	}

	sess = &Session{Token: token, UserID: userID, Username: username}
	st.sessions[token] = sess
	return sess
}

func (st *Store) Delete(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}
