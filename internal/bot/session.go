package bot

import "sync"

// Stage is the position of a chat in the add-subscription dialog.
type Stage int

const (
	StageIdle Stage = iota
	StageSelectingLocation
	StageSelectingDate
)

func (s Stage) String() string {
	switch s {
	case StageSelectingLocation:
		return "selecting_location"
	case StageSelectingDate:
		return "selecting_date"
	default:
		return "idle"
	}
}

// Session is the in-flight dialog state of one chat.
type Session struct {
	Stage           Stage
	PendingLocation string
}

// SessionStore keeps dialog sessions in memory. A chat without a session is idle.
// Sessions do not survive a restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

// Get returns the chat's session; the zero Session (idle) if there is none.
func (s *SessionStore) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[chatID]
}

// Put stores the chat's session. Storing an idle session removes it.
func (s *SessionStore) Put(chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.Stage == StageIdle {
		delete(s.sessions, chatID)
		return
	}
	s.sessions[chatID] = sess
}

// Delete ends the chat's dialog.
func (s *SessionStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Len returns the number of active dialogs.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
