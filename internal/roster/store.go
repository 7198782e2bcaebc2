package roster

import "sync"

// Store owns every ChatSession of the process. Sessions are created on first
// reference and live until the process exits.
type Store struct {
	mu              sync.Mutex
	sessions        map[int64]*ChatSession
	bootstrapAdmins []int64
}

// NewStore creates a Store. Every new session starts with bootstrapAdmins as
// its admin set.
func NewStore(bootstrapAdmins []int64) *Store {
	return &Store{
		sessions:        make(map[int64]*ChatSession),
		bootstrapAdmins: append([]int64(nil), bootstrapAdmins...),
	}
}

// GetOrCreate returns the session for chatID, creating it if needed.
func (s *Store) GetOrCreate(chatID int64) *ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[chatID]; ok {
		return session
	}
	session := newChatSession(chatID, s.bootstrapAdmins)
	s.sessions[chatID] = session
	return session
}

// Len returns the number of known chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
