package editor

import (
	"sync"

	"post-composer/internal/domain"
)

// Manager keeps one session per image.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	registry stateRegistry
	canvas   float64
}

func NewManager(registry stateRegistry, canvasSize int) *Manager {
	if canvasSize <= 0 || canvasSize > domain.DefaultEditorSize {
		canvasSize = domain.DefaultEditorSize
	}
	return &Manager{
		sessions: make(map[string]*Session),
		registry: registry,
		canvas:   float64(canvasSize),
	}
}

// Session returns the session of imageID, creating it on first use.
func (m *Manager) Session(imageID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[imageID]
	if !ok {
		s = NewSession(imageID, m.canvas, m.registry)
		m.sessions[imageID] = s
	}
	return s
}

// Drop forgets the session of imageID.
func (m *Manager) Drop(imageID string) {
	m.mu.Lock()
	delete(m.sessions, imageID)
	m.mu.Unlock()
}
