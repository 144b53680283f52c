package editor

import (
	"context"
	"errors"
	"sync"

	logrus "github.com/sirupsen/logrus"

	"github.com/flowdesk/flowdesk/pkg/eventbus"
	"github.com/flowdesk/flowdesk/pkg/log"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// ErrNoSession is returned when an editing operation addresses a
// transformation that has no open session.
var ErrNoSession = errors.New("no open editing session")

// Manager tracks the open editing sessions, one engine per transformation.
// Opening starts the engine's autosave loop, closing flushes pending edits
// and stops it.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*session
	repository persistence.TransformationRepository
	publisher  eventbus.EventPublisher
}

type session struct {
	engine *Engine
	cancel context.CancelFunc
}

// NewManager creates a session manager on top of the transformation
// repository.
func NewManager(repository persistence.TransformationRepository, publisher eventbus.EventPublisher) *Manager {
	return &Manager{
		sessions:   make(map[string]*session),
		repository: repository,
		publisher:  publisher,
	}
}

// Open loads a transformation and starts an editing session for it. Opening
// a transformation that is already open returns the running engine.
func (m *Manager) Open(ctx context.Context, transformationID string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[transformationID]; ok {
		return s.engine, nil
	}

	transformation, err := m.repository.GetByID(ctx, transformationID)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(transformation, m.repository, m.publisher, logrus.NewEntry(logrus.StandardLogger()))

	sessionCtx, cancel := context.WithCancel(context.Background())
	go engine.Start(sessionCtx)

	m.sessions[transformationID] = &session{engine: engine, cancel: cancel}

	log.WithTransformation("editor", transformationID).InfoContext(ctx, "editing session opened")

	return engine, nil
}

// Get returns the engine of an open session.
func (m *Manager) Get(transformationID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[transformationID]
	if !ok {
		return nil, false
	}

	return s.engine, true
}

// Close stops the autosave loop, flushes pending edits and discards the
// session.
func (m *Manager) Close(ctx context.Context, transformationID string) error {
	m.mu.Lock()
	s, ok := m.sessions[transformationID]
	delete(m.sessions, transformationID)
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}

	s.cancel()

	log.WithTransformation("editor", transformationID).InfoContext(ctx, "editing session closed")

	return s.engine.Flush(ctx)
}

// CloseAll flushes and discards every open session, for server shutdown.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	var firstErr error

	for id, s := range sessions {
		s.cancel()

		if err := s.engine.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}

		log.WithTransformation("editor", id).InfoContext(ctx, "editing session closed")
	}

	return firstErr
}
