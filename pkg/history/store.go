// Tiered conversation history storage.
//
// Each conversation keeps three ordered tiers on disk:
//
//   - raw_context.json: complete append-only log of every message (audit)
//   - tactical.json:    the active working set sent in full to the provider
//   - archive.json:     compaction summaries (memory), append-only
//
// plus one shared data.json mapping conversation id to metadata. Every
// mutation rewrites the affected file whole (write volume is low) through a
// temp file and rename.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

// ErrNotFound reports an unknown conversation id. It is distinct from
// storage failures, which are always wrapped I/O errors.
var ErrNotFound = errors.New("conversation not found")

// Compactor decides whether an active tier should be folded and produces the
// summary. It runs inside the conversation's critical section, so it must not
// call back into the store; the store applies the fold itself.
type Compactor interface {
	Run(ctx context.Context, conversationID string, meta models.Conversation, active []models.Message) models.CompactionResult
}

// Snapshot is a read-only copy of one conversation's full state.
type Snapshot struct {
	ID       string              `json:"id"`
	Metadata models.Conversation `json:"metadata"`
	Active   []models.Message    `json:"tactical"`
	Memory   []models.Summary    `json:"archive"`
	Raw      []models.Message    `json:"raw_context"`
}

// Store is the single point of truth for conversation state. One instance is
// opened at process start and injected into every dependent; there is no
// package-level registry.
//
// Operations against the same conversation id are serialized by a per-id
// mutex; different conversations proceed in parallel. The metadata map has
// its own lock so listing never blocks behind a slow compaction.
type Store struct {
	dir    string
	logger *slog.Logger

	countdownPeriod int
	keepRecent      int

	compactor Compactor

	mu            sync.Mutex // guards conversations and data.json
	conversations map[string]*models.Conversation

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// Open loads (or initializes) the history directory. countdownPeriod is the
// number of appended messages between compaction attempts; keepRecent is how
// many active messages every fold leaves in place.
func Open(dir string, countdownPeriod, keepRecent int) (*Store, error) {
	if countdownPeriod < 1 {
		return nil, fmt.Errorf("countdown period must be positive, got %d", countdownPeriod)
	}
	if keepRecent < 1 {
		return nil, fmt.Errorf("keep recent count must be positive, got %d", keepRecent)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir %s: %w", dir, err)
	}

	s := &Store{
		dir:             dir,
		logger:          utils.GetLogger(),
		countdownPeriod: countdownPeriod,
		keepRecent:      keepRecent,
		conversations:   map[string]*models.Conversation{},
		locks:           map[string]*sync.Mutex{},
	}

	if err := s.loadMetadata(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCompactor wires the compactor invoked when a conversation's countdown
// reaches zero. Must be called before the store receives traffic.
func (s *Store) SetCompactor(c Compactor) {
	s.compactor = c
}

// Close flushes the metadata map. Tier files are already durable at this
// point; only a metadata write that raced shutdown could be pending.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveMetadataLocked()
}

// Create allocates a fresh conversation with three empty tiers and a full
// compaction countdown.
func (s *Store) Create(name, promptRef, providerRef, deviceID string) (string, error) {
	id := uuid.New().String()
	convDir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(convDir, 0o700); err != nil {
		return "", fmt.Errorf("create conversation dir: %w", err)
	}

	if err := writeJSONFile(filepath.Join(convDir, activeFile), []models.Message{}); err != nil {
		return "", fmt.Errorf("init active tier: %w", err)
	}
	if err := writeJSONFile(filepath.Join(convDir, memoryFile), []models.Summary{}); err != nil {
		return "", fmt.Errorf("init memory tier: %w", err)
	}
	if err := writeJSONFile(filepath.Join(convDir, rawFile), []models.Message{}); err != nil {
		return "", fmt.Errorf("init raw tier: %w", err)
	}

	now := time.Now().Unix()
	meta := &models.Conversation{
		Name:        name,
		PromptRef:   promptRef,
		ProviderRef: providerRef,
		DeviceID:    deviceID,
		Countdown:   s.countdownPeriod,
		Created:     now,
		Updated:     now,
	}

	s.mu.Lock()
	s.conversations[id] = meta
	err := s.saveMetadataLocked()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.logger.Info("created conversation", "conversationID", id, "name", name, "device", deviceID)
	return id, nil
}

// List returns a copy of the metadata map, optionally filtered by owning
// device. An empty deviceID matches everything.
func (s *Store) List(deviceID string) map[string]models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.Conversation, len(s.conversations))
	for id, meta := range s.conversations {
		if deviceID != "" && meta.DeviceID != deviceID {
			continue
		}
		out[id] = *meta
	}
	return out
}

// Delete removes the conversation's metadata and all three tiers. The data
// is not recoverable afterwards.
func (s *Store) Delete(id string) error {
	lock := s.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	_, ok := s.conversations[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
		return fmt.Errorf("remove conversation dir: %w", err)
	}

	s.mu.Lock()
	delete(s.conversations, id)
	err := s.saveMetadataLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.lockMu.Lock()
	delete(s.locks, id)
	s.lockMu.Unlock()

	s.logger.Info("deleted conversation", "conversationID", id)
	return nil
}

// getMeta returns a copy of the metadata record.
func (s *Store) getMeta(id string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.conversations[id]
	if !ok {
		return models.Conversation{}, false
	}
	return *meta, true
}

// conversationLock returns the exclusive-access mutex for one conversation
// id, creating it on first use.
func (s *Store) conversationLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *Store) metadataPath() string {
	return filepath.Join(s.dir, metadataFile)
}

func (s *Store) convPath(id, file string) string {
	return filepath.Join(s.dir, id, file)
}

func (s *Store) loadMetadata() error {
	path := s.metadataPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := readJSONFile(path, &s.conversations); err != nil {
		return fmt.Errorf("load conversation metadata: %w", err)
	}
	if s.conversations == nil {
		s.conversations = map[string]*models.Conversation{}
	}
	return nil
}

func (s *Store) saveMetadataLocked() error {
	if err := writeJSONFile(s.metadataPath(), s.conversations); err != nil {
		return fmt.Errorf("save conversation metadata: %w", err)
	}
	return nil
}
