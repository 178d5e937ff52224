package history

import (
	"github.com/mnemon/mnemon/pkg/models"
)

// GetContext returns a read-only snapshot of the conversation's metadata and
// all three tiers.
func (s *Store) GetContext(id string) (*Snapshot, error) {
	lock := s.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	meta, ok := s.getMeta(id)
	if !ok {
		return nil, ErrNotFound
	}

	active, err := s.readMessages(id, activeFile)
	if err != nil {
		return nil, err
	}
	memory, err := s.readSummaries(id)
	if err != nil {
		return nil, err
	}
	raw, err := s.readMessages(id, rawFile)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:       id,
		Metadata: meta,
		Active:   active,
		Memory:   memory,
		Raw:      raw,
	}, nil
}

// GetActive returns the active tier only.
func (s *Store) GetActive(id string) ([]models.Message, error) {
	lock := s.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := s.getMeta(id); !ok {
		return nil, ErrNotFound
	}
	return s.readMessages(id, activeFile)
}

// ApplyCompaction folds the active tier: everything but the last
// keepRecent messages is dropped from the active file and the summary is
// appended to memory. When the active tier already holds keepRecent or fewer
// messages the call is a no-op success.
//
// The memory append lands before the active rewrite: a crash between the two
// duplicates context in the next assembled request instead of losing it.
func (s *Store) ApplyCompaction(id string, summary models.Summary, keepRecent int) error {
	lock := s.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := s.getMeta(id); !ok {
		return ErrNotFound
	}
	return s.applyCompactionLocked(id, summary, keepRecent)
}

// applyCompactionLocked is the fold itself; the caller holds the
// conversation lock.
func (s *Store) applyCompactionLocked(id string, summary models.Summary, keepRecent int) error {
	active, err := s.readMessages(id, activeFile)
	if err != nil {
		return err
	}
	if len(active) <= keepRecent {
		s.logger.Info("active tier too short to fold", "conversationID", id, "activeLen", len(active))
		return nil
	}

	memory, err := s.readSummaries(id)
	if err != nil {
		return err
	}
	memory = append(memory, summary)
	if err := writeJSONFile(s.convPath(id, memoryFile), memory); err != nil {
		return err
	}

	kept := make([]models.Message, keepRecent)
	copy(kept, active[len(active)-keepRecent:])
	return writeJSONFile(s.convPath(id, activeFile), kept)
}
