package history

import (
	"context"
	"time"

	"github.com/mnemon/mnemon/pkg/models"
)

// Append adds one message to the raw and active tiers, advances the
// compaction countdown, and, when the countdown reaches zero, runs the
// compactor synchronously before returning. The whole sequence holds the
// conversation's exclusive critical section, so a concurrent append can
// neither interleave with the fold nor observe a half-applied one.
//
// Compaction failures never fail the append: every attempt outcome resets
// the countdown to the full period and the error, if any, is only logged.
func (s *Store) Append(ctx context.Context, id string, msg models.Message) error {
	lock := s.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	meta, ok := s.getMeta(id)
	if !ok {
		return ErrNotFound
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	raw, err := s.readMessages(id, rawFile)
	if err != nil {
		return err
	}
	if err := writeJSONFile(s.convPath(id, rawFile), append(raw, msg)); err != nil {
		return err
	}

	active, err := s.readMessages(id, activeFile)
	if err != nil {
		return err
	}
	active = append(active, msg)
	if err := writeJSONFile(s.convPath(id, activeFile), active); err != nil {
		return err
	}

	meta.MessageCount++
	meta.Updated = time.Now().Unix()

	if meta.Countdown > 0 {
		meta.Countdown--
	}
	if meta.Countdown == 0 {
		s.attemptCompaction(ctx, id, &meta, active)
	}

	s.mu.Lock()
	s.conversations[id] = &meta
	err = s.saveMetadataLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("appended message",
		"conversationID", id,
		"role", msg.Role,
		"countdown", meta.Countdown,
		"messageCount", meta.MessageCount)
	return nil
}

// attemptCompaction runs the compactor with the current active tier and
// applies a produced summary. Called with the conversation lock held; meta is
// updated in place and persisted by the caller. The countdown is restored to
// the full period regardless of the outcome, so a refused attempt suppresses
// the next one for a full cycle (matches the shipped trigger behavior).
func (s *Store) attemptCompaction(ctx context.Context, id string, meta *models.Conversation, active []models.Message) {
	defer func() {
		meta.Countdown = s.countdownPeriod
		meta.LastCompactionAttempt = time.Now().Unix()
	}()

	if s.compactor == nil {
		s.logger.Warn("compaction due but no compactor wired", "conversationID", id)
		return
	}

	s.logger.Info("compaction countdown reached zero", "conversationID", id, "activeLen", len(active))

	result := s.compactor.Run(ctx, id, *meta, active)
	if !result.Compacted {
		s.logger.Info("compaction skipped", "conversationID", id, "reason", result.Reason)
		return
	}

	if err := s.applyCompactionLocked(id, *result.Summary, s.keepRecent); err != nil {
		s.logger.Error("failed to apply compaction", "conversationID", id, "error", err)
		return
	}
	s.logger.Info("compaction applied",
		"conversationID", id,
		"foldedMessages", result.Summary.OriginalCount,
		"keptMessages", s.keepRecent)
}
