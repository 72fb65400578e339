package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/storage"
)

// DefaultInterval is the rolling window between automatic backups.
const DefaultInterval = 24 * time.Hour

// Scheduler performs the throttled automatic export. The gateway invokes
// CheckAndRun after every successful save; at most one export happens
// per interval, tracked by a timestamp persisted beside the document.
type Scheduler struct {
	gw       *storage.Gateway
	sink     Sink
	log      zerolog.Logger
	interval time.Duration

	now    func() time.Time
	newKey func(t time.Time) string
}

// NewScheduler wires a scheduler to the gateway and sink. A
// non-positive interval falls back to DefaultInterval.
func NewScheduler(gw *storage.Gateway, sink Sink, logger zerolog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		gw:       gw,
		sink:     sink,
		log:      logger,
		interval: interval,
		now:      time.Now,
		newKey: func(t time.Time) string {
			return fmt.Sprintf("dentora-auto-backup-%s-%s.json", t.Format("2006-01-02"), uuid.NewString()[:8])
		},
	}
}

// CheckAndRun exports the document when the persisted last-backup
// timestamp is absent or older than the interval. Every failure here is
// logged and swallowed; a backup problem must never fail the CRUD
// operation that triggered it.
func (s *Scheduler) CheckAndRun(ctx context.Context) {
	if s == nil || s.sink == nil {
		return
	}
	now := s.now()
	raw, ok, err := s.gw.ReadMeta(ctx, storage.KeyLastAutoBackup)
	if err != nil {
		s.log.Error().Err(err).Msg("auto-backup timestamp unreadable")
		return
	}
	if ok {
		last, err := time.Parse(time.RFC3339, raw)
		if err == nil && now.Sub(last) < s.interval {
			return
		}
	}
	if err := s.run(ctx, now); err != nil {
		s.log.Error().Err(err).Str("sink", s.sink.Name()).Msg("auto-backup failed")
		return
	}
	if err := s.gw.WriteMeta(ctx, storage.KeyLastAutoBackup, now.Format(time.RFC3339)); err != nil {
		s.log.Error().Err(err).Msg("auto-backup timestamp not persisted")
	}
}

func (s *Scheduler) run(ctx context.Context, now time.Time) error {
	data, ok, err := s.gw.RawDocument(ctx)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if !ok {
		return fmt.Errorf("nothing to back up")
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("format document: %w", err)
	}
	key := s.newKey(now)
	if err := s.sink.Put(ctx, key, pretty.Bytes()); err != nil {
		return err
	}
	s.log.Info().Str("sink", s.sink.Name()).Str("key", key).Msg("auto-backup written")
	return nil
}
