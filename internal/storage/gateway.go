package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/document"
)

// Size policy. The host slot is assumed to hold about 10 MB; writes are
// warned about above 7 MB and refused at 9 MB so the last good state is
// never clobbered by a write that would not fit.
const (
	megabyte           = 1024 * 1024
	warnThresholdBytes = 7 * megabyte
	hardLimitBytes     = 9 * megabyte
	assumedLimitBytes  = 10 * megabyte
)

var (
	// ErrCapacityExceeded means the serialized document crossed the hard
	// ceiling and the write was refused. The previously persisted state
	// is intact.
	ErrCapacityExceeded = errors.New("storage: document exceeds capacity ceiling")

	// ErrQuotaExceeded means the host storage itself rejected the write.
	ErrQuotaExceeded = errors.New("storage: host storage rejected write")
)

// SizeInfo is the read-only size diagnostic of the persisted document.
type SizeInfo struct {
	Bytes          int     `json:"bytes"`
	Megabytes      float64 `json:"megabytes"`
	PercentOfLimit float64 `json:"percentageOfLimit"`
	IsNearLimit    bool    `json:"isNearLimit"`
	IsCritical     bool    `json:"isCritical"`
}

// SeedSource locates the default document used to bootstrap an empty
// slot. URL wins over File; both empty means the built-in empty
// document.
type SeedSource struct {
	URL  string
	File string
}

// Gateway is the single point of contact with the durable slot. It
// serializes documents, enforces the size policy on every save, and
// exposes size metrics. All store mutations funnel through Save.
type Gateway struct {
	slot    Slot
	log     zerolog.Logger
	metrics *Metrics
	seed    SeedSource
	httpc   *http.Client

	afterSave func(context.Context)
	nearLimit atomic.Bool
	lastBytes atomic.Int64
}

// NewGateway wraps the given slot. metrics may be nil.
func NewGateway(slot Slot, logger zerolog.Logger, metrics *Metrics, seed SeedSource) *Gateway {
	return &Gateway{
		slot:    slot,
		log:     logger,
		metrics: metrics,
		seed:    seed,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetAfterSave registers a hook invoked after every successful save.
// The composition root points it at the backup scheduler.
func (g *Gateway) SetAfterSave(fn func(context.Context)) { g.afterSave = fn }

// Load returns the persisted document, or nil when the slot is empty
// (first run).
func (g *Gateway) Load(ctx context.Context) (*document.Document, error) {
	data, ok, err := g.slot.Read(ctx, KeyDocument)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	g.noteSize(len(data))
	return &doc, nil
}

// Save serializes doc and writes it through the size policy: below the
// warn threshold it writes normally; between warn and the hard ceiling
// it writes and flags NearCapacity; at or above the ceiling it refuses
// with ErrCapacityExceeded, leaving the last persisted state intact. A
// write rejected by the host surfaces as ErrQuotaExceeded.
func (g *Gateway) Save(ctx context.Context, doc *document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	size := len(data)

	if size >= hardLimitBytes {
		if g.metrics != nil {
			g.metrics.CapacityRefusals.Inc()
		}
		g.log.Error().Int("bytes", size).Msg("document exceeds hard storage ceiling, write refused")
		return fmt.Errorf("%w (%.2f MB)", ErrCapacityExceeded, float64(size)/megabyte)
	}
	if size >= warnThresholdBytes {
		g.log.Warn().Int("bytes", size).Msg("document approaching storage ceiling")
	}

	if err := g.slot.Write(ctx, KeyDocument, data); err != nil {
		if g.metrics != nil {
			g.metrics.QuotaFailures.Inc()
		}
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	g.noteSize(size)
	if g.metrics != nil {
		g.metrics.Saves.Inc()
	}
	if g.afterSave != nil {
		g.afterSave(ctx)
	}
	return nil
}

// RawDocument returns the persisted document bytes without decoding, or
// ok=false when the slot is empty.
func (g *Gateway) RawDocument(ctx context.Context) ([]byte, bool, error) {
	return g.slot.Read(ctx, KeyDocument)
}

// ClearDocument wipes the persisted document. Callers are expected to
// re-bootstrap afterwards.
func (g *Gateway) ClearDocument(ctx context.Context) error {
	return g.slot.Delete(ctx, KeyDocument)
}

// ReadMeta returns a small bookkeeping value stored beside the document.
func (g *Gateway) ReadMeta(ctx context.Context, key string) (string, bool, error) {
	data, ok, err := g.slot.Read(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(data), true, nil
}

// WriteMeta stores a small bookkeeping value beside the document. Meta
// writes bypass the size policy.
func (g *Gateway) WriteMeta(ctx context.Context, key, value string) error {
	return g.slot.Write(ctx, key, []byte(value))
}

// SizeInfo reports the current persisted size against the assumed 10 MB
// slot limit.
func (g *Gateway) SizeInfo(ctx context.Context) (SizeInfo, error) {
	data, ok, err := g.slot.Read(ctx, KeyDocument)
	if err != nil {
		return SizeInfo{}, fmt.Errorf("size info: %w", err)
	}
	size := 0
	if ok {
		size = len(data)
	}
	g.noteSize(size)
	mb := float64(size) / megabyte
	return SizeInfo{
		Bytes:          size,
		Megabytes:      round2(mb),
		PercentOfLimit: round1(mb / 10 * 100),
		IsNearLimit:    size > warnThresholdBytes,
		IsCritical:     size > hardLimitBytes,
	}, nil
}

// NearCapacity reports the warn state observed by the most recent
// load/save/size check. Handlers use it to stamp a warning header
// without re-serializing the document.
func (g *Gateway) NearCapacity() bool { return g.nearLimit.Load() }

// Bootstrap yields a usable document for an empty slot: it tries the
// configured seed source and falls back to the built-in empty document
// on any failure. The result is persisted best-effort. This path never
// fails.
func (g *Gateway) Bootstrap(ctx context.Context) *document.Document {
	doc := g.fetchSeed(ctx)
	if doc == nil {
		doc = document.Empty()
	}
	doc.Normalize()
	if err := g.Save(ctx, doc); err != nil {
		g.log.Error().Err(err).Msg("persisting bootstrap document failed")
	}
	return doc
}

func (g *Gateway) fetchSeed(ctx context.Context) *document.Document {
	var data []byte
	switch {
	case g.seed.URL != "":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.seed.URL, nil)
		if err != nil {
			g.log.Warn().Err(err).Str("url", g.seed.URL).Msg("seed request failed, using empty document")
			return nil
		}
		resp, err := g.httpc.Do(req)
		if err != nil {
			g.log.Warn().Err(err).Str("url", g.seed.URL).Msg("seed fetch failed, using empty document")
			return nil
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			g.log.Warn().Int("status", resp.StatusCode).Str("url", g.seed.URL).Msg("seed fetch failed, using empty document")
			return nil
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, hardLimitBytes))
		if err != nil {
			g.log.Warn().Err(err).Msg("seed read failed, using empty document")
			return nil
		}
	case g.seed.File != "":
		var err error
		data, err = os.ReadFile(g.seed.File)
		if err != nil {
			g.log.Warn().Err(err).Str("file", g.seed.File).Msg("seed file unreadable, using empty document")
			return nil
		}
	default:
		return nil
	}

	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		g.log.Warn().Err(err).Msg("seed document malformed, using empty document")
		return nil
	}
	g.log.Info().Msg("slot bootstrapped from seed document")
	return &doc
}

func (g *Gateway) noteSize(size int) {
	g.lastBytes.Store(int64(size))
	near := size > warnThresholdBytes
	g.nearLimit.Store(near)
	if g.metrics != nil {
		g.metrics.observeSize(size, near)
	}
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }
