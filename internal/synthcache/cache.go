package synthcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/segment"
	"dubmix/internal/synth"
)

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

// Synthesizer serves clips from a Store and falls through to an inner backend on a miss.
type Synthesizer struct {
	store   *Store
	inner   synth.Synthesizer
	backend string
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// Wrap decorates inner with the cache. backendKey separates entries produced
// by different backends or commands that would otherwise share a key.
func Wrap(store *Store, inner synth.Synthesizer, backendKey string, logger *slog.Logger) (*Synthesizer, error) {
	if store == nil {
		return nil, errors.New("synthcache: store is required")
	}
	if inner == nil {
		return nil, errors.New("synthcache: inner synthesizer is required")
	}
	return &Synthesizer{
		store:   store,
		inner:   inner,
		backend: backendKey,
		logger:  logging.NewComponentLogger(logger, "synthcache"),
	}, nil
}

// Key returns the cache key for a request under backendKey. identity is the
// backend's own description of the clip source, empty when the output depends
// on the request alone.
func Key(backendKey, identity string, req synth.Request) string {
	h := sha256.New()
	for _, part := range []string{
		backendKey,
		identity,
		req.Speaker,
		strconv.FormatFloat(req.Params.LengthScale, 'g', -1, 64),
		strconv.FormatFloat(req.Params.NoiseScale, 'g', -1, 64),
		strconv.FormatFloat(req.Params.NoiseScaleW, 'g', -1, 64),
		segment.NormalizeText(req.Text),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Synthesize implements synth.Synthesizer. When the inner backend cannot
// describe the clip source the request bypasses the cache.
func (s *Synthesizer) Synthesize(ctx context.Context, req synth.Request) (audio.Buffer, error) {
	var identity string
	if id, ok := s.inner.(synth.Identifier); ok {
		value, err := id.Identity(ctx, req)
		if err != nil {
			s.logger.Debug("clip cache bypassed",
				logging.Int(logging.FieldSegmentID, req.SegmentID),
				logging.Error(err),
			)
			return s.inner.Synthesize(ctx, req)
		}
		identity = value
	}
	key := Key(s.backend, identity, req)
	buf, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(s.logger, "clip cache lookup failed", "cache_read_failed",
			logging.Int(logging.FieldSegmentID, req.SegmentID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache database if the error persists"),
			logging.String(logging.FieldImpact, "clip is synthesized again"),
		)
	}
	if ok {
		s.hits.Add(1)
		s.logger.Debug("clip cache hit", logging.Int(logging.FieldSegmentID, req.SegmentID))
		return buf, nil
	}
	s.misses.Add(1)

	buf, err = s.inner.Synthesize(ctx, req)
	if err != nil {
		return audio.Buffer{}, err
	}
	if putErr := s.store.Put(ctx, Entry{Key: key, Backend: s.backend, Speaker: req.Speaker, Audio: buf}); putErr != nil {
		logging.WarnWithContext(s.logger, "clip cache write failed", "cache_write_failed",
			logging.Int(logging.FieldSegmentID, req.SegmentID),
			logging.Error(putErr),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the cache directory"),
			logging.String(logging.FieldImpact, "clip will not be reused by later renders"),
		)
	}
	return buf, nil
}

// Stats returns the lookup counters accumulated so far.
func (s *Synthesizer) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}
