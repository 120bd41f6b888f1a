package classify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/delib-org/Freedi-app-sub004/internal/cache"
	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/worker"
)

// Safe wraps a provider with caching and rate limiting and never returns an
// error: any failure yields Fallback(). A nil provider always falls back.
type Safe struct {
	inner    Classifier
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *worker.Limiter
	logger   *logging.Logger

	maxAttempts int
	backoff     time.Duration
}

// Option configures Safe
type Option func(*Safe)

// WithCache caches successful verdicts
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Safe) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLimiter rate limits provider calls, keyed by provider name
func WithLimiter(l *worker.Limiter) Option {
	return func(s *Safe) { s.limiter = l }
}

// WithRetries sets how many times a transient provider failure is tried
// before falling back. Backoff doubles after every attempt.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(s *Safe) {
		s.maxAttempts = attempts
		s.backoff = backoff
	}
}

// WithLogger sets the logger for swallowed failures
func WithLogger(l *logging.Logger) Option {
	return func(s *Safe) { s.logger = l }
}

// NewSafe wraps inner
func NewSafe(inner Classifier, opts ...Option) *Safe {
	s := &Safe{
		inner:       inner,
		logger:      logging.NewNop(),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	return s
}

// Name returns the wrapped provider name, or "none"
func (s *Safe) Name() string {
	if s.inner == nil {
		return "none"
	}
	return s.inner.Name()
}

// IsAvailable delegates to the wrapped provider
func (s *Safe) IsAvailable(ctx context.Context) bool {
	return s.inner != nil && s.inner.IsAvailable(ctx)
}

// Classify returns the provider verdict, a cached verdict, or the fallback.
// The error is always nil.
func (s *Safe) Classify(ctx context.Context, req Request) (*Result, error) {
	if s.inner == nil {
		return Fallback(), nil
	}

	key := cache.ClassificationKey(s.inner.Name(), req.Model, req.EvidenceText, req.ParentText)
	if cached, ok := s.fromCache(key); ok {
		return cached, nil
	}

	result, err := s.classifyWithRetry(ctx, req)
	if err == nil && result == nil {
		err = errEmptyVerdict
	}
	if err == nil {
		err = validate(result)
	}
	if err != nil {
		s.warn(err)
		return Fallback(), nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(key, data, s.cacheTTL); err != nil {
				s.logger.Debug("classification cache write failed", "error", err)
			}
		}
	}

	return result, nil
}

// classifyWithRetry retries transient failures with exponential backoff.
// Every attempt waits on the limiter.
func (s *Safe) classifyWithRetry(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	var err error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if s.limiter != nil {
			if werr := s.limiter.Wait(ctx, s.inner.Name()); werr != nil {
				return nil, werr
			}
		}
		result, err = s.inner.Classify(ctx, req)
		if !isRetryable(err) {
			return result, err
		}
		if attempt < s.maxAttempts-1 {
			s.logger.Debug("transient classifier failure, retrying", "attempt", attempt+1, "error", err)
			if serr := retrySleep(ctx, s.backoff<<uint(attempt)); serr != nil {
				return nil, err
			}
		}
	}
	return result, err
}

func (s *Safe) fromCache(key string) (*Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil || validate(&r) != nil {
		return nil, false
	}
	return &r, true
}

func (s *Safe) warn(err error) {
	s.logger.Warn("evidence classification failed, using neutral default",
		"error", model.NewClassificationError(s.inner.Name(), err))
}

var errEmptyVerdict = model.NewValidationError("EMPTY_VERDICT", "classifier returned no verdict")

func validate(r *Result) error {
	if _, ok := model.ParseEvidenceType(string(r.EvidenceType)); !ok {
		return model.NewValidationError("BAD_VERDICT", "unknown evidence type "+string(r.EvidenceType))
	}
	if !(r.CorroborationScore >= 0 && r.CorroborationScore <= 1) {
		return model.NewValidationError("BAD_VERDICT", "corroboration score outside [0,1]")
	}
	return nil
}
