package schedule

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"travel/internal/apperror"
	"travel/internal/normalize"
	"travel/pkg/cache"
	"travel/pkg/logger"
)

// ErrMiss means the store holds nothing for the query's route and day.
var ErrMiss = errors.New("schedule: no stored schedules for query")

// Resolver answers queries from previously persisted schedules. Hits are
// memoised in the cache for ttl under a per-(mode, day) generation; a nil memo
// disables memoisation. Whoever persists schedules must call Invalidate so
// memoised answers for that mode and day are no longer read.
type Resolver struct {
	store  Store
	memo   cache.Cache
	ttl    time.Duration
	logger logger.Client
}

func NewResolver(store Store, memo cache.Cache, ttl time.Duration, log logger.Client) *Resolver {
	return &Resolver{
		store:  store,
		memo:   memo,
		ttl:    ttl,
		logger: log,
	}
}

// Lookup returns every stored schedule for the query's mode whose origin and
// destination contain the query terms and whose departure falls on the
// query's calendar day.
func (r *Resolver) Lookup(ctx context.Context, q Query) ([]ScheduleRecord, error) {
	start, end, err := normalize.ParseQueryDate(q.Datetime)
	if err != nil {
		verr := apperror.Validation(fmt.Sprintf("invalid datetime %q", q.Datetime))
		verr.Err = err
		return nil, verr
	}

	key, memoised := r.memoKey(ctx, q, start)
	if memoised {
		if records, ok := r.fromMemo(ctx, key); ok {
			r.logger.Debug("schedule lookup memo hit", logger.Field{Key: "key", Value: key})
			return records, nil
		}
	}

	records, err := r.store.Search(ctx, SearchCriteria{
		Mode:        q.Mode,
		Origin:      q.Origin,
		Destination: q.Destination,
		From:        start,
		To:          end,
	})
	if err != nil {
		return nil, apperror.PersistenceFailure("schedule lookup failed", err)
	}
	if len(records) == 0 {
		return nil, ErrMiss
	}

	if memoised {
		r.toMemo(ctx, key, records)
	}
	return records, nil
}

// Invalidate retires every memoised answer for q's mode and calendar day,
// whatever origin and destination terms they were stored under.
func (r *Resolver) Invalidate(ctx context.Context, q Query) error {
	if r.memo == nil {
		return nil
	}
	start, _, err := normalize.ParseQueryDate(q.Datetime)
	if err != nil {
		return apperror.Validation(fmt.Sprintf("invalid datetime %q", q.Datetime))
	}
	if _, err := r.memo.Incr(ctx, generationKey(q.Mode, start)); err != nil {
		return fmt.Errorf("bump lookup generation: %w", err)
	}
	return nil
}

// memoKey returns false when the memo must not be used for this lookup,
// including when the current generation cannot be read.
func (r *Resolver) memoKey(ctx context.Context, q Query, day time.Time) (string, bool) {
	if r.memo == nil || r.ttl <= 0 {
		return "", false
	}
	genKey := generationKey(q.Mode, day)
	raw, err := r.memo.Get(ctx, genKey)
	switch {
	case errors.Is(err, cache.ErrMiss):
		raw = "0"
	case err != nil:
		r.logger.Warn("schedule lookup generation read failed",
			logger.Field{Key: "key", Value: genKey},
			logger.Field{Key: "error", Value: err},
		)
		return "", false
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", false
	}
	return lookupKey(q, day, gen), true
}

func (r *Resolver) fromMemo(ctx context.Context, key string) ([]ScheduleRecord, bool) {
	cached, err := r.memo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.logger.Warn("schedule lookup memo read failed",
				logger.Field{Key: "key", Value: key},
				logger.Field{Key: "error", Value: err},
			)
		}
		return nil, false
	}

	var records []ScheduleRecord
	if err := json.Unmarshal([]byte(cached), &records); err != nil || len(records) == 0 {
		return nil, false
	}
	return records, true
}

func (r *Resolver) toMemo(ctx context.Context, key string, records []ScheduleRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := r.memo.Set(ctx, key, string(data), r.ttl); err != nil {
		r.logger.Warn("schedule lookup memo write failed",
			logger.Field{Key: "key", Value: key},
			logger.Field{Key: "error", Value: err},
		)
	}
}

func generationKey(mode Mode, day time.Time) string {
	return fmt.Sprintf("schedule:generation:%s:%s", mode, day.Format("2006-01-02"))
}

func lookupKey(q Query, day time.Time, gen int64) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d",
		q.Mode,
		strings.ToLower(strings.TrimSpace(q.Origin)),
		strings.ToLower(strings.TrimSpace(q.Destination)),
		day.Format("2006-01-02"),
		gen,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("schedule:lookup:%x", hash[:16])
}
