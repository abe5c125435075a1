// Package cache holds the latest successful result for each distinct
// (endpoint, parameter) read, and supports in-place patch-and-notify
// so mutations can correct already-fetched views without a refetch.
package cache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"
)

// Option mutates store configuration.
type Option func(*Store)

// WithLogger injects a logger; the default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Store is the query cache. One instance lives for the whole process
// and is handed by reference to every consumer; all access goes
// through its methods.
type Store struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	entries map[Key]Entry
	subs    map[Key]map[int]func(Entry)
	nextSub int

	hitCount   metric.Int64Counter
	missCount  metric.Int64Counter
	patchCount metric.Int64Counter
}

func New(options ...Option) *Store {
	meter := global.Meter("blog/cache")

	s := &Store{
		log:     zap.NewNop().Sugar(),
		entries: make(map[Key]Entry),
		subs:    make(map[Key]map[int]func(Entry)),
		hitCount: metric.Must(meter).NewInt64Counter(
			"cache/hit_count",
			metric.WithDescription("Count of reads served from a fulfilled cache entry"),
		),
		missCount: metric.Must(meter).NewInt64Counter(
			"cache/miss_count",
			metric.WithDescription("Count of reads that triggered a fetch"),
		),
		patchCount: metric.Must(meter).NewInt64Counter(
			"cache/patch_count",
			metric.WithDescription("Count of in-place patches applied to cache entries"),
		),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Lookup returns the last known entry for key without fetching.
func (s *Store) Lookup(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]

	return entry, ok
}

// Read returns the cached entry for key, or runs load to populate it
// when the entry is absent, stale, or previously rejected. The store
// stays readable while load is in flight; the result is published
// atomically on completion.
func (s *Store) Read(ctx context.Context, key Key, load func(context.Context) (interface{}, error)) (Entry, error) {
	labels := []attribute.KeyValue{attribute.String("endpoint", string(key.Endpoint))}

	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok && entry.Status == StatusFulfilled && !entry.stale {
		s.mu.Unlock()
		s.hitCount.Add(ctx, 1, labels...)

		return entry, nil
	}

	s.entries[key] = Entry{Key: key, Status: StatusPending}
	s.mu.Unlock()
	s.missCount.Add(ctx, 1, labels...)

	value, err := load(ctx)
	if err != nil {
		rejected := Entry{Key: key, Status: StatusRejected, Err: err}
		s.publish(rejected)

		return rejected, err
	}

	fulfilled := Entry{Key: key, Status: StatusFulfilled, Value: value}
	s.publish(fulfilled)

	return fulfilled, nil
}

// Patch applies mutate to the cached value at key and republishes the
// entry as fulfilled. Absent, pending, and rejected entries are left
// alone and Patch reports false: a page not currently cached is simply
// not patched and will be correct on its next fetch.
func (s *Store) Patch(key Key, mutate func(interface{}) interface{}) bool {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok || entry.Status != StatusFulfilled {
		s.mu.Unlock()

		return false
	}
	s.mu.Unlock()

	next := Entry{Key: key, Status: StatusFulfilled, Value: mutate(entry.Value)}
	s.publish(next)
	s.patchCount.Add(context.Background(), 1,
		attribute.String("endpoint", string(key.Endpoint)))

	s.log.Debugw("cache entry patched", "endpoint", key.Endpoint, "param", key.Param)

	return true
}

// Evict drops the entry for key entirely.
func (s *Store) Evict(key Key) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Invalidate marks every entry under the given endpoints stale,
// forcing a refetch on the next Read. Subscribers are not notified;
// the stored value remains visible until replaced.
func (s *Store) Invalidate(endpoints ...Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, endpoint := range endpoints {
		for key, entry := range s.entries {
			if key.Endpoint == endpoint {
				entry.stale = true
				s.entries[key] = entry
			}
		}
	}
}

// Subscribe registers fn to run after every publish to key. The
// returned cancel func removes the subscription.
func (s *Store) Subscribe(key Key, fn func(Entry)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(Entry))
	}
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs[key], id)
	}
}

// publish stores the entry and notifies subscribers. Subscribers see
// only complete entries, never an intermediate state.
func (s *Store) publish(entry Entry) {
	s.mu.Lock()
	s.entries[entry.Key] = entry

	fns := make([]func(Entry), 0, len(s.subs[entry.Key]))
	for _, fn := range s.subs[entry.Key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(entry)
	}
}
