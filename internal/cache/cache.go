package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Namespace string

const (
	Appointments  Namespace = "appointments"
	Dashboard     Namespace = "dashboard"
	Schedules     Namespace = "schedules"
	WorkingHours  Namespace = "working-hours"
	DoctorProfile Namespace = "doctor-profile"
	Specialties   Namespace = "specialties"
	Reviews       Namespace = "reviews"
)

// Namespaces lists every namespace known to the cache.
var Namespaces = []Namespace{
	Appointments,
	Dashboard,
	Schedules,
	WorkingHours,
	DoctorProfile,
	Specialties,
	Reviews,
}

// Key identifies one query result. Params distinguishes pages and ids.
type Key struct {
	Namespace Namespace
	Params    string
}

func (k Key) String() string {
	if k.Params == "" {
		return string(k.Namespace)
	}
	return string(k.Namespace) + "?" + k.Params
}

type entry struct {
	value   any
	expires time.Time
}

// Cache holds server state fetched by queries until it expires or a
// mutation invalidates its namespace.
type Cache struct {
	ttl time.Duration
	now func() time.Time
	log *slog.Logger

	mu      sync.Mutex
	entries map[Key]entry
	gens    map[Namespace]uint64

	group singleflight.Group
}

func New(ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		log:     log,
		entries: make(map[Key]entry),
		gens:    make(map[Namespace]uint64),
	}
}

// WithClock replaces the clock used for expiry.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) generation(ns Namespace) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gens[ns]
}

// put stores value unless ns was invalidated after gen was read.
func (c *Cache) put(key Key, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key.Namespace] != gen {
		return
	}
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}

// InvalidateNamespaces drops every entry of the given namespaces.
func (c *Cache) InvalidateNamespaces(namespaces ...Namespace) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ns := range namespaces {
		c.gens[ns]++
		for key := range c.entries {
			if key.Namespace == ns {
				delete(c.entries, key)
			}
		}
	}
}

// Fetch returns the cached value for key or loads it. Concurrent fetches of
// the same key share one load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	const op = "cache.Fetch"

	if v, ok := c.get(key); ok {
		if out, ok := v.(T); ok {
			return out, nil
		}
	}

	gen := c.generation(key.Namespace)

	// A fetch started after an invalidation must not join an older load.
	flight := fmt.Sprintf("%s#%d", key, gen)
	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.put(key, gen, v)
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		out, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("%s: unexpected %T for %s", op, res.Val, key)
		}
		return out, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
