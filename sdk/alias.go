package sdk

import (
	"context"
	"sync"
)

// AliasLookup fetches one user's alias inside a discussion. A NotFound
// error means the user has never participated there.
type AliasLookup func(ctx context.Context, discussionId, userId string) (*AliasInfo, error)

type aliasCacheEntry struct {
	info     *AliasInfo
	negative bool
}

type aliasCall struct {
	done chan struct{}
	info *AliasInfo
	err  error
}

// AliasResolver caches alias lookups per discussion. Aliases never
// change once assigned, so positive entries live forever; a missing
// alias is cached as a negative entry so repeated renders of the same
// non-participant do not hit the server again. Concurrent resolves of
// the same user share a single lookup.
type AliasResolver struct {
	mu       sync.Mutex
	lookup   AliasLookup
	cache    map[string]aliasCacheEntry
	inflight map[string]*aliasCall
}

// NewAliasResolver creates a resolver over the given lookup, typically
// (*Client).GetAlias
func NewAliasResolver(lookup AliasLookup) *AliasResolver {
	return &AliasResolver{
		lookup:   lookup,
		cache:    make(map[string]aliasCacheEntry),
		inflight: make(map[string]*aliasCall),
	}
}

func aliasKey(discussionId, userId string) string {
	return discussionId + "|" + userId
}

// Resolve returns the alias for userId inside discussionId. A nil info
// with nil error means the user has no alias there. Errors other than
// not-found are returned uncached so a later resolve retries.
func (r *AliasResolver) Resolve(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
	key := aliasKey(discussionId, userId)

	r.mu.Lock()
	if entry, ok := r.cache[key]; ok {
		r.mu.Unlock()
		if entry.negative {
			return nil, nil
		}
		return entry.info, nil
	}

	if call, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.info, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &aliasCall{done: make(chan struct{})}
	r.inflight[key] = call
	r.mu.Unlock()

	info, err := r.lookup(ctx, discussionId, userId)

	r.mu.Lock()
	delete(r.inflight, key)
	switch {
	case err == nil:
		r.cache[key] = aliasCacheEntry{info: info}
		call.info = info
	case IsNotFound(err):
		r.cache[key] = aliasCacheEntry{negative: true}
		err = nil
	default:
		call.err = err
	}
	r.mu.Unlock()

	close(call.done)
	return call.info, call.err
}

// LabelFor resolves and renders the alias label. Unknown users render
// as "?".
func (r *AliasResolver) LabelFor(ctx context.Context, discussionId, userId string) (string, error) {
	info, err := r.Resolve(ctx, discussionId, userId)
	if err != nil {
		return "", err
	}
	return info.Label(), nil
}

// Prime seeds the cache with a known alias, for example from an
// enriched notification row
func (r *AliasResolver) Prime(discussionId, userId string, info *AliasInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[aliasKey(discussionId, userId)] = aliasCacheEntry{info: info, negative: info == nil}
}

// Invalidate drops one cached entry
func (r *AliasResolver) Invalidate(discussionId, userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, aliasKey(discussionId, userId))
}
