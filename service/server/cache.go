package server

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/brojonat/solroast/service/roast"
)

const roastCacheSize = 500

// roastCache is a hot cache of recent roasts keyed by wallet+persona.
// Repeat requests within the TTL get the same roast back without
// another LLM call.
type roastCache struct {
	store *expirable.LRU[string, *roast.Roast]
}

func newRoastCache(ttl time.Duration) *roastCache {
	return &roastCache{
		store: expirable.NewLRU[string, *roast.Roast](roastCacheSize, nil, ttl),
	}
}

func cacheKey(wallet, persona string) string {
	return wallet + ":" + persona
}

func (c *roastCache) get(wallet, persona string) (*roast.Roast, bool) {
	return c.store.Get(cacheKey(wallet, persona))
}

func (c *roastCache) put(wallet, persona string, r *roast.Roast) {
	c.store.Add(cacheKey(wallet, persona), r)
}
