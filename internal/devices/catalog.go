// Package devices enumerates installed capture hardware and encoders
// through a pipeline backend, with a small cache so repeated API listings
// do not re-probe the system.
package devices

import (
	"sync"
	"time"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/logging"
)

const cacheTTL = 5 * time.Second

// Catalog lists devices and codecs from one backend.
type Catalog struct {
	provider graph.Provider
	log      logging.Logger

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

type cacheKey struct {
	kind   graph.MediaKind
	codecs bool
}

type cacheEntry struct {
	devices []graph.Device
	at      time.Time
}

// NewCatalog creates a catalog over a backend.
func NewCatalog(provider graph.Provider, log logging.Logger) *Catalog {
	return &Catalog{
		provider: provider,
		log:      log,
		cache:    make(map[cacheKey]cacheEntry),
	}
}

// Devices lists the installed capture devices of one kind.
func (c *Catalog) Devices(kind graph.MediaKind) ([]graph.Device, error) {
	return c.list(cacheKey{kind: kind}, func() ([]graph.Device, error) {
		return c.provider.Devices(kind)
	})
}

// Codecs lists the installed encoders of one kind.
func (c *Catalog) Codecs(kind graph.MediaKind) ([]graph.Device, error) {
	return c.list(cacheKey{kind: kind, codecs: true}, func() ([]graph.Device, error) {
		return c.provider.Codecs(kind)
	})
}

// Find returns the device or codec with the given identifier.
func (c *Catalog) Find(id string) (graph.Device, bool) {
	for _, kind := range []graph.MediaKind{graph.KindVideo, graph.KindAudio} {
		for _, list := range [][]graph.Device{c.must(c.Devices(kind)), c.must(c.Codecs(kind))} {
			for _, d := range list {
				if d.ID == id {
					return d, true
				}
			}
		}
	}
	return graph.Device{}, false
}

func (c *Catalog) must(list []graph.Device, err error) []graph.Device {
	if err != nil {
		c.log.Warn("device enumeration failed", "error", err)
		return nil
	}
	return list
}

func (c *Catalog) list(key cacheKey, load func() ([]graph.Device, error)) ([]graph.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.cache[key]; ok && time.Since(e.at) < cacheTTL {
		return e.devices, nil
	}
	devices, err := load()
	if err != nil {
		return nil, err
	}
	c.cache[key] = cacheEntry{devices: devices, at: time.Now()}
	return devices, nil
}
