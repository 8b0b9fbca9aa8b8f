//Package bbox persists destination triangles per (image, scale) so alignment
//correspondences computed in one run can be reused by the next.
package bbox

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/chenBenjamin97/partial-skeleton/pkg/geometry"
	"gopkg.in/yaml.v3"
)

//Entry is one persisted destination triangle.
type Entry struct {
	Image    string            `yaml:"image"`
	Scale    float64           `yaml:"scale"`
	Triangle geometry.Triangle `yaml:"triangle"`
}

type key struct {
	image string
	scale string
}

func keyOf(image string, scale float64) key {
	//scales come from config enumerations, formatting avoids float equality issues
	return key{image: image, scale: strconv.FormatFloat(scale, 'f', 4, 64)}
}

//Cache maps (image identifier, scale factor) to a destination triangle.
//A nil *Cache is valid and always misses.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[key]Entry
}

//New returns an empty cache that saves to path.
func New(path string) *Cache {
	return &Cache{path: path, entries: make(map[key]Entry)}
}

//Load reads the cache at path. A missing file yields an empty cache, a corrupt
//one is an error.
func Load(path string) (*Cache, error) {
	c := New(path)

	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("Load: Could not read '%s', got '%w'", path, err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("Load: Could not parse '%s', got '%w'", path, err)
	}

	for _, e := range entries {
		c.entries[keyOf(e.Image, e.Scale)] = e
	}
	return c, nil
}

//Get returns the triangle cached for image at scale.
func (c *Cache) Get(image string, scale float64) (geometry.Triangle, bool) {
	if c == nil {
		return geometry.Triangle{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[keyOf(image, scale)]
	return e.Triangle, ok
}

//Put stores a triangle, replacing any previous one.
func (c *Cache) Put(image string, scale float64, tri geometry.Triangle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyOf(image, scale)] = Entry{Image: image, Scale: scale, Triangle: tri}
}

//Len returns the number of cached triangles.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

//Save writes the cache back to its path, entries sorted by image then scale.
func (c *Cache) Save() error {
	c.mu.RLock()
	entries := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Image != entries[j].Image {
			return entries[i].Image < entries[j].Image
		}
		return entries[i].Scale < entries[j].Scale
	})

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("Save: Error, got '%w'", err)
	}
	if err := ioutil.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("Save: Could not write '%s', got '%w'", c.path, err)
	}
	return nil
}
