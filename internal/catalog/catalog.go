// Package catalog holds the service → category taxonomy complaints are filed
// under.
//
// The catalog is process-wide configuration: it is built once at startup
// (either the built-in Default or a JSON override) and injected into the
// services and handlers that need it. Nothing mutates it afterwards, so it is
// safe for concurrent use without locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sakif/ncps/internal/model"
)

// Catalog is an immutable, ordered set of services.
type Catalog struct {
	services []model.Service
	byID     map[string]int
}

// New validates services and returns a Catalog holding a private copy of them.
//
// Rules: service ids are non-empty and unique, every service has a name,
// category keys are non-empty and unique within their service, and every
// category has a label.
func New(services []model.Service) (*Catalog, error) {
	c := &Catalog{
		services: make([]model.Service, 0, len(services)),
		byID:     make(map[string]int, len(services)),
	}

	for _, svc := range services {
		id := strings.TrimSpace(svc.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: service with empty id")
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %q", id)
		}
		if strings.TrimSpace(svc.Name) == "" {
			return nil, fmt.Errorf("catalog: service %q has no name", id)
		}

		keys := make(map[string]bool, len(svc.Categories))
		cats := make([]model.Category, 0, len(svc.Categories))
		for _, cat := range svc.Categories {
			key := strings.TrimSpace(cat.Key)
			if key == "" {
				return nil, fmt.Errorf("catalog: service %q has a category with empty key", id)
			}
			if keys[key] {
				return nil, fmt.Errorf("catalog: service %q has duplicate category %q", id, key)
			}
			if strings.TrimSpace(cat.Label) == "" {
				return nil, fmt.Errorf("catalog: category %s/%s has no label", id, key)
			}
			keys[key] = true
			cats = append(cats, model.Category{Key: key, Label: cat.Label})
		}

		c.byID[id] = len(c.services)
		c.services = append(c.services, model.Service{ID: id, Name: svc.Name, Categories: cats})
	}

	return c, nil
}

// Load reads a JSON array of services from path and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	var services []model.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}

	return New(services)
}

// Services returns the services in display order. The result is a copy.
func (c *Catalog) Services() []model.Service {
	out := make([]model.Service, len(c.services))
	for i, svc := range c.services {
		out[i] = cloneService(svc)
	}
	return out
}

func (c *Catalog) FindService(id string) (model.Service, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Service{}, false
	}
	return cloneService(c.services[i]), true
}

func (c *Catalog) FindCategory(svc model.Service, key string) (model.Category, bool) {
	for _, cat := range svc.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return model.Category{}, false
}

// Resolve looks up a (service id, category key) pair in one step.
func (c *Catalog) Resolve(serviceID, categoryKey string) (model.Service, model.Category, bool) {
	svc, ok := c.FindService(serviceID)
	if !ok {
		return model.Service{}, model.Category{}, false
	}
	cat, ok := c.FindCategory(svc, categoryKey)
	if !ok {
		return model.Service{}, model.Category{}, false
	}
	return svc, cat, true
}

func cloneService(svc model.Service) model.Service {
	svc.Categories = append([]model.Category(nil), svc.Categories...)
	return svc
}
