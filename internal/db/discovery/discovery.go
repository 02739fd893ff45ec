// Package discovery finds PostgreSQL servers worth offering on the login tab.
package discovery

import (
	"context"
	"sort"
	"strconv"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"golang.org/x/sync/errgroup"
)

// Discoverer coordinates all discovery methods
type Discoverer struct {
	scanner    *Scanner
	getenv     func(string) string
	pgpassPath string
}

// NewDiscoverer creates a new discoverer
func NewDiscoverer() *Discoverer {
	return &Discoverer{
		scanner:    NewScanner(),
		getenv:     osGetenv,
		pgpassPath: DefaultPgPassPath(),
	}
}

// DiscoverAll runs the environment, port scan and .pgpass sources concurrently
// and returns one instance per host:port, best source first.
func (d *Discoverer) DiscoverAll(ctx context.Context) []models.DiscoveredInstance {
	var env, scanned, pgpass []models.DiscoveredInstance

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if inst := ParseEnvironment(d.getenv); inst != nil {
			env = append(env, *inst)
		}
		return nil
	})
	g.Go(func() error {
		scanned = d.scanner.ScanLocalhost(gctx)
		return nil
	})
	g.Go(func() error {
		pgpass = PgPassInstances(d.pgpassPath)
		return nil
	})
	_ = g.Wait()

	instances := make([]models.DiscoveredInstance, 0, len(env)+len(scanned)+len(pgpass))
	instances = append(instances, env...)
	instances = append(instances, scanned...)
	instances = append(instances, pgpass...)
	instances = deduplicateInstances(instances)

	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Source != instances[j].Source {
			return instances[i].Source < instances[j].Source
		}
		return instanceKey(instances[i]) < instanceKey(instances[j])
	})

	return instances
}

func instanceKey(instance models.DiscoveredInstance) string {
	return instance.Host + ":" + strconv.Itoa(instance.Port)
}

// deduplicateInstances removes duplicate host:port combinations, keeping the
// higher priority source
func deduplicateInstances(instances []models.DiscoveredInstance) []models.DiscoveredInstance {
	seen := make(map[string]models.DiscoveredInstance)
	for _, instance := range instances {
		key := instanceKey(instance)
		if existing, exists := seen[key]; !exists || instance.Source < existing.Source {
			seen[key] = instance
		}
	}

	result := make([]models.DiscoveredInstance, 0, len(seen))
	for _, instance := range seen {
		result = append(result, instance)
	}
	return result
}
