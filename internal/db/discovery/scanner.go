package discovery

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultPorts are the default PostgreSQL ports to scan
var DefaultPorts = []int{5432, 5433, 5434, 5435}

// Scanner probes TCP ports for listening servers
type Scanner struct {
	timeout time.Duration
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewScanner creates a new scanner
func NewScanner() *Scanner {
	s := &Scanner{timeout: 2 * time.Second}
	dialer := &net.Dialer{Timeout: s.timeout}
	s.dial = dialer.DialContext
	return s
}

// ScanPorts returns the ports on host that accept connections, in port order
func (s *Scanner) ScanPorts(ctx context.Context, host string, ports []int) []models.DiscoveredInstance {
	if len(ports) == 0 {
		ports = DefaultPorts
	}

	var (
		mu        sync.Mutex
		instances = make([]models.DiscoveredInstance, 0, len(ports))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, port := range ports {
		g.Go(func() error {
			instance := s.scanPort(gctx, host, port)
			if instance.Available {
				mu.Lock()
				instances = append(instances, instance)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(instances, func(i, j int) bool { return instances[i].Port < instances[j].Port })
	return instances
}

// scanPort checks if a port is open
func (s *Scanner) scanPort(ctx context.Context, host string, port int) models.DiscoveredInstance {
	instance := models.DiscoveredInstance{
		Host:   host,
		Port:   port,
		Source: models.SourcePortScan,
	}

	start := time.Now()
	conn, err := s.dial(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	instance.ResponseTime = time.Since(start)
	if err != nil {
		return instance
	}

	conn.Close()
	instance.Available = true
	return instance
}

// ScanLocalhost scans for PostgreSQL on localhost
func (s *Scanner) ScanLocalhost(ctx context.Context) []models.DiscoveredInstance {
	return s.ScanPorts(ctx, "localhost", DefaultPorts)
}
