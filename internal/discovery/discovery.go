// Package discovery announces a running simulator over mDNS and finds one
// from a client.
package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/mdns"
)

const (
	ServiceType = "_arduinosim._tcp"
	domain      = "local."
)

var ErrTimeout = errors.New("no simulator answered before timeout")

type (
	Advertiser struct {
		server *mdns.Server
	}

	Service struct {
		Instance string
		Host     string
		Addr     net.IP
		Port     int
		Info     []string
	}
)

// Advertise registers instance on port. When ips is empty the addresses of the
// local hostname are used.
func Advertise(instance string, port int, ips []net.IP) (*Advertiser, error) {
	info := []string{"api=/api", "health=/api/health"}

	service, err := mdns.NewMDNSService(instance, ServiceType, domain, "", port, ips, info)
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	log.Info("Advertising over mDNS", "instance", instance, "service", ServiceType, "port", port)

	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Close() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Discover returns the first simulator that answers within timeout.
func Discover(timeout time.Duration) (*Service, error) {
	entries := make(chan *mdns.ServiceEntry, 8)

	params := mdns.DefaultParams(ServiceType)
	params.Domain = strings.TrimSuffix(domain, ".")
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errs := make(chan error, 1)
	go func() {
		errs <- mdns.Query(params)
		close(entries)
	}()

	log.Debug("Querying mDNS", "service", ServiceType, "timeout", timeout)

	var found *Service
	for entry := range entries {
		if found != nil || !matches(entry) {
			continue
		}
		service := fromEntry(entry)
		log.Debug("Found simulator", "instance", service.Instance, "addr", service.Addr, "port", service.Port)
		found = &service
	}

	err := <-errs
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	if found == nil {
		return nil, ErrTimeout
	}
	return found, nil
}

func matches(entry *mdns.ServiceEntry) bool {
	return entry != nil && strings.Contains(entry.Name, ServiceType+".")
}

func fromEntry(entry *mdns.ServiceEntry) Service {
	addr := entry.AddrV4
	if addr == nil {
		addr = entry.AddrV6
	}
	return Service{
		Instance: strings.TrimSuffix(entry.Name, "."+ServiceType+"."+domain),
		Host:     entry.Host,
		Addr:     addr,
		Port:     entry.Port,
		Info:     entry.InfoFields,
	}
}

// BaseURL is the HTTP root of the discovered service.
func (s Service) BaseURL() string {
	host := s.Host
	if s.Addr != nil {
		host = s.Addr.String()
	}
	return "http://" + net.JoinHostPort(strings.TrimSuffix(host, "."), strconv.Itoa(s.Port))
}
