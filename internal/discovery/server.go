package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Server represents a giftgrid server found on the network
type Server struct {
	// Instance is the advertised instance name (e.g., "giftgrid on studio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the address, IPv4 when the server has one
	IP string

	// Port is the HTTP port
	Port int

	// Version is the server build version from the TXT record
	Version string

	// Metadata contains all mDNS TXT record data
	// Common fields: "version=1.2.0", "path=/"
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	if s.Version != "" {
		return fmt.Sprintf("%s (%s) at %s:%d, version %s", s.Instance, s.Hostname, s.IP, s.Port, s.Version)
	}
	return fmt.Sprintf("%s (%s) at %s:%d", s.Instance, s.Hostname, s.IP, s.Port)
}

// BaseURL returns the HTTP base URL of the server
func (s *Server) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// APIBase returns the catalog API base URL proxied through the server
func (s *Server) APIBase() string {
	return s.BaseURL() + "/api"
}

// CDNBase returns the CDN base URL proxied through the server
func (s *Server) CDNBase() string {
	return s.BaseURL() + "/cdn"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// TelegramBase returns the collectible page prefix proxied by the server
func (s *Server) TelegramBase() string {
	return s.BaseURL() + "/tg/nft/"
}
