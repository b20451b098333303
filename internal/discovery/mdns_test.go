package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name        string
		entry       *zeroconf.ServiceEntry
		wantNil     bool
		wantIP      string
		wantPort    int
		wantVersion string
	}{
		{
			name: "server with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "giftgrid on studio"},
				HostName:      "studio.local.",
				Port:          8787,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/", "version=1.2.0"},
			},
			wantIP:      "192.168.4.16",
			wantPort:    8787,
			wantVersion: "1.2.0",
		},
		{
			name: "no port specified (should default)",
			entry: &zeroconf.ServiceEntry{
				HostName: "box.local.",
				AddrIPv4: []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "box.local.",
				Port:     8787,
			},
			wantNil: true,
		},
		{
			name: "IPv6 only server",
			entry: &zeroconf.ServiceEntry{
				HostName: "box.local.",
				Port:     9000,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 9000,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				HostName: "box.local.",
				Port:     8787,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:   "192.168.1.50",
			wantPort: 8787,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if server != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", server)
				}
				return
			}

			if server == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil server")
			}
			if server.IP != tt.wantIP {
				t.Errorf("server.IP = %v, want %v", server.IP, tt.wantIP)
			}
			if server.Port != tt.wantPort {
				t.Errorf("server.Port = %v, want %v", server.Port, tt.wantPort)
			}
			if server.Version != tt.wantVersion {
				t.Errorf("server.Version = %v, want %v", server.Version, tt.wantVersion)
			}
			if server.Hostname != tt.entry.HostName {
				t.Errorf("server.Hostname = %v, want %v", server.Hostname, tt.entry.HostName)
			}
			if time.Since(server.DiscoveredAt) > time.Second {
				t.Errorf("server.DiscoveredAt is not recent: %v", server.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := ParseTXT([]string{"path=/", "version=1.0", "flag", "eq=a=b"})

	want := map[string]string{
		"path":    "/",
		"version": "1.0",
		"flag":    "",
		"eq":      "a=b",
	}
	if len(got) != len(want) {
		t.Errorf("ParseTXT() has %d entries, want %d", len(got), len(want))
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("ParseTXT()[%q] = %q, want %q", key, got[key], value)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestServer_URLs(t *testing.T) {
	tests := []struct {
		name    string
		server  *Server
		wantURL string
	}{
		{name: "ipv4", server: &Server{IP: "192.168.4.16", Port: 8787}, wantURL: "http://192.168.4.16:8787"},
		{name: "ipv6", server: &Server{IP: "fe80::1", Port: 80}, wantURL: "http://[fe80::1]:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
			if got := tt.server.APIBase(); got != tt.wantURL+"/api" {
				t.Errorf("APIBase() = %v, want %v/api", got, tt.wantURL)
			}
			if got := tt.server.CDNBase(); got != tt.wantURL+"/cdn" {
				t.Errorf("CDNBase() = %v, want %v/cdn", got, tt.wantURL)
			}
		})
	}
}

func TestServer_String(t *testing.T) {
	server := &Server{Instance: "giftgrid on studio", Hostname: "studio.local.", IP: "10.0.0.5", Port: 8787, Version: "1.0.0"}
	want := "giftgrid on studio (studio.local.) at 10.0.0.5:8787, version 1.0.0"
	if got := server.String(); got != want {
		t.Errorf("String() = %v, want %v", got, want)
	}
	if server.GetMetadata("missing") != "" {
		t.Error("GetMetadata() on nil metadata should be empty")
	}
}

// Note: live mDNS discovery needs multicast on the test host and is not
// covered here.
