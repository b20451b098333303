// Package discovery finds giftgrid servers on the local network over mDNS
// and lets a server announce itself.
//
// Servers advertise the "_giftgrid._tcp" service type with a TXT record
// carrying their version. The terminal constructor browses for it so it can
// route catalog traffic through a nearby server's proxy instead of reaching
// the catalog hosts directly.
//
// # Usage Example
//
//	servers, err := discovery.Scan(ctx, 3*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range servers {
//	    fmt.Println(s, s.APIBase())
//	}
//
// And on the server side:
//
//	ad, err := discovery.Advertise("", 8787, version.Version)
//	defer ad.Shutdown()
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
