package mdnssd

import (
	"net"
	"os"
	"strings"
)

// HostInfo provides the local hostname and addresses used to fill in a Service
// descriptor's defaults. It is the "host info provider" collaborator this
// package treats as external.
type HostInfo interface {
	// Hostname returns the local host's mDNS hostname, e.g. "bonsai-growlab.local".
	Hostname() (string, error)

	// Addresses returns the non-internal IPv4 and IPv6 addresses of every
	// active local interface.
	Addresses() (ipv4 []net.IP, ipv6 []net.IP, err error)
}

// SystemHostInfo is the default HostInfo, backed by the operating system's
// hostname and interface table.
type SystemHostInfo struct{}

// Hostname implements HostInfo.
func (SystemHostInfo) Hostname() (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", err
	}

	name = strings.TrimSuffix(name, ".")
	if !strings.HasSuffix(name, "."+TLD) {
		name += "." + TLD
	}

	return name, nil
}

// Addresses implements HostInfo.
//
// Remarks:
//   - Loopback and down interfaces are skipped, matching the "skip any
//     flagged internal" address enumeration policy.
func (SystemHostInfo) Addresses() ([]net.IP, []net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, err
	}

	var v4, v6 []net.IP

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}

			if ip4 := ipnet.IP.To4(); ip4 != nil {
				v4 = append(v4, ip4)
			} else {
				v6 = append(v6, ipnet.IP)
			}
		}
	}

	return v4, v6, nil
}
