package mdnssd

import (
	"fmt"
	"net"

	"github.com/open-control-systems/mdnssd/components/status"
)

// Protocol is the transport protocol a service runs over.
type Protocol string

const (
	// ProtocolTCP is the default protocol.
	ProtocolTCP Protocol = "tcp"
	// ProtocolUDP is used for UDP-based application protocols.
	ProtocolUDP Protocol = "udp"
)

// Addresses holds the IPv4 and IPv6 addresses a service's host resolves to.
type Addresses struct {
	IPv4 []net.IP
	IPv6 []net.IP
}

// ServiceOptions describes a service to publish, or the query parameters a
// caller supplied when constructing a Service by hand.
type ServiceOptions struct {
	// Name is the human-readable instance label, e.g. "Foo Bar". Required.
	Name string

	// Type is the application protocol, unprefixed, e.g. "http". Required.
	Type string

	// Protocol defaults to ProtocolTCP.
	Protocol Protocol

	// Host is the SRV target hostname; defaults to the local hostname.
	Host string

	// Port is the service port, 1..65535. Required.
	Port int

	// Subtypes is an optional ordered list of subtype labels.
	Subtypes []string

	// TXT is an optional key/value mapping materialized into the TXT record.
	TXT map[string]string

	// Addresses, when non-nil, overrides host-interface address enumeration.
	Addresses *Addresses

	// Flush propagates the mDNS cache-flush bit into every published record.
	Flush bool
}

// Service is the central entity of this package: one advertised or
// discovered service instance, and everything needed to materialize or
// recognize its DNS-SD record set.
type Service struct {
	Name      string
	Type      string
	Protocol  Protocol
	Host      string
	Port      int
	Subtypes  []string
	TXT       map[string]string
	RawTXT    []byte
	Addresses Addresses
	Flush     bool

	// FQDN is "<Name>.<_Type>.<_Protocol>.local", computed eagerly.
	FQDN string

	// Published is true once the Registry has emitted the initial announcement.
	Published bool

	// Referer is set on discovered services only: the source address of the
	// response that first introduced this instance.
	Referer *Addr
}

// missingField reports a StatusMissingField error naming the absent field.
func missingField(field string) error {
	return fmt.Errorf("mdnssd: missing field %q: %w", field, status.StatusMissingField)
}

// NewService validates opts and constructs a Service, filling in host and
// address defaults from hostInfo when they are not explicitly provided.
func NewService(opts ServiceOptions, hostInfo HostInfo) (*Service, error) {
	if opts.Name == "" {
		return nil, missingField("name")
	}
	if opts.Type == "" {
		return nil, missingField("type")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, missingField("port")
	}

	protocol := opts.Protocol
	if protocol == "" {
		protocol = ProtocolTCP
	}

	host := opts.Host
	if host == "" && hostInfo != nil {
		h, err := hostInfo.Hostname()
		if err != nil {
			return nil, err
		}

		host = h
	}

	svc := &Service{
		Name:     opts.Name,
		Type:     opts.Type,
		Protocol: protocol,
		Host:     host,
		Port:     opts.Port,
		Subtypes: append([]string(nil), opts.Subtypes...),
		TXT:      opts.TXT,
		Flush:    opts.Flush,
	}

	switch {
	case opts.Addresses != nil:
		svc.Addresses = *opts.Addresses
	case hostInfo != nil:
		ipv4, ipv6, err := hostInfo.Addresses()
		if err != nil {
			return nil, err
		}

		svc.Addresses = Addresses{IPv4: ipv4, IPv6: ipv6}
	}

	svc.FQDN = svc.Name + "." + StringifyType(svc.Type, svc.Protocol) + "." + TLD

	return svc, nil
}
