package mdnssd

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/mdnssd/components/status"
)

type testHostInfo struct {
	hostname string
	hostErr  error
	ipv4     []net.IP
	ipv6     []net.IP
	addrErr  error
}

func (h *testHostInfo) Hostname() (string, error) {
	return h.hostname, h.hostErr
}

func (h *testHostInfo) Addresses() ([]net.IP, []net.IP, error) {
	return h.ipv4, h.ipv6, h.addrErr
}

func TestNewServiceRequiresName(t *testing.T) {
	_, err := NewService(ServiceOptions{Type: "http", Port: 80}, nil)
	require.True(t, errors.Is(err, status.StatusMissingField))
}

func TestNewServiceRequiresType(t *testing.T) {
	_, err := NewService(ServiceOptions{Name: "Foo", Port: 80}, nil)
	require.True(t, errors.Is(err, status.StatusMissingField))
}

func TestNewServiceRequiresValidPort(t *testing.T) {
	_, err := NewService(ServiceOptions{Name: "Foo", Type: "http", Port: 0}, nil)
	require.True(t, errors.Is(err, status.StatusMissingField))

	_, err = NewService(ServiceOptions{Name: "Foo", Type: "http", Port: 65536}, nil)
	require.True(t, errors.Is(err, status.StatusMissingField))
}

func TestNewServiceDefaultsProtocolToTCP(t *testing.T) {
	svc, err := NewService(ServiceOptions{Name: "Foo", Type: "http", Port: 8080}, nil)
	require.NoError(t, err)
	require.Equal(t, ProtocolTCP, svc.Protocol)
}

func TestNewServiceComputesFQDN(t *testing.T) {
	svc, err := NewService(ServiceOptions{
		Name: "Foo Bar",
		Type: "http",
		Port: 8080,
		Host: "myhost.local",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Foo Bar._http._tcp.local", svc.FQDN)
}

func TestNewServiceFillsHostAndAddressesFromHostInfo(t *testing.T) {
	info := &testHostInfo{
		hostname: "myhost.local",
		ipv4:     []net.IP{net.ParseIP("192.168.1.5")},
		ipv6:     []net.IP{net.ParseIP("fe80::1")},
	}

	svc, err := NewService(ServiceOptions{Name: "Foo", Type: "http", Port: 80}, info)
	require.NoError(t, err)
	require.Equal(t, "myhost.local", svc.Host)
	require.Len(t, svc.Addresses.IPv4, 1)
	require.Len(t, svc.Addresses.IPv6, 1)
}

func TestNewServiceExplicitAddressesOverrideHostInfo(t *testing.T) {
	info := &testHostInfo{
		hostname: "myhost.local",
		ipv4:     []net.IP{net.ParseIP("192.168.1.5")},
	}

	explicit := &Addresses{IPv4: []net.IP{net.ParseIP("10.0.0.1")}}

	svc, err := NewService(ServiceOptions{
		Name:      "Foo",
		Type:      "http",
		Port:      80,
		Addresses: explicit,
	}, info)
	require.NoError(t, err)
	require.Equal(t, []net.IP{net.ParseIP("10.0.0.1")}, svc.Addresses.IPv4)
}

func TestNewServicePropagatesHostnameError(t *testing.T) {
	info := &testHostInfo{hostErr: status.StatusNotSupported}

	_, err := NewService(ServiceOptions{Name: "Foo", Type: "http", Port: 80}, info)
	require.True(t, errors.Is(err, status.StatusNotSupported))
}
