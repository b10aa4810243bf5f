package mdnssd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringifyType(t *testing.T) {
	require.Equal(t, "_http._tcp", StringifyType("http", ProtocolTCP))
}

func TestBuildNamesWildcard(t *testing.T) {
	names, wildcard := buildNames(BrowserOptions{})
	require.True(t, wildcard)
	require.Equal(t, []string{WildcardName}, names)
}

func TestBuildNamesSingleType(t *testing.T) {
	names, wildcard := buildNames(BrowserOptions{Type: "http"})
	require.False(t, wildcard)
	require.Equal(t, []string{"_http._tcp.local"}, names)
}

func TestBuildNamesSingleTypeWithSubtypes(t *testing.T) {
	names, wildcard := buildNames(BrowserOptions{Type: "http", Subtypes: []string{"printer", "scanner"}})
	require.False(t, wildcard)
	require.Equal(t, []string{"_printer._sub._http._tcp.local", "_scanner._sub._http._tcp.local"}, names)
}

func TestBuildNamesMultipleTypes(t *testing.T) {
	names, wildcard := buildNames(BrowserOptions{
		Types: []TypeQuery{
			{TypeName: "http"},
			{TypeName: "ftp", Subtypes: []string{"secure"}},
		},
	})
	require.False(t, wildcard)
	require.Equal(t, []string{"_http._tcp.local", "_secure._sub._ftp._tcp.local"}, names)
}

func TestSplitLabelsHandlesEscapedDot(t *testing.T) {
	labels := splitLabels(`Foo\.Bar._http._tcp.local`)
	require.Equal(t, []string{`Foo\.Bar`, "_http", "_tcp", "local"}, labels)
}

func TestCountLabels(t *testing.T) {
	require.Equal(t, 3, countLabels("_http._tcp.local"))
	require.Equal(t, 5, countLabels("_printer._sub._http._tcp.local"))
}

func TestDnsEqualIgnoresCaseAndTrailingDot(t *testing.T) {
	require.True(t, dnsEqual("Foo.Local.", "foo.local"))
	require.False(t, dnsEqual("foo.local", "bar.local"))
}

func TestNameMatchesBareLabel(t *testing.T) {
	require.True(t, nameMatches("_http", "_http._tcp.local"))
	require.False(t, nameMatches("_ftp", "_http._tcp.local"))
}

func TestNameMatchesDottedName(t *testing.T) {
	require.True(t, nameMatches("_http._tcp.local", "_http._tcp.local"))
	require.False(t, nameMatches("_http._tcp.local", "_ftp._tcp.local"))
}

func TestParseFQDN(t *testing.T) {
	instance, serviceType, protocol := parseFQDN("Foo Bar._http._tcp.local")
	require.Equal(t, "Foo Bar", instance)
	require.Equal(t, "http", serviceType)
	require.Equal(t, ProtocolTCP, protocol)
}

func TestParseFQDNTooShort(t *testing.T) {
	instance, _, _ := parseFQDN("_http._tcp.local")
	require.Equal(t, "", instance)
}
