package mdnssd

import "strings"

// TLD is the domain all DNS-SD records in this package live under.
const TLD = "local"

// WildcardName is the RFC 6763 §9 service-enumeration meta-query name.
const WildcardName = "_services._dns-sd._udp." + TLD

// StringifyType builds the two-label service name for a service type and protocol.
//
// Examples:
//   - StringifyType("http", ProtocolTCP) == "_http._tcp"
func StringifyType(serviceType string, protocol Protocol) string {
	return "_" + serviceType + "._" + string(protocol)
}

// TypeQuery describes a single mDNS service type to browse for, with an optional
// set of subtypes.
//
// Remarks:
//   - A zero-value Subtypes slice browses for the bare service type.
//   - A non-empty Subtypes slice issues one query per subtype instead of one query
//     for the bare type, matching the source library's object-entry behavior.
type TypeQuery struct {
	// TypeName is the application protocol name, unprefixed (e.g. "http").
	TypeName string

	// Subtypes is an optional list of subtype labels to browse for individually.
	Subtypes []string
}

// BrowserOptions configures the set of PTR queries a Browser issues.
//
// Remarks:
//   - If Types is non-empty, it takes precedence over Type/Subtypes.
//   - If Types is empty and Type is set, a single TypeQuery is derived from
//     Type/Subtypes.
//   - If neither is set, the Browser runs in wildcard mode.
type BrowserOptions struct {
	// Types is an explicit list of service types (and optional subtypes) to browse.
	Types []TypeQuery

	// Type is a single service type to browse, used when Types is empty.
	Type string

	// Subtypes is used together with Type.
	Subtypes []string

	// Protocol defaults to ProtocolTCP.
	Protocol Protocol
}

// buildNames derives the fixed PTR query name vector and the wildcard flag from
// BrowserOptions, per the type/subtype query-name derivation rules.
func buildNames(opts BrowserOptions) (names []string, wildcard bool) {
	proto := opts.Protocol
	if proto == "" {
		proto = ProtocolTCP
	}

	appendQuery := func(typeName string, subtypes []string) {
		stype := StringifyType(typeName, proto) + "." + TLD
		if len(subtypes) == 0 {
			names = append(names, stype)
			return
		}

		for _, sub := range subtypes {
			names = append(names, "_"+sub+"._sub."+stype)
		}
	}

	if len(opts.Types) > 0 {
		for _, tq := range opts.Types {
			appendQuery(tq.TypeName, tq.Subtypes)
		}

		return names, false
	}

	if opts.Type != "" {
		appendQuery(opts.Type, opts.Subtypes)

		return names, false
	}

	return []string{WildcardName}, true
}

// splitLabels splits a DNS name into its dot-separated labels, treating a
// backslash-escaped dot as part of the preceding label.
func splitLabels(name string) []string {
	name = strings.TrimSuffix(name, ".")

	var labels []string

	var cur strings.Builder

	escaped := false

	for i := 0; i < len(name); i++ {
		c := name[i]

		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == '.':
			labels = append(labels, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}

	labels = append(labels, cur.String())

	return labels
}

// firstLabel returns the first dot-separated label of name.
func firstLabel(name string) string {
	labels := splitLabels(name)
	if len(labels) == 0 {
		return ""
	}

	return labels[0]
}

// countLabels returns the number of dot-separated labels in name.
func countLabels(name string) int {
	return len(splitLabels(name))
}

// dnsEqual compares two DNS names for equality per DNS's case-insensitive,
// trailing-dot-insensitive rule.
func dnsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

// normalizeName lower-cases and strips the trailing dot, for use as a map key.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// nameMatches implements the Responder's question-to-record name-match rule:
// a dotted question name matches a record verbatim, a bare label matches only
// the record's first label.
func nameMatches(questionName, recordName string) bool {
	if strings.Contains(questionName, ".") {
		return dnsEqual(questionName, recordName)
	}

	return strings.EqualFold(firstLabel(recordName), questionName)
}

// parseFQDN recovers the instance label, service type and protocol from an
// SRV/TXT record name of the form "<instance>.<_type>.<_proto>.local".
func parseFQDN(name string) (instance string, serviceType string, protocol Protocol) {
	labels := splitLabels(name)

	const minLabels = 4 // instance + _type + _proto + local
	if len(labels) < minLabels {
		return "", "", ""
	}

	n := len(labels)
	serviceType = strings.TrimPrefix(labels[n-3], "_")
	protocol = Protocol(strings.TrimPrefix(labels[n-2], "_"))
	instance = strings.Join(labels[:n-3], ".")

	return instance, serviceType, protocol
}
