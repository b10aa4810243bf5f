package mdnssd

import (
	"bytes"
	"net"
)

// RRType identifies the resource record kinds this package knows how to build
// and correlate. It deliberately covers only the types DNS-SD needs.
type RRType int

const (
	// RRTypePTR is a pointer record: service enumeration, type-to-instance, subtype.
	RRTypePTR RRType = iota
	// RRTypeSRV is a service location record: target host and port.
	RRTypeSRV
	// RRTypeTXT is a text record: service metadata.
	RRTypeTXT
	// RRTypeA is an IPv4 address record.
	RRTypeA
	// RRTypeAAAA is an IPv6 address record.
	RRTypeAAAA
	// RRTypeANY matches every record type in a question; never appears on a Record.
	RRTypeANY
)

// String returns the conventional DNS mnemonic for the record type.
func (t RRType) String() string {
	switch t {
	case RRTypePTR:
		return "PTR"
	case RRTypeSRV:
		return "SRV"
	case RRTypeTXT:
		return "TXT"
	case RRTypeA:
		return "A"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeANY:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// rrTypeOrder fixes a deterministic bucket-iteration order for ANY-type
// queries, since Go map iteration order is undefined.
var rrTypeOrder = []RRType{RRTypePTR, RRTypeSRV, RRTypeTXT, RRTypeA, RRTypeAAAA}

// RData is the per-variant payload of a Record. Each concrete type below
// implements it.
type RData interface {
	// Equal reports whether other carries the same data.
	Equal(other RData) bool
}

// PTRData is the RDATA of a PTR record.
type PTRData struct {
	// Ptr is the name the pointer resolves to.
	Ptr string
}

// Equal implements RData.
func (d PTRData) Equal(other RData) bool {
	o, ok := other.(PTRData)
	return ok && dnsEqual(d.Ptr, o.Ptr)
}

// SRVData is the RDATA of an SRV record.
type SRVData struct {
	// Priority and Weight follow RFC 2782; DNS-SD clients generally ignore them.
	Priority uint16
	Weight   uint16
	// Port is the service's TCP/UDP port.
	Port uint16
	// Target is the hostname the service runs on.
	Target string
}

// Equal implements RData.
func (d SRVData) Equal(other RData) bool {
	o, ok := other.(SRVData)
	return ok && d.Priority == o.Priority && d.Weight == o.Weight &&
		d.Port == o.Port && dnsEqual(d.Target, o.Target)
}

// TXTData is the RDATA of a TXT record: the raw length-prefixed segment bytes
// described in RFC 6763 §6.
type TXTData struct {
	Raw []byte
}

// Equal implements RData.
func (d TXTData) Equal(other RData) bool {
	o, ok := other.(TXTData)
	return ok && bytes.Equal(d.Raw, o.Raw)
}

// AData is the RDATA of an A record.
type AData struct {
	IP net.IP
}

// Equal implements RData.
func (d AData) Equal(other RData) bool {
	o, ok := other.(AData)
	return ok && d.IP.Equal(o.IP)
}

// AAAAData is the RDATA of an AAAA record.
type AAAAData struct {
	IP net.IP
}

// Equal implements RData.
func (d AAAAData) Equal(other RData) bool {
	o, ok := other.(AAAAData)
	return ok && d.IP.Equal(o.IP)
}

// Record is a single resource record, as exchanged with the Transport.
type Record struct {
	// Name is the record's owner name, e.g. "Foo Bar._http._tcp.local".
	Name string
	// Type identifies which RData variant Data holds.
	Type RRType
	// TTL is the record's time-to-live in seconds; 0 signals a goodbye.
	TTL uint32
	// Flush marks the mDNS cache-flush bit.
	Flush bool
	// Data is the per-type payload.
	Data RData
}

// recordEqual reports whether two records carry identical (type, name, data) —
// the identity the Responder uses to de-duplicate registrations.
func recordEqual(a, b Record) bool {
	if a.Type != b.Type || !dnsEqual(a.Name, b.Name) {
		return false
	}

	if a.Data == nil || b.Data == nil {
		return a.Data == nil && b.Data == nil
	}

	return a.Data.Equal(b.Data)
}

// Question is a single DNS question, as carried in a query Packet.
type Question struct {
	Name string
	Type RRType
}

// Addr is a transport-level source or destination address.
type Addr struct {
	IP   net.IP
	Port int
}

// Packet is the parsed form of an inbound or outbound DNS message, stripped
// down to the fields DNS-SD cares about.
type Packet struct {
	Questions   []Question
	Answers     []Record
	Additionals []Record
}

// allRecords returns the answers and additionals of a packet concatenated,
// in packet order.
func allRecords(pkt Packet) []Record {
	out := make([]Record, 0, len(pkt.Answers)+len(pkt.Additionals))
	out = append(out, pkt.Answers...)
	out = append(out, pkt.Additionals...)

	return out
}
