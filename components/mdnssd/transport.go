package mdnssd

// Transport is the multicast DNS transport this package relies on but does
// not implement: binding to the mDNS multicast groups, sending packets, and
// delivering parsed packets back to the engine.
//
// References:
//   - RFC 6762 — multicast groups 224.0.0.251:5353 / [ff02::fb]:5353.
type Transport interface {
	// OnQuery registers a handler invoked for every inbound query packet.
	// Multiple handlers may be registered; all are invoked.
	OnQuery(handler func(Packet))

	// OnResponse registers a handler invoked for every inbound response packet,
	// along with the address it arrived from. Multiple handlers may be
	// registered; all are invoked.
	OnResponse(handler func(Packet, Addr))

	// Query multicasts a single-question query.
	Query(name string, recordType RRType) error

	// Respond multicasts a response carrying the given answers and additionals.
	Respond(answers, additionals []Record) error

	// Close tears down the transport.
	Close() error
}
