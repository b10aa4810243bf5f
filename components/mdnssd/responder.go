package mdnssd

import (
	"sync"

	"github.com/open-control-systems/mdnssd/components/core"
)

// Responder is the authoritative record table for locally-advertised
// services: it answers incoming queries from the record set the Registry
// has registered. The Responder keeps no per-query state.
type Responder struct {
	transport Transport

	mu    sync.Mutex
	table map[RRType][]Record
}

// NewResponder constructs a Responder bound to transport. Callers are
// expected to wire HandleQuery to transport.OnQuery.
func NewResponder(transport Transport) *Responder {
	return &Responder{
		transport: transport,
		table:     make(map[RRType][]Record),
	}
}

// Register adds records to the table. A record duplicating an existing one
// under (type, name, data) is silently dropped; duplicate registration is
// not an error.
func (r *Responder) Register(records ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if r.containsLocked(rec) {
			continue
		}

		r.table[rec.Type] = append(r.table[rec.Type], rec)
	}
}

// Unregister removes every record matching (type, name), regardless of data.
// Unregistering an absent record is not an error.
func (r *Responder) Unregister(records ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		bucket := r.table[rec.Type]

		filtered := bucket[:0:0]

		for _, existing := range bucket {
			if dnsEqual(existing.Name, rec.Name) {
				continue
			}

			filtered = append(filtered, existing)
		}

		if len(filtered) == 0 {
			delete(r.table, rec.Type)
		} else {
			r.table[rec.Type] = filtered
		}
	}
}

// HandleQuery answers an inbound query, sending one multicast response per
// question with at least one answer. Wire this to the Transport's OnQuery.
func (r *Responder) HandleQuery(pkt Packet) {
	r.mu.Lock()

	type answer struct {
		answers     []Record
		additionals []Record
	}

	answersByQuestion := make([]answer, len(pkt.Questions))

	for i, q := range pkt.Questions {
		ans := r.answersForLocked(q)

		var additionals []Record
		if q.Type != RRTypeANY {
			additionals = r.additionalsForLocked(ans)
		}

		answersByQuestion[i] = answer{answers: ans, additionals: additionals}
	}

	r.mu.Unlock()

	for _, a := range answersByQuestion {
		if len(a.answers) == 0 {
			continue
		}

		if err := r.transport.Respond(a.answers, a.additionals); err != nil {
			core.LogErr.Printf("mdns-responder: failed to send response: err=%v\n", err)
		}
	}
}

func (r *Responder) containsLocked(rec Record) bool {
	for _, existing := range r.table[rec.Type] {
		if recordEqual(existing, rec) {
			return true
		}
	}

	return false
}

func (r *Responder) answersForLocked(q Question) []Record {
	var out []Record

	if q.Type == RRTypeANY {
		for _, t := range rrTypeOrder {
			for _, rec := range r.table[t] {
				if nameMatches(q.Name, rec.Name) {
					out = append(out, rec)
				}
			}
		}

		return out
	}

	for _, rec := range r.table[q.Type] {
		if nameMatches(q.Name, rec.Name) {
			out = append(out, rec)
		}
	}

	return out
}

// additionalsForLocked appends, for each PTR answer, every SRV and TXT with
// a matching name, then, for every SRV in the additionals, every A/AAAA
// whose name matches the SRV's target. Deduplication is not performed.
func (r *Responder) additionalsForLocked(answers []Record) []Record {
	var out []Record

	for _, ans := range answers {
		if ans.Type != RRTypePTR {
			continue
		}

		ptr, ok := ans.Data.(PTRData)
		if !ok {
			continue
		}

		for _, rec := range r.table[RRTypeSRV] {
			if dnsEqual(rec.Name, ptr.Ptr) {
				out = append(out, rec)
			}
		}

		for _, rec := range r.table[RRTypeTXT] {
			if dnsEqual(rec.Name, ptr.Ptr) {
				out = append(out, rec)
			}
		}
	}

	// Range over a fixed-length snapshot: srvCount is taken before the loop
	// appends any A/AAAA records, so appending during iteration is safe.
	srvCount := len(out)

	for i := 0; i < srvCount; i++ {
		if out[i].Type != RRTypeSRV {
			continue
		}

		srv, ok := out[i].Data.(SRVData)
		if !ok {
			continue
		}

		for _, rec := range r.table[RRTypeA] {
			if dnsEqual(rec.Name, srv.Target) {
				out = append(out, rec)
			}
		}

		for _, rec := range r.table[RRTypeAAAA] {
			if dnsEqual(rec.Name, srv.Target) {
				out = append(out, rec)
			}
		}
	}

	return out
}
