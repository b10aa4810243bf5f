// Package transport provides the concrete DNS wire codec and multicast UDP
// transport that the mdnssd package treats as external collaborators.
package transport

import (
	"fmt"

	"github.com/miekg/dns"

	"github.com/open-control-systems/mdnssd/components/mdnssd"
)

// Codec converts between mdnssd.Packet and raw DNS wire-format messages.
type Codec interface {
	// EncodeQuery builds a single-question query message.
	EncodeQuery(name string, recordType mdnssd.RRType) ([]byte, error)

	// EncodeResponse builds an unsolicited response message carrying answers
	// and additionals.
	EncodeResponse(answers, additionals []mdnssd.Record) ([]byte, error)

	// Decode parses a raw wire-format message into a Packet, reporting
	// whether the message is a response (QR bit set).
	Decode(raw []byte) (pkt mdnssd.Packet, isResponse bool, err error)
}

// DNSCodec is the default Codec, backed by github.com/miekg/dns.
type DNSCodec struct{}

// EncodeQuery implements Codec.
func (DNSCodec) EncodeQuery(name string, recordType mdnssd.RRType) ([]byte, error) {
	qtype, err := toDNSType(recordType)
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.Question = []dns.Question{{
		Name:   dns.Fqdn(name),
		Qtype:  qtype,
		Qclass: dns.ClassINET,
	}}

	return msg.Pack()
}

// EncodeResponse implements Codec.
func (DNSCodec) EncodeResponse(answers, additionals []mdnssd.Record) ([]byte, error) {
	msg := new(dns.Msg)
	msg.Response = true
	msg.Authoritative = true

	for _, rec := range answers {
		rr, err := toRR(rec)
		if err != nil {
			return nil, err
		}

		msg.Answer = append(msg.Answer, rr)
	}

	for _, rec := range additionals {
		rr, err := toRR(rec)
		if err != nil {
			return nil, err
		}

		msg.Extra = append(msg.Extra, rr)
	}

	return msg.Pack()
}

// Decode implements Codec.
func (DNSCodec) Decode(raw []byte) (mdnssd.Packet, bool, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(raw); err != nil {
		return mdnssd.Packet{}, false, fmt.Errorf("transport: failed to unpack DNS message: %w", err)
	}

	var pkt mdnssd.Packet

	for _, q := range msg.Question {
		rtype, ok := fromDNSType(q.Qtype)
		if !ok {
			continue
		}

		pkt.Questions = append(pkt.Questions, mdnssd.Question{Name: q.Name, Type: rtype})
	}

	pkt.Answers = fromRRs(msg.Answer)
	pkt.Additionals = fromRRs(msg.Extra)

	return pkt, msg.Response, nil
}

func toDNSType(t mdnssd.RRType) (uint16, error) {
	switch t {
	case mdnssd.RRTypePTR:
		return dns.TypePTR, nil
	case mdnssd.RRTypeSRV:
		return dns.TypeSRV, nil
	case mdnssd.RRTypeTXT:
		return dns.TypeTXT, nil
	case mdnssd.RRTypeA:
		return dns.TypeA, nil
	case mdnssd.RRTypeAAAA:
		return dns.TypeAAAA, nil
	case mdnssd.RRTypeANY:
		return dns.TypeANY, nil
	default:
		return 0, fmt.Errorf("transport: unsupported record type: %v", t)
	}
}

func fromDNSType(t uint16) (mdnssd.RRType, bool) {
	switch t {
	case dns.TypePTR:
		return mdnssd.RRTypePTR, true
	case dns.TypeSRV:
		return mdnssd.RRTypeSRV, true
	case dns.TypeTXT:
		return mdnssd.RRTypeTXT, true
	case dns.TypeA:
		return mdnssd.RRTypeA, true
	case dns.TypeAAAA:
		return mdnssd.RRTypeAAAA, true
	case dns.TypeANY:
		return mdnssd.RRTypeANY, true
	default:
		return 0, false
	}
}

func classWithFlush(flush bool) uint16 {
	class := uint16(dns.ClassINET)
	if flush {
		class |= 1 << 15
	}

	return class
}

func toRR(rec mdnssd.Record) (dns.RR, error) {
	hdr := dns.RR_Header{
		Name: dns.Fqdn(rec.Name),
		Ttl:  rec.TTL,
	}

	switch d := rec.Data.(type) {
	case mdnssd.PTRData:
		hdr.Rrtype = dns.TypePTR
		hdr.Class = classWithFlush(rec.Flush)

		return &dns.PTR{Hdr: hdr, Ptr: dns.Fqdn(d.Ptr)}, nil
	case mdnssd.SRVData:
		hdr.Rrtype = dns.TypeSRV
		hdr.Class = classWithFlush(rec.Flush)

		return &dns.SRV{
			Hdr:      hdr,
			Priority: d.Priority,
			Weight:   d.Weight,
			Port:     d.Port,
			Target:   dns.Fqdn(d.Target),
		}, nil
	case mdnssd.TXTData:
		hdr.Rrtype = dns.TypeTXT
		hdr.Class = classWithFlush(rec.Flush)

		return &dns.TXT{Hdr: hdr, Txt: segmentsFromRaw(d.Raw)}, nil
	case mdnssd.AData:
		hdr.Rrtype = dns.TypeA
		hdr.Class = classWithFlush(rec.Flush)

		return &dns.A{Hdr: hdr, A: d.IP}, nil
	case mdnssd.AAAAData:
		hdr.Rrtype = dns.TypeAAAA
		hdr.Class = classWithFlush(rec.Flush)

		return &dns.AAAA{Hdr: hdr, AAAA: d.IP}, nil
	default:
		return nil, fmt.Errorf("transport: unsupported record data: %T", rec.Data)
	}
}

func fromRRs(rrs []dns.RR) []mdnssd.Record {
	out := make([]mdnssd.Record, 0, len(rrs))

	for _, rr := range rrs {
		if rec, ok := fromRR(rr); ok {
			out = append(out, rec)
		}
	}

	return out
}

func fromRR(rr dns.RR) (mdnssd.Record, bool) {
	hdr := rr.Header()
	flush := hdr.Class&(1<<15) != 0

	switch v := rr.(type) {
	case *dns.PTR:
		return mdnssd.Record{
			Name: hdr.Name, Type: mdnssd.RRTypePTR, TTL: hdr.Ttl, Flush: flush,
			Data: mdnssd.PTRData{Ptr: v.Ptr},
		}, true
	case *dns.SRV:
		return mdnssd.Record{
			Name: hdr.Name, Type: mdnssd.RRTypeSRV, TTL: hdr.Ttl, Flush: flush,
			Data: mdnssd.SRVData{Priority: v.Priority, Weight: v.Weight, Port: v.Port, Target: v.Target},
		}, true
	case *dns.TXT:
		return mdnssd.Record{
			Name: hdr.Name, Type: mdnssd.RRTypeTXT, TTL: hdr.Ttl, Flush: flush,
			Data: mdnssd.TXTData{Raw: segmentsToRaw(v.Txt)},
		}, true
	case *dns.A:
		return mdnssd.Record{
			Name: hdr.Name, Type: mdnssd.RRTypeA, TTL: hdr.Ttl, Flush: flush,
			Data: mdnssd.AData{IP: v.A},
		}, true
	case *dns.AAAA:
		return mdnssd.Record{
			Name: hdr.Name, Type: mdnssd.RRTypeAAAA, TTL: hdr.Ttl, Flush: flush,
			Data: mdnssd.AAAAData{IP: v.AAAA},
		}, true
	default:
		return mdnssd.Record{}, false
	}
}

// segmentsFromRaw splits the length-prefixed raw bytes mdnssd.TXTData carries
// into the []string of segments miekg/dns's dns.TXT.Txt expects on encode.
// A segment whose declared length exceeds the remaining bytes takes the rest.
func segmentsFromRaw(raw []byte) []string {
	var out []string

	for len(raw) > 0 {
		n := int(raw[0])
		raw = raw[1:]

		if n > len(raw) {
			n = len(raw)
		}

		out = append(out, string(raw[:n]))
		raw = raw[n:]
	}

	return out
}

// segmentsToRaw reassembles miekg/dns's []string TXT segments into the
// length-prefixed raw form mdnssd.TXTData carries.
func segmentsToRaw(segs []string) []byte {
	var out []byte

	for _, s := range segs {
		if len(s) > 255 {
			s = s[:255]
		}

		out = append(out, byte(len(s)))
		out = append(out, []byte(s)...)
	}

	return out
}
