package mdnssd

// Record TTLs, per RFC 6762/6763 convention.
const (
	// TTLTypeEnum is the TTL for service-enumeration and type-to-instance PTRs.
	TTLTypeEnum uint32 = 28800
	// TTLSRV is the TTL for SRV records.
	TTLSRV uint32 = 120
	// TTLTXT is the TTL for TXT records.
	TTLTXT uint32 = 4500
	// TTLAddr is the TTL for A/AAAA records.
	TTLAddr uint32 = 120
	// TTLGoodbye is the TTL that marks a record for removal.
	TTLGoodbye uint32 = 0
)

// RecordsFor materializes the full DNS-SD record set for svc, in the
// deterministic order: service-enumeration PTR, type PTR, SRV, TXT, subtype
// PTRs (in descriptor order), then A/AAAA records (stable host-address order).
func RecordsFor(svc *Service, txtCodec TXTCodec) []Record {
	stype := StringifyType(svc.Type, svc.Protocol) + "." + TLD

	records := make([]Record, 0, 4+len(svc.Subtypes)+len(svc.Addresses.IPv4)+len(svc.Addresses.IPv6))

	records = append(records, Record{
		Name:  WildcardName,
		Type:  RRTypePTR,
		TTL:   TTLTypeEnum,
		Flush: svc.Flush,
		Data:  PTRData{Ptr: stype},
	})

	records = append(records, Record{
		Name:  stype,
		Type:  RRTypePTR,
		TTL:   TTLTypeEnum,
		Flush: svc.Flush,
		Data:  PTRData{Ptr: svc.FQDN},
	})

	records = append(records, Record{
		Name:  svc.FQDN,
		Type:  RRTypeSRV,
		TTL:   TTLSRV,
		Flush: svc.Flush,
		Data:  SRVData{Port: uint16(svc.Port), Target: svc.Host},
	})

	var rawTXT []byte
	if txtCodec != nil {
		rawTXT = txtCodec.Encode(svc.TXT)
	}

	records = append(records, Record{
		Name:  svc.FQDN,
		Type:  RRTypeTXT,
		TTL:   TTLTXT,
		Flush: svc.Flush,
		Data:  TXTData{Raw: rawTXT},
	})

	for _, sub := range svc.Subtypes {
		records = append(records, Record{
			Name:  "_" + sub + "._sub." + stype,
			Type:  RRTypePTR,
			TTL:   TTLTypeEnum,
			Flush: svc.Flush,
			Data:  PTRData{Ptr: svc.FQDN},
		})
	}

	for _, ip := range svc.Addresses.IPv4 {
		records = append(records, Record{
			Name:  svc.Host,
			Type:  RRTypeA,
			TTL:   TTLAddr,
			Flush: svc.Flush,
			Data:  AData{IP: ip},
		})
	}

	for _, ip := range svc.Addresses.IPv6 {
		records = append(records, Record{
			Name:  svc.Host,
			Type:  RRTypeAAAA,
			TTL:   TTLAddr,
			Flush: svc.Flush,
			Data:  AAAAData{IP: ip},
		})
	}

	return records
}

// goodbyeRecords rewrites the PTR records of a previously materialized
// record set with TTL 0, for use as a goodbye announcement.
func goodbyeRecords(records []Record) []Record {
	var out []Record

	for _, rec := range records {
		if rec.Type != RRTypePTR {
			continue
		}

		rec.TTL = TTLGoodbye
		out = append(out, rec)
	}

	return out
}
