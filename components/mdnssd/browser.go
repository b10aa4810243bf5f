package mdnssd

import (
	"strings"
	"sync"

	"github.com/open-control-systems/mdnssd/components/core"
)

// Browser subscribes to the Transport's inbound response stream and
// maintains a live map of discovered remote services, emitting EventUp and
// EventDown notifications as they appear and disappear.
type Browser struct {
	transport Transport
	txtCodec  TXTCodec
	handler   EventHandler

	names    []string
	wildcard bool

	mu           sync.Mutex
	started      bool
	subscribed   bool
	nameMap      map[string]bool
	services     []*Service
	serviceIndex map[string]int // normalized fqdn -> index into services
}

// NewBrowser constructs a Browser. Call Start to begin receiving responses.
func NewBrowser(transport Transport, txtCodec TXTCodec, opts BrowserOptions, handler EventHandler) *Browser {
	names, wildcard := buildNames(opts)

	b := &Browser{
		transport:    transport,
		txtCodec:     txtCodec,
		handler:      handler,
		names:        names,
		wildcard:     wildcard,
		nameMap:      make(map[string]bool),
		serviceIndex: make(map[string]int),
	}

	if !wildcard {
		for _, name := range names {
			b.nameMap[normalizeName(name)] = true
		}
	}

	return b
}

// Start subscribes to the transport's response stream and issues the initial
// PTR query for every configured name. Calling Start on an already-started
// Browser is a no-op.
func (b *Browser) Start() error {
	b.mu.Lock()

	if b.started {
		b.mu.Unlock()
		return nil
	}

	b.started = true

	needSubscribe := !b.subscribed
	if needSubscribe {
		b.subscribed = true
	}

	b.mu.Unlock()

	if needSubscribe {
		b.transport.OnResponse(b.HandleResponse)
	}

	return b.queryAll()
}

// Update re-issues PTR queries for every configured name. Callers may invoke
// this periodically for refresh; there is no TTL-expiry timer.
func (b *Browser) Update() error {
	return b.queryAll()
}

// Stop ends response processing: the Browser stays registered with the
// transport but ignores every response until Start is called again. Already
// discovered services remain in Services().
func (b *Browser) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.started = false

	return nil
}

// Services returns a snapshot of the currently-up services, in arrival order.
func (b *Browser) Services() []*Service {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Service, len(b.services))
	copy(out, b.services)

	return out
}

func (b *Browser) queryAll() error {
	b.mu.Lock()
	names := append([]string(nil), b.names...)
	b.mu.Unlock()

	var firstErr error

	for _, name := range names {
		if err := b.transport.Query(name, RRTypePTR); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// HandleResponse implements the Browser's response-handling algorithm. Wire
// this to the Transport's OnResponse.
func (b *Browser) HandleResponse(pkt Packet, from Addr) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return
	}

	if b.wildcard {
		b.discoverTypesLocked(pkt)
	}

	for name := range b.nameMap {
		b.processNameLocked(name, pkt, from)
	}
}

// discoverTypesLocked implements the wildcard-mode discovery step: every PTR
// answer whose target isn't already tracked schedules a fresh PTR query for
// that target, and grows nameMap permanently. The answer's owner name is not
// checked, so PTR answers outside the meta-query are tracked as well.
func (b *Browser) discoverTypesLocked(pkt Packet) {
	for _, ans := range pkt.Answers {
		if ans.Type != RRTypePTR {
			continue
		}

		ptr, ok := ans.Data.(PTRData)
		if !ok {
			continue
		}

		key := normalizeName(ptr.Ptr)
		if b.nameMap[key] {
			continue
		}

		b.nameMap[key] = true

		if err := b.transport.Query(ptr.Ptr, RRTypePTR); err != nil {
			core.LogErr.Printf("mdns-browser: failed to query discovered type: name=%s err=%v\n",
				ptr.Ptr, err)
		}
	}
}

// processNameLocked runs the goodbye sweep, candidate construction, and merge
// steps for a single tracked name. Goodbyes are processed before additions,
// so a service that goes down and immediately comes back in the same packet
// re-appears.
func (b *Browser) processNameLocked(name string, pkt Packet, from Addr) {
	for _, rec := range allRecords(pkt) {
		if rec.Type != RRTypePTR || rec.TTL != 0 {
			continue
		}
		if !dnsEqual(rec.Name, name) {
			continue
		}

		ptr, ok := rec.Data.(PTRData)
		if !ok {
			continue
		}

		b.removeServiceLocked(ptr.Ptr)
	}

	var candidates []*Service

	for _, rec := range pkt.Answers {
		if rec.Type != RRTypePTR || rec.TTL == 0 {
			continue
		}
		if !dnsEqual(rec.Name, name) {
			continue
		}

		ptr, ok := rec.Data.(PTRData)
		if !ok {
			continue
		}

		if svc := b.buildCandidate(name, ptr, pkt, from); svc != nil {
			candidates = append(candidates, svc)
		}
	}

	for _, cand := range candidates {
		b.mergeLocked(cand)
	}
}

// buildCandidate reconstructs a Service from the SRV/TXT/A/AAAA records in
// pkt that correlate with ptr. Returns nil if no SRV was found.
func (b *Browser) buildCandidate(name string, ptr PTRData, pkt Packet, from Addr) *Service {
	records := allRecords(pkt)

	var (
		srv     SRVData
		srvName string
		found   bool
	)

	for _, rec := range records {
		if rec.Type != RRTypeSRV || rec.TTL == 0 {
			continue
		}
		if !dnsEqual(rec.Name, ptr.Ptr) {
			continue
		}

		d, ok := rec.Data.(SRVData)
		if !ok {
			continue
		}

		srv, srvName, found = d, rec.Name, true

		break
	}

	if !found {
		return nil
	}

	instance, serviceType, protocol := parseFQDN(srvName)
	if instance == "" {
		return nil
	}

	referer := from

	svc := &Service{
		Name:     instance,
		Type:     serviceType,
		Protocol: protocol,
		Host:     srv.Target,
		Port:     int(srv.Port),
		FQDN:     srvName,
		Referer:  &referer,
	}

	stype := StringifyType(serviceType, protocol) + "." + TLD
	if countLabels(name) > countLabels(stype) {
		svc.Subtypes = []string{strings.TrimPrefix(firstLabel(name), "_")}
	}

	for _, rec := range records {
		if rec.Type != RRTypeTXT || rec.TTL == 0 {
			continue
		}
		if !dnsEqual(rec.Name, srvName) {
			continue
		}

		d, ok := rec.Data.(TXTData)
		if !ok {
			continue
		}

		svc.RawTXT = d.Raw

		if b.txtCodec != nil {
			if decoded, err := b.txtCodec.Decode(d.Raw); err == nil {
				svc.TXT = decoded
			}
		}

		break
	}

	for _, rec := range records {
		if rec.TTL == 0 || !dnsEqual(rec.Name, svc.Host) {
			continue
		}

		switch d := rec.Data.(type) {
		case AData:
			svc.Addresses.IPv4 = append(svc.Addresses.IPv4, d.IP)
		case AAAAData:
			svc.Addresses.IPv6 = append(svc.Addresses.IPv6, d.IP)
		}
	}

	return svc
}

func (b *Browser) mergeLocked(cand *Service) {
	key := normalizeName(cand.FQDN)

	idx, ok := b.serviceIndex[key]
	if !ok {
		b.services = append(b.services, cand)
		b.serviceIndex[key] = len(b.services) - 1
		b.emit(EventUp, cand)

		return
	}

	existing := b.services[idx]

	if len(cand.Subtypes) == 0 {
		return
	}

	newSubtype := cand.Subtypes[0]

	for _, sub := range existing.Subtypes {
		if sub == newSubtype {
			return
		}
	}

	existing.Subtypes = append(existing.Subtypes, newSubtype)
	b.emit(EventUp, existing)
}

// removeServiceLocked finds the service with the given fqdn, splices it out,
// and emits EventDown. A missing fqdn is a no-op.
func (b *Browser) removeServiceLocked(fqdn string) {
	key := normalizeName(fqdn)

	idx, ok := b.serviceIndex[key]
	if !ok {
		return
	}

	svc := b.services[idx]

	b.services = append(b.services[:idx], b.services[idx+1:]...)
	delete(b.serviceIndex, key)

	for i := idx; i < len(b.services); i++ {
		b.serviceIndex[normalizeName(b.services[i].FQDN)] = i
	}

	b.emit(EventDown, svc)
}

func (b *Browser) emit(kind EventKind, svc *Service) {
	if b.handler == nil {
		return
	}

	b.handler.HandleEvent(Event{Kind: kind, Service: svc})
}
