package mdnssd

import (
	"fmt"
	"sync"

	"github.com/open-control-systems/mdnssd/components/core"
	"github.com/open-control-systems/mdnssd/components/status"
)

// Registry is the thin lifecycle layer over the Responder: it constructs
// Service descriptors, installs their records, announces them, and later
// sends goodbyes and tears the records back down.
//
// Remarks:
//   - The source this package is modeled on does not implement periodic
//     re-announcement, probing, or conflict detection; this package doesn't
//     either.
type Registry struct {
	transport Transport
	responder *Responder
	hostInfo  HostInfo
	txtCodec  TXTCodec

	mu       sync.Mutex
	services map[string]*Service
	records  map[string][]Record
}

// NewRegistry constructs a Registry. responder must be the same Responder
// wired to transport's OnQuery, so that a query arriving concurrently with a
// publish can never observe a partial record set.
func NewRegistry(transport Transport, responder *Responder, hostInfo HostInfo, txtCodec TXTCodec) *Registry {
	return &Registry{
		transport: transport,
		responder: responder,
		hostInfo:  hostInfo,
		txtCodec:  txtCodec,
		services:  make(map[string]*Service),
		records:   make(map[string][]Record),
	}
}

// Publish constructs a Service from opts, materializes its records, installs
// them into the Responder, and multicasts them as an unsolicited announcement.
func (g *Registry) Publish(opts ServiceOptions) (*Service, error) {
	svc, err := NewService(opts, g.hostInfo)
	if err != nil {
		return nil, err
	}

	records := RecordsFor(svc, g.txtCodec)

	g.responder.Register(records...)

	if err := g.transport.Respond(records, nil); err != nil {
		return nil, fmt.Errorf("mdnssd-registry: failed to announce service: fqdn=%s: %w: %v",
			svc.FQDN, status.StatusTransportSend, err)
	}

	svc.Published = true

	key := normalizeName(svc.FQDN)

	g.mu.Lock()
	g.services[key] = svc
	g.records[key] = records
	g.mu.Unlock()

	return svc, nil
}

// UnpublishAll sends a goodbye for every currently published service, then
// unregisters every one of its records. done, if non-nil, fires after the
// transport has been asked to send every goodbye.
func (g *Registry) UnpublishAll(done func()) {
	g.mu.Lock()

	services := make([]*Service, 0, len(g.services))
	records := make([][]Record, 0, len(g.services))

	for key, svc := range g.services {
		services = append(services, svc)
		records = append(records, g.records[key])
	}

	g.services = make(map[string]*Service)
	g.records = make(map[string][]Record)

	g.mu.Unlock()

	for i, svc := range services {
		recs := records[i]

		goodbye := goodbyeRecords(recs)
		if len(goodbye) > 0 {
			if err := g.transport.Respond(goodbye, nil); err != nil {
				core.LogErr.Printf("mdnssd-registry: failed to send goodbye: fqdn=%s err=%v\n",
					svc.FQDN, err)
			}
		}

		g.responder.Unregister(recs...)
	}

	if done != nil {
		done()
	}
}

// Destroy unpublishes every service and releases the transport.
func (g *Registry) Destroy() error {
	g.UnpublishAll(nil)

	return g.transport.Close()
}

// published returns a snapshot of the currently published services, used by
// tests to assert table contents.
func (g *Registry) published() []*Service {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Service, 0, len(g.services))
	for _, svc := range g.services {
		out = append(out, svc)
	}

	return out
}
