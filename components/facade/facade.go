// Package facade wires the transport, responder, registry and browser
// together into the single entry point callers are expected to use.
package facade

import (
	"context"
	"fmt"
	"time"

	"github.com/open-control-systems/mdnssd/components/core"
	"github.com/open-control-systems/mdnssd/components/mdnssd"
	"github.com/open-control-systems/mdnssd/components/status"
	"github.com/open-control-systems/mdnssd/components/system/syssched"
)

// Options configures a Handle.
type Options struct {
	// HostInfo provides hostname/address defaults for published services.
	// Defaults to mdnssd.SystemHostInfo.
	HostInfo mdnssd.HostInfo

	// TXTCodec encodes/decodes TXT records. Defaults to mdnssd.DefaultTXTCodec.
	TXTCodec mdnssd.TXTCodec

	// BrowseUpdateInterval controls how often a started browse re-issues its
	// PTR queries. Defaults to 10s; RFC 6762 leaves re-query cadence to the
	// implementation.
	BrowseUpdateInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.HostInfo == nil {
		o.HostInfo = mdnssd.SystemHostInfo{}
	}

	if o.TXTCodec == nil {
		o.TXTCodec = mdnssd.DefaultTXTCodec{}
	}

	if o.BrowseUpdateInterval <= 0 {
		o.BrowseUpdateInterval = 10 * time.Second
	}

	return o
}

// Handle is the engine: one Transport, a Responder and Registry for local
// services, and the browses started against it.
type Handle struct {
	opts      Options
	transport mdnssd.Transport
	responder *mdnssd.Responder
	registry  *mdnssd.Registry
	closer    core.FanoutCloser
}

// Create builds a Handle over transport, wiring the Responder to its
// OnQuery stream so a concurrent query never observes a partial publish.
func Create(transport mdnssd.Transport, opts Options) *Handle {
	opts = opts.withDefaults()

	responder := mdnssd.NewResponder(transport)
	transport.OnQuery(responder.HandleQuery)

	registry := mdnssd.NewRegistry(transport, responder, opts.HostInfo, opts.TXTCodec)

	h := &Handle{
		opts:      opts,
		transport: transport,
		responder: responder,
		registry:  registry,
	}

	h.closer.Add("registry", core.FuncCloser(registry.Destroy))

	return h
}

// Publish advertises a local service. See mdnssd.ServiceOptions.
func (h *Handle) Publish(opts mdnssd.ServiceOptions) (*mdnssd.Service, error) {
	return h.registry.Publish(opts)
}

// UnpublishAll withdraws every service this Handle has published, blocking
// until goodbyes have been sent.
func (h *Handle) UnpublishAll() {
	done := make(chan struct{})

	h.registry.UnpublishAll(func() { close(done) })

	<-done
}

// browseSession ties a Browser to the background task that periodically
// re-issues its queries.
type browseSession struct {
	browser *mdnssd.Browser
	runner  *syssched.AsyncTaskRunner
}

func (s *browseSession) Run() error {
	return s.browser.Update()
}

// Find starts a Browser for opts, invoking handler for every up/down event,
// and returns a stop function the caller must call to release it. The
// Browser's initial query is issued synchronously, before Find returns.
func (h *Handle) Find(opts mdnssd.BrowserOptions, handler mdnssd.EventHandler) (stop func(), err error) {
	browser := mdnssd.NewBrowser(h.transport, h.opts.TXTCodec, opts, handler)

	if err := browser.Start(); err != nil {
		return nil, fmt.Errorf("facade: failed to start browse: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	session := &browseSession{browser: browser}
	session.runner = syssched.NewAsyncTaskRunner(ctx, session, errLoggingHandler{}, h.opts.BrowseUpdateInterval)
	session.runner.Start()

	stop = func() {
		cancel()
		_ = session.runner.Close()
		_ = browser.Stop()
	}

	return stop, nil
}

// FindOne runs a one-shot browse for opts and returns the first service
// observed, or status.StatusTimeout once ctx is done with nothing found.
func (h *Handle) FindOne(ctx context.Context, opts mdnssd.BrowserOptions) (*mdnssd.Service, error) {
	found := make(chan *mdnssd.Service, 1)

	handler := mdnssd.FuncEventHandler(func(event mdnssd.Event) {
		if event.Kind != mdnssd.EventUp {
			return
		}

		select {
		case found <- event.Service:
		default:
		}
	})

	stop, err := h.Find(opts, handler)
	if err != nil {
		return nil, err
	}

	defer stop()

	select {
	case svc := <-found:
		return svc, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("facade: FindOne deadline reached: %w", status.StatusTimeout)
	}
}

// Destroy unpublishes every local service and releases the transport.
func (h *Handle) Destroy() error {
	return h.closer.Close()
}

type errLoggingHandler struct{}

func (errLoggingHandler) HandleError(err error) {
	core.LogErr.Printf("mdnssd-facade: browse update failed: err=%v\n", err)
}
