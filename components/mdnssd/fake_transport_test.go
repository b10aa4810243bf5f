package mdnssd

import "sync"

// fakeTransport is an in-memory Transport for unit tests: Query/Respond
// append to Queries/Responses rather than touching the network, and
// InjectQuery/InjectResponse drive the registered handlers directly.
type fakeTransport struct {
	mu               sync.Mutex
	queryHandlers    []func(Packet)
	responseHandlers []func(Packet, Addr)

	Queries    []Question
	Responses  [][]Record
	closed     bool
	respondErr error
}

func (t *fakeTransport) OnQuery(handler func(Packet)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queryHandlers = append(t.queryHandlers, handler)
}

func (t *fakeTransport) OnResponse(handler func(Packet, Addr)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.responseHandlers = append(t.responseHandlers, handler)
}

func (t *fakeTransport) Query(name string, recordType RRType) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Queries = append(t.Queries, Question{Name: name, Type: recordType})

	return nil
}

func (t *fakeTransport) Respond(answers, additionals []Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.respondErr != nil {
		return t.respondErr
	}

	t.Responses = append(t.Responses, append(append([]Record{}, answers...), additionals...))

	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true

	return nil
}

func (t *fakeTransport) InjectQuery(pkt Packet) {
	t.mu.Lock()
	handlers := append([]func(Packet){}, t.queryHandlers...)
	t.mu.Unlock()

	for _, h := range handlers {
		h(pkt)
	}
}

func (t *fakeTransport) InjectResponse(pkt Packet, from Addr) {
	t.mu.Lock()
	handlers := append([]func(Packet, Addr){}, t.responseHandlers...)
	t.mu.Unlock()

	for _, h := range handlers {
		h(pkt, from)
	}
}
