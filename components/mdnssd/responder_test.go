package mdnssd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestResponderAnswersExactTypeQuery(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	r.Register(Record{
		Name: "_http._tcp.local", Type: RRTypePTR,
		Data: PTRData{Ptr: "Foo._http._tcp.local"},
	})

	r.HandleQuery(Packet{Questions: []Question{{Name: "_http._tcp.local", Type: RRTypePTR}}})

	require.Len(t, trans.Responses, 1)
	require.Len(t, trans.Responses[0], 1)
}

func TestResponderAnyQueryReturnsDeterministicOrder(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	name := "Foo._http._tcp.local"

	r.Register(
		Record{Name: name, Type: RRTypeTXT, Data: TXTData{}},
		Record{Name: name, Type: RRTypeSRV, Data: SRVData{Target: "h.local"}},
	)

	r.HandleQuery(Packet{Questions: []Question{{Name: name, Type: RRTypeANY}}})

	require.Len(t, trans.Responses, 1)
	require.Equal(t, RRTypeSRV, trans.Responses[0][0].Type)
	require.Equal(t, RRTypeTXT, trans.Responses[0][1].Type)
}

func TestResponderNoAnswerSendsNothing(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	r.HandleQuery(Packet{Questions: []Question{{Name: "_ftp._tcp.local", Type: RRTypePTR}}})

	require.Empty(t, trans.Responses)
}

func TestResponderIncludesSRVTXTAndAddressAdditionals(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	fqdn := "Foo._http._tcp.local"

	r.Register(
		Record{Name: "_http._tcp.local", Type: RRTypePTR, Data: PTRData{Ptr: fqdn}},
		Record{Name: fqdn, Type: RRTypeSRV, Data: SRVData{Target: "h.local"}},
		Record{Name: fqdn, Type: RRTypeTXT, Data: TXTData{}},
		Record{Name: "h.local", Type: RRTypeA, Data: AData{}},
	)

	r.HandleQuery(Packet{Questions: []Question{{Name: "_http._tcp.local", Type: RRTypePTR}}})

	require.Len(t, trans.Responses, 1)
	require.Len(t, trans.Responses[0], 4)
}

func TestResponderUnregisterRemovesByNameRegardlessOfData(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	name := "_http._tcp.local"

	r.Register(Record{Name: name, Type: RRTypePTR, Data: PTRData{Ptr: "Foo._http._tcp.local"}})
	r.Unregister(Record{Name: name, Type: RRTypePTR, Data: PTRData{Ptr: "different"}})

	r.HandleQuery(Packet{Questions: []Question{{Name: name, Type: RRTypePTR}}})
	require.Empty(t, trans.Responses)
}

func TestResponderRegisterDeduplicates(t *testing.T) {
	trans := &fakeTransport{}
	r := NewResponder(trans)

	rec := Record{Name: "_http._tcp.local", Type: RRTypePTR, Data: PTRData{Ptr: "Foo._http._tcp.local"}}
	r.Register(rec, rec)

	require.Len(t, r.table[RRTypePTR], 1)
}

func TestResponderLogsInsteadOfPanickingOnTransportError(t *testing.T) {
	trans := &fakeTransport{respondErr: errBoom}
	r := NewResponder(trans)

	r.Register(Record{Name: "_http._tcp.local", Type: RRTypePTR, Data: PTRData{Ptr: "Foo._http._tcp.local"}})

	require.NotPanics(t, func() {
		r.HandleQuery(Packet{Questions: []Question{{Name: "_http._tcp.local", Type: RRTypePTR}}})
	})
}
