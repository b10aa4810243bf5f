package status

import "errors"

var (
	// StatusMissingField indicates that a required field is absent from a Service
	// descriptor (name, type or port).
	StatusMissingField = errors.New("missing required field")

	// StatusInvalidState indicates that an operation can't be performed due to invalid state.
	StatusInvalidState = errors.New("invalid state")

	// StatusNotSupported indicates that an operation isn't supported.
	StatusNotSupported = errors.New("not implemented")

	// StatusNoData indicates that the requested entry isn't present.
	StatusNoData = errors.New("no data")

	// StatusTransportSend indicates that the underlying transport failed to send a
	// query or response.
	StatusTransportSend = errors.New("transport send failed")

	// StatusTimeout indicates that an operation didn't complete in time.
	StatusTimeout = errors.New("operation timed out")
)
