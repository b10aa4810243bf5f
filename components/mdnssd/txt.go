package mdnssd

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// TXTCodec converts between a TXT RDATA key/value mapping and its
// length-prefixed wire encoding (RFC 6763 §6). It is the "TXT codec"
// collaborator this package treats as external.
type TXTCodec interface {
	// Encode packs txt into the length-prefixed "key=value" segment format.
	// A nil or empty map encodes to nil.
	Encode(txt map[string]string) []byte

	// Decode unpacks raw into a key/value mapping.
	Decode(raw []byte) (map[string]string, error)
}

// DefaultTXTCodec is the default TXTCodec.
//
// Remarks:
//   - Encode sorts keys for deterministic output; the wire format itself
//     carries no ordering requirement.
type DefaultTXTCodec struct{}

// maxTXTSegmentLen is the largest length a single TXT segment may declare,
// since the length prefix is a single octet.
const maxTXTSegmentLen = 255

// Encode implements TXTCodec.
func (DefaultTXTCodec) Encode(txt map[string]string) []byte {
	if len(txt) == 0 {
		return nil
	}

	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var buf bytes.Buffer

	for _, k := range keys {
		seg := k + "=" + txt[k]
		if len(seg) > maxTXTSegmentLen {
			seg = seg[:maxTXTSegmentLen]
		}

		buf.WriteByte(byte(len(seg)))
		buf.WriteString(seg)
	}

	return buf.Bytes()
}

// Decode implements TXTCodec.
func (DefaultTXTCodec) Decode(raw []byte) (map[string]string, error) {
	out := make(map[string]string)

	for len(raw) > 0 {
		n := int(raw[0])
		raw = raw[1:]

		if n > len(raw) {
			return nil, fmt.Errorf("mdnssd: malformed TXT segment: declared length %d exceeds remaining %d bytes", n, len(raw))
		}

		seg := string(raw[:n])
		raw = raw[n:]

		if seg == "" {
			continue
		}

		if idx := strings.IndexByte(seg, '='); idx >= 0 {
			out[seg[:idx]] = seg[idx+1:]
		} else {
			out[seg] = ""
		}
	}

	return out, nil
}
