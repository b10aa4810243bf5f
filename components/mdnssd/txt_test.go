package mdnssd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTXTCodecEncodeEmpty(t *testing.T) {
	require.Nil(t, DefaultTXTCodec{}.Encode(nil))
	require.Nil(t, DefaultTXTCodec{}.Encode(map[string]string{}))
}

func TestDefaultTXTCodecRoundTrip(t *testing.T) {
	txt := map[string]string{"path": "/", "version": "1.0"}

	raw := DefaultTXTCodec{}.Encode(txt)
	decoded, err := DefaultTXTCodec{}.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, txt, decoded)
}

func TestDefaultTXTCodecEncodeIsSortedByKey(t *testing.T) {
	raw := DefaultTXTCodec{}.Encode(map[string]string{"zebra": "1", "alpha": "2"})

	require.Equal(t, byte(len("alpha=2")), raw[0])
}

func TestDefaultTXTCodecDecodeBareKey(t *testing.T) {
	seg := "novalue"

	raw := append([]byte{byte(len(seg))}, []byte(seg)...)

	decoded, err := DefaultTXTCodec{}.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "", decoded["novalue"])
}

func TestDefaultTXTCodecDecodeMalformedSegment(t *testing.T) {
	_, err := DefaultTXTCodec{}.Decode([]byte{10, 'a', 'b'})
	require.Error(t, err)
}

func TestDefaultTXTCodecEncodeTruncatesOversizedSegment(t *testing.T) {
	txt := map[string]string{"k": strings.Repeat("x", 300)}

	raw := DefaultTXTCodec{}.Encode(txt)
	require.Equal(t, byte(255), raw[0])
}
