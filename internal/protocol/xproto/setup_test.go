package xproto

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarmo/xds/internal/protocol/wire"
)

func TestSetupRequest_Serialize(t *testing.T) {
	req := SetupRequest{
		OrderMarker:   wire.OrderMarkerLittle,
		ProtocolMajor: 11,
		ProtocolMinor: 0,
		AuthName:      "MIT-MAGIC-COOKIE-1",
		AuthData:      []byte{0xde, 0xad, 0xbe, 0xef},
	}

	actual, err := req.Serialize()
	require.NoError(t, err)

	expected := []byte{
		0x6c, 0x00, // marker, padding
		0x0b, 0x00, // major 11
		0x00, 0x00, // minor 0
		0x12, 0x00, // auth name length 18
		0x04, 0x00, // auth data length 4
		0x00, 0x00, // padding
		'M', 'I', 'T', '-', 'M', 'A', 'G', 'I', 'C', '-', 'C', 'O', 'O', 'K', 'I', 'E', '-', '1',
		0x00, 0x00, // name padding
		0xde, 0xad, 0xbe, 0xef,
	}

	require.Equal(t, expected, actual)
}

func TestReadSetupRequest_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		marker uint8
		order  binary.ByteOrder
	}{
		{"BigEndian", wire.OrderMarkerBig, binary.BigEndian},
		{"LittleEndian", wire.OrderMarkerLittle, binary.LittleEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SetupRequest{
				OrderMarker:   tt.marker,
				ProtocolMajor: 11,
				ProtocolMinor: 0,
				AuthName:      "MIT-MAGIC-COOKIE-1",
				AuthData:      []byte{1, 2, 3, 4, 5},
			}

			raw, err := req.Serialize()
			require.NoError(t, err)

			decoded, order, err := ReadSetupRequest(bytes.NewReader(raw))
			require.NoError(t, err)
			require.Equal(t, tt.order, order)
			require.Equal(t, &req, decoded)
		})
	}
}

func TestReadSetupRequest_UnknownOrderMarker(t *testing.T) {
	raw := []byte{
		0x58, 0x00, // marker 'X'
		0x0b, 0x00,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00,
	}

	_, _, err := ReadSetupRequest(bytes.NewReader(raw))
	require.ErrorIs(t, err, wire.ErrUnknownOrderMarker)
}

func TestSetupSuccess_Serialize(t *testing.T) {
	rep := SetupSuccess{
		ProtocolMajor:  11,
		ProtocolMinor:  0,
		ResourceIDBase: 0x00200000,
		ResourceIDMask: 0x001fffff,
		RootWindow:     0x00000001,
		Vendor:         "xds",
	}

	actual := rep.Serialize(binary.BigEndian)

	expected := []byte{
		0x01, 0x00, // success, padding
		0x00, 0x0b, // major 11
		0x00, 0x00, // minor 0
		0x00, 0x05, // reply length 5 units
		0x00, 0x20, 0x00, 0x00, // id base
		0x00, 0x1f, 0xff, 0xff, // id mask
		0x00, 0x03, // vendor length
		0x00, 0x00, // padding
		0x00, 0x00, 0x00, 0x01, // root window
		'x', 'd', 's', 0x00, // vendor, padded
	}

	require.Equal(t, expected, actual)
}

func TestSetupFailure_Serialize(t *testing.T) {
	rep := SetupFailure{
		ProtocolMajor: 11,
		ProtocolMinor: 0,
		Reason:        "nope",
	}

	actual := rep.Serialize(binary.LittleEndian)

	expected := []byte{
		0x00, 0x04, // failure, reason length 4
		0x0b, 0x00, // major
		0x00, 0x00, // minor
		0x01, 0x00, // reply length 1 unit
		'n', 'o', 'p', 'e',
	}

	require.Equal(t, expected, actual)
}

func TestReadSetupReply(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		want := SetupSuccess{
			ProtocolMajor:  11,
			ProtocolMinor:  0,
			ResourceIDBase: 0x00400000,
			ResourceIDMask: 0x001fffff,
			RootWindow:     1,
			Vendor:         "xds-virtual",
		}

		reply, err := ReadSetupReply(bytes.NewReader(want.Serialize(binary.LittleEndian)), binary.LittleEndian)
		require.NoError(t, err)
		require.Equal(t, SetupStatusSuccess, reply.Status)
		require.Equal(t, &want, reply.Success)
		require.Nil(t, reply.Failure)
	})

	t.Run("Failure", func(t *testing.T) {
		want := SetupFailure{
			ProtocolMajor: 11,
			ProtocolMinor: 0,
			Reason:        "unsupported protocol version",
		}

		reply, err := ReadSetupReply(bytes.NewReader(want.Serialize(binary.BigEndian)), binary.BigEndian)
		require.NoError(t, err)
		require.Equal(t, SetupStatusFailure, reply.Status)
		require.Equal(t, &want, reply.Failure)
		require.Nil(t, reply.Success)
	})
}

func TestSetupFailure_ReasonTruncated(t *testing.T) {
	rep := SetupFailure{Reason: string(bytes.Repeat([]byte{'x'}, 300))}

	raw := rep.Serialize(binary.BigEndian)
	require.Equal(t, uint8(255), raw[1])

	reply, err := ReadSetupReply(bytes.NewReader(raw), binary.BigEndian)
	require.NoError(t, err)
	require.Len(t, reply.Failure.Reason, 255)
}
