package xproto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvents_Serialize(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		code     uint8
		flagByte uint8
	}{
		{"DestroyNotify", &DestroyNotifyEvent{Event: 0x00200001, Window: 0x00200002}, 17, 0},
		{"UnmapNotify", &UnmapNotifyEvent{Event: 0x00200001, Window: 0x00200002, FromConfigure: true}, 18, 1},
		{"MapNotify", &MapNotifyEvent{Event: 0x00200001, Window: 0x00200002, OverrideRedirect: false}, 19, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, tt.event.Code())

			raw := tt.event.Serialize(binary.LittleEndian, 0xBEEF)

			require.Len(t, raw, 32)
			require.Equal(t, tt.code, raw[0])
			require.Equal(t, FrameEvent, Kind(raw[0]))
			require.Equal(t, uint16(0xBEEF), FrameSequence(raw, binary.LittleEndian))
			require.Equal(t, uint32(0x00200001), binary.LittleEndian.Uint32(raw[4:8]))
			require.Equal(t, uint32(0x00200002), binary.LittleEndian.Uint32(raw[8:12]))
			require.Equal(t, tt.flagByte, raw[12])
		})
	}
}
