package xproto

import "encoding/binary"

// Event codes. Event frames reuse the code as the leading byte, so values
// below 2 are reserved for errors and replies.
const (
	EventDestroyNotify uint8 = 17
	EventUnmapNotify   uint8 = 18
	EventMapNotify     uint8 = 19
)

// Event is a one-way notification queued behind the reply or error of the
// request that caused it. The sequence stamped at serialization time is the
// connection's last processed request.
type Event interface {
	Code() uint8
	Serialize(order binary.ByteOrder, sequence uint16) []byte
}

// newEvent allocates a 32-byte frame with code and sequence filled in.
func newEvent(order binary.ByteOrder, code uint8, sequence uint16) []byte {
	buf := make([]byte, replyUnit)
	buf[0] = code
	order.PutUint16(buf[2:4], sequence)

	return buf
}

// DestroyNotifyEvent reports that a window was destroyed. Event is the
// window the notification is about from the receiver's point of view;
// Window is the window that was actually destroyed.
type DestroyNotifyEvent struct {
	Event  uint32
	Window uint32
}

func (*DestroyNotifyEvent) Code() uint8 { return EventDestroyNotify }

func (ev *DestroyNotifyEvent) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newEvent(order, EventDestroyNotify, sequence)
	order.PutUint32(buf[4:8], ev.Event)
	order.PutUint32(buf[8:12], ev.Window)

	return buf
}

// UnmapNotifyEvent reports that a window left the mapped state.
type UnmapNotifyEvent struct {
	Event         uint32
	Window        uint32
	FromConfigure bool
}

func (*UnmapNotifyEvent) Code() uint8 { return EventUnmapNotify }

func (ev *UnmapNotifyEvent) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newEvent(order, EventUnmapNotify, sequence)
	order.PutUint32(buf[4:8], ev.Event)
	order.PutUint32(buf[8:12], ev.Window)
	if ev.FromConfigure {
		buf[12] = 1
	}

	return buf
}

// MapNotifyEvent reports that a window became mapped.
type MapNotifyEvent struct {
	Event            uint32
	Window           uint32
	OverrideRedirect bool
}

func (*MapNotifyEvent) Code() uint8 { return EventMapNotify }

func (ev *MapNotifyEvent) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newEvent(order, EventMapNotify, sequence)
	order.PutUint32(buf[4:8], ev.Event)
	order.PutUint32(buf[8:12], ev.Window)
	if ev.OverrideRedirect {
		buf[12] = 1
	}

	return buf
}
