package server

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"

	"github.com/rcarmo/xds/internal/protocol/xproto"
)

const outBufferSize = 16 * 1024

// emitter owns a connection's outbound half. All frames for one request
// leave in a single ordered batch: the reply or error first, then the
// consequence events, in one flush. Writes are serialized by a mutex so
// a future out-of-band sender cannot interleave inside a batch.
type emitter struct {
	mu    sync.Mutex
	w     *bufio.Writer
	order binary.ByteOrder
}

func newEmitter(w io.Writer, order binary.ByteOrder) *emitter {
	return &emitter{
		w:     bufio.NewWriterSize(w, outBufferSize),
		order: order,
	}
}

// sendRaw writes a pre-encoded block, used for the setup replies that
// precede sequence numbering.
func (e *emitter) sendRaw(b []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(b); err != nil {
		return err
	}

	return e.w.Flush()
}

// sendBatch writes one request's complete response. reply and xerr are
// mutually exclusive; either may be nil for requests that answer with
// nothing. Events follow in production order, stamped with the same
// sequence number since theirs is defined as the last processed request.
func (e *emitter) sendBatch(seq uint16, reply xproto.Reply, xerr *xproto.Error, events []xproto.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if xerr != nil {
		if _, err := e.w.Write(xerr.Serialize(e.order, seq)); err != nil {
			return err
		}
	} else if reply != nil {
		if _, err := e.w.Write(reply.Serialize(e.order, seq)); err != nil {
			return err
		}
	}

	for _, ev := range events {
		if _, err := e.w.Write(ev.Serialize(e.order, seq)); err != nil {
			return err
		}
	}

	return e.w.Flush()
}
