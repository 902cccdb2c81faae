package server

// sequencer tracks the 16-bit request sequence for one connection. The
// first request is number 1; the counter wraps modulo 65536. Replies and
// errors carry the triggering request's number, events carry the number
// of the most recently processed request.
type sequencer struct {
	last uint16
}

// next assigns the sequence number for a freshly decoded request.
func (s *sequencer) next() uint16 {
	s.last++
	return s.last
}

// current returns the sequence number of the last processed request.
func (s *sequencer) current() uint16 {
	return s.last
}
