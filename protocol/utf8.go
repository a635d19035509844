// File: protocol/utf8.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Streaming UTF-8 validation for text messages. Fragment boundaries may
// split a multi-byte sequence, so validation state survives across
// decode steps and is only finalized at end of message.

package protocol

// utf8Stream validates a byte stream as UTF-8 incrementally. It rejects
// overlong encodings, surrogates, and code points above U+10FFFF by
// restricting the first continuation byte per leading byte.
type utf8Stream struct {
	need   int // continuation bytes still expected
	lo, hi byte
}

// accept validates the next chunk. Returns false on the first invalid
// byte; the stream is then unusable until reset.
func (u *utf8Stream) accept(p []byte) bool {
	for _, b := range p {
		if u.need > 0 {
			if b < u.lo || b > u.hi {
				return false
			}
			u.need--
			u.lo, u.hi = 0x80, 0xBF
			continue
		}
		switch {
		case b < 0x80:
		case b >= 0xC2 && b <= 0xDF:
			u.need, u.lo, u.hi = 1, 0x80, 0xBF
		case b == 0xE0:
			u.need, u.lo, u.hi = 2, 0xA0, 0xBF
		case b >= 0xE1 && b <= 0xEC || b == 0xEE || b == 0xEF:
			u.need, u.lo, u.hi = 2, 0x80, 0xBF
		case b == 0xED:
			u.need, u.lo, u.hi = 2, 0x80, 0x9F
		case b == 0xF0:
			u.need, u.lo, u.hi = 3, 0x90, 0xBF
		case b >= 0xF1 && b <= 0xF3:
			u.need, u.lo, u.hi = 3, 0x80, 0xBF
		case b == 0xF4:
			u.need, u.lo, u.hi = 3, 0x80, 0x8F
		default:
			return false
		}
	}
	return true
}

// done reports whether the stream ends on a code point boundary.
func (u *utf8Stream) done() bool {
	return u.need == 0
}

func (u *utf8Stream) reset() {
	u.need = 0
}
