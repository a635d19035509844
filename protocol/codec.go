// File: protocol/codec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Incremental frame codec. Decode parses a frame header all-or-nothing,
// then streams the payload out in as many steps as it takes for the
// bytes to arrive: each step unmasks what is available and reports it
// immediately. The caller therefore sees partial results even for
// control frames and must reassemble payloads itself.

package protocol

import (
	"encoding/binary"

	"github.com/momentics/pipews/api"
)

// Codec carries the cross-call state of one connection's wire codec.
// The zero value is a server-side codec ready for use. Not safe for
// concurrent use.
type Codec struct {
	// current inbound frame, valid while inFrame
	inFrame   bool
	fin       bool
	opcode    byte
	masked    bool
	mask      [4]byte
	maskPos   int
	remaining int64

	// fragmented-message tracking across frames
	msgOpcode byte // OpcodeText or OpcodeBinary, 0 when no message open
	utf8      utf8Stream

	// close-handshake and fragmented-send tracking
	closeSent bool
	sendMid   bool
}

// Decode advances the codec by at most one step against the unconsumed
// input, writing produced payload bytes into scratch. It returns
// api.ErrFrameIncomplete, consuming nothing, while the input lacks a
// complete frame header. Any other error is fatal to the connection.
//
// scratch must be at least as large as the input for the step to make
// maximal progress; the reassembler reserves exactly that.
func (c *Codec) Decode(input, scratch []byte) (api.DecodeResult, error) {
	var consumed int
	if !c.inFrame {
		n, err := c.readHeader(input)
		if err != nil {
			return api.DecodeResult{}, err
		}
		consumed = n
	}

	take := int(c.remaining)
	if avail := len(input) - consumed; take > avail {
		take = avail
	}
	if take > len(scratch) {
		take = len(scratch)
	}
	for i := 0; i < take; i++ {
		b := input[consumed+i]
		if c.masked {
			b ^= c.mask[c.maskPos&3]
		}
		c.maskPos++
		scratch[i] = b
	}
	c.remaining -= int64(take)
	frameDone := c.remaining == 0

	res := api.DecodeResult{Consumed: consumed + take, Produced: take}
	switch c.opcode {
	case OpcodeContinuation, OpcodeText, OpcodeBinary:
		if c.msgOpcode == OpcodeText {
			res.Type = api.RxText
			if !c.utf8.accept(scratch[:take]) {
				return api.DecodeResult{}, ErrInvalidUTF8
			}
		} else {
			res.Type = api.RxBinary
		}
		res.EndOfMessage = frameDone && c.fin
		if res.EndOfMessage {
			if c.msgOpcode == OpcodeText && !c.utf8.done() {
				return api.DecodeResult{}, ErrInvalidUTF8
			}
			c.msgOpcode = 0
			c.utf8.reset()
		}
	case OpcodePing:
		res.Type = api.RxPing
		res.EndOfMessage = frameDone
	case OpcodePong:
		res.Type = api.RxPong
		res.EndOfMessage = frameDone
	case OpcodeClose:
		if c.closeSent {
			res.Type = api.RxCloseCompleted
		} else {
			res.Type = api.RxCloseMustReply
		}
		res.EndOfMessage = frameDone
	}
	if frameDone {
		c.inFrame = false
	}
	return res, nil
}

// readHeader parses one complete frame header from input. State is only
// committed once the whole header, including any extended length and
// mask key, is present.
func (c *Codec) readHeader(input []byte) (int, error) {
	if len(input) < 2 {
		return 0, api.ErrFrameIncomplete
	}
	b0, b1 := input[0], input[1]
	if b0&0x70 != 0 {
		return 0, ErrReservedBits
	}
	fin := b0&0x80 != 0
	opcode := b0 & 0x0F
	if !isValidOpcode(opcode) {
		return 0, ErrInvalidOpcode
	}
	masked := b1&0x80 != 0
	length := int64(b1 & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(input) < offset+2 {
			return 0, api.ErrFrameIncomplete
		}
		length = int64(binary.BigEndian.Uint16(input[offset:]))
		offset += 2
	case 127:
		if len(input) < offset+8 {
			return 0, api.ErrFrameIncomplete
		}
		v := binary.BigEndian.Uint64(input[offset:])
		if v&(1<<63) != 0 {
			return 0, ErrFrameTooLong
		}
		length = int64(v)
		offset += 8
	}
	if length > MaxFramePayload {
		return 0, ErrFrameTooLong
	}

	if isControlOpcode(opcode) {
		if !fin {
			return 0, ErrControlFragmented
		}
		if length > MaxControlPayload {
			return 0, ErrControlTooLong
		}
	} else if opcode == OpcodeContinuation {
		if c.msgOpcode == 0 {
			return 0, ErrUnexpectedContinuation
		}
	} else {
		if c.msgOpcode != 0 {
			return 0, ErrFragmentOverlap
		}
	}

	var mask [4]byte
	if masked {
		if len(input) < offset+4 {
			return 0, api.ErrFrameIncomplete
		}
		copy(mask[:], input[offset:offset+4])
		offset += 4
	}

	c.inFrame = true
	c.fin = fin
	c.opcode = opcode
	c.masked = masked
	c.mask = mask
	c.maskPos = 0
	c.remaining = length
	if opcode == OpcodeText || opcode == OpcodeBinary {
		c.msgOpcode = opcode
	}
	return offset, nil
}

// Encode writes exactly one unmasked server frame into scratch and
// returns the number of bytes produced. For fragmented data messages
// fin is true only on the final fragment; non-initial fragments get the
// continuation opcode automatically. Encoding TxClose marks the close
// handshake as initiated by us, so the peer's answer later decodes as
// RxCloseCompleted.
func (c *Codec) Encode(t api.TxMessageType, fin bool, payload, scratch []byte) (int, error) {
	var opcode byte
	switch t {
	case api.TxText:
		opcode = OpcodeText
	case api.TxBinary:
		opcode = OpcodeBinary
	case api.TxPing:
		opcode = OpcodePing
	case api.TxPong:
		opcode = OpcodePong
	case api.TxClose, api.TxCloseReply:
		opcode = OpcodeClose
	default:
		return 0, ErrInvalidOpcode
	}

	if isControlOpcode(opcode) {
		if !fin {
			return 0, ErrControlFragmented
		}
		if len(payload) > MaxControlPayload {
			return 0, ErrControlTooLong
		}
	} else {
		if c.sendMid {
			opcode = OpcodeContinuation
		}
		c.sendMid = !fin
	}

	var hdr [10]byte
	if fin {
		hdr[0] = 0x80
	}
	hdr[0] |= opcode
	n := 2
	switch {
	case len(payload) <= 125:
		hdr[1] = byte(len(payload))
	case len(payload) <= 0xFFFF:
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(len(payload)))
		n = 4
	default:
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:], uint64(len(payload)))
		n = 10
	}
	if len(scratch) < n+len(payload) {
		return 0, ErrEncodeSpace
	}
	copy(scratch, hdr[:n])
	copy(scratch[n:], payload)

	if t == api.TxClose || t == api.TxCloseReply {
		c.closeSent = true
	}
	return n + len(payload), nil
}
