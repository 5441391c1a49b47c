// Copyright xdrgen authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package xdrruntime is the reference implementation of the scatter-gather
// cursors and decode buffer that every generated codec relies on (sections
// 4.7 and 4.8 of the specification). Its logic is embedded verbatim as Go
// source text into every file xdrgen generates (see
// pkg/xdrgen/emitter/templates/runtime.tmpl) so that generated output never
// imports this module; this package exists so that logic can also be
// exercised directly by this repository's own tests, rather than only ever
// being tested indirectly through a generated program -- the same split the
// original C generator draws between its embedded xdr_builtin.c and the
// rest of the compiler.
package xdrruntime

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned by a cursor operation that would read past the
// end of the last iovec on write, or past the end of available input on
// read.
var ErrShortBuffer = errors.New("xdr: short buffer")

// ErrBoundExceeded is returned when a decoded vector, opaque or string
// length exceeds its declared non-zero bound.
var ErrBoundExceeded = errors.New("xdr: length exceeds declared bound")

// Iovec is a single scatter-gather byte range.
type Iovec struct {
	Data []byte
}

// IovecRef is a zerocopy opaque field: a slice into the input buffer
// itself rather than a copy of its bytes.
type IovecRef struct {
	Data []byte
}

// ReadCursor tracks a read position across a sequence of input Iovecs.
type ReadCursor struct {
	iov    []Iovec
	index  int
	offset int
}

// NewReadCursor constructs a cursor over iov, starting at its first byte.
func NewReadCursor(iov []Iovec) *ReadCursor {
	return &ReadCursor{iov: iov}
}

// Extract copies len(dst) bytes from the cursor into dst, advancing the
// cursor and chaining across iovecs as needed. On failure dst may have
// been partially written.
func (c *ReadCursor) Extract(dst []byte) error {
	need := len(dst)
	done := 0

	for done < need {
		if c.index >= len(c.iov) {
			return ErrShortBuffer
		}

		cur := c.iov[c.index].Data
		avail := len(cur) - c.offset

		if avail <= 0 {
			c.index++
			c.offset = 0

			continue
		}

		chunk := need - done
		if chunk > avail {
			chunk = avail
		}

		copy(dst[done:done+chunk], cur[c.offset:c.offset+chunk])
		done += chunk
		c.offset += chunk
	}

	return nil
}

// Skip advances the cursor by n bytes without copying them anywhere.
func (c *ReadCursor) Skip(n int) error {
	for n > 0 {
		if c.index >= len(c.iov) {
			return ErrShortBuffer
		}

		avail := len(c.iov[c.index].Data) - c.offset

		if avail <= 0 {
			c.index++
			c.offset = 0

			continue
		}

		chunk := n
		if chunk > avail {
			chunk = avail
		}

		n -= chunk
		c.offset += chunk
	}

	return nil
}

// Peek returns the n bytes at the cursor's current position as a direct
// slice reference without copying, advancing the cursor past them. It
// fails if those bytes are not contiguous within a single iovec.
func (c *ReadCursor) Peek(n int) ([]byte, error) {
	if c.index >= len(c.iov) {
		return nil, ErrShortBuffer
	}

	cur := c.iov[c.index].Data
	if len(cur)-c.offset < n {
		return nil, ErrShortBuffer
	}

	out := cur[c.offset : c.offset+n]
	c.offset += n

	return out, nil
}

// WriteCursor tracks a write position across a reserve pool of Iovecs
// supplied by the caller, yielding the subset actually used via Finish.
type WriteCursor struct {
	pool   []Iovec
	index  int
	offset int
	used   int
}

// NewWriteCursor constructs a cursor that writes into pool.
func NewWriteCursor(pool []Iovec) *WriteCursor {
	return &WriteCursor{pool: pool}
}

// Append copies src into the cursor's reserve pool, advancing the cursor
// and chaining across iovecs as needed.
func (c *WriteCursor) Append(src []byte) error {
	need := len(src)
	done := 0

	for done < need {
		if c.index >= len(c.pool) {
			return ErrShortBuffer
		}

		cur := c.pool[c.index].Data
		avail := len(cur) - c.offset

		if avail <= 0 {
			c.index++
			c.offset = 0

			if c.index > c.used {
				c.used = c.index
			}

			continue
		}

		chunk := need - done
		if chunk > avail {
			chunk = avail
		}

		copy(cur[c.offset:c.offset+chunk], src[done:done+chunk])
		done += chunk
		c.offset += chunk
	}

	if c.offset > 0 && c.index+1 > c.used {
		c.used = c.index + 1
	}

	return nil
}

// Finish returns the subset of the reserve pool actually written to, with
// the last used iovec shortened in place to the bytes written into it.
func (c *WriteCursor) Finish() []Iovec {
	if c.used == 0 {
		return nil
	}

	if last := c.used - 1; last == c.index {
		c.pool[last].Data = c.pool[last].Data[:c.offset]
	}

	return c.pool[:c.used]
}

// DecodeBuffer is a monotonically-growing bump arena backing every
// variable-length value produced by an Unmarshal call, released as one
// unit by simply letting it go out of scope.
type DecodeBuffer struct {
	blocks [][]byte
	used   int
}

const decodeBufferBlockSize = 4096

// NewDecodeBuffer constructs a DecodeBuffer with an initial block of at
// least 4 KiB.
func NewDecodeBuffer() *DecodeBuffer {
	return &DecodeBuffer{blocks: [][]byte{make([]byte, decodeBufferBlockSize)}}
}

// Reserve returns a zeroed slice of length n, backed by storage that
// remains valid for the DecodeBuffer's lifetime. Growth chains additional
// blocks rather than relocating previously handed-out slices.
func (d *DecodeBuffer) Reserve(n int) []byte {
	last := d.blocks[len(d.blocks)-1]

	if len(last)-d.used < n {
		size := decodeBufferBlockSize
		if n > size {
			size = n
		}

		d.blocks = append(d.blocks, make([]byte, size))
		d.used = 0
		last = d.blocks[len(d.blocks)-1]
	}

	out := last[d.used : d.used+n]
	d.used += n

	return out
}

// Release is a no-op hook kept so generated code reads identically
// regardless of whether the target runtime relies on garbage collection or
// manual memory management.
func (d *DecodeBuffer) Release() {}

// Blocks reports how many backing blocks have been allocated so far;
// exposed only for tests.
func (d *DecodeBuffer) Blocks() int { return len(d.blocks) }

func padLen(n int) int {
	return (4 - (n & 3)) & 3
}

var zeroPad [4]byte

// MarshalUint32 encodes v as big-endian 32-bit words, byte-swapping on a
// little-endian host, returning the number of bytes written.
func MarshalUint32(v []uint32, cursor *WriteCursor) (int, error) {
	var tmp [4]byte

	for _, x := range v {
		binary.BigEndian.PutUint32(tmp[:], x)

		if err := cursor.Append(tmp[:]); err != nil {
			return 0, err
		}
	}

	return len(v) * 4, nil
}

// UnmarshalUint32 decodes len(v) big-endian 32-bit words into v.
func UnmarshalUint32(v []uint32, cursor *ReadCursor) (int, error) {
	var tmp [4]byte

	for i := range v {
		if err := cursor.Extract(tmp[:]); err != nil {
			return 0, err
		}

		v[i] = binary.BigEndian.Uint32(tmp[:])
	}

	return len(v) * 4, nil
}

// MarshalInt32 encodes v as big-endian 32-bit words.
func MarshalInt32(v []int32, cursor *WriteCursor) (int, error) {
	u := make([]uint32, len(v))
	for i, x := range v {
		u[i] = uint32(x)
	}

	return MarshalUint32(u, cursor)
}

// UnmarshalInt32 decodes len(v) big-endian 32-bit words into v.
func UnmarshalInt32(v []int32, cursor *ReadCursor) (int, error) {
	u := make([]uint32, len(v))

	n, err := UnmarshalUint32(u, cursor)
	if err != nil {
		return 0, err
	}

	for i, x := range u {
		v[i] = int32(x)
	}

	return n, nil
}

// MarshalUint64 encodes v as big-endian 64-bit words.
func MarshalUint64(v []uint64, cursor *WriteCursor) (int, error) {
	var tmp [8]byte

	for _, x := range v {
		binary.BigEndian.PutUint64(tmp[:], x)

		if err := cursor.Append(tmp[:]); err != nil {
			return 0, err
		}
	}

	return len(v) * 8, nil
}

// UnmarshalUint64 decodes len(v) big-endian 64-bit words into v.
func UnmarshalUint64(v []uint64, cursor *ReadCursor) (int, error) {
	var tmp [8]byte

	for i := range v {
		if err := cursor.Extract(tmp[:]); err != nil {
			return 0, err
		}

		v[i] = binary.BigEndian.Uint64(tmp[:])
	}

	return len(v) * 8, nil
}

// MarshalInt64 encodes v as big-endian 64-bit words.
func MarshalInt64(v []int64, cursor *WriteCursor) (int, error) {
	u := make([]uint64, len(v))
	for i, x := range v {
		u[i] = uint64(x)
	}

	return MarshalUint64(u, cursor)
}

// UnmarshalInt64 decodes len(v) big-endian 64-bit words into v.
func UnmarshalInt64(v []int64, cursor *ReadCursor) (int, error) {
	u := make([]uint64, len(v))

	n, err := UnmarshalUint64(u, cursor)
	if err != nil {
		return 0, err
	}

	for i, x := range u {
		v[i] = int64(x)
	}

	return n, nil
}

// MarshalOpaque encodes a variable-length byte buffer as a 32-bit length
// followed by the bytes, zero-padded to a 4-byte boundary.
func MarshalOpaque(v []byte, cursor *WriteCursor) (int, error) {
	n, err := MarshalUint32([]uint32{uint32(len(v))}, cursor)
	if err != nil {
		return 0, err
	}

	if err := cursor.Append(v); err != nil {
		return 0, err
	}

	n += len(v)

	if pad := padLen(len(v)); pad > 0 {
		if err := cursor.Append(zeroPad[:pad]); err != nil {
			return 0, err
		}

		n += pad
	}

	return n, nil
}

// UnmarshalOpaque decodes a variable-length byte buffer, rejecting a
// decoded length exceeding bound when bound is non-zero.
func UnmarshalOpaque(cursor *ReadCursor, dbuf *DecodeBuffer, bound uint32) ([]byte, int, error) {
	var length [1]uint32

	n, err := UnmarshalUint32(length[:], cursor)
	if err != nil {
		return nil, 0, err
	}

	l := length[0]
	if bound != 0 && l > bound {
		return nil, 0, ErrBoundExceeded
	}

	out := dbuf.Reserve(int(l))

	if err := cursor.Extract(out); err != nil {
		return nil, 0, err
	}

	n += int(l)

	if pad := padLen(int(l)); pad > 0 {
		if err := cursor.Skip(pad); err != nil {
			return nil, 0, err
		}

		n += pad
	}

	return out, n, nil
}

// MarshalZerocopyOpaque encodes an IovecRef's referenced bytes exactly as
// MarshalOpaque would.
func MarshalZerocopyOpaque(v IovecRef, cursor *WriteCursor) (int, error) {
	return MarshalOpaque(v.Data, cursor)
}

// UnmarshalZerocopyOpaque decodes the length-prefixed payload as a direct
// reference into the input iovec, never copying it into the decode
// buffer.
func UnmarshalZerocopyOpaque(cursor *ReadCursor, bound uint32) (IovecRef, int, error) {
	var length [1]uint32

	n, err := UnmarshalUint32(length[:], cursor)
	if err != nil {
		return IovecRef{}, 0, err
	}

	l := length[0]
	if bound != 0 && l > bound {
		return IovecRef{}, 0, ErrBoundExceeded
	}

	data, err := cursor.Peek(int(l))
	if err != nil {
		return IovecRef{}, 0, err
	}

	n += int(l)

	if pad := padLen(int(l)); pad > 0 {
		if err := cursor.Skip(pad); err != nil {
			return IovecRef{}, 0, err
		}

		n += pad
	}

	return IovecRef{Data: data}, n, nil
}

// MarshalString encodes a Go string the same way as an opaque buffer.
func MarshalString(s string, cursor *WriteCursor) (int, error) {
	return MarshalOpaque([]byte(s), cursor)
}

// UnmarshalString decodes a length-prefixed byte payload into a Go string,
// rejecting a decoded length exceeding bound when bound is non-zero.
func UnmarshalString(cursor *ReadCursor, dbuf *DecodeBuffer, bound uint32) (string, int, error) {
	data, n, err := UnmarshalOpaque(cursor, dbuf, bound)
	if err != nil {
		return "", 0, err
	}

	return string(data), n, nil
}
