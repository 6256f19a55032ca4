//go:build windows

package ipcshm

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// headerSize is the fixed prelude at the start of every region: an 8-byte
// monotonically increasing write sequence, accessed with atomic
// loads/stores so readers in another process never observe a torn write,
// followed by a 4-byte slot count and 4-byte slot size that the creating
// process writes once, with plain little-endian stores, in Attach.
const headerSize = 16

// Ring is a fixed-slot circular buffer laid out directly in a shared
// memory Region. Each slot holds one fixed-size encoded message
// (internal/ipc.Encode output, zero-padded); the writer never blocks —
// advancing the sequence and overwriting the oldest slot is how backlog
// subscribers lose messages, which is exactly the at-most-once,
// detectable-via-sequence-gap semantics spec §4.6 specifies.
type Ring struct {
	region   *Region
	slots    uint32
	slotSize uint32
}

// Attach lays a Ring over region, initializing the header iff this process
// created the region.
func Attach(region *Region, slots, slotSize uint32) (*Ring, error) {
	need := headerSize + uint64(slots)*uint64(slotSize)
	if need > uint64(len(region.Bytes())) {
		return nil, fmt.Errorf("ipcshm: region %q too small for %d slots of %d bytes", region.name, slots, slotSize)
	}
	r := &Ring{region: region, slots: slots, slotSize: slotSize}
	if region.Creator() {
		atomic.StoreUint64(r.seqPtr(), 0)
		binary.LittleEndian.PutUint32(region.Bytes()[8:12], slots)
		binary.LittleEndian.PutUint32(region.Bytes()[12:16], slotSize)
	}
	return r, nil
}

func (r *Ring) seqPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&r.region.Bytes()[0]))
}

// Sequence returns the next write sequence number (one past the most
// recently written slot).
func (r *Ring) Sequence() uint64 {
	return atomic.LoadUint64(r.seqPtr())
}

// Write appends msg (already wire-encoded) to the next slot and advances
// the sequence. msg longer than slotSize is truncated; shorter is
// zero-padded implicitly by the caller re-using a fixed-size struct.
func (r *Ring) Write(msg []byte) {
	seq := atomic.AddUint64(r.seqPtr(), 1) - 1
	slot := seq % uint64(r.slots)
	start := headerSize + slot*uint64(r.slotSize)
	n := uint64(len(msg))
	if n > uint64(r.slotSize) {
		n = uint64(r.slotSize)
	}
	copy(r.region.Bytes()[start:start+n], msg[:n])
}

// ReadFrom returns every message written at or after seq that is still
// within the ring's retention window, along with the sequence to resume
// from next time. If seq has fallen out of the window, the caller has
// missed messages (a sequence gap, observable the same way a heartbeat
// gap is).
func (r *Ring) ReadFrom(seq uint64) ([][]byte, uint64) {
	latest := r.Sequence()
	if latest == 0 {
		return nil, 0
	}
	oldestAvailable := uint64(0)
	if latest > uint64(r.slots) {
		oldestAvailable = latest - uint64(r.slots)
	}
	if seq < oldestAvailable {
		seq = oldestAvailable
	}

	var out [][]byte
	for s := seq; s < latest; s++ {
		slot := s % uint64(r.slots)
		start := headerSize + slot*uint64(r.slotSize)
		buf := make([]byte, r.slotSize)
		copy(buf, r.region.Bytes()[start:start+uint64(r.slotSize)])
		out = append(out, buf)
	}
	return out, latest
}
