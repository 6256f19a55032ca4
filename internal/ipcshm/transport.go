//go:build windows

package ipcshm

import "fmt"

// regionPrefix namespaces this module's shared-memory sections so two
// unrelated processes never collide with an e-grid section by name.
const regionPrefix = "EGrid_"

// slotSize is large enough to hold any fixed wire struct in internal/ipc
// (the largest is WindowResponse, bounded by ipc.MaxPayload) with margin.
const slotSize = 512

// Tiers matching spec §4.6's "large/medium/small" buffer column.
const (
	tierLarge  = 2048
	tierMedium = 512
	tierSmall  = 64
)

// Transport opens (creating if necessary) the named shared-memory ring for
// one IPC service.
type Transport struct {
	Name string
	ring *Ring
	reg  *Region
}

// Open attaches to (or creates) the shared-memory ring for service name,
// sized per its buffer tier.
func Open(name string, tierSlots uint32) (*Transport, error) {
	size := headerSize + uint64(tierSlots)*uint64(slotSize)
	region, err := Create(regionPrefix+name, uint32(size))
	if err != nil {
		return nil, fmt.Errorf("ipcshm: open %q: %w", name, err)
	}
	ring, err := Attach(region, tierSlots, slotSize)
	if err != nil {
		region.Close()
		return nil, err
	}
	return &Transport{Name: name, ring: ring, reg: region}, nil
}

// Publish writes an already wire-encoded message to the ring.
func (t *Transport) Publish(msg []byte) {
	t.ring.Write(msg)
}

// Cursor tracks one subscriber's read position within a Transport's ring.
type Cursor struct {
	t   *Transport
	seq uint64
}

// NewCursor starts a cursor at the transport's current tail, matching a
// fresh subscriber's "no history yet" starting point; pass fromZero=true instead
// to replay everything still in the ring (late-joiner history replay).
func (t *Transport) NewCursor(fromZero bool) *Cursor {
	start := uint64(0)
	if !fromZero {
		start = t.ring.Sequence()
	}
	return &Cursor{t: t, seq: start}
}

// Poll returns any new messages since the cursor's last read.
func (c *Cursor) Poll() [][]byte {
	msgs, next := c.t.ring.ReadFrom(c.seq)
	c.seq = next
	return msgs
}

// Close releases the transport's underlying region.
func (t *Transport) Close() error {
	return t.reg.Close()
}

// TierSlots maps a buffer-tier name to its slot count, for callers
// constructing a Transport per spec §4.6's service table.
func TierSlots(tier string) uint32 {
	switch tier {
	case "large":
		return tierLarge
	case "medium":
		return tierMedium
	default:
		return tierSmall
	}
}
