//go:build windows

// Package ipcshm is the cross-process transport for the IPC fabric (spec
// component C6): named shared-memory regions backing each of the 8
// services in internal/ipc, built on CreateFileMapping/MapViewOfFile via
// golang.org/x/sys/windows — the same dependency the teacher pulls in
// transitively for terminal handling, exercised here for its kernel32
// surface instead. Everything above the raw region (message framing,
// ring-buffer indexing, fan-out bookkeeping) mirrors internal/ipc.Service
// so the server and client can swap between the in-process Service (tests,
// same-process demos) and this shared-memory Region without changing call
// sites.
package ipcshm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const pageReadWrite = 0x04

// Region is one named shared-memory section: a file mapping backed by the
// Windows paging file (no backing disk file), sized once at creation.
type Region struct {
	name    string
	handle  windows.Handle
	addr    uintptr
	size    uint32
	creator bool
}

// Create allocates a new named shared-memory region of size bytes, or
// opens it if another process already created it (the daemon/CLI race
// spec §5's startup-delay language calls out: either side may win).
func Create(name string, size uint32) (*Region, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("ipcshm: invalid region name %q: %w", name, err)
	}

	h, err := windows.CreateFileMapping(
		windows.InvalidHandle, nil, pageReadWrite, 0, size, namePtr,
	)
	creator := true
	if err == windows.ERROR_ALREADY_EXISTS {
		creator = false
	} else if err != nil {
		return nil, fmt.Errorf("ipcshm: CreateFileMapping %q: %w", name, err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_ALL_ACCESS, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("ipcshm: MapViewOfFile %q: %w", name, err)
	}

	return &Region{name: name, handle: h, addr: addr, size: size, creator: creator}, nil
}

// Bytes exposes the mapped region as a byte slice. Callers must not retain
// slices derived from it past Close.
func (r *Region) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(r.addr)), r.size)
}

// Creator reports whether this process created the region (vs. attaching
// to one another process already created) — the creator is responsible
// for zero-initializing the header.
func (r *Region) Creator() bool { return r.creator }

// Close unmaps and releases the region's OS handles.
func (r *Region) Close() error {
	if r.addr != 0 {
		windows.UnmapViewOfFile(r.addr)
		r.addr = 0
	}
	if r.handle != 0 {
		windows.CloseHandle(r.handle)
		r.handle = 0
	}
	return nil
}
