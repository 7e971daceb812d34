//go:build linux

package sandbox

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// sharedPayload is what the watchdog hands back to the parent: the raw
// wait status, the reaped child's rusage, and whether the timer process
// was the one that got reaped first.
type sharedPayload struct {
	TimerFirst bool
	WaitStatus int32
	UtimeUsec  int64
	StimeUsec  int64
	MaxrssKB   int64
}

// sharedCellSize is one sentinel byte (write-once guard for the single
// write) followed by a fixed-width binary encoding of sharedPayload.
const sharedCellSize = 1 + 1 + 4 + 8 + 8 + 8

// SharedRusage is a fixed-size memfd-backed region used to hand a single
// payload from the watchdog process back to the parent after the watchdog
// has exited. The parent creates the memfd (it is the one that keeps a
// handle open across the watchdog's exec and exit); the watchdog is the
// sole writer, the parent the sole reader, and each side touches the cell
// exactly once, so no locking beyond the single write-once guard byte is
// needed.
type SharedRusage struct {
	file *os.File
	mem  []byte
}

// NewSharedRusage creates the memfd-backed cell. Called by the parent
// before spawning the watchdog; the returned file is passed to the
// watchdog via cmd.ExtraFiles.
func NewSharedRusage() (*SharedRusage, error) {
	fd, err := unix.MemfdCreate("sandbox-rusage", 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	file := os.NewFile(uintptr(fd), "sandbox-rusage")
	if err := file.Truncate(sharedCellSize); err != nil {
		file.Close()
		return nil, fmt.Errorf("truncate shared cell: %w", err)
	}
	mem, err := unix.Mmap(fd, 0, sharedCellSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap shared cell: %w", err)
	}
	return &SharedRusage{file: file, mem: mem}, nil
}

// OpenSharedRusage maps an inherited shared-cell fd (used by the watchdog,
// which receives the fd as its first extra file from the parent).
func OpenSharedRusage(fd int) (*SharedRusage, error) {
	mem, err := unix.Mmap(fd, 0, sharedCellSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap inherited shared cell: %w", err)
	}
	return &SharedRusage{mem: mem}, nil
}

// File returns the underlying *os.File, for wiring into cmd.ExtraFiles.
func (s *SharedRusage) File() *os.File { return s.file }

// TrySet writes the payload once, guarded by a leading sentinel byte. The
// watchdog is single-goroutine at the point it calls this (it only ever
// does so from its own main loop, never concurrently), so the guard byte
// only needs to be checked-then-set, not atomically compare-and-swapped.
// Returns false if the cell had already been written.
func (s *SharedRusage) TrySet(p sharedPayload) bool {
	if s.mem[0] != 0 {
		return false
	}
	s.mem[0] = 1
	buf := s.mem[1:]
	if p.TimerFirst {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	binary.LittleEndian.PutUint32(buf[1:5], uint32(p.WaitStatus))
	binary.LittleEndian.PutUint64(buf[5:13], uint64(p.UtimeUsec))
	binary.LittleEndian.PutUint64(buf[13:21], uint64(p.StimeUsec))
	binary.LittleEndian.PutUint64(buf[21:29], uint64(p.MaxrssKB))
	return true
}

// Get reads the payload. Returns false if the cell was never written.
func (s *SharedRusage) Get() (sharedPayload, bool) {
	if s.mem[0] == 0 {
		return sharedPayload{}, false
	}
	buf := s.mem[1:]
	return sharedPayload{
		TimerFirst: buf[0] == 1,
		WaitStatus: int32(binary.LittleEndian.Uint32(buf[1:5])),
		UtimeUsec:  int64(binary.LittleEndian.Uint64(buf[5:13])),
		StimeUsec:  int64(binary.LittleEndian.Uint64(buf[13:21])),
		MaxrssKB:   int64(binary.LittleEndian.Uint64(buf[21:29])),
	}, true
}

// Close unmaps the cell and, for the parent's own copy, closes the fd.
func (s *SharedRusage) Close() error {
	err := unix.Munmap(s.mem)
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
