package wayland

import (
	"golang.org/x/sys/unix"

	"github.com/t4t5/hypruler/internal/apperr"
)

// ShmFile is an anonymous shared-memory file mapped into this process. It
// backs wl_shm pools; Close unmaps and closes it and is safe to call twice.
type ShmFile struct {
	fd   int
	data []byte
}

// NewShmFile creates a sealed memfd of size bytes and maps it read-write.
func NewShmFile(name string, size int) (*ShmFile, error) {
	if size <= 0 {
		return nil, apperr.New(apperr.ShmFailed, "invalid shm size %d", size)
	}
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, apperr.Wrap(apperr.ShmFailed, err, "memfd_create")
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, apperr.Wrap(apperr.ShmFailed, err, "truncate shm to %d bytes", size)
	}
	// The compositor maps the same file; it must never shrink under it.
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_SEAL); err != nil {
		unix.Close(fd)
		return nil, apperr.Wrap(apperr.ShmFailed, err, "seal shm")
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, apperr.Wrap(apperr.ShmFailed, err, "mmap %d bytes", size)
	}
	return &ShmFile{fd: fd, data: data}, nil
}

// FD is the descriptor to pass to wl_shm.create_pool.
func (f *ShmFile) FD() int { return f.fd }

// Size is the mapped length in bytes.
func (f *ShmFile) Size() int { return len(f.data) }

// Bytes is the mapping. It is invalid after Close.
func (f *ShmFile) Bytes() []byte { return f.data }

func (f *ShmFile) Close() error {
	var first error
	if f.data != nil {
		if err := unix.Munmap(f.data); err != nil {
			first = apperr.Wrap(apperr.ShmFailed, err, "munmap")
		}
		f.data = nil
	}
	if f.fd >= 0 {
		if err := unix.Close(f.fd); err != nil && first == nil {
			first = apperr.Wrap(apperr.ShmFailed, err, "close shm")
		}
		f.fd = -1
	}
	return first
}
