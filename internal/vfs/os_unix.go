//go:build unix

package vfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/dupecat/dupecat/internal/hashfn"
)

// OS is the real-filesystem implementation of FS, backed by os/syscall.
type OS struct{}

var _ FS = OS{}

func (OS) List(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		var t EntryType
		switch {
		case e.Type()&os.ModeSymlink != 0:
			t = Symlink
		case e.IsDir():
			t = Directory
		case e.Type().IsRegular():
			t = Regular
		default:
			t = Other
		}
		out = append(out, DirEntry{Path: filepath.Join(path, e.Name()), Type: t})
	}
	return out, nil
}

func (OS) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFromOS(fi), nil
}

func (OS) Lstat(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFromOS(fi), nil
}

// Readlink returns the target of a symlink, resolved against the link's
// containing directory with securejoin.SecureJoin so a relative target
// cannot be misinterpreted as escaping that directory lexically.
func (OS) Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(target) {
		return target, nil
	}
	dir := filepath.Dir(path)
	joined, err := securejoin.SecureJoin(dir, target)
	if err != nil {
		return "", fmt.Errorf("resolve symlink %s -> %s: %w", path, target, err)
	}
	return joined, nil
}

func (OS) Remove(path string) error {
	return os.Remove(path)
}

func (OS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Link creates src as a new name for the object named by dst, refusing the
// operation across device boundaries.
func (o OS) Link(src, dst string) error {
	dstDev, err := deviceOf(dst)
	if err != nil {
		return err
	}
	srcDirDev, err := deviceOf(filepath.Dir(src))
	if err != nil {
		return err
	}
	if srcDirDev != dstDev {
		return ErrCrossDevice
	}
	return os.Link(dst, src)
}

func deviceOf(path string) (uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("unsupported platform: no syscall.Stat_t for %s", path)
	}
	return uint64(st.Dev), nil //nolint:unconvert // platform-dependent type
}

func (OS) Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &osHandle{path: path, f: f}, nil
}

func infoFromOS(fi os.FileInfo) Info {
	t := Regular
	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		t = Symlink
	case fi.IsDir():
		t = Directory
	case !fi.Mode().IsRegular():
		t = Other
	}
	info := Info{
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Type:    t,
	}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		info.Ino = st.Ino
		info.Dev = uint64(st.Dev) //nolint:unconvert // platform-dependent type
	}
	return info
}

// osHandle is a Handle backed by a single open os.File, opened on demand
// and closed after exactly one fingerprint or digest read — no
// long-lived file handles.
type osHandle struct {
	path string
	f    *os.File
}

func (h *osHandle) Path() string { return h.path }

func (h *osHandle) Identity() (Identity, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return Identity{}, err
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return Identity{}, fmt.Errorf("unsupported platform: no syscall.Stat_t for %s", h.path)
	}
	return Identity{Dev: uint64(st.Dev), Ino: st.Ino}, nil //nolint:unconvert
}

func (h *osHandle) Metadata() (Info, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return Info{}, err
	}
	return infoFromOS(fi), nil
}

func (h *osHandle) Fingerprint(k int) ([]byte, error) {
	buf := make([]byte, k)
	if _, err := h.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	n, err := io.ReadFull(h.f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	// Zero-pad on the right if the file is shorter than k.
	for i := n; i < k; i++ {
		buf[i] = 0
	}
	return buf, nil
}

func (h *osHandle) Digest(fn hashfn.Func) (hashfn.Digest, error) {
	if _, err := h.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return streamDigest(h.f, fn)
}

func (h *osHandle) Close() error {
	return h.f.Close()
}
