package vfs

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dupecat/dupecat/internal/hashfn"
)

// Memory is a deterministic, in-memory filesystem used throughout the test
// suite. Multiple paths can name the same fileNode to simulate hard
// links, and every fileNode counts its own fingerprint/digest reads so
// tests can assert that a file is never read twice.
type Memory struct {
	dirs  map[string]*memDir
	files map[string]*memFile
	nextID uint64
}

type memDir struct {
	dev      uint64
	children []string // child names, in creation order
}

type memFile struct {
	kind   EntryType // Regular, Symlink, or Other
	node   *fileNode // shared across hard-linked paths; nil for symlinks
	target string    // symlink target; empty for regular files
}

// fileNode is the shared, inode-like object behind one or more hard-linked
// paths.
type fileNode struct {
	id               uint64
	dev              uint64
	content          []byte
	modTime          time.Time
	fingerprintReads int
	digestReads      int
}

// NewMemory creates an empty in-memory filesystem with a root directory.
func NewMemory() *Memory {
	m := &Memory{
		dirs:  map[string]*memDir{},
		files: map[string]*memFile{},
	}
	m.dirs["/"] = &memDir{dev: 1}
	return m
}

var _ FS = (*Memory)(nil)

func clean(p string) string {
	p = path.Clean("/" + p)
	return p
}

func parentOf(p string) string {
	d := path.Dir(p)
	return d
}

// MkdirAll creates path and any missing ancestors, all on device dev.
func (m *Memory) MkdirAll(p string, dev uint64) {
	p = clean(p)
	if p == "/" {
		m.dirs["/"].dev = dev
		return
	}
	parent := parentOf(p)
	if _, ok := m.dirs[parent]; !ok {
		m.MkdirAll(parent, dev)
	}
	if _, ok := m.dirs[p]; !ok {
		m.dirs[p] = &memDir{dev: dev}
		m.addChild(parent, path.Base(p))
	} else {
		m.dirs[p].dev = dev
	}
}

func (m *Memory) addChild(dir, name string) {
	d := m.dirs[dir]
	for _, c := range d.children {
		if c == name {
			return
		}
	}
	d.children = append(d.children, name)
}

func (m *Memory) removeChild(dir, name string) {
	d, ok := m.dirs[dir]
	if !ok {
		return
	}
	for i, c := range d.children {
		if c == name {
			d.children = append(d.children[:i], d.children[i+1:]...)
			return
		}
	}
}

// WriteFile creates a brand-new regular file (a fresh inode) at path with
// the given content and modification time, on device dev. The parent
// directory must already exist.
func (m *Memory) WriteFile(p string, content []byte, modTime time.Time, dev uint64) {
	p = clean(p)
	m.nextID++
	node := &fileNode{id: m.nextID, dev: dev, content: content, modTime: modTime}
	m.files[p] = &memFile{kind: Regular, node: node}
	m.addChild(parentOf(p), path.Base(p))
}

// LinkPaths makes newPath a new name for the same underlying object as
// existingPath, simulating a pre-existing hard link (as opposed to FS.Link,
// which is the production hard-link operation under test).
func (m *Memory) LinkPaths(newPath, existingPath string) {
	newPath = clean(newPath)
	existingPath = clean(existingPath)
	src := m.files[existingPath]
	m.files[newPath] = &memFile{kind: Regular, node: src.node}
	m.addChild(parentOf(newPath), path.Base(newPath))
}

// Symlink creates a symlink at path pointing at target.
func (m *Memory) Symlink(p, target string) {
	p = clean(p)
	m.files[p] = &memFile{kind: Symlink, target: target}
	m.addChild(parentOf(p), path.Base(p))
}

// FingerprintReads reports how many times path's underlying object has had
// its fingerprint read.
func (m *Memory) FingerprintReads(p string) int {
	f := m.files[clean(p)]
	if f == nil || f.node == nil {
		return 0
	}
	return f.node.fingerprintReads
}

// DigestReads reports how many times path's underlying object has had its
// digest computed.
func (m *Memory) DigestReads(p string) int {
	f := m.files[clean(p)]
	if f == nil || f.node == nil {
		return 0
	}
	return f.node.digestReads
}

// Exists reports whether path names a file or directory.
func (m *Memory) Exists(p string) bool {
	p = clean(p)
	if _, ok := m.files[p]; ok {
		return true
	}
	_, ok := m.dirs[p]
	return ok
}

// SameInode reports whether two paths share an underlying fileNode.
func (m *Memory) SameInode(a, b string) bool {
	fa, oka := m.files[clean(a)]
	fb, okb := m.files[clean(b)]
	if !oka || !okb || fa.node == nil || fb.node == nil {
		return false
	}
	return fa.node == fb.node
}

func (m *Memory) List(p string) ([]DirEntry, error) {
	p = clean(p)
	d, ok := m.dirs[p]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", p, errNotExist)
	}
	names := append([]string(nil), d.children...)
	sort.Strings(names)
	out := make([]DirEntry, 0, len(names))
	for _, name := range names {
		child := path.Join(p, name)
		out = append(out, DirEntry{Path: child, Type: m.entryType(child)})
	}
	return out, nil
}

func (m *Memory) entryType(p string) EntryType {
	if _, ok := m.dirs[p]; ok {
		return Directory
	}
	if f, ok := m.files[p]; ok {
		return f.kind
	}
	return Other
}

func (m *Memory) Lstat(p string) (Info, error) {
	p = clean(p)
	if d, ok := m.dirs[p]; ok {
		return Info{Type: Directory, Dev: d.dev}, nil
	}
	f, ok := m.files[p]
	if !ok {
		return Info{}, fmt.Errorf("lstat %s: %w", p, errNotExist)
	}
	if f.kind == Symlink {
		return Info{Type: Symlink}, nil
	}
	return m.infoOf(f), nil
}

func (m *Memory) infoOf(f *memFile) Info {
	return Info{
		Size:    int64(len(f.node.content)),
		ModTime: f.node.modTime,
		Type:    Regular,
		Ino:     f.node.id,
		Dev:     f.node.dev,
	}
}

// resolve follows symlinks (bounded, for loop safety) to the final
// non-symlink path.
func (m *Memory) resolve(p string) (string, error) {
	p = clean(p)
	for depth := 0; depth < 40; depth++ {
		f, ok := m.files[p]
		if !ok || f.kind != Symlink {
			return p, nil
		}
		target := f.target
		if !strings.HasPrefix(target, "/") {
			target = path.Join(parentOf(p), target)
		}
		p = clean(target)
	}
	return "", fmt.Errorf("resolve %s: %w", p, errLoop)
}

func (m *Memory) Stat(p string) (Info, error) {
	resolved, err := m.resolve(p)
	if err != nil {
		return Info{}, err
	}
	if d, ok := m.dirs[resolved]; ok {
		return Info{Type: Directory, Dev: d.dev}, nil
	}
	f, ok := m.files[resolved]
	if !ok {
		return Info{}, fmt.Errorf("stat %s: %w", p, errNotExist)
	}
	return m.infoOf(f), nil
}

func (m *Memory) Readlink(p string) (string, error) {
	p = clean(p)
	f, ok := m.files[p]
	if !ok || f.kind != Symlink {
		return "", fmt.Errorf("readlink %s: %w", p, errNotExist)
	}
	target := f.target
	if !strings.HasPrefix(target, "/") {
		target = path.Join(parentOf(p), target)
	}
	return clean(target), nil
}

func (m *Memory) Remove(p string) error {
	p = clean(p)
	if _, ok := m.files[p]; !ok {
		return fmt.Errorf("remove %s: %w", p, errNotExist)
	}
	delete(m.files, p)
	m.removeChild(parentOf(p), path.Base(p))
	return nil
}

// Rename atomically replaces newPath with oldPath's object, simulating
// os.Rename's same-filesystem move-and-replace semantics.
func (m *Memory) Rename(oldPath, newPath string) error {
	oldPath = clean(oldPath)
	newPath = clean(newPath)
	f, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("rename %s -> %s: %w", oldPath, newPath, errNotExist)
	}
	if _, existed := m.files[newPath]; existed {
		m.removeChild(parentOf(newPath), path.Base(newPath))
	}
	delete(m.files, oldPath)
	m.removeChild(parentOf(oldPath), path.Base(oldPath))
	m.files[newPath] = f
	m.addChild(parentOf(newPath), path.Base(newPath))
	return nil
}

func (m *Memory) Link(src, dst string) error {
	src = clean(src)
	dst = clean(dst)
	dstFile, ok := m.files[dst]
	if !ok || dstFile.node == nil {
		return fmt.Errorf("link %s -> %s: %w", src, dst, errNotExist)
	}
	parentDev, err := m.deviceOfDir(parentOf(src))
	if err != nil {
		return err
	}
	if parentDev != dstFile.node.dev {
		return ErrCrossDevice
	}
	m.files[src] = &memFile{kind: Regular, node: dstFile.node}
	m.addChild(parentOf(src), path.Base(src))
	return nil
}

func (m *Memory) deviceOfDir(p string) (uint64, error) {
	d, ok := m.dirs[p]
	if !ok {
		return 0, fmt.Errorf("stat %s: %w", p, errNotExist)
	}
	return d.dev, nil
}

func (m *Memory) Open(p string) (Handle, error) {
	resolved, err := m.resolve(p)
	if err != nil {
		return nil, err
	}
	f, ok := m.files[resolved]
	if !ok || f.kind != Regular {
		return nil, fmt.Errorf("open %s: %w", p, errNotExist)
	}
	return &memHandle{path: p, node: f.node}, nil
}

type memHandle struct {
	path string
	node *fileNode
}

func (h *memHandle) Path() string { return h.path }

func (h *memHandle) Identity() (Identity, error) {
	return Identity{Dev: h.node.dev, Ino: h.node.id}, nil
}

func (h *memHandle) Metadata() (Info, error) {
	return Info{
		Size:    int64(len(h.node.content)),
		ModTime: h.node.modTime,
		Type:    Regular,
		Ino:     h.node.id,
		Dev:     h.node.dev,
	}, nil
}

func (h *memHandle) Fingerprint(k int) ([]byte, error) {
	h.node.fingerprintReads++
	buf := make([]byte, k)
	copy(buf, h.node.content)
	return buf, nil
}

func (h *memHandle) Digest(fn hashfn.Func) (hashfn.Digest, error) {
	h.node.digestReads++
	hasher := fn.New()
	hasher.Write(h.node.content)
	return fn.Wrap(hasher.Sum(nil)), nil
}

func (h *memHandle) Close() error { return nil }
