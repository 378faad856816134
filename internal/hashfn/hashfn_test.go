package hashfn

import "testing"

// === Section 1: digests are stable and content-sensitive ===

func TestFastDigestDeterministic(t *testing.T) {
	a := Fast.New()
	a.Write([]byte("hello"))
	da := Fast.Wrap(a.Sum(nil))

	b := Fast.New()
	b.Write([]byte("hello"))
	db := Fast.Wrap(b.Sum(nil))

	if da != db {
		t.Fatalf("expected equal digests for equal content, got %x vs %x", da.Bytes(), db.Bytes())
	}
}

func TestFastDigestDiffersOnContent(t *testing.T) {
	a := Fast.New()
	a.Write([]byte("hello"))
	da := Fast.Wrap(a.Sum(nil))

	b := Fast.New()
	b.Write([]byte("world"))
	db := Fast.Wrap(b.Sum(nil))

	if da == db {
		t.Fatal("expected different digests for different content")
	}
}

func TestParanoidDigestWidth(t *testing.T) {
	h := Paranoid.New()
	h.Write([]byte("hello"))
	d := Paranoid.Wrap(h.Sum(nil))
	if len(d.Bytes()) != 32 {
		t.Fatalf("expected 32-byte digest, got %d", len(d.Bytes()))
	}
}

func TestFastDigestWidth(t *testing.T) {
	h := Fast.New()
	h.Write([]byte("hello"))
	d := Fast.Wrap(h.Sum(nil))
	if len(d.Bytes()) != 16 {
		t.Fatalf("expected 16-byte digest, got %d", len(d.Bytes()))
	}
}

// === Section 2: comparable, usable as map keys ===

func TestDigestUsableAsMapKey(t *testing.T) {
	h := Fast.New()
	h.Write([]byte("hello"))
	d := Fast.Wrap(h.Sum(nil)).(Digest16)

	seen := map[Digest16]bool{d: true}
	if !seen[d] {
		t.Fatal("expected digest to be usable as a map key")
	}
}
