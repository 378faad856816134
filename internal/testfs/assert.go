package testfs

import (
	"testing"

	"github.com/dupecat/dupecat/internal/vfs"
)

// -----------------------------------------------------------------------------
// Assertion Functions - Shared between the TempDir and E2E Harness
// -----------------------------------------------------------------------------

// AssertVolume verifies the actual filesystem state matches expected.
//
// Checks:
//   - Files exist at all specified paths
//   - Files in the same File entry share the same inode (hardlinks)
//   - Files in different File entries have different inodes
//   - Symlinks point to the expected targets
func AssertVolume(t *testing.T, expected Volume, actual ReapVolume) {
	t.Helper()
	AssertFiles(t, expected.Files, actual.Files)
	AssertSymlinks(t, expected.Symlinks, actual.Symlinks)
}

// AssertFiles verifies expected files exist and hardlinks are correct.
//
// For each File entry:
//   - All paths must exist
//   - All paths must share the same identity (hardlinks)
//   - Different File entries must have different identities
func AssertFiles(t *testing.T, expected []File, actual []ReapFile) {
	t.Helper()

	pathToIdentity := buildPathToIdentityMap(actual)
	entryIdentities := verifyFileEntries(t, expected, pathToIdentity)
	verifyUniqueIdentities(t, expected, entryIdentities)
}

// AssertSymlinks verifies expected symlinks exist with correct targets.
func AssertSymlinks(t *testing.T, expected []Symlink, actual []ReapSymlink) {
	t.Helper()

	// Build path-to-target map from actual state
	pathToTarget := make(map[string]string)
	for _, rs := range actual {
		pathToTarget[rs.Path] = rs.Target
	}

	// Verify each expected symlink
	for _, expectedSym := range expected {
		target, ok := pathToTarget[expectedSym.Path]
		if !ok {
			t.Errorf("expected symlink not found: %s", expectedSym.Path)
			continue
		}
		if target != expectedSym.Target {
			t.Errorf("symlink %s: got target %q, want %q",
				expectedSym.Path, target, expectedSym.Target)
		}
	}
}

// -----------------------------------------------------------------------------
// Helper Functions (unexported)
// -----------------------------------------------------------------------------

// buildPathToIdentityMap creates a map from file path to vfs.Identity.
func buildPathToIdentityMap(files []ReapFile) map[string]vfs.Identity {
	m := make(map[string]vfs.Identity)
	for _, rf := range files {
		for _, p := range rf.Path {
			m[p] = rf.Identity
		}
	}
	return m
}

// verifyFileEntries checks that all expected files exist and share
// identities correctly. Returns a map of entry index to identity for
// cross-entry uniqueness checking.
func verifyFileEntries(t *testing.T, expected []File, pathToIdentity map[string]vfs.Identity) map[int]vfs.Identity {
	t.Helper()
	entryIdentities := make(map[int]vfs.Identity)

	for i, ef := range expected {
		if len(ef.Path) == 0 {
			continue
		}
		if id, ok := verifyFileEntry(t, ef, pathToIdentity); ok {
			entryIdentities[i] = id
		}
	}
	return entryIdentities
}

// verifyFileEntry checks a single file entry and returns its identity if valid.
func verifyFileEntry(t *testing.T, ef File, pathToIdentity map[string]vfs.Identity) (vfs.Identity, bool) {
	t.Helper()

	firstPath := ef.Path[0]
	firstID, ok := pathToIdentity[firstPath]
	if !ok {
		t.Errorf("expected file not found: %s", firstPath)
		return vfs.Identity{}, false
	}

	// Verify all paths share the same identity (hardlinks) — the same
	// equality dupecat's catalog uses to decide two paths are one file.
	for _, p := range ef.Path[1:] {
		id, ok := pathToIdentity[p]
		if !ok {
			t.Errorf("expected file not found: %s", p)
			continue
		}
		if id != firstID {
			t.Errorf("hardlink mismatch: %s (%+v) != %s (%+v)",
				firstPath, firstID, p, id)
		}
	}
	return firstID, true
}

// verifyUniqueIdentities checks that different File entries have different identities.
func verifyUniqueIdentities(t *testing.T, expected []File, entryIdentities map[int]vfs.Identity) {
	t.Helper()
	for i, id1 := range entryIdentities {
		for j, id2 := range entryIdentities {
			if i < j && id1 == id2 {
				t.Errorf("files from different entries share identity %+v: %v and %v",
					id1, expected[i].Path, expected[j].Path)
			}
		}
	}
}
