//go:build e2e

package internal

import (
	"testing"

	"github.com/dupecat/dupecat/internal/testfs"
)

// =============================================================================
// Core CLI Tests
// =============================================================================

// TestE2EBasicCLIInvocation tests basic CLI invocation and exit codes.
func TestE2EBasicCLIInvocation(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	result := h.RunDupecat("--link", "/data")

	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt", "b.txt"}},
				},
			},
		},
	}
	h.Assert(expected)

	if len(result.Stdout) == 0 && len(result.Stderr) == 0 {
		t.Log("Note: no stdout or stderr output")
	}
}

// TestE2EPrintDoesNotMutate tests that --print leaves files untouched.
func TestE2EPrintDoesNotMutate(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--print", "/data")

	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}},
					{Path: []string{"b.txt"}},
				},
			},
		},
	}
	h.Assert(expected)
}

// =============================================================================
// Cross-device Tests (require distinct tmpfs mounts per volume)
// =============================================================================

// TestE2ECrossDeviceLinkIsRefused tests that --link skips duplicates that
// straddle a device boundary rather than attempting a doomed hard link.
func TestE2ECrossDeviceLinkIsRefused(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/vol1",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
				},
			},
			{
				MountPoint: "/vol2",
				Files: []testfs.File{
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--link", "/vol1", "/vol2")

	// Cross-device duplicates are left alone: Linker refuses rather than
	// fabricating a same-content copy or falling back to a symlink.
	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/vol1",
				Files: []testfs.File{
					{Path: []string{"a.txt"}},
				},
			},
			{
				MountPoint: "/vol2",
				Files: []testfs.File{
					{Path: []string{"b.txt"}},
				},
			},
		},
	}
	h.Assert(expected)
}

// =============================================================================
// Nested Mount Tests
// =============================================================================

// TestE2ENestedMounts tests scanning nested mounts without self-dedup and
// without attempting a cross-device link.
func TestE2ENestedMounts(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"root.txt"}, Chunks: []testfs.Chunk{{Pattern: 'R', Size: "1KiB"}}},
				},
			},
			{
				MountPoint: "/data/subdir",
				Files: []testfs.File{
					{Path: []string{"nested.txt"}, Chunks: []testfs.Chunk{{Pattern: 'R', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--link", "/data")

	// /data/subdir is a distinct device (separate tmpfs mount), so the
	// duplicate is found but the link is refused rather than performed.
	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"root.txt"}},
				},
			},
			{
				MountPoint: "/data/subdir",
				Files: []testfs.File{
					{Path: []string{"nested.txt"}},
				},
			},
		},
	}
	h.Assert(expected)
}

// =============================================================================
// Selector Tests
// =============================================================================

// TestE2EPathLenSelectorKeepsShortestPath tests that the default selector
// keeps the duplicate with the fewest path components as representative:
// with --delete, the shallow copy must be the one that survives.
func TestE2EPathLenSelectorKeepsShortestPath(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"short.txt"}, Chunks: []testfs.Chunk{{Pattern: 'S', Size: "1KiB"}}},
					{Path: []string{"nested/deep/long.txt"}, Chunks: []testfs.Chunk{{Pattern: 'S', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--delete", "/data")

	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"short.txt"}},
				},
			},
		},
	}
	h.Assert(expected)
}

// =============================================================================
// Blacklist Tests
// =============================================================================

// TestE2ESkipFlagExcludesDirectory tests --skip directory filtering.
func TestE2ESkipFlagExcludesDirectory(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep_a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"keep_b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"archive/skip_a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"archive/skip_b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--link", "--skip", "/data/archive", "/data")

	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep_a.txt", "keep_b.txt"}},
					{Path: []string{"archive/skip_a.txt"}},
					{Path: []string{"archive/skip_b.txt"}},
				},
			},
		},
	}
	h.Assert(expected)
}

// TestE2ESkipRegexExcludesMatchingPaths tests --skip-re pattern filtering.
func TestE2ESkipRegexExcludesMatchingPaths(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep_a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"keep_b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"skip_a.bak"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
					{Path: []string{"skip_b.bak"}, Chunks: []testfs.Chunk{{Pattern: 'K', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)

	h.RunDupecat("--link", "--skip-re", `\.bak$`, "/data")

	expected := testfs.FileTree{
		ExitCode: 0,
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep_a.txt", "keep_b.txt"}},
					{Path: []string{"skip_a.bak"}},
					{Path: []string{"skip_b.bak"}},
				},
			},
		},
	}
	h.Assert(expected)
}
