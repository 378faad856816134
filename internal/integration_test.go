//go:build unix && !e2e

package internal

import (
	"path/filepath"
	"testing"

	"github.com/dupecat/dupecat/internal/actor"
	"github.com/dupecat/dupecat/internal/hashfn"
	"github.com/dupecat/dupecat/internal/orchestrator"
	"github.com/dupecat/dupecat/internal/selector"
	"github.com/dupecat/dupecat/internal/testfs"
	"github.com/dupecat/dupecat/internal/vfs"
)

// runPipeline drives the full walker->catalog->selector->actor pipeline
// against a real filesystem rooted at h.Root(), linking duplicates in
// place unless dryRun requests a non-mutating pass.
func runPipeline(t *testing.T, h *testfs.Harness, roots []string, skipDirs []string, dryRun bool) orchestrator.Report {
	t.Helper()

	fs := vfs.OS{}
	var act actor.Actor
	if dryRun {
		act = actor.NewPrinter(fs, nil, func(string, ...any) (int, error) { return 0, nil })
	} else {
		act = actor.NewLinker(fs, nil)
	}

	abs := make([]string, len(roots))
	for i, r := range roots {
		abs[i] = filepath.Join(h.Root(), r)
	}

	report, err := orchestrator.Run(orchestrator.Config{
		FS:            fs,
		Roots:         abs,
		BlacklistDirs: skipDirs,
		HashFn:        hashfn.Fast,
		Selector:      selector.ByPathLength{},
		Actor:         act,
		ShowProgress:  false,
	})
	if err != nil {
		t.Fatalf("orchestrator.Run: %v", err)
	}
	return report
}

func TestFullPipelineBasicDuplicates(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'D', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'D', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, false)

	if len(report.DuplicateSets) != 1 {
		t.Fatalf("duplicate sets: got %d, want 1", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt", "b.txt"}},
				},
			},
		},
	})
}

func TestFullPipelineExistingHardlinksPreserved(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt", "a_link.txt"}, Chunks: []testfs.Chunk{{Pattern: 'O', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'O', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	runPipeline(t, h, []string{"/data"}, nil, false)

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt", "a_link.txt", "b.txt"}},
				},
			},
		},
	})
}

func TestFullPipelineMixedDuplicatesAndUnique(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
					{Path: []string{"c.txt"}, Chunks: []testfs.Chunk{{Pattern: 'C', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, false)

	if len(report.DuplicateSets) != 1 {
		t.Fatalf("duplicate sets: got %d, want 1", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt", "b.txt"}},
					{Path: []string{"c.txt"}},
				},
			},
		},
	})
}

func TestFullPipelineSkipsBlacklistedDirectory(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep/a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'E', Size: "1KiB"}}},
					{Path: []string{"skip/b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'E', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, []string{filepath.Join(h.Root(), "data", "skip")}, false)

	if len(report.DuplicateSets) != 0 {
		t.Fatalf("duplicate sets: got %d, want 0 (skip/ excluded)", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"keep/a.txt"}},
					{Path: []string{"skip/b.txt"}},
				},
			},
		},
	})
}

func TestFullPipelineEmptyTreeProducesNoDuplicates(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{MountPoint: "/data"},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, false)

	if len(report.DuplicateSets) != 0 {
		t.Fatalf("duplicate sets: got %d, want 0", len(report.DuplicateSets))
	}
}

func TestFullPipelineDryRunLeavesFilesUntouched(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{{Pattern: 'P', Size: "1KiB"}}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{{Pattern: 'P', Size: "1KiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, true)

	if len(report.DuplicateSets) != 1 {
		t.Fatalf("duplicate sets: got %d, want 1", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}},
					{Path: []string{"b.txt"}},
				},
			},
		},
	})
}

func TestProgressiveSieveSameHeadDifferentTail(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}, Chunks: []testfs.Chunk{
						{Pattern: 'H', Size: "8KiB"}, {Pattern: 'X', Size: "8KiB"},
					}},
					{Path: []string{"b.txt"}, Chunks: []testfs.Chunk{
						{Pattern: 'H', Size: "8KiB"}, {Pattern: 'Y', Size: "8KiB"},
					}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, false)

	if len(report.DuplicateSets) != 0 {
		t.Fatalf("duplicate sets: got %d, want 0 (shared prefix, distinct tail)", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.txt"}},
					{Path: []string{"b.txt"}},
				},
			},
		},
	})
}

func TestProgressiveSieveLargeIdenticalFiles(t *testing.T) {
	spec := testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.bin"}, Chunks: []testfs.Chunk{{Pattern: 'Z', Size: "1MiB"}}},
					{Path: []string{"b.bin"}, Chunks: []testfs.Chunk{{Pattern: 'Z', Size: "1MiB"}}},
				},
			},
		},
	}

	h := testfs.New(t, spec)
	report := runPipeline(t, h, []string{"/data"}, nil, false)

	if len(report.DuplicateSets) != 1 {
		t.Fatalf("duplicate sets: got %d, want 1", len(report.DuplicateSets))
	}

	h.Assert(testfs.FileTree{
		Volumes: []testfs.Volume{
			{
				MountPoint: "/data",
				Files: []testfs.File{
					{Path: []string{"a.bin", "b.bin"}},
				},
			},
		},
	})
}
