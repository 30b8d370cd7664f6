package store

import (
	"path/filepath"
	"testing"

	"github.com/Translit-INC/translit/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestArtifact builds an artifact whose hashes are derived from name.
func createTestArtifact(name, buildID string) ir.Artifact {
	asm := "section .text\n; " + name + "\n"
	snap := "snap-" + name
	return ir.Artifact{
		SnapshotHash: snap,
		ArtifactHash: ir.ArtifactHash(snap, asm),
		BuildID:      buildID,
		Program:      name,
		Assembly:     asm,
		IRVersion:    ir.IRVersion,
		LowerVersion: "1",
	}
}
