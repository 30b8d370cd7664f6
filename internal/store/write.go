package store

import (
	"context"
	"fmt"

	"github.com/Translit-INC/translit/internal/ir"
)

// WriteArtifact inserts an artifact keyed by its snapshot hash.
// Uses ON CONFLICT DO NOTHING for idempotency: a second write for the same
// snapshot hash is ignored and the stored row is left untouched.
//
// The Seq field of the argument is ignored. The store assigns the next
// logical sequence number inside the same transaction as the insert.
// Returns the stored artifact and whether this call inserted it.
func (s *Store) WriteArtifact(ctx context.Context, a ir.Artifact) (ir.Artifact, bool, error) {
	if a.SnapshotHash == "" {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: empty snapshot hash")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM artifacts`).Scan(&seq); err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts
		(snapshot_hash, artifact_hash, build_id, program, assembly, ir_version, lower_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_hash) DO NOTHING
	`,
		a.SnapshotHash,
		a.ArtifactHash,
		a.BuildID,
		a.Program,
		a.Assembly,
		a.IRVersion,
		a.LowerVersion,
		seq,
	)
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: rows affected: %w", err)
	}

	stored, err := scanArtifact(tx.QueryRowContext(ctx, selectArtifact+` WHERE snapshot_hash = ?`, a.SnapshotHash))
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ir.Artifact{}, false, fmt.Errorf("write artifact: commit: %w", err)
	}
	return stored, n == 1, nil
}

// DeleteArtifact removes the artifact stored under snapshotHash.
// Deleting a missing artifact is not an error.
func (s *Store) DeleteArtifact(ctx context.Context, snapshotHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE snapshot_hash = ?`, snapshotHash); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
