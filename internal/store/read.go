package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Translit-INC/translit/internal/ir"
)

// ErrNotFound is returned when no artifact matches a lookup.
var ErrNotFound = errors.New("artifact not found")

const selectArtifact = `
	SELECT snapshot_hash, artifact_hash, build_id, program, assembly, ir_version, lower_version, seq
	FROM artifacts`

// ReadArtifact returns the artifact stored under snapshotHash.
// Returns ErrNotFound if the hash is unknown.
func (s *Store) ReadArtifact(ctx context.Context, snapshotHash string) (ir.Artifact, error) {
	a, err := scanArtifact(s.db.QueryRowContext(ctx, selectArtifact+` WHERE snapshot_hash = ?`, snapshotHash))
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Artifact{}, ErrNotFound
	}
	if err != nil {
		return ir.Artifact{}, fmt.Errorf("read artifact: %w", err)
	}
	return a, nil
}

// ReadArtifactByBuild returns the artifact produced by the build with the
// given ID. Returns ErrNotFound if no build has that ID.
func (s *Store) ReadArtifactByBuild(ctx context.Context, buildID string) (ir.Artifact, error) {
	a, err := scanArtifact(s.db.QueryRowContext(ctx, selectArtifact+` WHERE build_id = ? ORDER BY seq ASC LIMIT 1`, buildID))
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Artifact{}, ErrNotFound
	}
	if err != nil {
		return ir.Artifact{}, fmt.Errorf("read artifact by build: %w", err)
	}
	return a, nil
}

// ListArtifacts returns every stored artifact ordered by seq.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListArtifacts(ctx context.Context) ([]ir.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, selectArtifact+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []ir.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

func scanArtifact(row rowScanner) (ir.Artifact, error) {
	var a ir.Artifact
	err := row.Scan(
		&a.SnapshotHash,
		&a.ArtifactHash,
		&a.BuildID,
		&a.Program,
		&a.Assembly,
		&a.IRVersion,
		&a.LowerVersion,
		&a.Seq,
	)
	if err != nil {
		return ir.Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}
	return a, nil
}
