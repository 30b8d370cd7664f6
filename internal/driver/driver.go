package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Translit-INC/translit/internal/compiler"
	"github.com/Translit-INC/translit/internal/ir"
	"github.com/Translit-INC/translit/internal/lower"
	"github.com/Translit-INC/translit/internal/store"
)

// Result is the outcome of one successful build.
type Result struct {
	BuildID      string       `json:"build_id"`
	Program      string       `json:"program"`
	SnapshotHash string       `json:"snapshot_hash"`
	ArtifactHash string       `json:"artifact_hash"`
	Assembly     string       `json:"-"`
	Cached       bool         `json:"cached"`
	Snapshot     *ir.Snapshot `json:"-"`
}

// Driver builds programs into assembly.
type Driver struct {
	store  *store.Store
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithStore enables the artifact cache. Builds whose snapshot hash is already
// stored return the stored assembly without lowering.
func WithStore(s *store.Store) Option {
	return func(d *Driver) {
		d.store = s
	}
}

// WithIDGenerator sets the build ID source.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Driver) {
		d.ids = g
	}
}

// WithLogger sets the logger for build phases.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates a Driver. Without WithStore every build lowers from scratch.
func New(opts ...Option) *Driver {
	d := &Driver{
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BuildFile loads a program file (.yaml, .yml or .cue) and builds it.
func (d *Driver) BuildFile(ctx context.Context, path string) (*Result, error) {
	prog, err := compiler.LoadProgram(path)
	if err != nil {
		return nil, err
	}
	return d.Build(ctx, prog)
}

// Build validates, compiles and lowers a program.
//
// Validation failures are returned as compiler.ValidationErrors. Builder
// failures are returned as *compiler.CompileError wrapping an *ir.BuildError.
// Lowering failures are returned as *lower.LowerError.
func (d *Driver) Build(ctx context.Context, prog *compiler.Program) (*Result, error) {
	buildID := d.ids.Generate()
	log := d.logger.With("build_id", buildID, "program", prog.Name)
	log.Debug("build starting")

	if errs := compiler.Validate(prog); len(errs) > 0 {
		log.Info("validation failed", "errors", len(errs))
		return nil, compiler.ValidationErrors(errs)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := compiler.Compile(prog)
	if err != nil {
		log.Info("compile failed", "error", err)
		return nil, err
	}

	snapHash, err := ir.SnapshotHash(snap)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", buildID, err)
	}
	log = log.With("snapshot_hash", snapHash)
	log.Debug("snapshot built",
		"instructions", snap.Len(),
		"functions", len(snap.Functions()),
	)

	res := &Result{
		BuildID:      buildID,
		Program:      prog.Name,
		SnapshotHash: snapHash,
		Snapshot:     snap,
	}

	if d.store != nil {
		art, err := d.store.ReadArtifact(ctx, snapHash)
		switch {
		case err == nil && art.LowerVersion == lower.Version:
			log.Info("artifact cache hit", "origin_build_id", art.BuildID)
			res.Assembly = art.Assembly
			res.ArtifactHash = art.ArtifactHash
			res.Cached = true
			return res, nil
		case err == nil:
			log.Info("evicting stale artifact",
				"origin_build_id", art.BuildID,
				"lower_version", art.LowerVersion,
			)
			if err := d.store.DeleteArtifact(ctx, snapHash); err != nil {
				return nil, fmt.Errorf("build %s: %w", buildID, err)
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("build %s: %w", buildID, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asm, err := lowerSnapshot(snap)
	if err != nil {
		log.Info("lowering failed", "error", err)
		return nil, err
	}
	res.Assembly = asm
	res.ArtifactHash = ir.ArtifactHash(snapHash, asm)

	if d.store != nil {
		_, inserted, err := d.store.WriteArtifact(ctx, ir.Artifact{
			SnapshotHash: snapHash,
			ArtifactHash: res.ArtifactHash,
			BuildID:      buildID,
			Program:      prog.Name,
			Assembly:     asm,
			IRVersion:    ir.IRVersion,
			LowerVersion: lower.Version,
		})
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", buildID, err)
		}
		log.Debug("artifact stored", "inserted", inserted)
	}

	log.Info("build complete", "artifact_hash", res.ArtifactHash, "bytes", len(asm))
	return res, nil
}

// lowerSnapshot runs the lowering pass and returns a *lower.LowerError
// panic as an ordinary error. Other panics propagate.
func lowerSnapshot(snap *ir.Snapshot) (asm string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(*lower.LowerError)
			if !ok {
				panic(r)
			}
			err = lerr
		}
	}()
	return lower.Lower(snap)
}
