package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Translit-INC/translit/internal/ir"
	"github.com/Translit-INC/translit/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Database string
	Show     string // snapshot hash or build ID to print
	Delete   string // snapshot hash to evict
}

// CacheEntry is one artifact in a listing. Assembly is omitted.
type CacheEntry struct {
	Seq          int64  `json:"seq"`
	SnapshotHash string `json:"snapshot_hash"`
	ArtifactHash string `json:"artifact_hash"`
	BuildID      string `json:"build_id"`
	Program      string `json:"program"`
	IRVersion    string `json:"ir_version"`
	LowerVersion string `json:"lower_version"`
	Size         int    `json:"size"`
}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the artifact cache",
		Long: `Inspect the artifact cache written by compile --cache.

Without --show or --delete, lists every cached artifact in the order it
was first built. --show accepts a snapshot hash or a build ID and prints
the cached assembly.

Examples:
  translit cache --db ./translit.db
  translit cache --db ./translit.db --show 0193c2a4-...
  translit cache --db ./translit.db --delete 5f1e...
  translit cache --db ./translit.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite cache database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print the artifact with this snapshot hash or build ID")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "evict the artifact with this snapshot hash")

	return cmd
}

func runCache(opts *CacheOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	defer st.Close()

	switch {
	case opts.Delete != "":
		if err := st.DeleteArtifact(ctx, opts.Delete); err != nil {
			_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to delete artifact", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(map[string]string{"deleted": opts.Delete})
		}
		fmt.Fprintf(formatter.Writer, "✓ Deleted %s\n", opts.Delete)
		return nil

	case opts.Show != "":
		art, err := lookupArtifact(ctx, st, opts.Show)
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no artifact for %s", opts.Show), nil)
			return NewExitError(ExitFailure, fmt.Sprintf("no artifact for %s", opts.Show))
		}
		if err != nil {
			_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read artifact", err)
		}
		if formatter.Format == "json" {
			return writeJSON(formatter.Writer, CLIResponse{Status: "ok", Data: art, BuildID: art.BuildID})
		}
		fmt.Fprint(formatter.Writer, art.Assembly)
		return nil
	}

	artifacts, err := st.ListArtifacts(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list artifacts", err)
	}

	entries := make([]CacheEntry, len(artifacts))
	for i, a := range artifacts {
		entries[i] = CacheEntry{
			Seq:          a.Seq,
			SnapshotHash: a.SnapshotHash,
			ArtifactHash: a.ArtifactHash,
			BuildID:      a.BuildID,
			Program:      a.Program,
			IRVersion:    a.IRVersion,
			LowerVersion: a.LowerVersion,
			Size:         len(a.Assembly),
		}
	}

	if formatter.Format == "json" {
		return writeJSON(formatter.Writer, CLIResponse{Status: "ok", Data: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "Cache is empty.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "[%d] %s  %s  %s (%d bytes)\n",
			e.Seq, shortHash(e.SnapshotHash), e.BuildID, e.Program, e.Size)
	}
	return nil
}

// lookupArtifact resolves key as a snapshot hash first, then as a build ID.
func lookupArtifact(ctx context.Context, st *store.Store, key string) (ir.Artifact, error) {
	art, err := st.ReadArtifact(ctx, key)
	if !errors.Is(err, store.ErrNotFound) {
		return art, err
	}
	return st.ReadArtifactByBuild(ctx, key)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
