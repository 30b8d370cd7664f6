package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact_Inserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestArtifact("add", "build-1")
	stored, inserted, err := s.WriteArtifact(ctx, a)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(1), stored.Seq)

	got, err := s.ReadArtifact(ctx, a.SnapshotHash)
	require.NoError(t, err)
	a.Seq = 1
	assert.Equal(t, a, got)
}

func TestWriteArtifact_FirstWriteWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestArtifact("add", "build-1")
	_, _, err := s.WriteArtifact(ctx, first)
	require.NoError(t, err)

	second := first
	second.BuildID = "build-2"
	second.Assembly = "changed"
	stored, inserted, err := s.WriteArtifact(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "build-1", stored.BuildID)
	assert.Equal(t, first.Assembly, stored.Assembly)

	all, err := s.ListArtifacts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWriteArtifact_EmptyHash(t *testing.T) {
	s := createTestStore(t)

	a := createTestArtifact("x", "b")
	a.SnapshotHash = ""
	_, _, err := s.WriteArtifact(context.Background(), a)
	assert.Error(t, err)
}

func TestWriteArtifact_SequenceIsMonotonic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		stored, inserted, err := s.WriteArtifact(ctx, createTestArtifact(fmt.Sprintf("p%d", i), "b"))
		require.NoError(t, err)
		require.True(t, inserted)
		assert.Equal(t, int64(i+1), stored.Seq)
	}

	all, err := s.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, a := range all {
		assert.Equal(t, fmt.Sprintf("p%d", i), a.Program)
	}
}

func TestWriteArtifact_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.WriteArtifact(ctx, createTestArtifact(fmt.Sprintf("p%d", i%4), "b"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.ListArtifacts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for i, a := range all {
		assert.Equal(t, int64(i+1), a.Seq)
	}
}

func TestReadArtifact_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadArtifact(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadArtifactByBuild(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteArtifact(ctx, createTestArtifact("a", "build-a"))
	require.NoError(t, err)
	_, _, err = s.WriteArtifact(ctx, createTestArtifact("b", "build-b"))
	require.NoError(t, err)

	got, err := s.ReadArtifactByBuild(ctx, "build-b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Program)

	_, err = s.ReadArtifactByBuild(ctx, "build-z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListArtifacts_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	all, err := s.ListArtifacts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestDeleteArtifact(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestArtifact("a", "b")
	_, _, err := s.WriteArtifact(ctx, a)
	require.NoError(t, err)

	require.NoError(t, s.DeleteArtifact(ctx, a.SnapshotHash))
	_, err = s.ReadArtifact(ctx, a.SnapshotHash)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteArtifact(ctx, a.SnapshotHash))
}
