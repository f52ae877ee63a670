// Package repotest holds the behaviour every ports.JourneyRepository
// implementation must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"journeymap/application/ports"
	pkgerrors "journeymap/pkg/errors"
	"journeymap/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises repo. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) ports.JourneyRepository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("save and get", func(t *testing.T) {
		repo := newRepo(t)
		j := fixtures.NewJourneyBuilder().WithTime(base).MustBuild()

		require.NoError(t, repo.Save(ctx, j))
		got, err := repo.GetByID(ctx, j.ID().String())

		require.NoError(t, err)
		assert.Equal(t, j.Snapshot(), got.Snapshot())
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000001")

		assert.True(t, pkgerrors.IsDomainCode(err, pkgerrors.ErrJourneyNotFound.Code))
	})

	t.Run("saved copy is isolated", func(t *testing.T) {
		repo := newRepo(t)
		j := fixtures.NewJourneyBuilder().WithTime(base).MustBuild()
		require.NoError(t, repo.Save(ctx, j))

		title := "Renamed"
		require.NoError(t, j.Rename(&title, nil, base.Add(time.Minute)))
		got, err := repo.GetByID(ctx, j.ID().String())

		require.NoError(t, err)
		assert.Equal(t, "Dock", got.Title())
	})

	t.Run("list by owner pages newest first", func(t *testing.T) {
		repo := newRepo(t)
		var ids []string
		for i := 0; i < 3; i++ {
			j := fixtures.NewJourneyBuilder().
				WithOwnerID("owner-a").
				WithTime(base.Add(time.Duration(i) * time.Hour)).
				MustBuild()
			require.NoError(t, repo.Save(ctx, j))
			ids = append(ids, j.ID().String())
		}
		other := fixtures.NewJourneyBuilder().WithOwnerID("owner-b").WithTime(base).MustBuild()
		require.NoError(t, repo.Save(ctx, other))

		page, total, err := repo.ListByOwner(ctx, "owner-a", ports.ListOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.Equal(t, ids[2], page[0].ID().String())
		assert.Equal(t, ids[1], page[1].ID().String())

		rest, _, err := repo.ListByOwner(ctx, "owner-a", ports.ListOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, ids[0], rest[0].ID().String())

		beyond, _, err := repo.ListByOwner(ctx, "owner-a", ports.ListOptions{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, beyond)
	})

	t.Run("list unknown owner", func(t *testing.T) {
		repo := newRepo(t)

		page, total, err := repo.ListByOwner(ctx, "nobody", ports.ListOptions{})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, page)
	})

	t.Run("owners sharing a prefix stay apart", func(t *testing.T) {
		repo := newRepo(t)
		owners := []string{"alice", "alice:x", "alice:", "alice2"}
		want := map[string]string{}
		for i, owner := range owners {
			j := fixtures.NewJourneyBuilder().
				WithOwnerID(owner).
				WithTime(base.Add(time.Duration(i) * time.Minute)).
				MustBuild()
			require.NoError(t, repo.Save(ctx, j))
			want[owner] = j.ID().String()
		}

		for _, owner := range owners {
			page, total, err := repo.ListByOwner(ctx, owner, ports.ListOptions{})

			require.NoError(t, err)
			require.Equal(t, 1, total, owner)
			require.Len(t, page, 1)
			assert.Equal(t, want[owner], page[0].ID().String())
			assert.Equal(t, owner, page[0].OwnerID())
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		j := fixtures.NewJourneyBuilder().WithOwnerID("owner-a").WithTime(base).MustBuild()
		require.NoError(t, repo.Save(ctx, j))

		require.NoError(t, repo.Delete(ctx, j.ID().String()))

		_, err := repo.GetByID(ctx, j.ID().String())
		assert.True(t, pkgerrors.IsDomainCode(err, pkgerrors.ErrJourneyNotFound.Code))
		_, total, err := repo.ListByOwner(ctx, "owner-a", ports.ListOptions{})
		require.NoError(t, err)
		assert.Zero(t, total)

		err = repo.Delete(ctx, j.ID().String())
		assert.True(t, pkgerrors.IsDomainCode(err, pkgerrors.ErrJourneyNotFound.Code))
	})
}
