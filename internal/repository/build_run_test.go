package repository_test

import (
	"testing"
	"time"

	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/pkg/testutil"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_buildRunRepository(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewBuildRunRepository()

	now := time.Now()
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, repo.Create(ctx, &entity.BuildRun{
			Base:         entity.Base{ID: id, CreatedAt: now.Add(time.Duration(i) * time.Minute)},
			GuildID:      testutil.GuildID,
			TemplateName: "kyugi",
			ExecutedBy:   testutil.UserID,
			Status:       entity.BuildRunPending,
		}))
	}

	require.NoError(t, repo.Create(ctx, &entity.BuildRun{
		Base:         entity.Base{ID: "other-guild"},
		GuildID:      "1",
		TemplateName: "kyugi",
		ExecutedBy:   testutil.UserID,
	}))

	runs, err := repo.GetListByGuildID(ctx, testutil.GuildID, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-3", runs[0].ID)
	require.Equal(t, "run-2", runs[1].ID)

	require.NoError(t, repo.UpdateStatus(ctx, "run-1", entity.BuildRunRolledBack))
	run, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, entity.BuildRunRolledBack, run.Status)

	require.ErrorIs(t, repo.UpdateStatus(ctx, "missing", entity.BuildRunSuccess), gorm.ErrRecordNotFound)
	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_buildRunRepository_WithoutDatabase(t *testing.T) {
	ctx := testutil.MockContextWithoutDB()
	require.Nil(t, xcontext.DB(ctx))

	repo := repository.NewBuildRunRepository()
	require.ErrorIs(t, repo.Create(ctx, &entity.BuildRun{}), repository.ErrDatabaseUnavailable)
	_, err := repo.GetByID(ctx, "run-1")
	require.ErrorIs(t, err, repository.ErrDatabaseUnavailable)
	_, err = repo.GetListByGuildID(ctx, testutil.GuildID, 10)
	require.ErrorIs(t, err, repository.ErrDatabaseUnavailable)
}
