package guildbuild_test

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_RollbackEngine_Rollback_EmptyGuild(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()

	before, err := guildbuild.ReadState(ctx, guild)
	require.NoError(t, err)

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, builtin(t, "bunkasai")))
	require.NoError(t, err)

	rollback, err := guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.NoError(t, err)
	require.Empty(t, rollback.Failures)
	require.Equal(t, result.Attempted, rollback.Attempted)
	require.Equal(t, rollback.Attempted, rollback.Succeeded)

	after, err := guildbuild.ReadState(ctx, guild)
	require.NoError(t, err)
	require.Equal(t, before, after)

	run, err := buildRunRepo.GetByID(ctx, result.BuildRunID)
	require.NoError(t, err)
	require.Equal(t, entity.BuildRunRolledBack, run.Status)

	// A run is rolled back at most once.
	mutations := guild.Mutations
	_, err = guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.ErrorIs(t, err, guildbuild.ErrAlreadyRolledBack)
	require.Equal(t, mutations, guild.Mutations)
}

func Test_RollbackEngine_Rollback_RestoresUpdates(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()
	template := builtin(t, "kyugi")

	_, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, template))
	require.NoError(t, err)

	// Items created by hand before the second build must survive its rollback.
	guild.AddRole(guildbuild.LiveRole{Name: "Teacher", Position: 3})

	before, err := guildbuild.ReadState(ctx, guild)
	require.NoError(t, err)

	topic := "bracket v2"
	template.Categories[2].Channels[0].Topic = &topic
	template.Categories[4].Channels[0].Overwrites = nil
	template.Categories[0].Channels[0].Overwrites = []guildbuild.Overwrite{
		{RoleName: "AdminOps", Allow: []string{"ManageMessages"}},
	}
	template.Roles[0].Color = "#FF0000"
	template.Roles[0].Mentionable = new(bool)
	template.Roles = append(template.Roles, guildbuild.Role{Name: "Grade-4"})
	template.Categories = append(template.Categories, guildbuild.Category{
		Name: "extra",
		Channels: []guildbuild.Channel{
			{Name: "extra-text", Kind: guildbuild.ChannelKindText},
			{Name: "extra-forum", Kind: guildbuild.ChannelKindForum},
		},
	})

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, template))
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	rollback, err := guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.NoError(t, err)
	require.Empty(t, rollback.Failures)

	after, err := guildbuild.ReadState(ctx, guild)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func Test_RollbackEngine_Rollback_RestoresEveryPermissionBit(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()

	// 1<<62 has no name, it must survive both the build and the rollback.
	liveAllow := int64(discordgo.PermissionViewChannel | discordgo.PermissionUseApplicationCommands | 1<<62)
	lounge := guild.AddChannel(guildbuild.LiveChannel{Name: "lounge", Kind: guildbuild.ChannelKindCategory})
	guild.AddChannel(guildbuild.LiveChannel{
		Name:     "general",
		Kind:     guildbuild.ChannelKindText,
		ParentID: lounge,
		Overwrites: []guildbuild.LiveOverwrite{
			{ID: testutil.GuildID, IsRole: true, Allow: liveAllow},
		},
	})

	template := &guildbuild.Template{
		Version: guildbuild.TemplateVersion,
		Name:    "lounge",
		Categories: []guildbuild.Category{{
			Name: "lounge",
			Channels: []guildbuild.Channel{{
				Name: "general",
				Kind: guildbuild.ChannelKindText,
				Overwrites: []guildbuild.Overwrite{{
					RoleName: guildbuild.EveryoneRoleName,
					Allow:    []string{"ViewChannel", "SendMessages"},
				}},
			}},
		}},
	}

	req := plan(t, ctx, guild, template)
	require.Len(t, req.Diff.Channels.ToUpdate, 1)
	require.Equal(t, []string{"UseApplicationCommands"}, req.Diff.Channels.ToUpdate[0].Changes.Overwrites[0].RemovedAllow)

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, req)
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	general, _ := guild.ChannelByName("general")
	require.Equal(t,
		int64(discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|1<<62),
		general.Overwrites[0].Allow)

	rollback, err := guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.NoError(t, err)
	require.Empty(t, rollback.Failures)

	general, _ = guild.ChannelByName("general")
	require.Len(t, general.Overwrites, 1)
	require.Equal(t, liveAllow, general.Overwrites[0].Allow)
	require.Zero(t, general.Overwrites[0].Deny)
}

func Test_RollbackEngine_Rollback_SkipsItemsAlreadyGone(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, builtin(t, "kyugi")))
	require.NoError(t, err)

	general, _ := guild.ChannelByName("general")
	require.NoError(t, guild.DeleteChannel(ctx, general.ID))

	rollback, err := guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.NoError(t, err)
	require.Empty(t, rollback.Failures)
	require.Equal(t, result.Attempted-1, rollback.Attempted)

	require.Len(t, guild.Channels, 0)
	require.Len(t, guild.Roles, 1)
}

func Test_RollbackEngine_Rollback_Failures(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, builtin(t, "kyugi")))
	require.NoError(t, err)

	guild.Errors["DeleteRole:AdminOps"] = errors.New("Missing Permissions")

	rollback, err := guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.NoError(t, err)
	require.Equal(t, []string{"Delete role `AdminOps`: Missing Permissions"}, rollback.Failures)
	require.Equal(t, rollback.Attempted-1, rollback.Succeeded)

	_, err = guildbuild.NewRollbackEngine(buildRunRepo).Rollback(ctx, guild, result.BuildRunID)
	require.ErrorIs(t, err, guildbuild.ErrAlreadyRolledBack)
}

func Test_RollbackEngine_Rollback_Errors(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	buildRunRepo := repository.NewBuildRunRepository()

	result, err := guildbuild.NewExecutor(buildRunRepo).Execute(ctx, guild, plan(t, ctx, guild, builtin(t, "kyugi")))
	require.NoError(t, err)

	engine := guildbuild.NewRollbackEngine(buildRunRepo)

	_, err = engine.Rollback(ctx, guild, "unknown")
	require.ErrorIs(t, err, guildbuild.ErrBuildRunNotFound)

	other := testutil.NewFakeGuild("1100000000000000099")
	_, err = engine.Rollback(ctx, other, result.BuildRunID)
	require.ErrorIs(t, err, guildbuild.ErrGuildMismatch)
	require.Zero(t, other.Mutations)

	require.NoError(t, buildRunRepo.UpdateStatus(ctx, result.BuildRunID, entity.BuildRunRolledBack))
	_, err = engine.Rollback(ctx, guild, result.BuildRunID)
	require.ErrorIs(t, err, guildbuild.ErrAlreadyRolledBack)
}

func Test_RollbackEngine_Rollback_WithoutDatabase(t *testing.T) {
	ctx := testutil.MockContextWithoutDB()
	guild := testutil.NewFakeGuild(testutil.GuildID)

	_, err := guildbuild.NewRollbackEngine(repository.NewBuildRunRepository()).Rollback(ctx, guild, "any")
	require.ErrorIs(t, err, repository.ErrDatabaseUnavailable)
}
