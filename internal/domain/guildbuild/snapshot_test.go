package guildbuild_test

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_ReadState(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)

	gradeID := guild.AddRole(guildbuild.LiveRole{Name: "Grade-1", Position: 1})
	adminID := guild.AddRole(guildbuild.LiveRole{Name: "AdminOps", Color: 0x3498DB, Hoist: true, Position: 2})

	categoryID := guild.AddChannel(guildbuild.LiveChannel{
		Name: "announcements", Kind: guildbuild.ChannelKindCategory, Position: 0,
	})
	guild.AddChannel(guildbuild.LiveChannel{
		Name: "news", Kind: guildbuild.ChannelKindText, Topic: "read-only", ParentID: categoryID, Position: 1,
		Overwrites: []guildbuild.LiveOverwrite{
			{ID: testutil.GuildID, IsRole: true, Deny: discordgo.PermissionSendMessages},
			{ID: adminID, IsRole: true, Allow: discordgo.PermissionSendMessages | 1<<62},
			{ID: "999", IsRole: true, Allow: discordgo.PermissionViewChannel},
			{ID: testutil.UserID, IsRole: false, Allow: discordgo.PermissionViewChannel},
		},
	})
	guild.AddChannel(guildbuild.LiveChannel{
		Name: "stage", Kind: guildbuild.ChannelKindVoice, Topic: "unused", ParentID: categoryID, Position: 2,
	})
	guild.AddChannel(guildbuild.LiveChannel{
		Name: "board", Kind: guildbuild.ChannelKindForum, ParentID: categoryID, Position: 3,
	})

	snapshot, err := guildbuild.ReadState(ctx, guild)
	require.NoError(t, err)
	require.Zero(t, guild.Mutations)

	require.Equal(t, testutil.GuildID, snapshot.GuildID)
	require.Equal(t, testutil.GuildID, snapshot.EveryoneRoleID)

	require.Len(t, snapshot.Roles, 2)
	require.Equal(t, adminID, snapshot.Roles[0].ID)
	require.Equal(t, gradeID, snapshot.Roles[1].ID)

	require.Len(t, snapshot.Channels, 4)
	news := snapshot.Channels[1]
	require.Equal(t, "read-only", news.Topic)
	require.Equal(t, []guildbuild.Overwrite{
		{RoleName: guildbuild.EveryoneRoleName, Allow: []string{}, Deny: []string{"SendMessages"}},
		{RoleName: "AdminOps", Allow: []string{"SendMessages"}, Deny: []string{}},
	}, news.Overwrites)

	stage := snapshot.Channels[2]
	require.Equal(t, guildbuild.ChannelKindVoice, stage.Kind)
	require.Empty(t, stage.Topic)

	require.Equal(t, guildbuild.ChannelKindForum, snapshot.Channels[3].Kind)
}

func Test_ReadState_Error(t *testing.T) {
	ctx := testutil.MockContext()
	guild := testutil.NewFakeGuild(testutil.GuildID)
	guild.Errors["FetchChannels"] = errors.New("boom")

	_, err := guildbuild.ReadState(ctx, guild)

	var readErr *guildbuild.SnapshotReadError
	require.ErrorAs(t, err, &readErr)
}
