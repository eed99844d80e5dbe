package guildbuild

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func newSnapshot() *GuildSnapshot {
	return &GuildSnapshot{
		GuildID:        "1",
		EveryoneRoleID: "1",
		Roles: []SnapshotRole{
			{ID: "10", Name: "AdminOps", Color: 0x3498DB, Hoist: true, Mentionable: true, Position: 2},
			{ID: "11", Name: "Grade-1", Position: 1},
		},
		Channels: []SnapshotChannel{
			{ID: "20", Name: "announcements", Kind: ChannelKindCategory, Position: 0, Overwrites: []Overwrite{}},
			{ID: "21", Name: "news", Kind: ChannelKindText, Topic: "old", ParentID: "20", Position: 1,
				Overwrites: []Overwrite{
					{RoleName: EveryoneRoleName, Allow: []string{"ViewChannel"}, Deny: []string{"SendMessages"}},
				}},
			{ID: "22", Name: "stage", Kind: ChannelKindVoice, ParentID: "20", Position: 2, Overwrites: []Overwrite{}},
		},
	}
}

func newTemplate() *Template {
	return &Template{
		Version: TemplateVersion,
		Name:    "test",
		Roles: []Role{
			{Name: "AdminOps", Color: "#3498DB", Hoist: boolPtr(true)},
			{Name: "Grade-1"},
		},
		Categories: []Category{
			{Name: "announcements", Channels: []Channel{
				{Name: "news", Kind: ChannelKindText, Topic: strPtr("old"), Overwrites: []Overwrite{
					{RoleName: EveryoneRoleName, Allow: []string{"ViewChannel"}, Deny: []string{"SendMessages"}},
				}},
				{Name: "stage", Kind: ChannelKindVoice},
			}},
		},
	}
}

func Test_Diff_NoChanges(t *testing.T) {
	diff := Diff(newSnapshot(), newTemplate())

	require.False(t, diff.HasChanges())
	require.Zero(t, diff.MutationCount())
	require.Len(t, diff.Roles.ToSkip, 2)
	require.Len(t, diff.Categories.ToSkip, 1)
	require.Len(t, diff.Channels.ToSkip, 2)
	require.Empty(t, diff.Warnings)
}

func Test_Diff_IsPure(t *testing.T) {
	snapshot, template := newSnapshot(), newTemplate()
	template.Categories[0].Channels[0].Topic = strPtr("new")
	template.Roles = append(template.Roles, Role{Name: "Grade-2"})

	first := Diff(snapshot, template)
	second := Diff(snapshot, template)

	require.Equal(t, first, second)
	require.Equal(t, newSnapshot(), snapshot)
	require.Equal(t, "new", *template.Categories[0].Channels[0].Topic)
}

func Test_Diff_EmptyGuild(t *testing.T) {
	snapshot := &GuildSnapshot{GuildID: "1", EveryoneRoleID: "1", Roles: []SnapshotRole{}, Channels: []SnapshotChannel{}}
	template, err := BuiltinTemplate("bunkasai", 3)
	require.NoError(t, err)

	diff := Diff(snapshot, template)

	channels := 0
	for _, c := range template.Categories {
		channels += len(c.Channels)
	}

	require.Len(t, diff.Roles.ToCreate, 4)
	require.Len(t, diff.Categories.ToCreate, len(template.Categories))
	require.Len(t, diff.Channels.ToCreate, channels)
	require.Empty(t, diff.Roles.ToUpdate)
	require.Empty(t, diff.Channels.ToUpdate)
	require.Equal(t, 4+len(template.Categories)+channels, diff.MutationCount())
}

func Test_Diff_TopicChange(t *testing.T) {
	template := newTemplate()
	template.Categories[0].Channels[0].Topic = strPtr("new")

	diff := Diff(newSnapshot(), template)

	require.Len(t, diff.Channels.ToUpdate, 1)
	update := diff.Channels.ToUpdate[0]
	require.Equal(t, "21", update.Existing.ID)
	require.Equal(t, "announcements", update.CategoryName)
	require.Equal(t, "new", *update.Changes.Topic)
	require.Empty(t, update.Changes.Overwrites)
	require.Equal(t, 1, diff.MutationCount())
}

func Test_Diff_VoiceTopicIgnored(t *testing.T) {
	template := newTemplate()
	template.Categories[0].Channels[1].Topic = strPtr("ignored")

	require.False(t, Diff(newSnapshot(), template).HasChanges())
}

func Test_Diff_UnsetTopicIgnored(t *testing.T) {
	template := newTemplate()
	template.Categories[0].Channels[0].Topic = nil

	require.False(t, Diff(newSnapshot(), template).HasChanges())
}

func Test_Diff_MissingCategoryCreatesSubtree(t *testing.T) {
	template := newTemplate()
	template.Categories = append(template.Categories, Category{
		Name: "lounge",
		Channels: []Channel{
			// Same name as a channel of another category.
			{Name: "news", Kind: ChannelKindText},
			{Name: "voice-1", Kind: ChannelKindVoice},
		},
	})

	diff := Diff(newSnapshot(), template)

	require.Equal(t, []Category{template.Categories[1]}, diff.Categories.ToCreate)
	require.Equal(t, []ChannelCreate{
		{CategoryName: "lounge", Channel: template.Categories[1].Channels[0]},
		{CategoryName: "lounge", Channel: template.Categories[1].Channels[1]},
	}, diff.Channels.ToCreate)
	require.Empty(t, diff.Channels.ToUpdate)
}

func Test_Diff_Roles(t *testing.T) {
	template := newTemplate()
	template.Roles[0].Color = "#FF0000"
	template.Roles[0].Mentionable = boolPtr(true)
	template.Roles[1].Hoist = boolPtr(true)

	diff := Diff(newSnapshot(), template)

	require.Len(t, diff.Roles.ToUpdate, 2)

	admin := diff.Roles.ToUpdate[0]
	require.Equal(t, "10", admin.Existing.ID)
	require.Equal(t, 0xFF0000, *admin.Changes.Color)
	require.Nil(t, admin.Changes.Hoist)
	require.Nil(t, admin.Changes.Mentionable)

	grade := diff.Roles.ToUpdate[1]
	require.Equal(t, "11", grade.Existing.ID)
	require.Nil(t, grade.Changes.Color)
	require.True(t, *grade.Changes.Hoist)
}

func Test_Diff_AmbiguousRole(t *testing.T) {
	snapshot := newSnapshot()
	snapshot.Roles = append(snapshot.Roles, SnapshotRole{ID: "12", Name: "Grade-1", Position: 0})

	diff := Diff(snapshot, newTemplate())

	require.False(t, diff.HasChanges())
	require.Equal(t, "11", diff.Roles.ToSkip[1].ID)
	require.Len(t, diff.Warnings, 1)
	require.Contains(t, diff.Warnings[0], "Grade-1")
}

func Test_Diff_Overwrites(t *testing.T) {
	template := newTemplate()
	template.Categories[0].Channels[0].Overwrites = []Overwrite{
		{RoleName: EveryoneRoleName, Allow: []string{"ViewChannel"}},
		{RoleName: "AdminOps", Allow: []string{"SendMessages"}},
	}
	template.Categories[0].Channels[1].Overwrites = nil

	diff := Diff(newSnapshot(), template)

	require.Len(t, diff.Channels.ToUpdate, 1)
	require.Nil(t, diff.Channels.ToUpdate[0].Changes.Topic)
	require.Equal(t, []OverwriteDelta{
		{RoleName: EveryoneRoleName, RemovedDeny: []string{"SendMessages"}},
		{RoleName: "AdminOps", AddedAllow: []string{"SendMessages"}},
	}, diff.Channels.ToUpdate[0].Changes.Overwrites)
}

func Test_Diff_NilOverwritesStripLive(t *testing.T) {
	template := newTemplate()
	template.Categories[0].Channels[0].Overwrites = nil

	diff := Diff(newSnapshot(), template)

	require.Len(t, diff.Channels.ToUpdate, 1)
	require.Equal(t, []OverwriteDelta{
		{RoleName: EveryoneRoleName, RemovedAllow: []string{"ViewChannel"}, RemovedDeny: []string{"SendMessages"}},
	}, diff.Channels.ToUpdate[0].Changes.Overwrites)
}

func Test_ParseColor(t *testing.T) {
	color, err := ParseColor("#3498DB")
	require.NoError(t, err)
	require.Equal(t, 0x3498DB, color)

	color, err = ParseColor("ff0000")
	require.NoError(t, err)
	require.Equal(t, 0xFF0000, color)

	_, err = ParseColor("blue")
	require.Error(t, err)
}
