package guildbuild

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FormatPreview(t *testing.T) {
	require.Equal(t, "No changes detected.", FormatPreview(Diff(newSnapshot(), newTemplate())))

	template := newTemplate()
	template.Roles[0].Color = "#FF0000"
	template.Roles = append(template.Roles, Role{Name: "Grade-2"})
	template.Categories[0].Channels[0].Topic = strPtr("new")
	template.Categories[0].Channels[0].Overwrites[0].Deny = nil
	template.Categories = append(template.Categories, Category{
		Name:     "lounge",
		Channels: []Channel{{Name: "general", Kind: ChannelKindText}},
	})

	require.Equal(t, strings.Join([]string{
		"+ Create Role `Grade-2`",
		"~ Update Role `AdminOps` (color #FF0000)",
		"+ Create Category `lounge`",
		"+ Create Channel `#general` in **lounge**",
		"~ Update Channel `#news` (topic, @everyone: -deny SendMessages)",
	}, "\n"), FormatPreview(Diff(newSnapshot(), template)))
}

func Test_FormatPreview_Truncated(t *testing.T) {
	diff := &DiffResult{}
	for i := 0; i < 500; i++ {
		diff.Roles.ToCreate = append(diff.Roles.ToCreate, Role{Name: fmt.Sprintf("role-%03d", i)})
	}

	preview := FormatPreview(diff)
	require.LessOrEqual(t, len(preview), maxPreviewLength)
	require.True(t, strings.HasSuffix(preview, "...and more."))
	require.True(t, strings.HasPrefix(preview, "+ Create Role `role-000`\n"))
}

func Test_FormatSummary(t *testing.T) {
	require.Equal(t, "Build completed: 3/3 changes applied.",
		FormatSummary(&ExecuteResult{Attempted: 3, Succeeded: 3}, 2))

	summary := FormatSummary(&ExecuteResult{
		Attempted: 5,
		Succeeded: 2,
		Failures:  []string{"a: x", "b: y", "c: z"},
		Warnings:  []string{"Build history is unavailable, this build cannot be undone."},
	}, 2)
	require.Equal(t, "Build completed with errors: 2 succeeded, 3 failed.\n"+
		"- a: x\n- b: y\n...and 1 more\n"+
		"! Build history is unavailable, this build cannot be undone.", summary)
}

func Test_FormatRollbackSummary(t *testing.T) {
	require.Equal(t, "Rollback completed: 4/4 changes reverted.",
		FormatRollbackSummary(&RollbackResult{Attempted: 4, Succeeded: 4}, 15))

	require.Equal(t, "Rollback completed with errors: 3 succeeded, 1 failed.\n- Delete role `A`: boom",
		FormatRollbackSummary(&RollbackResult{Attempted: 4, Succeeded: 3, Failures: []string{"Delete role `A`: boom"}}, 15))
}
