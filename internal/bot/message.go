package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/bwmarrin/snowflake"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/internal/model"
	"github.com/neko-jpg/schoolfestival-bot/pkg/errorx"
)

const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x2ECC71
	colorWarning = 0xF1C40F
	colorError   = 0xE74C3C
)

const (
	actionConfirm = "confirm"
	actionCancel  = "cancel"
	actionUndo    = "undo"
)

func customID(action, id string) string {
	return fmt.Sprintf("%s:%s:%s", commandBuild, action, id)
}

func parseCustomID(id string) (action string, value string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != commandBuild || parts[2] == "" {
		return "", "", false
	}

	return parts[1], parts[2], true
}

func embed(title, description string, color int) []*discordgo.MessageEmbed {
	return []*discordgo.MessageEmbed{{
		Title:       title,
		Description: description,
		Color:       color,
	}}
}

func confirmButtons(token string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Apply",
					Style:    discordgo.SuccessButton,
					CustomID: customID(actionConfirm, token),
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(actionCancel, token),
				},
			},
		},
	}
}

func undoButton(buildRunID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Undo",
					Style:    discordgo.DangerButton,
					CustomID: customID(actionUndo, buildRunID),
				},
			},
		},
	}
}

// errorMessage renders err for the operator. Unknown errors are not shown.
func errorMessage(err error) string {
	var verrs guildbuild.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}

	var permErr *guildbuild.PermissionError
	if errors.As(err, &permErr) {
		return permErr.Error()
	}

	var xerr errorx.Error
	if errors.As(err, &xerr) {
		return xerr.Message
	}

	return errorx.Unknown.Message
}

func mention(userID string) string {
	if _, err := snowflake.ParseString(userID); err != nil {
		return userID
	}

	return fmt.Sprintf("<@%s>", userID)
}

func applyResultEmbed(resp *model.ApplyBuildResponse) []*discordgo.MessageEmbed {
	color := colorSuccess
	if resp.Failed > 0 || !resp.RollbackAvailable {
		color = colorWarning
	}

	description := resp.Summary
	if resp.BuildRunID != "" {
		description += fmt.Sprintf("\n\nBuild run: `%s`", resp.BuildRunID)
	}

	return embed("Build finished", description, color)
}

func historyEmbed(resp *model.GetBuildHistoryResponse) []*discordgo.MessageEmbed {
	if len(resp.BuildRuns) == 0 {
		return embed("Build history", "No builds yet.", colorInfo)
	}

	lines := make([]string, 0, len(resp.BuildRuns))
	for _, r := range resp.BuildRuns {
		lines = append(lines, fmt.Sprintf("`%s` %s **%s** by %s at %s",
			r.ID, r.Status, r.TemplateName, mention(r.ExecutedBy), r.CreatedAt))
	}

	return embed("Build history", strings.Join(lines, "\n"), colorInfo)
}
