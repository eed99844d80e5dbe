package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
)

const (
	commandBuild = "build"

	subcommandApply    = "apply"
	subcommandUndo     = "undo"
	subcommandHistory  = "history"
	subcommandValidate = "validate"

	optionName    = "name"
	optionGrades  = "grades"
	optionPreview = "preview"
	optionRun     = "run"
)

func templateChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: guildbuild.FileTemplateName, Value: guildbuild.FileTemplateName},
	}
	for _, name := range guildbuild.BuiltinTemplateNames() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	return choices
}

func buildCommand() *discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageGuild)
	dmPermission := false

	return &discordgo.ApplicationCommand{
		Name:                     commandBuild,
		Description:              "Build the festival server from a template",
		DefaultMemberPermissions: &manageGuild,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandApply,
				Description: "Preview and apply a template",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        optionName,
						Description: "Template to apply",
						Required:    true,
						Choices:     templateChoices(),
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        optionGrades,
						Description: "Number of grades",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "3", Value: 3},
							{Name: "4", Value: 4},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        optionPreview,
						Description: "Set to false to apply without confirmation",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandUndo,
				Description: "Roll back a build",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        optionRun,
						Description: "Build run id",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandHistory,
				Description: "Show recent builds of this server",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandValidate,
				Description: "Validate the template file",
			},
		},
	}
}
