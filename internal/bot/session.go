package bot

import "github.com/bwmarrin/discordgo"

// Session is the part of *discordgo.Session used by the bot.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ApplicationCommandBulkOverwrite(
		appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption,
	) ([]*discordgo.ApplicationCommand, error)
	InteractionRespond(
		interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption,
	) error
	InteractionResponseEdit(
		interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}
