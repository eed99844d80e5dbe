package mocks

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// DiscordSession mocks the session methods used by the bot. Request options
// are not recorded.
type DiscordSession struct {
	mock.Mock
}

func (s *DiscordSession) AddHandler(arg1 interface{}) func() {
	s.Called(arg1)
	return func() {}
}

func (s *DiscordSession) Open() error {
	return s.Called().Error(0)
}

func (s *DiscordSession) Close() error {
	return s.Called().Error(0)
}

func (s *DiscordSession) ApplicationCommandBulkOverwrite(
	arg1 string, arg2 string, arg3 []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption,
) ([]*discordgo.ApplicationCommand, error) {
	args := s.Called(arg1, arg2, arg3)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.ApplicationCommand), args.Error(1)
}

func (s *DiscordSession) InteractionRespond(
	arg1 *discordgo.Interaction, arg2 *discordgo.InteractionResponse, _ ...discordgo.RequestOption,
) error {
	return s.Called(arg1, arg2).Error(0)
}

func (s *DiscordSession) InteractionResponseEdit(
	arg1 *discordgo.Interaction, arg2 *discordgo.WebhookEdit, _ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	args := s.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}
