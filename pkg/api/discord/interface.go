package discord

import "context"

type IEndpoint interface {
	GetGuildRoles(ctx context.Context, guildID string) ([]Role, error)
	GetGuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	GetMember(ctx context.Context, guildID, userID string) (Member, error)
	GetBotMember(ctx context.Context, guildID string) (Member, error)

	CreateRole(ctx context.Context, guildID string, params RoleParams, reason string) (Role, error)
	ModifyRole(ctx context.Context, guildID, roleID string, params RoleParams, reason string) (Role, error)
	DeleteRole(ctx context.Context, guildID, roleID, reason string) error

	CreateChannel(ctx context.Context, guildID string, params ChannelParams, reason string) (Channel, error)
	ModifyChannel(ctx context.Context, channelID string, params ChannelParams, reason string) (Channel, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
	EditChannelPermission(ctx context.Context, channelID string, params OverwriteParams, reason string) error
	DeleteChannelPermission(ctx context.Context, channelID, overwriteID, reason string) error
}
