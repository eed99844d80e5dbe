package mocks

import (
	"context"

	"github.com/neko-jpg/schoolfestival-bot/pkg/api/discord"
	"github.com/stretchr/testify/mock"
)

type DiscordEndpoint struct {
	mock.Mock
}

func (e *DiscordEndpoint) GetGuildRoles(arg1 context.Context, arg2 string) ([]discord.Role, error) {
	args := e.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]discord.Role), args.Error(1)
}

func (e *DiscordEndpoint) GetGuildChannels(arg1 context.Context, arg2 string) ([]discord.Channel, error) {
	args := e.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]discord.Channel), args.Error(1)
}

func (e *DiscordEndpoint) GetMember(arg1 context.Context, arg2, arg3 string) (discord.Member, error) {
	args := e.Called(arg1, arg2, arg3)

	if args.Get(0) == nil {
		return discord.Member{}, args.Error(1)
	}
	return args.Get(0).(discord.Member), args.Error(1)
}

func (e *DiscordEndpoint) GetBotMember(arg1 context.Context, arg2 string) (discord.Member, error) {
	args := e.Called(arg1, arg2)

	if args.Get(0) == nil {
		return discord.Member{}, args.Error(1)
	}
	return args.Get(0).(discord.Member), args.Error(1)
}

func (e *DiscordEndpoint) CreateRole(
	arg1 context.Context, arg2 string, arg3 discord.RoleParams, arg4 string,
) (discord.Role, error) {
	args := e.Called(arg1, arg2, arg3, arg4)

	if args.Get(0) == nil {
		return discord.Role{}, args.Error(1)
	}
	return args.Get(0).(discord.Role), args.Error(1)
}

func (e *DiscordEndpoint) ModifyRole(
	arg1 context.Context, arg2, arg3 string, arg4 discord.RoleParams, arg5 string,
) (discord.Role, error) {
	args := e.Called(arg1, arg2, arg3, arg4, arg5)

	if args.Get(0) == nil {
		return discord.Role{}, args.Error(1)
	}
	return args.Get(0).(discord.Role), args.Error(1)
}

func (e *DiscordEndpoint) DeleteRole(arg1 context.Context, arg2, arg3, arg4 string) error {
	args := e.Called(arg1, arg2, arg3, arg4)
	return args.Error(0)
}

func (e *DiscordEndpoint) CreateChannel(
	arg1 context.Context, arg2 string, arg3 discord.ChannelParams, arg4 string,
) (discord.Channel, error) {
	args := e.Called(arg1, arg2, arg3, arg4)

	if args.Get(0) == nil {
		return discord.Channel{}, args.Error(1)
	}
	return args.Get(0).(discord.Channel), args.Error(1)
}

func (e *DiscordEndpoint) ModifyChannel(
	arg1 context.Context, arg2 string, arg3 discord.ChannelParams, arg4 string,
) (discord.Channel, error) {
	args := e.Called(arg1, arg2, arg3, arg4)

	if args.Get(0) == nil {
		return discord.Channel{}, args.Error(1)
	}
	return args.Get(0).(discord.Channel), args.Error(1)
}

func (e *DiscordEndpoint) DeleteChannel(arg1 context.Context, arg2, arg3 string) error {
	args := e.Called(arg1, arg2, arg3)
	return args.Error(0)
}

func (e *DiscordEndpoint) EditChannelPermission(
	arg1 context.Context, arg2 string, arg3 discord.OverwriteParams, arg4 string,
) error {
	args := e.Called(arg1, arg2, arg3, arg4)
	return args.Error(0)
}

func (e *DiscordEndpoint) DeleteChannelPermission(arg1 context.Context, arg2, arg3, arg4 string) error {
	args := e.Called(arg1, arg2, arg3, arg4)
	return args.Error(0)
}
