package client

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/pkg/api/discord"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
)

const (
	maxRateLimitRetries = 3
	maxRateLimitWait    = 30 * time.Second
)

// AuditReason is written to the audit log of every mutation.
const AuditReason = "school festival template build"

type guildTarget struct {
	endpoint discord.IEndpoint
	guildID  string
}

// NewGuildTarget returns the guildbuild.Target of one guild reached through
// endpoint.
func NewGuildTarget(endpoint discord.IEndpoint, guildID string) *guildTarget {
	return &guildTarget{endpoint: endpoint, guildID: guildID}
}

func (t *guildTarget) GuildID() string {
	return t.guildID
}

// retry calls f again while it fails on a rate limit, waiting for the limit
// to reset. Limits resetting too far in the future are returned as is.
func retry[T any](ctx context.Context, f func() (T, error)) (T, error) {
	for i := 0; ; i++ {
		result, err := f()
		resetAt, limited := discord.IsRateLimit(err)
		if !limited || i >= maxRateLimitRetries {
			return result, translate(err)
		}

		wait := time.Until(resetAt)
		if wait > maxRateLimitWait {
			return result, err
		}

		xcontext.Logger(ctx).Debugf("Rate limited, retry in %s", wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryErr(ctx context.Context, f func() error) error {
	_, err := retry(ctx, func() (struct{}, error) {
		return struct{}{}, f()
	})
	return err
}

func translate(err error) error {
	if discord.IsNotFound(err) {
		return fmt.Errorf("%w: %v", guildbuild.ErrNotFoundOnTarget, err)
	}

	return err
}

func (t *guildTarget) FetchRoles(ctx context.Context) ([]guildbuild.LiveRole, error) {
	roles, err := retry(ctx, func() ([]discord.Role, error) {
		return t.endpoint.GetGuildRoles(ctx, t.guildID)
	})
	if err != nil {
		return nil, err
	}

	result := make([]guildbuild.LiveRole, 0, len(roles))
	for _, r := range roles {
		result = append(result, guildbuild.LiveRole{
			ID:          r.ID,
			Name:        r.Name,
			Color:       r.Color,
			Hoist:       r.Hoist,
			Mentionable: r.Mentionable,
			Position:    r.Position,
			Permissions: r.Permissions,
		})
	}

	return result, nil
}

func (t *guildTarget) FetchChannels(ctx context.Context) ([]guildbuild.LiveChannel, error) {
	channels, err := retry(ctx, func() ([]discord.Channel, error) {
		return t.endpoint.GetGuildChannels(ctx, t.guildID)
	})
	if err != nil {
		return nil, err
	}

	result := make([]guildbuild.LiveChannel, 0, len(channels))
	for _, c := range channels {
		// Kinds outside the vocabulary keep an empty kind and are dropped by
		// the snapshot.
		kind, _ := guildbuild.KindOf(discordgo.ChannelType(c.Type))

		channel := guildbuild.LiveChannel{
			ID:         c.ID,
			Name:       c.Name,
			Kind:       kind,
			Topic:      c.Topic,
			ParentID:   c.ParentID,
			Position:   c.Position,
			Overwrites: make([]guildbuild.LiveOverwrite, 0, len(c.PermissionOverwrites)),
		}

		for _, o := range c.PermissionOverwrites {
			channel.Overwrites = append(channel.Overwrites, guildbuild.LiveOverwrite{
				ID:     o.ID,
				IsRole: o.Type == 0,
				Allow:  o.Allow,
				Deny:   o.Deny,
			})
		}

		result = append(result, channel)
	}

	return result, nil
}

func (t *guildTarget) CreateRole(ctx context.Context, spec guildbuild.RoleSpec) (guildbuild.LiveRole, error) {
	role, err := retry(ctx, func() (discord.Role, error) {
		return t.endpoint.CreateRole(ctx, t.guildID, roleParams(spec), AuditReason)
	})
	if err != nil {
		return guildbuild.LiveRole{}, err
	}

	return guildbuild.LiveRole{
		ID:          role.ID,
		Name:        role.Name,
		Color:       role.Color,
		Hoist:       role.Hoist,
		Mentionable: role.Mentionable,
		Position:    role.Position,
		Permissions: role.Permissions,
	}, nil
}

func (t *guildTarget) EditRole(ctx context.Context, roleID string, spec guildbuild.RoleSpec) error {
	_, err := retry(ctx, func() (discord.Role, error) {
		return t.endpoint.ModifyRole(ctx, t.guildID, roleID, roleParams(spec), AuditReason)
	})
	return err
}

func (t *guildTarget) DeleteRole(ctx context.Context, roleID string) error {
	return retryErr(ctx, func() error {
		return t.endpoint.DeleteRole(ctx, t.guildID, roleID, AuditReason)
	})
}

func (t *guildTarget) CreateChannel(ctx context.Context, spec guildbuild.ChannelSpec) (guildbuild.LiveChannel, error) {
	params, err := channelParams(spec)
	if err != nil {
		return guildbuild.LiveChannel{}, err
	}

	for _, o := range spec.Overwrites {
		params.PermissionOverwrites = append(params.PermissionOverwrites,
			discord.FormatOverwrite(o.RoleID, 0, o.Allow, o.Deny))
	}

	channel, err := retry(ctx, func() (discord.Channel, error) {
		return t.endpoint.CreateChannel(ctx, t.guildID, params, AuditReason)
	})
	if err != nil {
		return guildbuild.LiveChannel{}, err
	}

	return guildbuild.LiveChannel{
		ID:       channel.ID,
		Name:     channel.Name,
		Kind:     spec.Kind,
		Topic:    channel.Topic,
		ParentID: channel.ParentID,
		Position: channel.Position,
	}, nil
}

func (t *guildTarget) EditChannel(ctx context.Context, channelID string, spec guildbuild.ChannelSpec) error {
	params, err := channelParams(spec)
	if err != nil {
		return err
	}

	_, err = retry(ctx, func() (discord.Channel, error) {
		return t.endpoint.ModifyChannel(ctx, channelID, params, AuditReason)
	})
	return err
}

func (t *guildTarget) DeleteChannel(ctx context.Context, channelID string) error {
	return retryErr(ctx, func() error {
		return t.endpoint.DeleteChannel(ctx, channelID, AuditReason)
	})
}

func (t *guildTarget) SetChannelOverwrite(
	ctx context.Context, channelID string, overwrite guildbuild.OverwriteSpec,
) error {
	params := discord.FormatOverwrite(overwrite.RoleID, 0, overwrite.Allow, overwrite.Deny)
	return retryErr(ctx, func() error {
		return t.endpoint.EditChannelPermission(ctx, channelID, params, AuditReason)
	})
}

func (t *guildTarget) DeleteChannelOverwrite(ctx context.Context, channelID, roleID string) error {
	return retryErr(ctx, func() error {
		return t.endpoint.DeleteChannelPermission(ctx, channelID, roleID, AuditReason)
	})
}

// Capabilities folds the permissions of @everyone and of every role of the
// bot member. Channel overwrites are not considered.
func (t *guildTarget) Capabilities(ctx context.Context) (guildbuild.Capabilities, error) {
	member, err := retry(ctx, func() (discord.Member, error) {
		return t.endpoint.GetBotMember(ctx, t.guildID)
	})
	if err != nil {
		return guildbuild.Capabilities{}, err
	}

	roles, err := t.FetchRoles(ctx)
	if err != nil {
		return guildbuild.Capabilities{}, err
	}

	memberRoles := map[string]bool{t.guildID: true}
	for _, id := range member.Roles {
		memberRoles[id] = true
	}

	var capabilities guildbuild.Capabilities
	for _, r := range roles {
		if !memberRoles[r.ID] {
			continue
		}

		capabilities.Permissions |= r.Permissions
		if r.Position > capabilities.HighestRolePosition {
			capabilities.HighestRolePosition = r.Position
		}
	}

	return capabilities, nil
}

func roleParams(spec guildbuild.RoleSpec) discord.RoleParams {
	return discord.RoleParams{
		Name:        spec.Name,
		Color:       spec.Color,
		Hoist:       spec.Hoist,
		Mentionable: spec.Mentionable,
	}
}

func channelParams(spec guildbuild.ChannelSpec) (discord.ChannelParams, error) {
	params := discord.ChannelParams{
		Name:     spec.Name,
		Topic:    spec.Topic,
		Bitrate:  spec.Bitrate,
		ParentID: spec.ParentID,
	}

	if spec.Kind != "" {
		channelType, ok := spec.Kind.ChannelType()
		if !ok {
			return discord.ChannelParams{}, fmt.Errorf("unsupported channel kind %s", spec.Kind)
		}

		t := int(channelType)
		params.Type = &t
	}

	return params, nil
}
