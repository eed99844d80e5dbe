package discord

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/neko-jpg/schoolfestival-bot/config"
	"github.com/neko-jpg/schoolfestival-bot/pkg/api"
	"github.com/puzpuzpuz/xsync"
)

const apiURL = "https://discord.com/api/v10"
const userAgent = "DiscordBot (https://github.com/neko-jpg/schoolfestival-bot, 1.0)"

// Resources sharing a rate limit bucket.
const (
	guildRolesResource    = "guild_roles"
	guildChannelsResource = "guild_channels"
	channelResource       = "channel"
	memberResource        = "member"
)

type Endpoint struct {
	BotToken string
	BotID    string

	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) *Endpoint {
	return &Endpoint{
		BotToken:          cfg.BotToken,
		BotID:             cfg.ClientID,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

func (e *Endpoint) GetGuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	resp, err := e.call(ctx, guildRolesResource, guildID, http.MethodGet, nil, "",
		"/guilds/%s/roles", guildID)
	if err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	roles := make([]Role, 0, len(array))
	for _, obj := range array {
		role, err := parseRole(obj)
		if err != nil {
			return nil, err
		}

		roles = append(roles, role)
	}

	return roles, nil
}

func (e *Endpoint) GetGuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	resp, err := e.call(ctx, guildChannelsResource, guildID, http.MethodGet, nil, "",
		"/guilds/%s/channels", guildID)
	if err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	channels := make([]Channel, 0, len(array))
	for _, obj := range array {
		channel, err := parseChannel(obj)
		if err != nil {
			return nil, err
		}

		channels = append(channels, channel)
	}

	return channels, nil
}

func (e *Endpoint) GetMember(ctx context.Context, guildID, userID string) (Member, error) {
	resp, err := e.call(ctx, memberResource, guildID, http.MethodGet, nil, "",
		"/guilds/%s/members/%s", guildID, userID)
	if err != nil {
		return Member{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Member{}, errors.New("invalid response")
	}

	id, err := body.GetString("user.id")
	if err != nil {
		return Member{}, err
	}

	roles, err := body.GetStringArray("roles")
	if err != nil {
		return Member{}, err
	}

	return Member{UserID: id, Roles: roles}, nil
}

func (e *Endpoint) GetBotMember(ctx context.Context, guildID string) (Member, error) {
	return e.GetMember(ctx, guildID, e.BotID)
}

func (e *Endpoint) CreateRole(
	ctx context.Context, guildID string, params RoleParams, reason string,
) (Role, error) {
	resp, err := e.call(ctx, guildRolesResource, guildID, http.MethodPost, api.NewJSON(params), reason,
		"/guilds/%s/roles", guildID)
	if err != nil {
		return Role{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Role{}, errors.New("invalid response")
	}

	return parseRole(body)
}

func (e *Endpoint) ModifyRole(
	ctx context.Context, guildID, roleID string, params RoleParams, reason string,
) (Role, error) {
	resp, err := e.call(ctx, guildRolesResource, guildID, http.MethodPatch, api.NewJSON(params), reason,
		"/guilds/%s/roles/%s", guildID, roleID)
	if err != nil {
		return Role{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Role{}, errors.New("invalid response")
	}

	return parseRole(body)
}

func (e *Endpoint) DeleteRole(ctx context.Context, guildID, roleID, reason string) error {
	_, err := e.call(ctx, guildRolesResource, guildID, http.MethodDelete, nil, reason,
		"/guilds/%s/roles/%s", guildID, roleID)
	return err
}

func (e *Endpoint) CreateChannel(
	ctx context.Context, guildID string, params ChannelParams, reason string,
) (Channel, error) {
	resp, err := e.call(ctx, guildChannelsResource, guildID, http.MethodPost, api.NewJSON(params), reason,
		"/guilds/%s/channels", guildID)
	if err != nil {
		return Channel{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Channel{}, errors.New("invalid response")
	}

	return parseChannel(body)
}

func (e *Endpoint) ModifyChannel(
	ctx context.Context, channelID string, params ChannelParams, reason string,
) (Channel, error) {
	resp, err := e.call(ctx, channelResource, channelID, http.MethodPatch, api.NewJSON(params), reason,
		"/channels/%s", channelID)
	if err != nil {
		return Channel{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Channel{}, errors.New("invalid response")
	}

	return parseChannel(body)
}

func (e *Endpoint) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := e.call(ctx, channelResource, channelID, http.MethodDelete, nil, reason,
		"/channels/%s", channelID)
	return err
}

func (e *Endpoint) EditChannelPermission(
	ctx context.Context, channelID string, params OverwriteParams, reason string,
) error {
	body := api.JSON{"type": params.Type, "allow": params.Allow, "deny": params.Deny}
	_, err := e.call(ctx, channelResource, channelID, http.MethodPut, body, reason,
		"/channels/%s/permissions/%s", channelID, params.ID)
	return err
}

func (e *Endpoint) DeleteChannelPermission(
	ctx context.Context, channelID, overwriteID, reason string,
) error {
	_, err := e.call(ctx, channelResource, channelID, http.MethodDelete, nil, reason,
		"/channels/%s/permissions/%s", channelID, overwriteID)
	return err
}

// call sends one request guarded by the rate limit bookkeeping of resource
// and converts non-2xx answers to APIError.
func (e *Endpoint) call(
	ctx context.Context,
	resource, identifier, method string,
	body api.Body,
	reason string,
	path string, args ...any,
) (*api.Response, error) {
	if err := e.checkLimitingResource(resource, identifier); err != nil {
		return nil, err
	}

	client := e.apiGenerator.New(apiURL, path, args...).Header("User-Agent", userAgent)
	if body != nil {
		client = client.Body(body)
	}

	opts := []api.Opt{api.OAuth2("Bot", e.BotToken), api.AuditLogReason(reason)}

	var resp *api.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = client.GET(ctx, opts...)
	case http.MethodPost:
		resp, err = client.POST(ctx, opts...)
	case http.MethodPut:
		resp, err = client.PUT(ctx, opts...)
	case http.MethodPatch:
		resp, err = client.PATCH(ctx, opts...)
	case http.MethodDelete:
		resp, err = client.DELETE(ctx, opts...)
	default:
		return nil, errors.New("unsupported method " + method)
	}
	if err != nil {
		return nil, err
	}

	if err := e.checkTooManyRequest(resp, resource, identifier); err != nil {
		return nil, err
	}

	if resp.Code >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.Code}
		if obj, ok := resp.Body.(api.JSON); ok {
			apiErr.Code, _ = obj.GetInt("code")
			apiErr.Message, _ = obj.GetString("message")
		}
		return nil, apiErr
	}

	return resp, nil
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return wrapRateLimit(resetAt)
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource, identifier string) error {
	if resp.Code != http.StatusTooManyRequests {
		return nil
	}

	var resetAt time.Time
	if after, ok := parseSeconds(resp.Header.Get("X-Ratelimit-Reset-After")); ok {
		resetAt = time.Now().Add(after)
	} else if epoch, ok := parseSeconds(resp.Header.Get("X-Ratelimit-Reset")); ok {
		resetAt = time.Unix(0, 0).Add(epoch)
	} else if obj, ok := resp.Body.(api.JSON); ok {
		retryAfter, _ := obj.Get("retry_after")
		if f, ok := retryAfter.(float64); ok {
			resetAt = time.Now().Add(time.Duration(f * float64(time.Second)))
		}
	}

	if resetAt.IsZero() {
		resetAt = time.Now().Add(time.Second)
	}

	resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
	resourceLimiter.Store(identifier, resetAt)
	return wrapRateLimit(resetAt)
}

func parseRole(obj api.JSON) (Role, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Role{}, err
	}

	name, err := obj.GetString("name")
	if err != nil {
		return Role{}, err
	}

	color, _ := obj.GetInt("color")
	position, _ := obj.GetInt("position")
	hoist, _ := obj.GetBool("hoist")
	mentionable, _ := obj.GetBool("mentionable")
	managed, _ := obj.GetBool("managed")

	permissionString, _ := obj.GetString("permissions")
	permissions, err := parsePermissions(permissionString)
	if err != nil {
		return Role{}, err
	}

	return Role{
		ID:          id,
		Name:        name,
		Color:       color,
		Hoist:       hoist,
		Mentionable: mentionable,
		Managed:     managed,
		Position:    position,
		Permissions: permissions,
	}, nil
}

func parseChannel(obj api.JSON) (Channel, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return Channel{}, err
	}

	name, _ := obj.GetString("name")
	channelType, err := obj.GetInt("type")
	if err != nil {
		return Channel{}, err
	}

	topic, _ := obj.GetString("topic")
	parentID, _ := obj.GetString("parent_id")
	position, _ := obj.GetInt("position")
	bitrate, _ := obj.GetInt("bitrate")

	var overwrites []PermissionOverwrite
	if _, ok := obj["permission_overwrites"]; ok {
		array, err := obj.GetArray("permission_overwrites")
		if err != nil {
			return Channel{}, err
		}

		for _, o := range array {
			overwrite, err := parseOverwrite(o)
			if err != nil {
				return Channel{}, err
			}
			overwrites = append(overwrites, overwrite)
		}
	}

	return Channel{
		ID:                   id,
		Name:                 name,
		Type:                 channelType,
		Topic:                topic,
		ParentID:             parentID,
		Position:             position,
		Bitrate:              bitrate,
		PermissionOverwrites: overwrites,
	}, nil
}

func parseOverwrite(obj api.JSON) (PermissionOverwrite, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return PermissionOverwrite{}, err
	}

	overwriteType, err := obj.GetInt("type")
	if err != nil {
		return PermissionOverwrite{}, err
	}

	allowString, _ := obj.GetString("allow")
	allow, err := parsePermissions(allowString)
	if err != nil {
		return PermissionOverwrite{}, err
	}

	denyString, _ := obj.GetString("deny")
	deny, err := parsePermissions(denyString)
	if err != nil {
		return PermissionOverwrite{}, err
	}

	return PermissionOverwrite{ID: id, Type: overwriteType, Allow: allow, Deny: deny}, nil
}

// FormatOverwrite converts permission bits for an overwrite request.
func FormatOverwrite(id string, overwriteType int, allow, deny int64) OverwriteParams {
	return OverwriteParams{
		ID:    id,
		Type:  overwriteType,
		Allow: formatPermissions(allow),
		Deny:  formatPermissions(deny),
	}
}
