package guildbuild

import (
	"context"
	"errors"
)

// ErrNotFoundOnTarget is returned (possibly wrapped) by a Target when the
// addressed role, channel or overwrite does not exist anymore.
var ErrNotFoundOnTarget = errors.New("not found on the server")

// Target is the server a build is applied to. Implementations talk to the
// Discord API; every method is a single blocking call.
type Target interface {
	GuildID() string

	FetchRoles(ctx context.Context) ([]LiveRole, error)
	FetchChannels(ctx context.Context) ([]LiveChannel, error)

	CreateRole(ctx context.Context, spec RoleSpec) (LiveRole, error)
	EditRole(ctx context.Context, roleID string, spec RoleSpec) error
	DeleteRole(ctx context.Context, roleID string) error

	CreateChannel(ctx context.Context, spec ChannelSpec) (LiveChannel, error)
	EditChannel(ctx context.Context, channelID string, spec ChannelSpec) error
	DeleteChannel(ctx context.Context, channelID string) error

	// SetChannelOverwrite replaces the overwrite of one role on a channel.
	SetChannelOverwrite(ctx context.Context, channelID string, overwrite OverwriteSpec) error
	DeleteChannelOverwrite(ctx context.Context, channelID, roleID string) error

	// Capabilities describes what the bot itself is allowed to do.
	Capabilities(ctx context.Context) (Capabilities, error)
}

type LiveRole struct {
	ID          string
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
	Position    int
	Permissions int64
}

type LiveChannel struct {
	ID         string
	Name       string
	Kind       ChannelKind
	Topic      string
	ParentID   string
	Position   int
	Overwrites []LiveOverwrite
}

type LiveOverwrite struct {
	ID     string
	IsRole bool
	Allow  int64
	Deny   int64
}

// RoleSpec fields left nil are not sent.
type RoleSpec struct {
	Name        string
	Color       *int
	Hoist       *bool
	Mentionable *bool
}

// ChannelSpec fields left empty are not sent. Overwrites are only used on
// creation.
type ChannelSpec struct {
	Name       string
	Kind       ChannelKind
	Topic      *string
	Bitrate    *int
	ParentID   string
	Overwrites []OverwriteSpec
}

type OverwriteSpec struct {
	RoleID string
	Allow  int64
	Deny   int64
}

type Capabilities struct {
	Permissions         int64
	HighestRolePosition int
}
