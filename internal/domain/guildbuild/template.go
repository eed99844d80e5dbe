package guildbuild

import (
	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/pkg/enum"
)

const TemplateVersion = "1"

// EveryoneRoleName is how templates and snapshots refer to the implicit role
// every member has.
const EveryoneRoleName = "@everyone"

type ChannelKind string

var (
	ChannelKindText     = enum.New(ChannelKind("text"))
	ChannelKindVoice    = enum.New(ChannelKind("voice"))
	ChannelKindForum    = enum.New(ChannelKind("forum"))
	ChannelKindCategory = enum.New(ChannelKind("category"))
)

var channelKindTypes = map[ChannelKind]discordgo.ChannelType{
	ChannelKindText:     discordgo.ChannelTypeGuildText,
	ChannelKindVoice:    discordgo.ChannelTypeGuildVoice,
	ChannelKindForum:    discordgo.ChannelTypeGuildForum,
	ChannelKindCategory: discordgo.ChannelTypeGuildCategory,
}

// ChannelType returns the Discord channel type of kind.
func (k ChannelKind) ChannelType() (discordgo.ChannelType, bool) {
	t, ok := channelKindTypes[k]
	return t, ok
}

// KindOf is the reverse of ChannelType. Channel types outside the
// vocabulary are reported as not ok.
func KindOf(t discordgo.ChannelType) (ChannelKind, bool) {
	for kind, channelType := range channelKindTypes {
		if channelType == t {
			return kind, true
		}
	}

	return "", false
}

// HasTopic reports whether channels of this kind carry a topic.
func (k ChannelKind) HasTopic() bool {
	return k == ChannelKindText || k == ChannelKindForum
}

type Template struct {
	Version    string     `json:"version" mapstructure:"version"`
	Name       string     `json:"name" mapstructure:"name"`
	Roles      []Role     `json:"roles" mapstructure:"roles"`
	Categories []Category `json:"categories" mapstructure:"categories"`
}

type Role struct {
	Name        string `json:"name" mapstructure:"name"`
	Color       string `json:"color,omitempty" mapstructure:"color"`
	Hoist       *bool  `json:"hoist,omitempty" mapstructure:"hoist"`
	Mentionable *bool  `json:"mentionable,omitempty" mapstructure:"mentionable"`
}

type Category struct {
	Name     string    `json:"name" mapstructure:"name"`
	Channels []Channel `json:"channels" mapstructure:"channels"`
}

type Channel struct {
	Name       string      `json:"name" mapstructure:"name"`
	Kind       ChannelKind `json:"kind" mapstructure:"kind"`
	Topic      *string     `json:"topic,omitempty" mapstructure:"topic"`
	Bitrate    *int        `json:"bitrate,omitempty" mapstructure:"bitrate"`
	Overwrites []Overwrite `json:"overwrites,omitempty" mapstructure:"overwrites"`
}

// Overwrite holds canonical flag names. RoleName is a template role name or
// EveryoneRoleName.
type Overwrite struct {
	RoleName string   `json:"roleName" mapstructure:"roleName"`
	Allow    []string `json:"allow" mapstructure:"allow"`
	Deny     []string `json:"deny" mapstructure:"deny"`

	// UnknownAllow and UnknownDeny are live bits without a canonical name.
	// Only snapshots set them, they are kept as is by updates and rollbacks.
	UnknownAllow int64 `json:"unknownAllow,omitempty" mapstructure:"-"`
	UnknownDeny  int64 `json:"unknownDeny,omitempty" mapstructure:"-"`
}
