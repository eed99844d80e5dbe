package discord

type Role struct {
	ID          string
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
	Managed     bool
	Position    int
	Permissions int64
}

type Channel struct {
	ID                   string
	Name                 string
	Type                 int
	Topic                string
	ParentID             string
	Position             int
	Bitrate              int
	PermissionOverwrites []PermissionOverwrite
}

// PermissionOverwrite.Type is 0 for a role and 1 for a member.
type PermissionOverwrite struct {
	ID    string
	Type  int
	Allow int64
	Deny  int64
}

type Member struct {
	UserID string
	Roles  []string
}

type RoleParams struct {
	Name        string `json:"name,omitempty"`
	Color       *int   `json:"color,omitempty"`
	Hoist       *bool  `json:"hoist,omitempty"`
	Mentionable *bool  `json:"mentionable,omitempty"`
}

type ChannelParams struct {
	Name                 string            `json:"name,omitempty"`
	Type                 *int              `json:"type,omitempty"`
	Topic                *string           `json:"topic,omitempty"`
	Bitrate              *int              `json:"bitrate,omitempty"`
	ParentID             string            `json:"parent_id,omitempty"`
	PermissionOverwrites []OverwriteParams `json:"permission_overwrites,omitempty"`
}

type OverwriteParams struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}
