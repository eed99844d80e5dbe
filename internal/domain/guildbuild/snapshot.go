package guildbuild

import (
	"context"
	"sort"

	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// GuildSnapshot is the structural state of a server at one instant, in
// template vocabulary.
type GuildSnapshot struct {
	GuildID        string            `json:"guildId"`
	EveryoneRoleID string            `json:"everyoneRoleId"`
	Roles          []SnapshotRole    `json:"roles"`
	Channels       []SnapshotChannel `json:"channels"`
}

type SnapshotRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Mentionable bool   `json:"mentionable"`
	Position    int    `json:"position"`
}

type SnapshotChannel struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       ChannelKind `json:"kind"`
	Topic      string      `json:"topic,omitempty"`
	ParentID   string      `json:"parentId,omitempty"`
	Position   int         `json:"position"`
	Overwrites []Overwrite `json:"overwrites"`
}

// RoleByName returns the first role named name. Names are not unique on
// Discord, so a template name may match several live roles.
func (s *GuildSnapshot) RoleByName(name string) (SnapshotRole, bool) {
	for _, r := range s.Roles {
		if r.Name == name {
			return r, true
		}
	}

	return SnapshotRole{}, false
}

func (s *GuildSnapshot) RoleByID(id string) (SnapshotRole, bool) {
	for _, r := range s.Roles {
		if r.ID == id {
			return r, true
		}
	}

	return SnapshotRole{}, false
}

func (s *GuildSnapshot) ChannelByID(id string) (SnapshotChannel, bool) {
	for _, c := range s.Channels {
		if c.ID == id {
			return c, true
		}
	}

	return SnapshotChannel{}, false
}

// CategoryByName returns the first category channel named name.
func (s *GuildSnapshot) CategoryByName(name string) (SnapshotChannel, bool) {
	for _, c := range s.Channels {
		if c.Kind == ChannelKindCategory && c.Name == name {
			return c, true
		}
	}

	return SnapshotChannel{}, false
}

// ChildByName returns the first non-category channel named name whose
// parent is parentID.
func (s *GuildSnapshot) ChildByName(parentID, name string) (SnapshotChannel, bool) {
	for _, c := range s.Channels {
		if c.Kind != ChannelKindCategory && c.ParentID == parentID && c.Name == name {
			return c, true
		}
	}

	return SnapshotChannel{}, false
}

// ReadState lists the roles and channels of target concurrently and converts
// them to a snapshot. It never mutates the target.
func ReadState(ctx context.Context, target Target) (*GuildSnapshot, error) {
	var roles []LiveRole
	var channels []LiveChannel

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = target.FetchRoles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		channels, err = target.FetchChannels(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read state of guild %s: %v", target.GuildID(), err)
		return nil, &SnapshotReadError{Err: err}
	}

	return buildSnapshot(ctx, target.GuildID(), roles, channels), nil
}

func buildSnapshot(
	ctx context.Context, guildID string, roles []LiveRole, channels []LiveChannel,
) *GuildSnapshot {
	snapshot := &GuildSnapshot{
		GuildID:  guildID,
		Roles:    []SnapshotRole{},
		Channels: []SnapshotChannel{},
	}

	roleNames := map[string]string{}
	for _, r := range roles {
		if r.ID == guildID || r.Name == EveryoneRoleName {
			snapshot.EveryoneRoleID = r.ID
			roleNames[r.ID] = EveryoneRoleName
			continue
		}

		roleNames[r.ID] = r.Name
		snapshot.Roles = append(snapshot.Roles, SnapshotRole{
			ID:          r.ID,
			Name:        r.Name,
			Color:       r.Color,
			Hoist:       r.Hoist,
			Mentionable: r.Mentionable,
			Position:    r.Position,
		})
	}

	if snapshot.EveryoneRoleID == "" {
		snapshot.EveryoneRoleID = guildID
		roleNames[guildID] = EveryoneRoleName
	}

	sort.SliceStable(snapshot.Roles, func(i, j int) bool {
		return snapshot.Roles[i].Position > snapshot.Roles[j].Position
	})

	for _, c := range channels {
		switch c.Kind {
		case ChannelKindCategory, ChannelKindText, ChannelKindVoice, ChannelKindForum:
		default:
			continue
		}

		channel := SnapshotChannel{
			ID:         c.ID,
			Name:       c.Name,
			Kind:       c.Kind,
			ParentID:   c.ParentID,
			Position:   c.Position,
			Overwrites: []Overwrite{},
		}
		if c.Kind.HasTopic() {
			channel.Topic = c.Topic
		}

		for _, o := range c.Overwrites {
			if !o.IsRole {
				continue
			}

			name, ok := roleNames[o.ID]
			if !ok {
				xcontext.Logger(ctx).Warnf("Drop overwrite of unknown role %s on channel %s", o.ID, c.Name)
				continue
			}

			channel.Overwrites = append(channel.Overwrites, Overwrite{
				RoleName:     name,
				Allow:        PermissionNames(o.Allow),
				Deny:         PermissionNames(o.Deny),
				UnknownAllow: UnknownPermissionBits(o.Allow),
				UnknownDeny:  UnknownPermissionBits(o.Deny),
			})
		}

		snapshot.Channels = append(snapshot.Channels, channel)
	}

	sort.SliceStable(snapshot.Channels, func(i, j int) bool {
		return snapshot.Channels[i].Position < snapshot.Channels[j].Position
	})

	return snapshot
}
