package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
)

// FakeGuild is an in-memory guildbuild.Target.
type FakeGuild struct {
	mu sync.Mutex

	ID       string
	Roles    []guildbuild.LiveRole
	Channels []guildbuild.LiveChannel
	Caps     guildbuild.Capabilities

	// Errors makes an operation fail. Keys are "FetchRoles", "FetchChannels",
	// "Capabilities" or an operation name and the item name, for example
	// "CreateRole:AdminOps" or "EditChannel:news".
	Errors map[string]error

	// Hooks run after a successful operation, keyed like Errors. They run with
	// the guild locked and must change its fields directly.
	Hooks map[string]func(*FakeGuild)

	// Mutations counts every mutating call, failed or not.
	Mutations int

	nextID int
}

// NewFakeGuild returns a guild holding only @everyone, where the bot is an
// administrator above every role.
func NewFakeGuild(guildID string) *FakeGuild {
	return &FakeGuild{
		ID: guildID,
		Roles: []guildbuild.LiveRole{
			{ID: guildID, Name: guildbuild.EveryoneRoleName, Position: 0},
		},
		Caps: guildbuild.Capabilities{
			Permissions:         discordgo.PermissionAdministrator,
			HighestRolePosition: 100,
		},
		Errors: map[string]error{},
		Hooks:  map[string]func(*FakeGuild){},
	}
}

func (g *FakeGuild) newID() string {
	g.nextID++
	return strconv.Itoa(1200000000000000000 + g.nextID)
}

func (g *FakeGuild) runHook(op, name string) {
	if hook, ok := g.Hooks[op+":"+name]; ok {
		hook(g)
	}
}

func (g *FakeGuild) injected(op, name string) error {
	if err, ok := g.Errors[op]; ok {
		return err
	}

	if err, ok := g.Errors[op+":"+name]; ok {
		return err
	}

	return nil
}

// AddRole seeds a role and returns its id.
func (g *FakeGuild) AddRole(role guildbuild.LiveRole) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if role.ID == "" {
		role.ID = g.newID()
	}
	g.Roles = append(g.Roles, role)
	return role.ID
}

// AddChannel seeds a channel and returns its id.
func (g *FakeGuild) AddChannel(channel guildbuild.LiveChannel) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if channel.ID == "" {
		channel.ID = g.newID()
	}
	g.Channels = append(g.Channels, channel)
	return channel.ID
}

func (g *FakeGuild) RoleByName(name string) (guildbuild.LiveRole, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.Roles {
		if r.Name == name {
			return r, true
		}
	}

	return guildbuild.LiveRole{}, false
}

func (g *FakeGuild) ChannelByName(name string) (guildbuild.LiveChannel, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range g.Channels {
		if c.Name == name {
			return copyChannel(c), true
		}
	}

	return guildbuild.LiveChannel{}, false
}

func (g *FakeGuild) GuildID() string {
	return g.ID
}

func (g *FakeGuild) FetchRoles(ctx context.Context) ([]guildbuild.LiveRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.injected("FetchRoles", ""); err != nil {
		return nil, err
	}

	return append([]guildbuild.LiveRole{}, g.Roles...), nil
}

func (g *FakeGuild) FetchChannels(ctx context.Context) ([]guildbuild.LiveChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.injected("FetchChannels", ""); err != nil {
		return nil, err
	}

	channels := make([]guildbuild.LiveChannel, 0, len(g.Channels))
	for _, c := range g.Channels {
		channels = append(channels, copyChannel(c))
	}

	return channels, nil
}

func (g *FakeGuild) CreateRole(ctx context.Context, spec guildbuild.RoleSpec) (guildbuild.LiveRole, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	if err := g.injected("CreateRole", spec.Name); err != nil {
		return guildbuild.LiveRole{}, err
	}

	role := guildbuild.LiveRole{ID: g.newID(), Name: spec.Name, Position: 1}
	applyRoleSpec(&role, spec)
	g.Roles = append(g.Roles, role)
	g.runHook("CreateRole", spec.Name)

	return role, nil
}

func (g *FakeGuild) EditRole(ctx context.Context, roleID string, spec guildbuild.RoleSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	for i := range g.Roles {
		if g.Roles[i].ID != roleID {
			continue
		}

		if err := g.injected("EditRole", g.Roles[i].Name); err != nil {
			return err
		}

		applyRoleSpec(&g.Roles[i], spec)
		return nil
	}

	return fmt.Errorf("role %s: %w", roleID, guildbuild.ErrNotFoundOnTarget)
}

func (g *FakeGuild) DeleteRole(ctx context.Context, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	for i, r := range g.Roles {
		if r.ID != roleID {
			continue
		}

		if err := g.injected("DeleteRole", r.Name); err != nil {
			return err
		}

		g.Roles = append(g.Roles[:i], g.Roles[i+1:]...)
		for j := range g.Channels {
			g.Channels[j].Overwrites = withoutOverwrite(g.Channels[j].Overwrites, roleID)
		}
		return nil
	}

	return fmt.Errorf("role %s: %w", roleID, guildbuild.ErrNotFoundOnTarget)
}

func (g *FakeGuild) CreateChannel(ctx context.Context, spec guildbuild.ChannelSpec) (guildbuild.LiveChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	if err := g.injected("CreateChannel", spec.Name); err != nil {
		return guildbuild.LiveChannel{}, err
	}

	channel := guildbuild.LiveChannel{
		ID:         g.newID(),
		Name:       spec.Name,
		Kind:       spec.Kind,
		ParentID:   spec.ParentID,
		Position:   len(g.Channels),
		Overwrites: []guildbuild.LiveOverwrite{},
	}
	if spec.Topic != nil {
		channel.Topic = *spec.Topic
	}

	for _, o := range spec.Overwrites {
		channel.Overwrites = append(channel.Overwrites, guildbuild.LiveOverwrite{
			ID: o.RoleID, IsRole: true, Allow: o.Allow, Deny: o.Deny,
		})
	}

	g.Channels = append(g.Channels, channel)
	g.runHook("CreateChannel", spec.Name)

	return copyChannel(channel), nil
}

func (g *FakeGuild) EditChannel(ctx context.Context, channelID string, spec guildbuild.ChannelSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	c, ok := g.channel(channelID)
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, guildbuild.ErrNotFoundOnTarget)
	}

	if err := g.injected("EditChannel", c.Name); err != nil {
		return err
	}

	if spec.Name != "" {
		c.Name = spec.Name
	}
	if spec.Topic != nil {
		c.Topic = *spec.Topic
	}

	return nil
}

func (g *FakeGuild) DeleteChannel(ctx context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	for i, c := range g.Channels {
		if c.ID != channelID {
			continue
		}

		if err := g.injected("DeleteChannel", c.Name); err != nil {
			return err
		}

		g.Channels = append(g.Channels[:i], g.Channels[i+1:]...)

		// Children of a deleted category are kept without a parent.
		for j := range g.Channels {
			if g.Channels[j].ParentID == channelID {
				g.Channels[j].ParentID = ""
			}
		}
		return nil
	}

	return fmt.Errorf("channel %s: %w", channelID, guildbuild.ErrNotFoundOnTarget)
}

func (g *FakeGuild) SetChannelOverwrite(
	ctx context.Context, channelID string, overwrite guildbuild.OverwriteSpec,
) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	c, ok := g.channel(channelID)
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, guildbuild.ErrNotFoundOnTarget)
	}

	if err := g.injected("SetChannelOverwrite", c.Name); err != nil {
		return err
	}

	c.Overwrites = append(withoutOverwrite(c.Overwrites, overwrite.RoleID), guildbuild.LiveOverwrite{
		ID: overwrite.RoleID, IsRole: true, Allow: overwrite.Allow, Deny: overwrite.Deny,
	})
	return nil
}

func (g *FakeGuild) DeleteChannelOverwrite(ctx context.Context, channelID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Mutations++
	c, ok := g.channel(channelID)
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, guildbuild.ErrNotFoundOnTarget)
	}

	if err := g.injected("DeleteChannelOverwrite", c.Name); err != nil {
		return err
	}

	remaining := withoutOverwrite(c.Overwrites, roleID)
	if len(remaining) == len(c.Overwrites) {
		return fmt.Errorf("overwrite %s: %w", roleID, guildbuild.ErrNotFoundOnTarget)
	}

	c.Overwrites = remaining
	return nil
}

func (g *FakeGuild) Capabilities(ctx context.Context) (guildbuild.Capabilities, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.injected("Capabilities", ""); err != nil {
		return guildbuild.Capabilities{}, err
	}

	return g.Caps, nil
}

func (g *FakeGuild) channel(id string) (*guildbuild.LiveChannel, bool) {
	for i := range g.Channels {
		if g.Channels[i].ID == id {
			return &g.Channels[i], true
		}
	}

	return nil, false
}

func applyRoleSpec(role *guildbuild.LiveRole, spec guildbuild.RoleSpec) {
	if spec.Name != "" {
		role.Name = spec.Name
	}
	if spec.Color != nil {
		role.Color = *spec.Color
	}
	if spec.Hoist != nil {
		role.Hoist = *spec.Hoist
	}
	if spec.Mentionable != nil {
		role.Mentionable = *spec.Mentionable
	}
}

func withoutOverwrite(overwrites []guildbuild.LiveOverwrite, id string) []guildbuild.LiveOverwrite {
	result := []guildbuild.LiveOverwrite{}
	for _, o := range overwrites {
		if o.ID != id {
			result = append(result, o)
		}
	}

	return result
}

func copyChannel(c guildbuild.LiveChannel) guildbuild.LiveChannel {
	c.Overwrites = append([]guildbuild.LiveOverwrite{}, c.Overwrites...)
	return c
}
