package guildbuild

import (
	"fmt"
	"strconv"
	"strings"
)

type DiffResult struct {
	Roles      RoleDiff     `json:"roles"`
	Categories CategoryDiff `json:"categories"`
	Channels   ChannelDiff  `json:"channels"`

	// Warnings are ambiguities resolved by the diff, such as a template role
	// matching several live roles.
	Warnings []string `json:"warnings,omitempty"`
}

type RoleDiff struct {
	ToCreate []Role         `json:"toCreate"`
	ToUpdate []RoleUpdate   `json:"toUpdate"`
	ToSkip   []SnapshotRole `json:"toSkip"`
}

type RoleUpdate struct {
	Role     Role         `json:"role"`
	Existing SnapshotRole `json:"existing"`
	Changes  RoleChanges  `json:"changes"`
}

// RoleChanges holds the template value of every field that differs.
type RoleChanges struct {
	Color       *int  `json:"color,omitempty"`
	Hoist       *bool `json:"hoist,omitempty"`
	Mentionable *bool `json:"mentionable,omitempty"`
}

func (c RoleChanges) Empty() bool {
	return c.Color == nil && c.Hoist == nil && c.Mentionable == nil
}

// CategoryDiff has no update partition, categories carry only a name.
type CategoryDiff struct {
	ToCreate []Category       `json:"toCreate"`
	ToSkip   []SnapshotChannel `json:"toSkip"`
}

type ChannelDiff struct {
	ToCreate []ChannelCreate  `json:"toCreate"`
	ToUpdate []ChannelUpdate  `json:"toUpdate"`
	ToSkip   []SnapshotChannel `json:"toSkip"`
}

type ChannelCreate struct {
	CategoryName string  `json:"categoryName"`
	Channel      Channel `json:"channel"`
}

type ChannelUpdate struct {
	CategoryName string          `json:"categoryName"`
	Channel      Channel         `json:"channel"`
	Existing     SnapshotChannel `json:"existing"`
	Changes      ChannelChanges  `json:"changes"`
}

type ChannelChanges struct {
	Topic      *string          `json:"topic,omitempty"`
	Overwrites []OverwriteDelta `json:"overwrites,omitempty"`
}

func (c ChannelChanges) Empty() bool {
	return c.Topic == nil && len(c.Overwrites) == 0
}

func (d *DiffResult) HasChanges() bool {
	return len(d.Roles.ToCreate) > 0 || len(d.Roles.ToUpdate) > 0 ||
		len(d.Categories.ToCreate) > 0 ||
		len(d.Channels.ToCreate) > 0 || len(d.Channels.ToUpdate) > 0
}

// MutationCount is the number of operations an execution of d attempts.
func (d *DiffResult) MutationCount() int {
	return len(d.Roles.ToCreate) + len(d.Roles.ToUpdate) + len(d.Categories.ToCreate) +
		len(d.Channels.ToCreate) + len(d.Channels.ToUpdate)
}

// ParseColor converts a hex color with or without the leading # to its
// integer value.
func ParseColor(hex string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", hex)
	}

	return int(v), nil
}

// Diff computes the changes turning snapshot into template. It is pure: the
// same inputs always give the same result and neither input is modified.
func Diff(snapshot *GuildSnapshot, template *Template) *DiffResult {
	result := &DiffResult{
		Roles:      RoleDiff{ToCreate: []Role{}, ToUpdate: []RoleUpdate{}, ToSkip: []SnapshotRole{}},
		Categories: CategoryDiff{ToCreate: []Category{}, ToSkip: []SnapshotChannel{}},
		Channels:   ChannelDiff{ToCreate: []ChannelCreate{}, ToUpdate: []ChannelUpdate{}, ToSkip: []SnapshotChannel{}},
	}

	roleCount := map[string]int{}
	for _, r := range snapshot.Roles {
		roleCount[r.Name]++
	}

	for _, role := range template.Roles {
		existing, ok := snapshot.RoleByName(role.Name)
		if !ok {
			result.Roles.ToCreate = append(result.Roles.ToCreate, role)
			continue
		}

		if roleCount[role.Name] > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"role %q matches %d roles on the server, the highest one is used", role.Name, roleCount[role.Name]))
		}

		changes := diffRole(existing, role)
		if changes.Empty() {
			result.Roles.ToSkip = append(result.Roles.ToSkip, existing)
			continue
		}

		result.Roles.ToUpdate = append(result.Roles.ToUpdate, RoleUpdate{
			Role:     role,
			Existing: existing,
			Changes:  changes,
		})
	}

	for _, category := range template.Categories {
		existing, ok := snapshot.CategoryByName(category.Name)
		if !ok {
			result.Categories.ToCreate = append(result.Categories.ToCreate, category)
			for _, channel := range category.Channels {
				result.Channels.ToCreate = append(result.Channels.ToCreate, ChannelCreate{
					CategoryName: category.Name,
					Channel:      channel,
				})
			}
			continue
		}

		result.Categories.ToSkip = append(result.Categories.ToSkip, existing)
		for _, channel := range category.Channels {
			live, ok := snapshot.ChildByName(existing.ID, channel.Name)
			if !ok {
				result.Channels.ToCreate = append(result.Channels.ToCreate, ChannelCreate{
					CategoryName: category.Name,
					Channel:      channel,
				})
				continue
			}

			changes := diffChannel(live, channel)
			if changes.Empty() {
				result.Channels.ToSkip = append(result.Channels.ToSkip, live)
				continue
			}

			result.Channels.ToUpdate = append(result.Channels.ToUpdate, ChannelUpdate{
				CategoryName: category.Name,
				Channel:      channel,
				Existing:     live,
				Changes:      changes,
			})
		}
	}

	return result
}

func diffRole(existing SnapshotRole, role Role) RoleChanges {
	var changes RoleChanges

	if role.Color != "" {
		if color, err := ParseColor(role.Color); err == nil && color != existing.Color {
			changes.Color = &color
		}
	}

	if role.Hoist != nil && *role.Hoist != existing.Hoist {
		hoist := *role.Hoist
		changes.Hoist = &hoist
	}

	if role.Mentionable != nil && *role.Mentionable != existing.Mentionable {
		mentionable := *role.Mentionable
		changes.Mentionable = &mentionable
	}

	return changes
}

func diffChannel(existing SnapshotChannel, channel Channel) ChannelChanges {
	var changes ChannelChanges

	if channel.Topic != nil && channel.Kind.HasTopic() && *channel.Topic != existing.Topic {
		topic := *channel.Topic
		changes.Topic = &topic
	}

	changes.Overwrites = DiffOverwrites(existing.Overwrites, channel.Overwrites)
	if len(changes.Overwrites) == 0 {
		changes.Overwrites = nil
	}

	return changes
}
