package guildbuild

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FileTemplateName selects the template file instead of a built-in.
const FileTemplateName = "standard"

var builtinTemplates = map[string]func(grades int) *Template{
	"bunkasai":  bunkasaiTemplate,
	"taiikusai": taiikusaiTemplate,
	"kyugi":     kyugiTemplate,
}

// BuiltinTemplateNames returns the sorted names of the built-in templates.
func BuiltinTemplateNames() []string {
	names := maps.Keys(builtinTemplates)
	slices.Sort(names)
	return names
}

// BuiltinTemplate returns the named built-in template for 3 or 4 grades.
func BuiltinTemplate(name string, grades int) (*Template, error) {
	build, ok := builtinTemplates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}

	if grades != 3 && grades != 4 {
		return nil, fmt.Errorf("grades must be 3 or 4, got %d", grades)
	}

	return build(grades), nil
}

func boolPtr(b bool) *bool {
	return &b
}

func text(name string, topic ...string) Channel {
	c := Channel{Name: name, Kind: ChannelKindText}
	if len(topic) > 0 {
		c.Topic = &topic[0]
	}
	return c
}

func voice(name string) Channel {
	return Channel{Name: name, Kind: ChannelKindVoice}
}

func withOverwrites(c Channel, overwrites []Overwrite) Channel {
	c.Overwrites = overwrites
	return c
}

const adminRoleName = "AdminOps"

func gradeRoles(grades int) []Role {
	roles := []Role{
		{Name: adminRoleName, Color: "#3498DB", Hoist: boolPtr(true), Mentionable: boolPtr(true)},
	}
	for i := 1; i <= grades; i++ {
		roles = append(roles, Role{Name: fmt.Sprintf("Grade-%d", i)})
	}
	return roles
}

func gradeChannels(grades int) []Channel {
	channels := make([]Channel, 0, grades)
	for i := 1; i <= grades; i++ {
		channels = append(channels, text(fmt.Sprintf("grade-%d", i)))
	}
	return channels
}

// Read-only for everyone, writable by the organizers.
func announcementOverwrites() []Overwrite {
	return []Overwrite{
		{RoleName: EveryoneRoleName, Allow: []string{"ViewChannel", "ReadMessageHistory"}, Deny: []string{"SendMessages"}},
		{RoleName: adminRoleName, Allow: []string{"SendMessages"}, Deny: []string{}},
	}
}

// Visible to the organizers only.
func privateOpsOverwrites() []Overwrite {
	return []Overwrite{
		{RoleName: EveryoneRoleName, Allow: []string{}, Deny: []string{"ViewChannel"}},
		{RoleName: adminRoleName, Allow: []string{"ViewChannel", "SendMessages", "ReadMessageHistory"}, Deny: []string{}},
	}
}

func bunkasaiTemplate(grades int) *Template {
	return &Template{
		Version: TemplateVersion,
		Name:    "文化祭",
		Roles:   gradeRoles(grades),
		Categories: []Category{
			{Name: "role-setup", Channels: []Channel{
				text("welcome", "read me first"),
				withOverwrites(text("rules", "server rules (read-only)"), announcementOverwrites()),
				text("select-grade", "select your grade (/role)"),
				text("select-notify", "select notification roles"),
			}},
			{Name: "announcements", Channels: []Channel{
				withOverwrites(text("news", "announcements (read-only)"), announcementOverwrites()),
				text("day-schedule", "event schedule"),
				withOverwrites(text("emergency", "emergency (ops only)"), privateOpsOverwrites()),
			}},
			{Name: "guide", Channels: []Channel{
				text("map", "venue map & flow"),
				text("faq", "frequently asked questions"),
				text("tickets", "admission / tickets"),
			}},
			{Name: "stage", Channels: []Channel{
				text("running-order", "running order & rehearsal"),
				voice("stage-voice"),
			}},
			{Name: "booths", Channels: []Channel{
				text("booth-list", "booth list & placement"),
				text("booth-ops", "common ops (supplies/inventory/tools)"),
				text("booth-1", "rename later"),
				text("booth-2"),
				text("booth-3"),
			}},
			{Name: "ops-private", Channels: []Channel{
				withOverwrites(text("accounting", "sales & receipts & settlement"), privateOpsOverwrites()),
				withOverwrites(text("inventory", "inventory & refill"), privateOpsOverwrites()),
				withOverwrites(text("minutes", "meeting minutes"), privateOpsOverwrites()),
			}},
			{Name: "safety-lostfound", Channels: []Channel{
				text("safety", "safety/traffic control/security"),
				text("lost-found", "lost and found"),
			}},
			{Name: "media", Channels: []Channel{
				text("photo-drop", "photo sharing (images only recommended)"),
				text("press", "public relations & SNS"),
			}},
			{Name: "lounge", Channels: []Channel{
				text("general", "visitors & students chat"),
				voice("voice-1"),
				voice("voice-2"),
			}},
			{Name: "grades", Channels: gradeChannels(grades)},
		},
	}
}

func taiikusaiTemplate(grades int) *Template {
	return &Template{
		Version: TemplateVersion,
		Name:    "体育祭",
		Roles:   gradeRoles(grades),
		Categories: []Category{
			{Name: "role-setup", Channels: []Channel{
				text("welcome"),
				withOverwrites(text("rules"), announcementOverwrites()),
				text("select-grade"),
			}},
			{Name: "announcements", Channels: []Channel{
				withOverwrites(text("announcements"), announcementOverwrites()),
				text("weather"),
				withOverwrites(text("emergency"), privateOpsOverwrites()),
			}},
			{Name: "events-guide", Channels: []Channel{
				text("rules"),
				text("schedule"),
				text("marshaling"),
			}},
			{Name: "disciplines", Channels: []Channel{
				text("track"),
				text("field"),
				text("relay"),
				text("cheering"),
			}},
			{Name: "results", Channels: []Channel{
				text("heats"),
				text("results"),
				text("ranking"),
			}},
			{Name: "ops-private", Channels: []Channel{
				withOverwrites(text("referees"), privateOpsOverwrites()),
				withOverwrites(text("timekeepers"), privateOpsOverwrites()),
			}},
			{Name: "grades", Channels: gradeChannels(grades)},
			{Name: "lounge", Channels: []Channel{
				text("general"),
				voice("voice"),
			}},
		},
	}
}

func kyugiTemplate(grades int) *Template {
	return &Template{
		Version: TemplateVersion,
		Name:    "球技大会",
		Roles:   gradeRoles(grades),
		Categories: []Category{
			{Name: "role-setup", Channels: []Channel{
				text("welcome"),
				withOverwrites(text("rules"), announcementOverwrites()),
			}},
			{Name: "announcements", Channels: []Channel{
				withOverwrites(text("announcements"), announcementOverwrites()),
				text("schedule"),
				text("rules"),
			}},
			{Name: "tournament", Channels: []Channel{
				text("brackets", "tournament bracket"),
				text("results", "results"),
			}},
			{Name: "sports", Channels: []Channel{
				text("soccer"),
				text("basketball"),
				text("volleyball"),
				text("tennis"),
			}},
			{Name: "ops-private", Channels: []Channel{
				withOverwrites(text("officials", "officials communication"), privateOpsOverwrites()),
				withOverwrites(text("medical", "first aid"), privateOpsOverwrites()),
			}},
			{Name: "lounge", Channels: []Channel{
				text("general"),
				voice("voice-a"),
				voice("voice-b"),
			}},
		},
	}
}
