package guildbuild

import (
	"context"
	"fmt"
)

// Preflight checks that the bot may perform every mutation of diff. All
// problems are returned together; an empty list means the build may run.
func Preflight(ctx context.Context, target Target, diff *DiffResult) ([]string, error) {
	capabilities, err := target.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot read bot permissions: %w", err)
	}

	problems := []string{}

	touchesChannels := len(diff.Categories.ToCreate) > 0 ||
		len(diff.Channels.ToCreate) > 0 || len(diff.Channels.ToUpdate) > 0
	if touchesChannels && !hasPermission(capabilities.Permissions, "ManageChannels") {
		problems = append(problems,
			"**Missing Permission**: The bot requires the `Manage Channels` permission to create or edit channels.")
	}

	touchesRoles := len(diff.Roles.ToCreate) > 0 || len(diff.Roles.ToUpdate) > 0
	if touchesRoles && !hasPermission(capabilities.Permissions, "ManageRoles") {
		problems = append(problems,
			"**Missing Permission**: The bot requires the `Manage Roles` permission to create or edit roles.")
	}

	if len(diff.Roles.ToUpdate) > 0 {
		roles, err := target.FetchRoles(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot read roles: %w", err)
		}

		positions := map[string]int{}
		for _, r := range roles {
			positions[r.ID] = r.Position
		}

		for _, update := range diff.Roles.ToUpdate {
			position, ok := positions[update.Existing.ID]
			if !ok {
				position = update.Existing.Position
			}

			if position >= capabilities.HighestRolePosition {
				problems = append(problems, fmt.Sprintf(
					"**Hierarchy Error**: The bot's highest role is not high enough to edit the `@%s` role.",
					update.Existing.Name))
			}
		}
	}

	return problems, nil
}
