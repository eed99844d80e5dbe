package guildbuild

type Phase string

const (
	PhaseCreateRoles      Phase = "create_roles"
	PhaseUpdateRoles      Phase = "update_roles"
	PhaseCreateCategories Phase = "create_categories"
	PhaseCreateChannels   Phase = "create_channels"
	PhaseUpdateChannels   Phase = "update_channels"

	PhaseDeleteChannels   Phase = "delete_channels"
	PhaseDeleteCategories Phase = "delete_categories"
	PhaseRestoreChannels  Phase = "restore_channels"
	PhaseDeleteRoles      Phase = "delete_roles"
	PhaseRestoreRoles     Phase = "restore_roles"
)

// ExecutionPlan is the order in which a diff is applied. Roles come first so
// channel overwrites can reference them, categories before the channels
// they parent.
var ExecutionPlan = []Phase{
	PhaseCreateRoles,
	PhaseUpdateRoles,
	PhaseCreateCategories,
	PhaseCreateChannels,
	PhaseUpdateChannels,
}

// RollbackPlan undoes ExecutionPlan. Channels go before the categories and
// roles they depend on.
var RollbackPlan = []Phase{
	PhaseDeleteChannels,
	PhaseDeleteCategories,
	PhaseRestoreChannels,
	PhaseDeleteRoles,
	PhaseRestoreRoles,
}
