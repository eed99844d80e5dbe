package entity

import "github.com/neko-jpg/schoolfestival-bot/pkg/enum"

type BuildRunStatus string

var (
	BuildRunPending    = enum.New(BuildRunStatus("PENDING"))
	BuildRunSuccess    = enum.New(BuildRunStatus("SUCCESS"))
	BuildRunFailed     = enum.New(BuildRunStatus("FAILED"))
	BuildRunRolledBack = enum.New(BuildRunStatus("ROLLED_BACK"))
)

// BuildRun records one execution of a template against a guild. Snapshot and
// DryRunResult are JSON documents written once, in the layout named by
// SchemaVersion.
type BuildRun struct {
	Base

	GuildID       string `gorm:"index;not null"`
	TemplateName  string `gorm:"not null"`
	ExecutedBy    string `gorm:"not null"`
	Status        BuildRunStatus
	SchemaVersion int
	Snapshot      string `gorm:"type:mediumtext"`
	DryRunResult  string `gorm:"type:mediumtext"`
}
