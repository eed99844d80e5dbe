package guildbuild

import (
	"context"
	"errors"
	"fmt"

	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"gorm.io/gorm"
)

type RollbackResult struct {
	BuildRunID string
	Attempted  int
	Succeeded  int
	Failures   []string
}

type RollbackEngine struct {
	buildRunRepo repository.BuildRunRepository
}

func NewRollbackEngine(buildRunRepo repository.BuildRunRepository) *RollbackEngine {
	return &RollbackEngine{buildRunRepo: buildRunRepo}
}

type rollback struct {
	target   Target
	snapshot *GuildSnapshot
	diff     *DiffResult
	result   *RollbackResult

	roles    []LiveRole
	channels []LiveChannel

	knownRoleIDs    map[string]bool
	knownChannelIDs map[string]bool
}

// Rollback replays the inverse of a build run against target using the
// snapshot recorded before it. A run is rolled back at most once. Items that
// changed since the build are left alone; per-item failures are collected
// and do not stop the rollback.
func (e *RollbackEngine) Rollback(ctx context.Context, target Target, buildRunID string) (*RollbackResult, error) {
	run, err := e.buildRunRepo.GetByID(ctx, buildRunID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildRunNotFound
		}

		xcontext.Logger(ctx).Errorf("Cannot get build run %s: %v", buildRunID, err)
		return nil, err
	}

	if run.Status == entity.BuildRunRolledBack {
		return nil, ErrAlreadyRolledBack
	}

	if run.GuildID != target.GuildID() {
		return nil, ErrGuildMismatch
	}

	snapshot, diff, err := decodeRecord(run)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode build run %s: %v", buildRunID, err)
		return nil, err
	}

	roles, err := target.FetchRoles(ctx)
	if err != nil {
		return nil, &SnapshotReadError{Err: err}
	}

	channels, err := target.FetchChannels(ctx)
	if err != nil {
		return nil, &SnapshotReadError{Err: err}
	}

	rb := &rollback{
		target:          target,
		snapshot:        snapshot,
		diff:            diff,
		result:          &RollbackResult{BuildRunID: run.ID, Failures: []string{}},
		roles:           roles,
		channels:        channels,
		knownRoleIDs:    map[string]bool{},
		knownChannelIDs: map[string]bool{},
	}

	for _, r := range snapshot.Roles {
		rb.knownRoleIDs[r.ID] = true
	}
	for _, c := range snapshot.Channels {
		rb.knownChannelIDs[c.ID] = true
	}

	phases := map[Phase]func(context.Context){
		PhaseDeleteChannels:   rb.deleteChannels,
		PhaseDeleteCategories: rb.deleteCategories,
		PhaseRestoreChannels:  rb.restoreChannels,
		PhaseDeleteRoles:      rb.deleteRoles,
		PhaseRestoreRoles:     rb.restoreRoles,
	}

	for _, phase := range RollbackPlan {
		xcontext.Logger(ctx).Debugf("Run rollback phase %s of build run %s", phase, run.ID)
		phases[phase](ctx)
	}

	if err := e.buildRunRepo.UpdateStatus(ctx, run.ID, entity.BuildRunRolledBack); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark build run %s as rolled back: %v", run.ID, err)
		return rb.result, err
	}

	xcontext.Logger(ctx).Infof("Build run %s rolled back: %d/%d succeeded",
		run.ID, rb.result.Succeeded, rb.result.Attempted)

	return rb.result, nil
}

func (rb *rollback) attempt(ctx context.Context, item string, f func() error) {
	rb.result.Attempted++
	err := f()
	if err == nil || errors.Is(err, ErrNotFoundOnTarget) {
		rb.result.Succeeded++
		return
	}

	xcontext.Logger(ctx).Warnf("Rollback step failed on guild %s: %s: %v", rb.target.GuildID(), item, err)
	rb.result.Failures = append(rb.result.Failures, fmt.Sprintf("%s: %v", item, err))
}

// createdCategory finds a live category named name that did not exist
// before the build.
func (rb *rollback) createdCategory(name string) (LiveChannel, bool) {
	for _, c := range rb.channels {
		if c.Kind == ChannelKindCategory && c.Name == name && !rb.knownChannelIDs[c.ID] {
			return c, true
		}
	}

	return LiveChannel{}, false
}

func (rb *rollback) createdChannel(categoryName, name string) (LiveChannel, bool) {
	parents := map[string]bool{}
	for _, c := range rb.channels {
		if c.Kind == ChannelKindCategory && c.Name == categoryName {
			parents[c.ID] = true
		}
	}

	for _, c := range rb.channels {
		if c.Kind != ChannelKindCategory && c.Name == name && parents[c.ParentID] && !rb.knownChannelIDs[c.ID] {
			return c, true
		}
	}

	return LiveChannel{}, false
}

func (rb *rollback) createdRole(name string) (LiveRole, bool) {
	for _, r := range rb.roles {
		if r.Name == name && !rb.knownRoleIDs[r.ID] && r.ID != rb.snapshot.EveryoneRoleID {
			return r, true
		}
	}

	return LiveRole{}, false
}

func (rb *rollback) deleteChannels(ctx context.Context) {
	for _, create := range rb.diff.Channels.ToCreate {
		channel, ok := rb.createdChannel(create.CategoryName, create.Channel.Name)
		if !ok {
			xcontext.Logger(ctx).Debugf("Channel #%s is already gone", create.Channel.Name)
			continue
		}

		rb.attempt(ctx, fmt.Sprintf("Delete channel `#%s`", channel.Name), func() error {
			return rb.target.DeleteChannel(ctx, channel.ID)
		})
	}
}

func (rb *rollback) deleteCategories(ctx context.Context) {
	for _, create := range rb.diff.Categories.ToCreate {
		category, ok := rb.createdCategory(create.Name)
		if !ok {
			xcontext.Logger(ctx).Debugf("Category %s is already gone", create.Name)
			continue
		}

		rb.attempt(ctx, fmt.Sprintf("Delete category `%s`", category.Name), func() error {
			return rb.target.DeleteChannel(ctx, category.ID)
		})
	}
}

// roleID resolves a role name as it was before the build.
func (rb *rollback) roleID(name string) (string, bool) {
	if name == EveryoneRoleName {
		return rb.snapshot.EveryoneRoleID, true
	}

	if r, ok := rb.snapshot.RoleByName(name); ok {
		return r.ID, true
	}

	if r, ok := rb.createdRole(name); ok {
		return r.ID, true
	}

	return "", false
}

func (rb *rollback) restoreChannels(ctx context.Context) {
	for _, update := range rb.diff.Channels.ToUpdate {
		original, ok := rb.snapshot.ChannelByID(update.Existing.ID)
		if !ok {
			original = update.Existing
		}

		rb.attempt(ctx, fmt.Sprintf("Restore channel `#%s`", original.Name), func() error {
			if update.Changes.Topic != nil {
				topic := original.Topic
				err := rb.target.EditChannel(ctx, original.ID, ChannelSpec{Topic: &topic})
				if err != nil {
					return err
				}
			}

			for _, delta := range update.Changes.Overwrites {
				roleID, ok := rb.roleID(delta.RoleName)
				if !ok {
					continue
				}

				o, ok := overwriteFor(original.Overwrites, delta.RoleName)
				if !ok {
					err := rb.target.DeleteChannelOverwrite(ctx, original.ID, roleID)
					if err != nil && !errors.Is(err, ErrNotFoundOnTarget) {
						return err
					}
					continue
				}

				allow, err := PermissionBits(o.Allow)
				if err != nil {
					return err
				}

				deny, err := PermissionBits(o.Deny)
				if err != nil {
					return err
				}

				err = rb.target.SetChannelOverwrite(ctx, original.ID, OverwriteSpec{
					RoleID: roleID,
					Allow:  allow | o.UnknownAllow,
					Deny:   deny | o.UnknownDeny,
				})
				if err != nil {
					return err
				}
			}

			return nil
		})
	}
}

func (rb *rollback) deleteRoles(ctx context.Context) {
	for _, create := range rb.diff.Roles.ToCreate {
		role, ok := rb.createdRole(create.Name)
		if !ok {
			xcontext.Logger(ctx).Debugf("Role %s is already gone", create.Name)
			continue
		}

		rb.attempt(ctx, fmt.Sprintf("Delete role `%s`", role.Name), func() error {
			return rb.target.DeleteRole(ctx, role.ID)
		})
	}
}

func (rb *rollback) restoreRoles(ctx context.Context) {
	for _, update := range rb.diff.Roles.ToUpdate {
		original, ok := rb.snapshot.RoleByID(update.Existing.ID)
		if !ok {
			original = update.Existing
		}

		rb.attempt(ctx, fmt.Sprintf("Restore role `%s`", original.Name), func() error {
			color, hoist, mentionable := original.Color, original.Hoist, original.Mentionable
			return rb.target.EditRole(ctx, original.ID, RoleSpec{
				Name:        original.Name,
				Color:       &color,
				Hoist:       &hoist,
				Mentionable: &mentionable,
			})
		})
	}
}
