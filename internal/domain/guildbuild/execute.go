package guildbuild

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
)

type ExecuteRequest struct {
	Snapshot     *GuildSnapshot
	Diff         *DiffResult
	TemplateName string
	ExecutedBy   string
}

type ExecuteResult struct {
	// BuildRunID is empty when the run could not be persisted.
	BuildRunID        string
	RollbackAvailable bool
	Status            entity.BuildRunStatus

	Attempted int
	Succeeded int
	Failures  []string
	Warnings  []string
}

type Executor struct {
	buildRunRepo repository.BuildRunRepository
}

func NewExecutor(buildRunRepo repository.BuildRunRepository) *Executor {
	return &Executor{buildRunRepo: buildRunRepo}
}

// execution is the state of one Execute call.
type execution struct {
	target Target
	req    ExecuteRequest
	result *ExecuteResult

	roleIDs     map[string]string
	categoryIDs map[string]string

	// createdChannels are the categories and channels created by this run.
	createdChannels []LiveChannel
}

// Execute applies req.Diff to target following ExecutionPlan. Every item is
// attempted once; a failing item is recorded and the run goes on. The
// returned error is only set when the run was aborted by ctx, the result is
// valid in both cases.
func (e *Executor) Execute(ctx context.Context, target Target, req ExecuteRequest) (*ExecuteResult, error) {
	result := &ExecuteResult{
		Status:   entity.BuildRunPending,
		Failures: []string{},
		Warnings: []string{},
	}

	run, err := e.createRun(ctx, req)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot persist build run of guild %s: %v", target.GuildID(), err)
		result.Warnings = append(result.Warnings,
			"Build history is unavailable, this build cannot be undone.")
	} else {
		result.BuildRunID = run.ID
		result.RollbackAvailable = true
	}

	exec := &execution{
		target:      target,
		req:         req,
		result:      result,
		roleIDs:     map[string]string{},
		categoryIDs: map[string]string{},
	}
	exec.indexSnapshot()

	phases := map[Phase]func(context.Context){
		PhaseCreateRoles:      exec.createRoles,
		PhaseUpdateRoles:      exec.updateRoles,
		PhaseCreateCategories: exec.createCategories,
		PhaseCreateChannels:   exec.createChannels,
		PhaseUpdateChannels:   exec.updateChannels,
	}

	var abortErr error
	for _, phase := range ExecutionPlan {
		if err := ctx.Err(); err != nil {
			abortErr = fmt.Errorf("build aborted before %s: %w", phase, err)
			break
		}

		xcontext.Logger(ctx).Debugf("Run phase %s on guild %s", phase, target.GuildID())
		phases[phase](ctx)
	}

	result.Status = entity.BuildRunSuccess
	if abortErr != nil {
		result.Status = entity.BuildRunFailed
	}

	if run != nil {
		// The run outlives the caller's context, its status must be written
		// even after an abort.
		if err := e.buildRunRepo.UpdateStatus(context.WithoutCancel(ctx), run.ID, result.Status); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update status of build run %s: %v", run.ID, err)
		}
	}

	xcontext.Logger(ctx).Infof("Build %s on guild %s finished: %d/%d succeeded",
		result.BuildRunID, target.GuildID(), result.Succeeded, result.Attempted)

	return result, abortErr
}

func (e *Executor) createRun(ctx context.Context, req ExecuteRequest) (*entity.BuildRun, error) {
	snapshot, diff, err := encodeRecord(req.Snapshot, req.Diff)
	if err != nil {
		return nil, err
	}

	run := &entity.BuildRun{
		Base:          entity.Base{ID: uuid.NewString()},
		GuildID:       req.Snapshot.GuildID,
		TemplateName:  req.TemplateName,
		ExecutedBy:    req.ExecutedBy,
		Status:        entity.BuildRunPending,
		SchemaVersion: recordSchemaVersion,
		Snapshot:      snapshot,
		DryRunResult:  diff,
	}

	if err := e.buildRunRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

func (x *execution) indexSnapshot() {
	x.roleIDs[EveryoneRoleName] = x.req.Snapshot.EveryoneRoleID

	// Roles are sorted by position, the first one wins like in Diff.
	for _, r := range x.req.Snapshot.Roles {
		if _, ok := x.roleIDs[r.Name]; !ok {
			x.roleIDs[r.Name] = r.ID
		}
	}

	for _, c := range x.req.Snapshot.Channels {
		if c.Kind != ChannelKindCategory {
			continue
		}
		if _, ok := x.categoryIDs[c.Name]; !ok {
			x.categoryIDs[c.Name] = c.ID
		}
	}
}

func (x *execution) fail(item string, format string, a ...any) {
	x.result.Failures = append(x.result.Failures, item+": "+fmt.Sprintf(format, a...))
}

func (x *execution) attempt(ctx context.Context, item string, f func() error) bool {
	x.result.Attempted++
	if err := f(); err != nil {
		xcontext.Logger(ctx).Warnf("Build step failed on guild %s: %s: %v", x.target.GuildID(), item, err)
		x.fail(item, "%v", err)
		return false
	}

	x.result.Succeeded++
	return true
}

// liveRoleNames reads the role names present on the target right before a
// create. On a read error the names known to this run are used instead.
func (x *execution) liveRoleNames(ctx context.Context) map[string]bool {
	names := map[string]bool{}
	roles, err := x.target.FetchRoles(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh roles of guild %s: %v", x.target.GuildID(), err)
		for name := range x.roleIDs {
			names[name] = true
		}
		return names
	}

	for _, r := range roles {
		names[r.Name] = true
	}
	return names
}

// liveChannels reads the channels present on the target right before a
// create. On a read error the snapshot and the channels created by this run
// are used instead.
func (x *execution) liveChannels(ctx context.Context) []LiveChannel {
	channels, err := x.target.FetchChannels(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh channels of guild %s: %v", x.target.GuildID(), err)
		channels = make([]LiveChannel, 0, len(x.req.Snapshot.Channels)+len(x.createdChannels))
		for _, c := range x.req.Snapshot.Channels {
			channels = append(channels, LiveChannel{ID: c.ID, Name: c.Name, Kind: c.Kind, ParentID: c.ParentID})
		}
		channels = append(channels, x.createdChannels...)
	}

	return channels
}

func (x *execution) createRoles(ctx context.Context) {
	for _, role := range x.req.Diff.Roles.ToCreate {
		role := role
		x.attempt(ctx, fmt.Sprintf("Create role `%s`", role.Name), func() error {
			if x.liveRoleNames(ctx)[role.Name] {
				return fmt.Errorf("a role with this name already exists")
			}

			spec := RoleSpec{Name: role.Name, Hoist: role.Hoist, Mentionable: role.Mentionable}
			if role.Color != "" {
				color, err := ParseColor(role.Color)
				if err != nil {
					return err
				}
				spec.Color = &color
			}

			created, err := x.target.CreateRole(ctx, spec)
			if err != nil {
				return err
			}

			x.roleIDs[role.Name] = created.ID
			return nil
		})
	}
}

func (x *execution) updateRoles(ctx context.Context) {
	for _, update := range x.req.Diff.Roles.ToUpdate {
		update := update
		x.attempt(ctx, fmt.Sprintf("Update role `%s`", update.Existing.Name), func() error {
			return x.target.EditRole(ctx, update.Existing.ID, RoleSpec{
				Name:        update.Existing.Name,
				Color:       update.Changes.Color,
				Hoist:       update.Changes.Hoist,
				Mentionable: update.Changes.Mentionable,
			})
		})
	}
}

func (x *execution) createCategories(ctx context.Context) {
	for _, category := range x.req.Diff.Categories.ToCreate {
		category := category
		x.attempt(ctx, fmt.Sprintf("Create category `%s`", category.Name), func() error {
			for _, c := range x.liveChannels(ctx) {
				if c.Kind == ChannelKindCategory && c.Name == category.Name {
					x.categoryIDs[category.Name] = c.ID
					return fmt.Errorf("a category with this name already exists")
				}
			}

			created, err := x.target.CreateChannel(ctx, ChannelSpec{
				Name: category.Name,
				Kind: ChannelKindCategory,
			})
			if err != nil {
				return err
			}

			x.categoryIDs[category.Name] = created.ID
			x.createdChannels = append(x.createdChannels, created)
			return nil
		})
	}
}

func (x *execution) createChannels(ctx context.Context) {
	for _, create := range x.req.Diff.Channels.ToCreate {
		create := create
		item := fmt.Sprintf("Create channel `#%s` in `%s`", create.Channel.Name, create.CategoryName)
		x.attempt(ctx, item, func() error {
			parentID, ok := x.categoryIDs[create.CategoryName]
			if !ok {
				return fmt.Errorf("category `%s` is not available", create.CategoryName)
			}

			for _, c := range x.liveChannels(ctx) {
				if c.Kind != ChannelKindCategory && c.ParentID == parentID && c.Name == create.Channel.Name {
					return fmt.Errorf("a channel with this name already exists in the category")
				}
			}

			overwrites, err := x.resolveOverwrites(create.Channel)
			if err != nil {
				return err
			}

			spec := ChannelSpec{
				Name:       create.Channel.Name,
				Kind:       create.Channel.Kind,
				ParentID:   parentID,
				Overwrites: overwrites,
			}
			if create.Channel.Kind.HasTopic() {
				spec.Topic = create.Channel.Topic
			}
			if create.Channel.Kind == ChannelKindVoice {
				spec.Bitrate = create.Channel.Bitrate
			}

			created, err := x.target.CreateChannel(ctx, spec)
			if err != nil {
				return err
			}

			x.createdChannels = append(x.createdChannels, created)
			return nil
		})
	}
}

// resolveOverwrites converts the overwrites of channel to role ids. A channel
// is not created without all of its overwrites, an unresolved role fails it.
func (x *execution) resolveOverwrites(channel Channel) ([]OverwriteSpec, error) {
	specs := make([]OverwriteSpec, 0, len(channel.Overwrites))
	for _, o := range channel.Overwrites {
		spec, err := x.overwriteSpec(o)
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

func (x *execution) overwriteSpec(o Overwrite) (OverwriteSpec, error) {
	roleID, ok := x.roleIDs[o.RoleName]
	if !ok || roleID == "" {
		return OverwriteSpec{}, fmt.Errorf("role `%s` not found", o.RoleName)
	}

	allow, err := PermissionBits(o.Allow)
	if err != nil {
		return OverwriteSpec{}, err
	}

	deny, err := PermissionBits(o.Deny)
	if err != nil {
		return OverwriteSpec{}, err
	}

	return OverwriteSpec{RoleID: roleID, Allow: allow, Deny: deny}, nil
}

func (x *execution) updateChannels(ctx context.Context) {
	for _, update := range x.req.Diff.Channels.ToUpdate {
		update := update
		item := fmt.Sprintf("Update channel `#%s`", update.Existing.Name)
		x.attempt(ctx, item, func() error {
			var errs []string
			if update.Changes.Topic != nil {
				err := x.target.EditChannel(ctx, update.Existing.ID, ChannelSpec{Topic: update.Changes.Topic})
				if err != nil {
					errs = append(errs, fmt.Sprintf("topic: %v", err))
				}
			}

			for _, delta := range update.Changes.Overwrites {
				if err := x.applyOverwrite(ctx, update.Existing, update.Channel.Overwrites, delta.RoleName); err != nil {
					errs = append(errs, fmt.Sprintf("overwrite `%s`: %v", delta.RoleName, err))
				}
			}

			if len(errs) > 0 {
				return fmt.Errorf("%s", strings.Join(errs, "; "))
			}
			return nil
		})
	}
}

// applyOverwrite makes the overwrite of roleName on the channel equal to the
// one in want, deleting it when want has none. Live bits without a canonical
// name are kept.
func (x *execution) applyOverwrite(ctx context.Context, channel SnapshotChannel, want []Overwrite, roleName string) error {
	o, ok := overwriteFor(want, roleName)
	if !ok {
		roleID, ok := x.roleIDs[roleName]
		if !ok {
			return fmt.Errorf("role `%s` not found", roleName)
		}
		return x.target.DeleteChannelOverwrite(ctx, channel.ID, roleID)
	}

	spec, err := x.overwriteSpec(o)
	if err != nil {
		return err
	}

	if live, ok := overwriteFor(channel.Overwrites, roleName); ok {
		spec.Allow |= live.UnknownAllow
		spec.Deny |= live.UnknownDeny
	}

	return x.target.SetChannelOverwrite(ctx, channel.ID, spec)
}
