package domain

import (
	"context"
	"errors"
	"time"

	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/internal/model"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/pkg/errorx"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
)

const defaultHistoryLimit = 10

type BuildDomain interface {
	Preview(context.Context, *model.PreviewBuildRequest) (*model.PreviewBuildResponse, error)
	Apply(context.Context, *model.ApplyBuildRequest) (*model.ApplyBuildResponse, error)
	Rollback(context.Context, *model.RollbackBuildRequest) (*model.RollbackBuildResponse, error)
	GetHistory(context.Context, *model.GetBuildHistoryRequest) (*model.GetBuildHistoryResponse, error)
	ValidateTemplate(context.Context, *model.ValidateTemplateRequest) (*model.ValidateTemplateResponse, error)
}

// TargetFactory returns the target of the guild with the given id.
type TargetFactory func(guildID string) guildbuild.Target

type buildDomain struct {
	buildRunRepo   repository.BuildRunRepository
	newTarget      TargetFactory
	templateLoader *guildbuild.TemplateLoader
	executor       *guildbuild.Executor
	rollbackEngine *guildbuild.RollbackEngine
}

func NewBuildDomain(
	buildRunRepo repository.BuildRunRepository,
	newTarget TargetFactory,
	templateLoader *guildbuild.TemplateLoader,
) *buildDomain {
	return &buildDomain{
		buildRunRepo:   buildRunRepo,
		newTarget:      newTarget,
		templateLoader: templateLoader,
		executor:       guildbuild.NewExecutor(buildRunRepo),
		rollbackEngine: guildbuild.NewRollbackEngine(buildRunRepo),
	}
}

// resolveTemplate returns the built-in template called name, or the template
// file for guildbuild.FileTemplateName.
func (d *buildDomain) resolveTemplate(ctx context.Context, name string, grades int) (*guildbuild.Template, error) {
	if grades == 0 {
		grades = xcontext.Configs(ctx).Build.DefaultGrades
	}

	if name == "" || name == guildbuild.FileTemplateName {
		template, err := d.templateLoader.Load()
		if err != nil {
			if errors.Is(err, guildbuild.ErrTemplateNotFound) {
				return nil, errorx.New(errorx.NotFound, "Template file not found at path %s", d.templateLoader.Path)
			}

			var verrs guildbuild.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, verrs
			}

			xcontext.Logger(ctx).Errorf("Cannot load template file: %v", err)
			return nil, errorx.Unknown
		}

		return template, nil
	}

	template, err := guildbuild.BuiltinTemplate(name, grades)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "%v", err)
	}

	return template, nil
}

func (d *buildDomain) Preview(
	ctx context.Context, req *model.PreviewBuildRequest,
) (*model.PreviewBuildResponse, error) {
	template, err := d.resolveTemplate(ctx, req.TemplateName, req.Grades)
	if err != nil {
		return nil, err
	}

	target := d.newTarget(req.GuildID)
	snapshot, err := guildbuild.ReadState(ctx, target)
	if err != nil {
		return nil, errorx.New(errorx.SnapshotFailed, "Cannot read the server state, please try again later")
	}

	diff := guildbuild.Diff(snapshot, template)

	problems, err := guildbuild.Preflight(ctx, target, diff)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot run pre-flight check on guild %s: %v", req.GuildID, err)
		return nil, errorx.New(errorx.SnapshotFailed, "Cannot read the bot permissions, please try again later")
	}

	if len(problems) > 0 {
		return nil, &guildbuild.PermissionError{Problems: problems}
	}

	return &model.PreviewBuildResponse{
		Plan: &model.BuildPlan{
			GuildID:      req.GuildID,
			TemplateName: template.Name,
			Snapshot:     snapshot,
			Diff:         diff,
		},
		Preview:   guildbuild.FormatPreview(diff),
		HasChange: diff.HasChanges(),
	}, nil
}

func (d *buildDomain) Apply(
	ctx context.Context, req *model.ApplyBuildRequest,
) (*model.ApplyBuildResponse, error) {
	if req.Plan == nil || req.Plan.Snapshot == nil || req.Plan.Diff == nil {
		return nil, errorx.New(errorx.BadRequest, "Missing build plan")
	}

	if req.Plan.Snapshot.GuildID != req.Plan.GuildID {
		return nil, errorx.New(errorx.BadRequest, "Build plan does not match the server")
	}

	result, err := d.executor.Execute(ctx, d.newTarget(req.Plan.GuildID), guildbuild.ExecuteRequest{
		Snapshot:     req.Plan.Snapshot,
		Diff:         req.Plan.Diff,
		TemplateName: req.Plan.TemplateName,
		ExecutedBy:   xcontext.RequestUserID(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Build on guild %s aborted: %v", req.Plan.GuildID, err)
	}

	return &model.ApplyBuildResponse{
		BuildRunID:        result.BuildRunID,
		RollbackAvailable: result.RollbackAvailable,
		Status:            string(result.Status),
		Succeeded:         result.Succeeded,
		Failed:            len(result.Failures),
		Summary:           guildbuild.FormatSummary(result, xcontext.Configs(ctx).Build.MaxFailuresShown),
	}, nil
}

func (d *buildDomain) Rollback(
	ctx context.Context, req *model.RollbackBuildRequest,
) (*model.RollbackBuildResponse, error) {
	if req.BuildRunID == "" {
		return nil, errorx.New(errorx.BadRequest, "Missing build run id")
	}

	result, err := d.rollbackEngine.Rollback(ctx, d.newTarget(req.GuildID), req.BuildRunID)
	if err != nil {
		var readErr *guildbuild.SnapshotReadError
		switch {
		case errors.Is(err, guildbuild.ErrBuildRunNotFound),
			errors.Is(err, guildbuild.ErrAlreadyRolledBack),
			errors.Is(err, guildbuild.ErrGuildMismatch):
			return nil, err
		case errors.Is(err, repository.ErrDatabaseUnavailable):
			return nil, errorx.New(errorx.Unavailable, "Build history is unavailable, rollback is not possible")
		case errors.As(err, &readErr):
			return nil, errorx.New(errorx.SnapshotFailed, "Cannot read the server state, please try again later")
		case result != nil:
			// Every step ran but the run could not be marked as rolled back.
			xcontext.Logger(ctx).Errorf("Cannot complete rollback of %s: %v", req.BuildRunID, err)
		default:
			xcontext.Logger(ctx).Errorf("Cannot rollback build run %s: %v", req.BuildRunID, err)
			return nil, errorx.Unknown
		}
	}

	return &model.RollbackBuildResponse{
		Succeeded: result.Succeeded,
		Failed:    len(result.Failures),
		Summary:   guildbuild.FormatRollbackSummary(result, xcontext.Configs(ctx).Build.MaxFailuresShown),
	}, nil
}

func (d *buildDomain) GetHistory(
	ctx context.Context, req *model.GetBuildHistoryRequest,
) (*model.GetBuildHistoryResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	runs, err := d.buildRunRepo.GetListByGuildID(ctx, req.GuildID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrDatabaseUnavailable) {
			return nil, errorx.New(errorx.Unavailable, "Build history is unavailable")
		}

		xcontext.Logger(ctx).Errorf("Cannot get build runs of guild %s: %v", req.GuildID, err)
		return nil, errorx.Unknown
	}

	result := make([]model.BuildRun, 0, len(runs))
	for _, r := range runs {
		result = append(result, model.BuildRun{
			ID:           r.ID,
			TemplateName: r.TemplateName,
			ExecutedBy:   r.ExecutedBy,
			Status:       string(r.Status),
			CreatedAt:    r.CreatedAt.Format(time.RFC3339Nano),
		})
	}

	return &model.GetBuildHistoryResponse{BuildRuns: result}, nil
}

func (d *buildDomain) ValidateTemplate(
	ctx context.Context, req *model.ValidateTemplateRequest,
) (*model.ValidateTemplateResponse, error) {
	template, err := d.resolveTemplate(ctx, req.TemplateName, req.Grades)
	if err != nil {
		return nil, err
	}

	channels := 0
	for _, c := range template.Categories {
		channels += len(c.Channels)
	}

	return &model.ValidateTemplateResponse{
		Name:       template.Name,
		Version:    template.Version,
		Roles:      len(template.Roles),
		Categories: len(template.Categories),
		Channels:   channels,
	}, nil
}
