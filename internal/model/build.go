package model

import "github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"

// BuildPlan is everything needed to execute a previewed build. It is kept
// while the operator confirms.
type BuildPlan struct {
	GuildID      string                    `json:"guild_id"`
	TemplateName string                    `json:"template_name"`
	Snapshot     *guildbuild.GuildSnapshot `json:"snapshot"`
	Diff         *guildbuild.DiffResult    `json:"diff"`
}

type PreviewBuildRequest struct {
	GuildID      string `json:"guild_id"`
	TemplateName string `json:"template_name"`
	Grades       int    `json:"grades"`
}

type PreviewBuildResponse struct {
	Plan      *BuildPlan `json:"plan"`
	Preview   string     `json:"preview"`
	HasChange bool       `json:"has_change"`
}

type ApplyBuildRequest struct {
	Plan *BuildPlan `json:"plan"`
}

type ApplyBuildResponse struct {
	BuildRunID        string `json:"build_run_id,omitempty"`
	RollbackAvailable bool   `json:"rollback_available"`
	Status            string `json:"status"`
	Succeeded         int    `json:"succeeded"`
	Failed            int    `json:"failed"`
	Summary           string `json:"summary"`
}

type RollbackBuildRequest struct {
	GuildID    string `json:"guild_id"`
	BuildRunID string `json:"build_run_id"`
}

type RollbackBuildResponse struct {
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Summary   string `json:"summary"`
}

type GetBuildHistoryRequest struct {
	GuildID string `json:"guild_id"`
	Limit   int    `json:"limit"`
}

type BuildRun struct {
	ID           string `json:"id"`
	TemplateName string `json:"template_name"`
	ExecutedBy   string `json:"executed_by"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type GetBuildHistoryResponse struct {
	BuildRuns []BuildRun `json:"build_runs"`
}

type ValidateTemplateRequest struct {
	TemplateName string `json:"template_name"`
	Grades       int    `json:"grades"`
}

type ValidateTemplateResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Roles      int    `json:"roles"`
	Categories int    `json:"categories"`
	Channels   int    `json:"channels"`
}
