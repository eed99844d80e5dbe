package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain"
	"github.com/neko-jpg/schoolfestival-bot/internal/model"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
)

type Bot struct {
	rootCtx      context.Context
	session      Session
	buildDomain  domain.BuildDomain
	pendingStore PendingStore
}

func New(ctx context.Context, session Session, buildDomain domain.BuildDomain, pendingStore PendingStore) *Bot {
	return &Bot{
		rootCtx:      ctx,
		session:      session,
		buildDomain:  buildDomain,
		pendingStore: pendingStore,
	}
}

// Run registers the /build command on the configured guild and serves
// interactions until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	cfg := xcontext.Configs(b.rootCtx).Discord

	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		xcontext.Logger(b.rootCtx).Infof("Logged in as %s", r.User.Username)
	})
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.Handle(i.Interaction)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("cannot open discord session: %w", err)
	}
	defer b.session.Close()

	_, err := b.session.ApplicationCommandBulkOverwrite(
		cfg.ClientID, cfg.GuildID, []*discordgo.ApplicationCommand{buildCommand()})
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	xcontext.Logger(b.rootCtx).Infof("Serving /%s on guild %s", commandBuild, cfg.GuildID)
	<-ctx.Done()
	return nil
}

func userIDOf(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}

	if i.User != nil {
		return i.User.ID
	}

	return ""
}

// Handle serves one interaction. Interactions from other guilds are refused.
func (b *Bot) Handle(i *discordgo.Interaction) {
	defer func() {
		if r := recover(); r != nil {
			xcontext.Logger(b.rootCtx).Errorf("Panic while handling interaction %s: %v", i.ID, r)
		}
	}()

	ctx := xcontext.WithRequestUserID(b.rootCtx, userIDOf(i))

	if i.GuildID != xcontext.Configs(ctx).Discord.GuildID {
		b.respondEphemeral(ctx, i, "This bot only builds the festival server.")
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, i)
	}
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	if data.Name != commandBuild || len(data.Options) == 0 {
		return
	}

	subcommand := data.Options[0]
	options := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	for _, o := range subcommand.Options {
		options[o.Name] = o
	}

	switch subcommand.Name {
	case subcommandApply:
		req := &model.PreviewBuildRequest{GuildID: i.GuildID}
		if o, ok := options[optionName]; ok {
			req.TemplateName = o.StringValue()
		}
		if o, ok := options[optionGrades]; ok {
			req.Grades = int(o.IntValue())
		}

		withPreview := true
		if o, ok := options[optionPreview]; ok {
			withPreview = o.BoolValue()
		}

		b.apply(ctx, i, req, withPreview)

	case subcommandUndo:
		runID := ""
		if o, ok := options[optionRun]; ok {
			runID = o.StringValue()
		}

		b.undo(ctx, i, runID)

	case subcommandHistory:
		b.history(ctx, i)

	case subcommandValidate:
		b.validate(ctx, i)
	}
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	action, value, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	switch action {
	case actionConfirm:
		b.confirm(ctx, i, value)
	case actionCancel:
		b.cancel(ctx, i, value)
	case actionUndo:
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageGuild == 0 {
			b.respondEphemeral(ctx, i, "Only server managers can undo a build.")
			return
		}

		b.deferUpdate(ctx, i)
		b.undo(ctx, i, value)
	}
}

func (b *Bot) apply(ctx context.Context, i *discordgo.Interaction, req *model.PreviewBuildRequest, withPreview bool) {
	if !b.deferReply(ctx, i) {
		return
	}

	preview, err := b.buildDomain.Preview(ctx, req)
	if err != nil {
		b.edit(ctx, i, embed("Build blocked", errorMessage(err), colorError), nil)
		return
	}

	if !preview.HasChange {
		b.edit(ctx, i, embed("Build preview", preview.Preview, colorInfo), nil)
		return
	}

	if !withPreview {
		b.execute(ctx, i, preview.Plan)
		return
	}

	timeout := xcontext.Configs(ctx).Build.ConfirmTimeout
	token := uuid.NewString()
	pending := &PendingBuild{
		InvokerID: xcontext.RequestUserID(ctx),
		AppID:     i.AppID,
		Token:     i.Token,
		Plan:      preview.Plan,
		ExpiresAt: time.Now().Add(timeout),
	}

	if err := b.pendingStore.Put(ctx, token, pending); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store pending build: %v", err)
		b.edit(ctx, i, embed("Build blocked", "Cannot keep the preview for confirmation, please try again later.",
			colorError), nil)
		return
	}

	description := fmt.Sprintf("%s\n\nConfirm within %s.", preview.Preview, timeout)
	b.edit(ctx, i, embed("Build preview", description, colorInfo), confirmButtons(token))

	time.AfterFunc(timeout, func() {
		b.expire(token)
	})
}

// expire replaces the preview of a build nobody confirmed with a timeout
// notice.
func (b *Bot) expire(token string) {
	ctx := b.rootCtx
	pending, err := b.pendingStore.Take(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrPendingNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot take expired build %s: %v", token, err)
		}
		return
	}

	original := &discordgo.Interaction{AppID: pending.AppID, Token: pending.Token}
	b.edit(ctx, original, embed("Build cancelled", "Confirmation timed out, nothing was changed.", colorWarning),
		[]discordgo.MessageComponent{})
}

func (b *Bot) confirm(ctx context.Context, i *discordgo.Interaction, token string) {
	pending, ok := b.pendingFor(ctx, i, token)
	if !ok {
		return
	}

	if _, err := b.pendingStore.Take(ctx, token); err != nil {
		b.respondEphemeral(ctx, i, "This build was already handled.")
		return
	}

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embed("Building", "Applying the template, this may take a while.", colorInfo),
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot acknowledge confirmation: %v", err)
	}

	b.execute(ctx, i, pending.Plan)
}

func (b *Bot) cancel(ctx context.Context, i *discordgo.Interaction, token string) {
	if _, ok := b.pendingFor(ctx, i, token); !ok {
		return
	}

	if _, err := b.pendingStore.Take(ctx, token); err != nil {
		b.respondEphemeral(ctx, i, "This build was already handled.")
		return
	}

	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embed("Build cancelled", "Nothing was changed.", colorWarning),
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot acknowledge cancellation: %v", err)
	}
}

// pendingFor returns the pending build of token when the user of i may act on
// it, and answers i otherwise.
func (b *Bot) pendingFor(ctx context.Context, i *discordgo.Interaction, token string) (*PendingBuild, bool) {
	pending, err := b.pendingStore.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrPendingNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get pending build %s: %v", token, err)
		}

		b.respondEphemeral(ctx, i, "This build preview is no longer available.")
		return nil, false
	}

	if pending.InvokerID != xcontext.RequestUserID(ctx) {
		b.respondEphemeral(ctx, i, "Only the user who started this build can confirm or cancel it.")
		return nil, false
	}

	if !pending.ExpiresAt.After(time.Now()) {
		b.respondEphemeral(ctx, i, "This build preview has expired.")
		return nil, false
	}

	return pending, true
}

func (b *Bot) execute(ctx context.Context, i *discordgo.Interaction, plan *model.BuildPlan) {
	resp, err := b.buildDomain.Apply(ctx, &model.ApplyBuildRequest{Plan: plan})
	if err != nil {
		b.edit(ctx, i, embed("Build failed", errorMessage(err), colorError), []discordgo.MessageComponent{})
		return
	}

	components := []discordgo.MessageComponent{}
	if resp.RollbackAvailable {
		components = undoButton(resp.BuildRunID)
	}

	b.edit(ctx, i, applyResultEmbed(resp), components)
}

func (b *Bot) undo(ctx context.Context, i *discordgo.Interaction, runID string) {
	if i.Type == discordgo.InteractionApplicationCommand && !b.deferReply(ctx, i) {
		return
	}

	if _, err := uuid.Parse(runID); err != nil {
		b.edit(ctx, i, embed("Undo failed", "Invalid build run id.", colorError), nil)
		return
	}

	resp, err := b.buildDomain.Rollback(ctx, &model.RollbackBuildRequest{
		GuildID:    i.GuildID,
		BuildRunID: runID,
	})
	if err != nil {
		b.edit(ctx, i, embed("Undo failed", errorMessage(err), colorError), nil)
		return
	}

	color := colorSuccess
	if resp.Failed > 0 {
		color = colorWarning
	}

	b.edit(ctx, i, embed("Undo finished", resp.Summary, color), []discordgo.MessageComponent{})
}

func (b *Bot) history(ctx context.Context, i *discordgo.Interaction) {
	resp, err := b.buildDomain.GetHistory(ctx, &model.GetBuildHistoryRequest{GuildID: i.GuildID})
	if err != nil {
		b.respondEphemeral(ctx, i, errorMessage(err))
		return
	}

	b.respond(ctx, i, &discordgo.InteractionResponseData{
		Embeds: historyEmbed(resp),
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) validate(ctx context.Context, i *discordgo.Interaction) {
	resp, err := b.buildDomain.ValidateTemplate(ctx, &model.ValidateTemplateRequest{})
	if err != nil {
		b.respond(ctx, i, &discordgo.InteractionResponseData{
			Embeds: embed("Template is invalid", errorMessage(err), colorError),
			Flags:  discordgo.MessageFlagsEphemeral,
		})
		return
	}

	b.respond(ctx, i, &discordgo.InteractionResponseData{
		Embeds: embed("Template is valid", fmt.Sprintf(
			"Template '%s' (version %s): %d roles, %d categories, %d channels.",
			resp.Name, resp.Version, resp.Roles, resp.Categories, resp.Channels), colorSuccess),
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) respond(ctx context.Context, i *discordgo.Interaction, data *discordgo.InteractionResponseData) {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot respond to interaction %s: %v", i.ID, err)
	}
}

func (b *Bot) respondEphemeral(ctx context.Context, i *discordgo.Interaction, content string) {
	b.respond(ctx, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// deferReply acknowledges a command whose answer comes later through edit.
func (b *Bot) deferReply(ctx context.Context, i *discordgo.Interaction) bool {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot defer interaction %s: %v", i.ID, err)
		return false
	}

	return true
}

func (b *Bot) deferUpdate(ctx context.Context, i *discordgo.Interaction) {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot defer interaction %s: %v", i.ID, err)
	}
}

// edit replaces the response of i. Nil components keep the current ones.
func (b *Bot) edit(
	ctx context.Context,
	i *discordgo.Interaction,
	embeds []*discordgo.MessageEmbed,
	components []discordgo.MessageComponent,
) {
	webhookEdit := &discordgo.WebhookEdit{Embeds: &embeds}
	if components != nil {
		webhookEdit.Components = &components
	}

	if _, err := b.session.InteractionResponseEdit(i, webhookEdit); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot edit response of interaction %s: %v", i.ID, err)
	}
}
