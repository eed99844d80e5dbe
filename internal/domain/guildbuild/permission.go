package guildbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// permissionBits maps the canonical flag names used in templates to Discord
// permission bits.
var permissionBits = map[string]int64{
	"CreateInstantInvite":   discordgo.PermissionCreateInstantInvite,
	"KickMembers":           discordgo.PermissionKickMembers,
	"BanMembers":            discordgo.PermissionBanMembers,
	"Administrator":         discordgo.PermissionAdministrator,
	"ManageChannels":        discordgo.PermissionManageChannels,
	"AddReactions":          discordgo.PermissionAddReactions,
	"ViewAuditLog":          discordgo.PermissionViewAuditLogs,
	"PrioritySpeaker":       discordgo.PermissionVoicePrioritySpeaker,
	"Stream":                discordgo.PermissionVoiceStreamVideo,
	"ViewChannel":           discordgo.PermissionViewChannel,
	"SendMessages":          discordgo.PermissionSendMessages,
	"SendTTSMessages":       discordgo.PermissionSendTTSMessages,
	"ManageMessages":        discordgo.PermissionManageMessages,
	"EmbedLinks":            discordgo.PermissionEmbedLinks,
	"AttachFiles":           discordgo.PermissionAttachFiles,
	"ReadMessageHistory":    discordgo.PermissionReadMessageHistory,
	"MentionEveryone":       discordgo.PermissionMentionEveryone,
	"UseExternalEmojis":     discordgo.PermissionUseExternalEmojis,
	"Connect":               discordgo.PermissionVoiceConnect,
	"Speak":                 discordgo.PermissionVoiceSpeak,
	"MuteMembers":           discordgo.PermissionVoiceMuteMembers,
	"DeafenMembers":         discordgo.PermissionVoiceDeafenMembers,
	"MoveMembers":           discordgo.PermissionVoiceMoveMembers,
	"UseVAD":                discordgo.PermissionVoiceUseVAD,
	"ChangeNickname":        discordgo.PermissionChangeNickname,
	"ManageNicknames":       discordgo.PermissionManageNicknames,
	"ManageRoles":           discordgo.PermissionManageRoles,
	"ManageWebhooks":        discordgo.PermissionManageWebhooks,
	"RequestToSpeak":        discordgo.PermissionVoiceRequestToSpeak,
	"ManageThreads":         discordgo.PermissionManageThreads,
	"CreatePublicThreads":   discordgo.PermissionCreatePublicThreads,
	"CreatePrivateThreads":  discordgo.PermissionCreatePrivateThreads,
	"UseExternalStickers":   discordgo.PermissionUseExternalStickers,
	"SendMessagesInThreads": discordgo.PermissionSendMessagesInThreads,

	"ManageGuild":                      discordgo.PermissionManageGuild,
	"ViewGuildInsights":                discordgo.PermissionViewGuildInsights,
	"ManageGuildExpressions":           discordgo.PermissionManageGuildExpressions,
	"UseApplicationCommands":           discordgo.PermissionUseApplicationCommands,
	"ManageEvents":                     discordgo.PermissionManageEvents,
	"UseEmbeddedActivities":            discordgo.PermissionUseEmbeddedActivities,
	"ModerateMembers":                  discordgo.PermissionModerateMembers,
	"ViewCreatorMonetizationAnalytics": discordgo.PermissionViewCreatorMonetizationAnalytics,
	"UseSoundboard":                    discordgo.PermissionUseSoundboard,
	"CreateGuildExpressions":           discordgo.PermissionCreateGuildExpressions,
	"CreateEvents":                     discordgo.PermissionCreateEvents,
	"UseExternalSounds":                discordgo.PermissionUseExternalSounds,
	"SendVoiceMessages":                discordgo.PermissionSendVoiceMessages,
	"SendPolls":                        discordgo.PermissionSendPolls,
	"UseExternalApps":                  discordgo.PermissionUseExternalApps,
}

// knownPermissionBits is the union of every bit in the vocabulary.
var knownPermissionBits = func() int64 {
	var bits int64
	for _, bit := range permissionBits {
		bits |= bit
	}
	return bits
}()

// legacyPermissionNames holds names from older API versions, keyed by their
// normalized form.
var legacyPermissionNames = map[string]string{
	"readmessages":      "ViewChannel",
	"viewauditlogs":     "ViewAuditLog",
	"video":             "Stream",
	"usevoiceactivity":  "UseVAD",
	"managepermissions": "ManageRoles",
	"usepublicthreads":  "CreatePublicThreads",
	"useprivatethreads": "CreatePrivateThreads",
	"manageserver":            "ManageGuild",
	"manageemojis":            "ManageGuildExpressions",
	"manageemojisandstickers": "ManageGuildExpressions",
	"useslashcommands":        "UseApplicationCommands",
	"startembeddedactivities": "UseEmbeddedActivities",
	"useactivities":           "UseEmbeddedActivities",
}

var normalizedPermissionNames = func() map[string]string {
	m := make(map[string]string, len(permissionBits)+len(legacyPermissionNames))
	for name := range permissionBits {
		m[normalizePermissionName(name)] = name
	}

	for legacy, name := range legacyPermissionNames {
		m[legacy] = name
	}

	return m
}()

func normalizePermissionName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}

// CanonicalPermission resolves a flag name written in any case, in
// SCREAMING_SNAKE form or under a legacy alias to its canonical name.
func CanonicalPermission(name string) (string, bool) {
	canonical, ok := normalizedPermissionNames[normalizePermissionName(name)]
	return canonical, ok
}

// PermissionBits folds canonical flag names into a bitset.
func PermissionBits(names []string) (int64, error) {
	var bits int64
	for _, name := range names {
		canonical, ok := CanonicalPermission(name)
		if !ok {
			return 0, fmt.Errorf("unknown permission flag %q", name)
		}

		bits |= permissionBits[canonical]
	}

	return bits, nil
}

// PermissionNames expands a bitset into sorted canonical names. Bits outside
// the vocabulary are left out, UnknownPermissionBits returns them.
func PermissionNames(bits int64) []string {
	names := []string{}
	for name, bit := range permissionBits {
		if bits&bit != 0 {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// UnknownPermissionBits returns the bits of bits that have no canonical name.
func UnknownPermissionBits(bits int64) int64 {
	return bits &^ knownPermissionBits
}

func hasPermission(bits int64, name string) bool {
	if bits&discordgo.PermissionAdministrator != 0 {
		return true
	}

	return bits&permissionBits[name] != 0
}
