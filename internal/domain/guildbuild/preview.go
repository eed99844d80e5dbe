package guildbuild

import (
	"fmt"
	"strings"
)

const maxPreviewLength = 4000

// FormatPreview renders diff as one line per mutation for the operator.
func FormatPreview(diff *DiffResult) string {
	if !diff.HasChanges() {
		return "No changes detected."
	}

	var lines []string
	for _, r := range diff.Roles.ToCreate {
		lines = append(lines, fmt.Sprintf("+ Create Role `%s`", r.Name))
	}

	for _, u := range diff.Roles.ToUpdate {
		var fields []string
		if u.Changes.Color != nil {
			fields = append(fields, fmt.Sprintf("color #%06X", *u.Changes.Color))
		}
		if u.Changes.Hoist != nil {
			fields = append(fields, fmt.Sprintf("hoist %t", *u.Changes.Hoist))
		}
		if u.Changes.Mentionable != nil {
			fields = append(fields, fmt.Sprintf("mentionable %t", *u.Changes.Mentionable))
		}
		lines = append(lines, fmt.Sprintf("~ Update Role `%s` (%s)", u.Existing.Name, strings.Join(fields, ", ")))
	}

	for _, c := range diff.Categories.ToCreate {
		lines = append(lines, fmt.Sprintf("+ Create Category `%s`", c.Name))
	}

	for _, c := range diff.Channels.ToCreate {
		lines = append(lines, fmt.Sprintf("+ Create Channel `#%s` in **%s**", c.Channel.Name, c.CategoryName))
	}

	for _, u := range diff.Channels.ToUpdate {
		var fields []string
		if u.Changes.Topic != nil {
			fields = append(fields, "topic")
		}
		for _, d := range u.Changes.Overwrites {
			fields = append(fields, formatDelta(d))
		}
		lines = append(lines, fmt.Sprintf("~ Update Channel `#%s` (%s)", u.Existing.Name, strings.Join(fields, ", ")))
	}

	for _, w := range diff.Warnings {
		lines = append(lines, "! "+w)
	}

	return truncateLines(lines, maxPreviewLength)
}

func formatDelta(d OverwriteDelta) string {
	var parts []string
	for _, f := range d.AddedAllow {
		parts = append(parts, "+"+f)
	}
	for _, f := range d.RemovedAllow {
		parts = append(parts, "-"+f)
	}
	for _, f := range d.AddedDeny {
		parts = append(parts, "+deny "+f)
	}
	for _, f := range d.RemovedDeny {
		parts = append(parts, "-deny "+f)
	}

	return fmt.Sprintf("%s: %s", d.RoleName, strings.Join(parts, " "))
}

// truncateLines joins lines, stopping before limit characters are exceeded.
func truncateLines(lines []string, limit int) string {
	const more = "...and more."

	var b strings.Builder
	for i, line := range lines {
		if b.Len()+len(line)+1 > limit-len(more)-1 {
			b.WriteString("\n" + more)
			break
		}

		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}

	return b.String()
}

// FormatFailures lists the first max failures and counts the others.
func FormatFailures(failures []string, max int) string {
	if len(failures) == 0 {
		return ""
	}

	shown := failures
	if len(shown) > max {
		shown = shown[:max]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, f := range shown {
		lines = append(lines, "- "+f)
	}

	if rest := len(failures) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more", rest))
	}

	return strings.Join(lines, "\n")
}

// FormatSummary renders the outcome of an execution.
func FormatSummary(result *ExecuteResult, maxFailures int) string {
	var b strings.Builder
	if len(result.Failures) == 0 {
		fmt.Fprintf(&b, "Build completed: %d/%d changes applied.", result.Succeeded, result.Attempted)
	} else {
		fmt.Fprintf(&b, "Build completed with errors: %d succeeded, %d failed.\n%s",
			result.Succeeded, len(result.Failures), FormatFailures(result.Failures, maxFailures))
	}

	for _, w := range result.Warnings {
		b.WriteString("\n! " + w)
	}

	return b.String()
}

func FormatRollbackSummary(result *RollbackResult, maxFailures int) string {
	if len(result.Failures) == 0 {
		return fmt.Sprintf("Rollback completed: %d/%d changes reverted.", result.Succeeded, result.Attempted)
	}

	return fmt.Sprintf("Rollback completed with errors: %d succeeded, %d failed.\n%s",
		result.Succeeded, len(result.Failures), FormatFailures(result.Failures, maxFailures))
}
