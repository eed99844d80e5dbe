package guildbuild

import (
	"fmt"
	"strings"

	"github.com/neko-jpg/schoolfestival-bot/pkg/errorx"
)

var (
	ErrBuildRunNotFound  = errorx.New(errorx.NotFound, "Build run not found")
	ErrAlreadyRolledBack = errorx.New(errorx.AlreadyRolledBack, "This build has already been rolled back")
	ErrGuildMismatch     = errorx.New(errorx.GuildMismatch, "This build was run on another server")
)

type ValidationError struct {
	Path    string
	Message string
}

// ValidationErrors is every violation found in one template document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("Template validation failed:")
	for _, v := range e {
		b.WriteString("\n - ")
		if v.Path != "" {
			fmt.Fprintf(&b, "at path `%s`: ", v.Path)
		}
		b.WriteString(v.Message)
	}

	return b.String()
}

func (e ValidationErrors) Unwrap() error {
	return errorx.New(errorx.ValidationFailed, "template validation failed")
}

// PermissionError lists every pre-flight problem that blocks a build.
type PermissionError struct {
	Problems []string
}

func (e *PermissionError) Error() string {
	return "Pre-flight check failed:\n" + strings.Join(e.Problems, "\n")
}

func (e *PermissionError) Unwrap() error {
	return errorx.New(errorx.PermissionDenied, "pre-flight check failed")
}

type SnapshotReadError struct {
	Err error
}

func (e *SnapshotReadError) Error() string {
	return fmt.Sprintf("cannot read server state: %v", e.Err)
}

func (e *SnapshotReadError) Unwrap() error {
	return e.Err
}
