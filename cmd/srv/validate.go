package main

import (
	"errors"
	"fmt"

	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/internal/model"
	"github.com/urfave/cli/v2"
)

// startValidate needs no Discord connection nor database.
func (s *srv) startValidate(cctx *cli.Context) error {
	s.loadRepos()
	s.loadDomains()

	name := cctx.Args().First()
	if name == "" {
		name = guildbuild.FileTemplateName
	}

	resp, err := s.buildDomain.ValidateTemplate(s.ctx, &model.ValidateTemplateRequest{
		TemplateName: name,
		Grades:       cctx.Int(flagGrades),
	})
	if err != nil {
		var verrs guildbuild.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintln(cctx.App.Writer, verrs.Error())
			return cli.Exit("", 1)
		}

		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(cctx.App.Writer, "OK: template '%s' (version %s) is valid.\n", resp.Name, resp.Version)
	return nil
}
