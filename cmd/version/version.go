// Package versioncmder prints the build metadata stamped into the
// catalog binary at release time.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/catalog/pkg/cliui"
	"github.com/papercomputeco/catalog/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the catalog build version, commit, and build time",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	return cmd
}

func (c *VersionCommander) run() error {
	fmt.Printf("%s %s\n%s %s\n%s %s\n",
		cliui.KeyStyle.Render("Version:"), utils.Version,
		cliui.KeyStyle.Render("Commit: "), utils.Sha,
		cliui.KeyStyle.Render("Built:  "), utils.Buildtime,
	)
	return nil
}
