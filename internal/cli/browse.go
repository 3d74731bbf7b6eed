package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// browseCommand opens an interactive package picker and prints the chosen
// package like cygpm info.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [pattern]",
		Short: "Pick a package interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pattern string
			if len(args) == 1 {
				pattern = args[0]
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(s *catalog.SQLiteStore) error {
				rows, err := packageRows(ctx, s)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					printInfo(cmd.OutOrStdout(), "Catalog is empty; run %s load", appName)
					return nil
				}

				p := tea.NewProgram(NewPackageListModel(rows, pattern),
					tea.WithContext(ctx),
					tea.WithAltScreen(),
					tea.WithOutput(cmd.ErrOrStderr()))
				final, err := p.Run()
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "run package browser")
				}

				m, ok := final.(PackageListModel)
				if !ok || m.Selected == nil {
					return nil
				}
				return runInfo(ctx, cmd.OutOrStdout(), s, m.Selected.Name, infoOpts{}, "")
			})
		},
	}
}

// packageRows lists every package in ingestion order.
func packageRows(ctx context.Context, r catalog.Reader) ([]PackageRow, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]PackageRow, 0, len(names))
	for _, name := range names {
		p, err := r.Package(ctx, name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, PackageRow{
			Name:     p.Name,
			Version:  p.Version,
			Category: p.Category,
			Summary:  p.ShortDesc,
		})
	}
	return rows, nil
}
