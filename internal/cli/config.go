package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand prints the effective configuration, flags applied.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Config.Write(cmd.OutOrStdout())
		},
	}
}

// configInitCommand writes a config file with every default spelled out.
func (c *CLI) configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile(args)
			if err != nil {
				return err
			}
			if err := (config.Config{}).WithDefaults().Save(path); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote configuration")
			printFile(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// configPathCommand prints where the configuration is read from.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.Config.Source != "" {
				fmt.Fprintln(cmd.OutOrStdout(), c.Config.Source)
				return nil
			}
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configFile(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}
