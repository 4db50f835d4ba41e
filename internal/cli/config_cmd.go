package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/ui"
)

// configSetCommand writes key=value and checks the result still loads.
func configSetCommand(cmd *cobra.Command, key, value string) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys are dotted paths like refresh.interval or view.sort")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", ui.SymbolSuccess, key, value, path)
	return nil
}

// configPathCommand prints the config file that would be loaded.
func configPathCommand(cmd *cobra.Command) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "(none, using defaults)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
