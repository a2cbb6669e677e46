package main

import (
	"fmt"
	"strings"

	"github.com/nao1215/codebook/internal/config"
	"github.com/spf13/cobra"
)

// addInputFlags registers the flags that select a job and its inputs.
// They are shared by build and validate.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "CSV data file")
	cmd.Flags().StringP("metadata", "m", "", "Metadata file describing the columns (YAML)")
	cmd.Flags().StringSlice("vocab", nil, "Vocabulary file; may be repeated")
	cmd.Flags().String("delimiter", "", `CSV field delimiter (default ","; use "tab" for TSV)`)
	cmd.Flags().StringSlice("date-layout", nil, "Go time layout tried for date columns; may be repeated")

	cmd.Flags().StringP("job", "n", "", "Build the named codebook from the project file")
	cmd.Flags().BoolP("all", "a", false, "Build every codebook in the project file")
}

// loadProjectConfig creates a Config with the project file applied. An
// explicitly given project file must exist; otherwise a missing file leaves
// Config.File nil.
func loadProjectConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = stringFlag(cmd, "config")

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	return cfg, nil
}

// loadConfig builds a Config from the project file and the input flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.JobName, err = cmd.Flags().GetString("job"); err != nil {
		return nil, err
	}
	if cfg.All, err = cmd.Flags().GetBool("all"); err != nil {
		return nil, err
	}
	if cfg.Job.Data, err = cmd.Flags().GetString("data"); err != nil {
		return nil, err
	}
	if cfg.Job.Metadata, err = cmd.Flags().GetString("metadata"); err != nil {
		return nil, err
	}
	if cfg.Job.Vocabularies, err = cmd.Flags().GetStringSlice("vocab"); err != nil {
		return nil, err
	}
	if cfg.Job.Delimiter, err = cmd.Flags().GetString("delimiter"); err != nil {
		return nil, err
	}
	if cfg.Job.DateLayouts, err = cmd.Flags().GetStringSlice("date-layout"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringFlag returns the value of a string flag, or "" when the command
// does not define it.
func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// parseFigureFlag parses "path" or "path=caption".
func parseFigureFlag(s string, order int) config.FigureRef {
	path, caption, _ := strings.Cut(s, "=")
	return config.FigureRef{Path: path, Caption: caption, Order: order}
}
