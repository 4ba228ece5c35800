package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/protix/am"
	"github.com/teranos/protix/display"
	"github.com/teranos/protix/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage protix configuration",
	Long: `am - Manage protix configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (PROTIX_* prefix, e.g. PROTIX_DATABASE_PATH)
3. Project config (./am.toml, searched up from the working directory)
4. User config (~/.protix/am.toml)
5. Default values

Examples:
  protix am show                  # Show current configuration
  protix am show --format json    # Show configuration as JSON
  protix am validate              # Validate current configuration
  protix am init                  # Write ./am.toml with default values
  protix am where                 # Show which config files are read`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current protix configuration merged from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Long: `Write a TOML config file holding the default configuration.

The path defaults to ./am.toml. An existing file is kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Args:  cobra.NoArgs,
	RunE:  runAmWhere,
}

func init() {
	amShowCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	format, _ := cmd.Flags().GetString("format")
	return writeConfig(cmd.OutOrStdout(), format, cfg)
}

func writeConfig(w io.Writer, format string, cfg *am.Config) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		_, err = fmt.Fprintf(w, "# protix configuration\n%s", data)
		return err

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		_, err = fmt.Fprintf(w, "# protix configuration\n%s", data)
		return err
	}
	return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", format)
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), map[string]bool{"valid": true})
	}
	pterm.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintln("Configuration is valid"))
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileName
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := am.WriteFile(path, am.Defaults(), force); err != nil {
		return err
	}
	pterm.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Wrote %s", path))
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	files := am.ConfigFiles()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), files)
	}

	data := pterm.TableData{{"SCOPE", "PATH", "STATUS"}}
	for _, f := range files {
		status := "missing"
		if f.Exists {
			status = "loaded"
		}
		data = append(data, []string{f.Scope, f.Path, status})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render config files")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(w, table)
	fmt.Fprintln(w, "Environment variables with the PROTIX_ prefix override both files.")
	return nil
}
