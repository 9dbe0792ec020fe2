package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/BrightBytes/insight-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change tool configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration key and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := applyConfig(cfg, key, value); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ %s = %s\n", key, value)
		return nil
	},
}

func applyConfig(c *cfgpkg.Global, key, value string) error {
	switch key {
	case "data_dir":
		c.DataDir = value
	case "default_mode":
		c.DefaultMode = value
	case "compute_timeout_sec":
		return setInt(&c.ComputeTimeoutSec, value)
	case "refresh_interval_sec":
		return setInt(&c.RefreshIntervalSec, value)
	case "chart_top_n":
		return setInt(&c.ChartTopN, value)
	case "schema_sample_rows":
		return setInt(&c.SchemaSampleRows, value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", value)
	}
	*dst = n
	return nil
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
