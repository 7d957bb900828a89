package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/pandemic-tracking/bicheck/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bicheck configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("key_column: %s\n", cfg.KeyColumn)
		fmt.Printf("first_numeric_column: %s\n", cfg.FirstNumericColumn)
		fmt.Printf("last_numeric_column: %s\n", cfg.LastNumericColumn)
		fmt.Printf("decrease_whitelist: %s\n", strings.Join(cfg.DecreaseWhitelist, ", "))
		fmt.Printf("increase_multiplier: %g\n", cfg.IncreaseMultiplier)
		fmt.Printf("snapshot_sheet: %s\n", cfg.SnapshotSheet)
		fmt.Printf("existing_url: %s\n", cfg.ExistingURL)
		if cfg.ChecksWorkbook != "" {
			fmt.Printf("checks_workbook: %s\n", cfg.ChecksWorkbook)
		}
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "key_column":
			cfg.KeyColumn = val
		case "first_numeric_column":
			cfg.FirstNumericColumn = val
		case "last_numeric_column":
			cfg.LastNumericColumn = val
		case "decrease_whitelist":
			// comma-separated list; empty clears the whitelist
			if val == "" {
				cfg.DecreaseWhitelist = nil
			} else {
				parts := strings.Split(val, ",")
				for i := range parts {
					parts[i] = strings.TrimSpace(parts[i])
				}
				cfg.DecreaseWhitelist = parts
			}
		case "increase_multiplier":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for increase_multiplier: %v", val)
			}
			cfg.IncreaseMultiplier = f
		case "snapshot_sheet":
			cfg.SnapshotSheet = val
		case "existing_url":
			cfg.ExistingURL = val
		case "checks_workbook":
			cfg.ChecksWorkbook = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
