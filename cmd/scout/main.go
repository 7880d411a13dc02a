// Command scout runs a shard-execution scenario file against the
// account/shard model in pkg/engine, driving guest Wasm bytecode through
// pkg/hostabi's "env" module, and reports any poststate mismatches.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gochain/scout/pkg/driver"
	"github.com/gochain/scout/pkg/scenario"
	"github.com/gochain/scout/pkg/scoutlog"
)

var (
	configFile string
	logLevel   string
	logFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scout <scenario.yaml>",
		Short: "scout - shard-execution test harness",
		Long: `scout replays a YAML scenario of prestates, timeslots, and poststates
against a Wasm guest module per account, then verifies the resulting
state roots match the scenario's expectations.`,
		Args: cobra.ExactArgs(1),
		RunE: runScenario,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./scout.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCmd exists alongside the root's direct invocation form so both
// `scout run scenario.yaml` and the historical `scout scenario.yaml`
// work.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "run a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if v := viper.GetString("log_level"); v != "" && !cmd.Flags().Changed("log-level") {
		logLevel = v
	}
	if v := viper.GetString("log_format"); v != "" && !cmd.Flags().Changed("log-format") {
		logFormat = v
	}

	level, err := scoutlog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	cfg := scoutlog.DefaultConfig()
	cfg.Level = level
	cfg.UseJSON = logFormat == "json"
	log := scoutlog.NewLogger(cfg).With("run_id", uuid.NewString())
	defer log.Sync()

	path := args[0]
	sc, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %v", driver.ErrScenarioParse, err)
	}

	ctx := context.Background()
	d := driver.New(log, scenarioDirOf(path))
	defer d.Close(ctx)

	if err := d.LoadPrestates(ctx, sc.Prestates); err != nil {
		return err
	}
	d.InitShardRoots()
	d.ReplayTimeslots(ctx, sc.Timeslots)
	mismatches := d.VerifyPoststates(sc.Poststates)

	if len(mismatches) == 0 {
		fmt.Println("passed")
		return nil
	}

	for _, m := range mismatches {
		fmt.Println(m.String())
	}
	fmt.Printf("FAILED: %d poststate mismatch(es)\n", len(mismatches))
	os.Exit(1)
	return nil
}

func scenarioDirOf(path string) string {
	return filepath.Dir(path)
}

func loadConfig() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}
