package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/modresolve/internal/config"
	"github.com/frederic-klein/modresolve/internal/output"
)

var (
	configPath string
	outputPath string
	asJSON     bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modresolve",
		Short: "Deterministic module version resolution for multi-unit builds",
		Long:  "modresolve merges dependency requirements from manifests, workspaces and explicit declarations, selects one version per module, and emits the resolved table for the fetch stage.",
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve module versions across all configured units",
		RunE:  runResolve,
	}

	resolveCmd.Flags().StringVarP(&configPath, "config", "c", "./modresolve.yaml", "Evaluation config path")
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default stdout)")
	resolveCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of the text lock format")
	resolveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(resolveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "modresolve",
		Level:  level,
		Output: os.Stderr,
	})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, err := config.BuildContext(cfg, log)
	if err != nil {
		return fmt.Errorf("loading units: %w", err)
	}

	result, err := ctx.Resolve()
	if err != nil {
		return fmt.Errorf("resolving: %w", err)
	}
	log.Debug("resolution complete", "modules", len(result.Modules))

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	emitter := output.NewEmitter(out)
	if asJSON {
		err = emitter.EmitJSON(result)
	} else {
		err = emitter.Emit(result)
	}
	if err != nil {
		return fmt.Errorf("writing resolution: %w", err)
	}

	if outputPath != "" {
		fmt.Printf("Resolved %d modules into %s\n", len(result.Modules), outputPath)
	}
	return nil
}
