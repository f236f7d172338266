package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/sitereg/internal/config"
	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/JonMunkholm/sitereg/internal/export"
	"github.com/JonMunkholm/sitereg/internal/logging"
	"github.com/JonMunkholm/sitereg/internal/pipeline"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	cfg     *config.Config
	envFile bool
}

func newRootCmd(envFile bool) *cobra.Command {
	a := &app{envFile: envFile}

	root := &cobra.Command{
		Use:   "sitereg",
		Short: "Generate bulk site registration SQL and CSV from a spreadsheet",
		Long: `sitereg reads a spreadsheet of microwave-link sites and writes:

  - a SQL script that inserts every site into the sites table in one transaction
  - a CSV for the front-end bulk site upload

Settings come from the environment (optionally a .env file) and can be
overridden with flags. sitereg never connects to a database; it prints the
command that applies the script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	root.AddCommand(newGenerateCmd(a), newTemplateCmd())
	return root
}

// loadConfig reads configuration and sets up logging. Validation is left to
// the commands that use the settings, after their flags are applied.
func (a *app) loadConfig() error {
	cfg, err := config.LoadRaw()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if a.envFile {
		slog.Debug("loaded .env file")
	}
	slog.Debug("configuration loaded", "config", cfg.String())

	a.cfg = cfg
	return nil
}

type generateFlags struct {
	input       string
	sheet       string
	sqlOut      string
	csvOut      string
	csvATPType  string
	projectYear int
	dryRun      bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the SQL registration script and the bulk-upload CSV",
		Example: `  sitereg generate
  sitereg generate -i "Data ATP endik.xlsx" --sheet "Batch 2"
  sitereg generate --csv-atp-type inferred --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGenerateFlags(cmd, a.cfg, f)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
			}

			opts, err := pipeline.OptionsFromConfig(a.cfg)
			if err != nil {
				return err
			}
			opts.DryRun = f.dryRun

			_, err = pipeline.New(opts, cmd.OutOrStdout()).Run(cmd.Context())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "input spreadsheet (.xlsx, .xlsm, .xltx or .csv)")
	flags.StringVar(&f.sheet, "sheet", "", "worksheet name (default: first sheet)")
	flags.StringVar(&f.sqlOut, "sql-out", "", "SQL script output path")
	flags.StringVar(&f.csvOut, "csv-out", "", "bulk-upload CSV output path")
	flags.StringVar(&f.csvATPType, "csv-atp-type", "", `ATP Type written to the CSV: "both" or "inferred"`)
	flags.IntVar(&f.projectYear, "project-year", 0, "year used in generated project codes")
	flags.BoolVar(&f.dryRun, "dry-run", false, "report what would be generated without writing files")

	return cmd
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config, f generateFlags) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.Path = f.input
	}
	if flags.Changed("sheet") {
		cfg.Input.Sheet = f.sheet
	}
	if flags.Changed("sql-out") {
		cfg.Output.SQLPath = f.sqlOut
	}
	if flags.Changed("csv-out") {
		cfg.Output.CSVPath = f.csvOut
	}
	if flags.Changed("csv-atp-type") {
		cfg.Sites.CSVATPType = f.csvATPType
	}
	if flags.Changed("project-year") {
		cfg.Sites.ProjectYear = f.projectYear
	}
}

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty bulk-upload CSV with just the header row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" || out == "-" {
				return export.WriteBulkTemplate(cmd.OutOrStdout())
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("%w: create %s: %w", core.ErrWriteOutput, out, err)
			}
			if err := export.WriteBulkTemplate(file); err != nil {
				file.Close()
				return fmt.Errorf("%w: write %s: %w", core.ErrWriteOutput, out, err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("%w: close %s: %w", core.ErrWriteOutput, out, err)
			}

			slog.Info("template written", "path", out, "columns", len(export.BulkUploadColumns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", `output path ("-" or empty for stdout)`)
	return cmd
}
