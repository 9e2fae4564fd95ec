package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LilVoxy/aid_analytics/ETL/config"
	"github.com/LilVoxy/aid_analytics/ETL/integrity"
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// rootOptions содержит общие флаги команд
type rootOptions struct {
	configPath string
	verbose    bool
}

// buildReport - результат однократного построения для вывода
type buildReport struct {
	Summary    models.BuildSummary   `yaml:"summary"`
	Violations []integrity.Violation `yaml:"violations,omitempty"`
}

// stateReport описывает одно измерение в файле состояния ключей
type stateReport struct {
	Dimension string `yaml:"dimension"`
	Members   int    `yaml:"members"`
	MaxKey    int    `yaml:"max_key"`
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "aid-etl",
		Short:         "Построение звездной схемы аналитики помощи",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "путь к YAML-файлу конфигурации")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "подробное логирование")

	cmd.AddCommand(newRunCommand(opts), newScheduleCommand(opts), newVerifyStateCommand(opts))
	return cmd
}

func (o *rootOptions) load() (config.ETLConfig, error) {
	var cfg config.ETLConfig
	if o.configPath == "" {
		cfg = config.GetConfig()
	} else {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.verbose {
		cfg.EnableDetailedLogging = true
	}
	return cfg, nil
}

func (o *rootOptions) runner() (*ETLRunner, *utils.ETLLogger, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewETLLogger(cfg.EnableDetailedLogging, cfg.LogDir)
	if err != nil {
		return nil, nil, err
	}

	runner, err := NewETLRunner(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("ошибка при создании ETL Runner: %w", err)
	}
	return runner, logger, nil
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Однократно построить хранилище и вывести сводку",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, logger, err := opts.runner()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer runner.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, buildErr := runner.ExecuteETL(ctx)
			if err := writeReport(cmd.OutOrStdout(), summary, buildErr); err != nil {
				return err
			}
			return buildErr
		},
	}
}

func writeReport(out io.Writer, summary models.BuildSummary, buildErr error) error {
	report := buildReport{Summary: summary}

	var integrityErr *integrity.IntegrityError
	if errors.As(buildErr, &integrityErr) {
		report.Violations = integrityErr.Violations
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("ошибка вывода сводки: %w", err)
	}
	return encoder.Close()
}

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Перестраивать хранилище по расписанию и отдавать статус по HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, logger, err := opts.runner()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer runner.Close()

			// Контекст отменяется при получении сигнала завершения
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runner.StartScheduler(ctx)
		},
	}
}

func newVerifyStateCommand(opts *rootOptions) *cobra.Command {
	var statePath string

	cmd := &cobra.Command{
		Use:   "verify-state",
		Short: "Проверить файл состояния суррогатных ключей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := statePath
			if path == "" {
				cfg, err := opts.load()
				if err != nil {
					return err
				}
				path = cfg.StatePath
			}
			if path == "" {
				return errors.New("путь к файлу состояния не задан")
			}

			state, err := keys.LoadState(path)
			if err != nil {
				return err
			}
			if _, err := keys.NewResolverFromState(state); err != nil {
				return fmt.Errorf("состояние ключей %s некорректно: %w", path, err)
			}

			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(summarizeState(state))
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "путь к файлу состояния (по умолчанию из конфигурации)")
	return cmd
}

func summarizeState(state keys.State) []stateReport {
	out := make([]stateReport, 0, len(state.Dimensions))
	for name, mappings := range state.Dimensions {
		r := stateReport{Dimension: name, Members: len(mappings)}
		for _, m := range mappings {
			r.MaxKey = max(r.MaxKey, m.Key)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dimension < out[j].Dimension })
	return out
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}
