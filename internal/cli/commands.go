// Package cli implements the beectl command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/repository"
	"github.com/beeconnect/server/internal/repository/driver"
	"github.com/beeconnect/server/internal/service/ledger"
	"github.com/beeconnect/server/internal/service/visits"
	"github.com/beeconnect/server/pkg/logger"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg       *config.Config
	store     repository.Store
	loc       *time.Location
	weekStart time.Weekday
	logger    *zap.Logger
}

func (o *rootOptions) open(ctx context.Context) (*env, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(o.logLevel)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.Calendar.FirstWeekday()
	if err != nil {
		return nil, err
	}
	store, err := driver.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	return &env{cfg: cfg, store: store, loc: loc, weekStart: weekStart, logger: log}, nil
}

func (e *env) close() {
	_ = e.store.Close(context.Background())
	_ = e.logger.Sync()
}

func (e *env) aggregator() *visits.Aggregator {
	return visits.NewAggregator(e.store, visits.Options{Location: e.loc, WeekStart: e.weekStart}, logger.Named(e.logger, "svc.visits"))
}

// New builds the beectl command tree.
func New() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "beectl",
		Short:        "Inspect the BeeConnect visit calendar and inspection ledgers.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "env file to load configuration from")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level")

	addCalendar(root, opts)
	addInspections(root, opts)
	addInspect(root, opts)
	addVisits(root, opts)
	return root
}

func addCalendar(root *cobra.Command, opts *rootOptions) {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid with visit days highlighted.",
		Example: `
beectl calendar
beectl calendar --month 2024-05
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			year, m := time.Now().In(e.loc).Year(), time.Now().In(e.loc).Month()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("--month must be formatted as YYYY-MM")
				}
				year, m = t.Year(), t.Month()
			}

			grid, err := e.aggregator().Month(cmd.Context(), year, m)
			if err != nil {
				return err
			}
			RenderMonth(color.Output, grid)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM, defaults to the current month")
	root.AddCommand(cmd)
}

func addInspections(root *cobra.Command, opts *rootOptions) {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "inspections HIVE",
		Short: "Print one page of a hive's inspection ledger, newest first.",
		Example: `
beectl inspections 665f1c2e9b1d --page 1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if pageSize <= 0 {
				pageSize = e.cfg.Calendar.PageSize
			}
			svc := ledger.NewService(e.store, e.store, nil, ledger.Options{Location: e.loc, PageSize: pageSize}, logger.Named(e.logger, "svc.ledger"))

			view := ledger.NewView(svc, args[0], pageSize)
			if err := view.Reload(cmd.Context()); err != nil {
				return err
			}
			RenderPage(color.Output, args[0], view.Navigator(page).View())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "entries per page, defaults to INSPECTION_PAGE_SIZE")
	root.AddCommand(cmd)
}

func addInspect(root *cobra.Command, opts *rootOptions) {
	var rec models.Inspection

	cmd := &cobra.Command{
		Use:   "inspect HIVE",
		Short: "Log an inspection for a hive and print the first ledger page.",
		Long: `Log an inspection for a hive and print the first ledger page.
Follow-up reminders are only scheduled for inspections logged through the server.`,
		Example: `
beectl inspect 665f1c2e9b1d --notes "rainha vista" --next-visit "27/05/2024 09:00"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if rec.Date == "" {
				rec.Date = time.Now().In(e.loc).Format(models.InspectionDateLayout)
			}
			svc := ledger.NewService(e.store, e.store, nil, ledger.Options{Location: e.loc, PageSize: e.cfg.Calendar.PageSize}, logger.Named(e.logger, "svc.ledger"))

			view := ledger.NewView(svc, args[0], e.cfg.Calendar.PageSize)
			if err := view.Reload(cmd.Context()); err != nil {
				return err
			}
			if _, err := view.Append(cmd.Context(), rec); err != nil {
				return err
			}
			RenderPage(color.Output, args[0], view.Navigator(0).View())
			return nil
		},
	}
	cmd.Flags().StringVar(&rec.Date, "date", "", "inspection date as DD/MM/YYYY, defaults to today")
	cmd.Flags().StringVar(&rec.Feeding, "feeding", "", "feeding given")
	cmd.Flags().StringVar(&rec.Treatments, "treatments", "", "treatments applied")
	cmd.Flags().StringVar(&rec.Problems, "problems", "", "problems found")
	cmd.Flags().StringVar(&rec.Notes, "notes", "", "free notes")
	cmd.Flags().StringVar(&rec.NextVisit, "next-visit", "", "next visit as DD/MM/YYYY HH:mm")
	root.AddCommand(cmd)
}

func addVisits(root *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "visits DATE",
		Short: "List the hives due for a visit on DATE (YYYY-MM-DD).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := models.ParseDate(args[0])
			if err != nil {
				return err
			}

			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			groups, err := e.aggregator().OnDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			RenderVisits(color.Output, date, groups)
			return nil
		},
	}
	root.AddCommand(cmd)
}
