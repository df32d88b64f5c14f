package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"calorie/internal/backend"
	"calorie/internal/cli"
	"calorie/internal/core"
	"calorie/internal/log"
	"calorie/internal/services"
	"calorie/internal/session"
	"calorie/internal/sheets"
	"calorie/internal/sheets/google"
	"calorie/internal/storage"
)

const defaultSession = "cli"

// app holds what the commands share. svc is opened on first use unless a
// test has already set it.
type app struct {
	svc     *services.TrackerService
	journal sheets.JournalReader
	session string
	cleanup func() error
}

func (a *app) open(ctx context.Context) error {
	if a.svc != nil {
		return nil
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(res.Store,
		session.Config{CacheSize: 1, TTL: cfg.SessionTTL, DefaultLimit: cfg.DefaultCalorieLimit},
		session.WithLogger(logger.Logger),
		session.WithListeners(services.PublisherListeners(res.Publisher)))

	a.svc = services.NewTrackerService(sessions, logger.WithComponent(log.ComponentTracker))
	a.addCleanup(res.Close)
	return nil
}

// openJournal picks the journal to read: the Google Sheets export when
// source is "sheets", otherwise the SQLite journal written by the worker.
func (a *app) openJournal(ctx context.Context, source string) error {
	if a.journal != nil {
		return nil
	}
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	switch source {
	case "sheets":
		if !cfg.SheetsEnabled() {
			return fmt.Errorf("sheets journal needs GOOGLE_SPREADSHEET_ID")
		}
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return err
		}
		a.journal = client
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		a.journal = repo
		a.addCleanup(repo.Close)
	default:
		return fmt.Errorf("unknown journal source %q: use sqlite or sheets", source)
	}
	return nil
}

func (a *app) addCleanup(fn func() error) {
	prev := a.cleanup
	a.cleanup = func() error {
		err := fn()
		if prev != nil {
			err = errors.Join(err, prev())
		}
		return err
	}
}

func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "caloriectl",
		Short:         "Track meals, workouts and a daily calorie limit",
		Long:          "caloriectl edits a calorie tracker session.\nBackends: " + strings.Join(backend.GetBackendTypeStrings(), ", ") + " (DATA_BACKEND).",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !session.ValidID(a.session) {
				return fmt.Errorf("invalid session %q: use letters, digits, '-' or '_'", a.session)
			}
			if cmd.Name() == "journal" {
				return nil
			}
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.session, "session", "s", envOr("CALORIE_SESSION", defaultSession), "session to operate on")

	root.AddCommand(
		newShowCmd(a),
		newEntryCmd(a, core.KindMeal),
		newEntryCmd(a, core.KindWorkout),
		newLimitCmd(a),
		newResetCmd(a),
		newListCmd(a),
		newSessionsCmd(a),
		newJournalCmd(a),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// render runs fn against a terminal display and draws the figures after.
func render(out io.Writer, fn func(*cli.Terminal) error) error {
	term := cli.NewTerminal(out)
	if err := fn(term); err != nil {
		return err
	}
	term.Flush()
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every entry and the current figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd.OutOrStdout(), func(t *cli.Terminal) error {
				return a.svc.Show(cmd.Context(), a.session, t)
			})
		},
	}
}

func newEntryCmd(a *app, kind core.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("Add or remove a %s", kind),
	}

	add := &cobra.Command{
		Use:   "add NAME CALORIES",
		Short: fmt.Sprintf("Add a %s", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcal, err := core.ParseCalories(args[1])
			if err != nil {
				return fmt.Errorf("calories %q: %w", args[1], err)
			}
			return render(cmd.OutOrStdout(), func(t *cli.Terminal) error {
				if kind == core.KindMeal {
					_, err = a.svc.AddMeal(cmd.Context(), a.session, args[0], kcal, t)
				} else {
					_, err = a.svc.AddWorkout(cmd.Context(), a.session, args[0], kcal, t)
				}
				return err
			})
		},
	}

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   fmt.Sprintf("Remove a %s by id", kind),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), func(t *cli.Terminal) error {
				if kind == core.KindMeal {
					return a.svc.RemoveMeal(cmd.Context(), a.session, args[0], t)
				}
				return a.svc.RemoveWorkout(cmd.Context(), a.session, args[0], t)
			})
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func newLimitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limit [--] CALORIES",
		Short: "Set the daily calorie limit",
		Long:  "Set the daily calorie limit. Any whole number is accepted; put negative values after --.",
		Example: "  caloriectl limit 1800\n" +
			"  caloriectl limit -- -500",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := core.ParseLimit(args[0])
			if err != nil {
				return fmt.Errorf("limit %q: %w", args[0], err)
			}
			return render(cmd.OutOrStdout(), func(t *cli.Terminal) error {
				return a.svc.SetLimit(cmd.Context(), a.session, limit, t)
			})
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w (negative limits go after --, e.g. caloriectl limit -- -500)", err)
	})
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every meal and workout, keeping the limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd.OutOrStdout(), func(t *cli.Terminal) error {
				return a.svc.Reset(cmd.Context(), a.session, t)
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:       "list meals|workouts",
		Short:     "List meals or workouts, optionally filtered by name",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"meals", "workouts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := cli.NewTerminal(cmd.OutOrStdout())
			if args[0] == "meals" {
				meals, err := a.svc.FilterMeals(cmd.Context(), a.session, filter)
				if err != nil {
					return err
				}
				for _, m := range meals {
					t.AppendMeal(m)
				}
				return nil
			}
			workouts, err := a.svc.FilterWorkouts(cmd.Context(), a.session, filter)
			if err != nil {
				return err
			}
			for _, w := range workouts {
				t.AppendWorkout(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show entries whose name contains this text")
	return cmd
}

func newSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the sessions with stored data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := a.svc.StoredSessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "no stored sessions")
				return nil
			}
			for _, id := range ids {
				marker := " "
				if id == a.session {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, id)
			}
			return nil
		},
	}
}

func newJournalCmd(a *app) *cobra.Command {
	var (
		limit  int
		source string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the session's most recent journaled events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.openJournal(cmd.Context(), source); err != nil {
				return err
			}
			entries, err := a.journal.RecentEntries(cmd.Context(), a.session, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no journal entries")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(out, cli.JournalLine(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&source, "source", "sqlite", "journal to read: sqlite or sheets")
	return cmd
}
