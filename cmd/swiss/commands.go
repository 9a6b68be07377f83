package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/utils"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	driver    string
	dsn       string
	oddPolicy string
	asJSON    bool
	verbose   bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "swiss",
		Short:         "Run a Swiss-system tournament from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", envOr("DATABASE_DRIVER", db.DriverPostgres), "database driver: postgres or sqlite3")
	flags.StringVar(&opts.dsn, "dsn", os.Getenv("DATABASE_URL"), "database connection string")
	flags.StringVar(&opts.oddPolicy, "odd-policy", envOr("ODD_PLAYER_POLICY", string(brackets.OddPolicyError)), "odd player count handling: error or bye")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newMigrateCmd(opts),
		newRegisterCmd(opts),
		newReportCmd(opts),
		newStandingsCmd(opts),
		newPairingsCmd(opts),
		newCountCmd(opts),
		newResetCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

func (o *cliOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *cliOptions) openDB() (*sql.DB, error) {
	if o.dsn == "" {
		return nil, errors.New("no database configured: set DATABASE_URL or pass --dsn")
	}
	conn, err := db.Connect(o.driver, o.dsn, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(conn, o.driver); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// withService opens the database, runs fn against a fresh service and closes
// the connection again.
func (o *cliOptions) withService(cmd *cobra.Command, fn func(ctx context.Context, svc services.TournamentService) error) error {
	policy, err := brackets.ParseOddPolicy(o.oddPolicy)
	if err != nil {
		return err
	}
	conn, err := o.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := services.NewTournamentService(
		conn,
		repositories.NewPlayerRepository(conn),
		repositories.NewMatchRepository(conn),
		brackets.NewSwissGenerator(policy),
		nil,
		o.logger(cmd),
	)
	return fn(cmd.Context(), svc)
}

func (o *cliOptions) printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Connect(opts.driver, opts.dsn, 5*time.Second)
			if err != nil {
				return err
			}
			defer conn.Close()
			version, err := db.Migrate(conn, opts.driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newRegisterCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME...",
		Short: "Register one or more players",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				for _, name := range args {
					player, err := svc.RegisterPlayer(ctx, services.RegisterPlayerInput{Name: name})
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "registered #%d %s\n", player.ID, player.Name)
				}
				return nil
			})
		},
	}
}

func newReportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report WINNER_ID LOSER_ID",
		Short: "Record the result of a match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			winner, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("winner id %q is not a number", args[0])
			}
			loser, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("loser id %q is not a number", args[1])
			}
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				match, err := svc.ReportMatch(ctx, services.ReportMatchInput{WinnerID: winner, LoserID: loser})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "match #%d: %d beat %d\n", match.ID, match.WinnerID, match.LoserID)
				return nil
			})
		},
	}
}

func newStandingsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the current standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				standings, err := svc.PlayerStandings(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return opts.printJSON(cmd, standings)
				}
				fmt.Fprint(cmd.OutOrStdout(), brackets.BuildStandingsOutput(standings))
				return nil
			})
		},
	}
}

func newPairingsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pairings",
		Short: "Show the pairings for the next round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				pairings, err := svc.SwissPairings(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return opts.printJSON(cmd, pairings)
				}
				fmt.Fprint(cmd.OutOrStdout(), brackets.BuildPairingsOutput(pairings))
				return nil
			})
		},
	}
}

func newCountCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of registered players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				count, err := svc.CountPlayers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}
}

func newResetCmd(opts *cliOptions) *cobra.Command {
	var players bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all matches, and with --players all players too",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc services.TournamentService) error {
				matches, err := svc.DeleteMatches(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d matches\n", matches)
				if !players {
					return nil
				}
				deleted, err := svc.DeletePlayers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d players\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&players, "players", false, "also delete every registered player")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print a bcrypt hash for ORGANIZER_PASSWORD_HASH",
		Long:  "Print a bcrypt hash for ORGANIZER_PASSWORD_HASH. Without an argument the password is read from the first line of stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
