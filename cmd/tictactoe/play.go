package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/config"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/history"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/logging"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/view"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Reads commands from stdin:
  <n> | play <n>   place the next mark on cell n (0..8)
  jump <n>         show move n
  restart          start over
  sort             flip the move list order
  quit             leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		conf := config.MustLoad(path)
		showErrors := conf.Game.ShowErrors
		if cmd.Flags().Changed("show-errors") {
			showErrors, _ = cmd.Flags().GetBool("show-errors")
		}
		logger := logging.New(conf.LogLevel, conf.LogFormat, os.Stderr)
		return runPlay(cmd.InOrStdin(), cmd.OutOrStdout(), logger, showErrors)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("show-errors", false, "Explain rejected commands instead of ignoring them")
}

var errQuit = errors.New("quit")

// runPlay drives one session from a line-based reader, redrawing after every
// command.
func runPlay(in io.Reader, out io.Writer, logger *slog.Logger, showErrors bool) error {
	log := logger.With("component", "terminal")
	s := app.NewSession(uuid.NewString(), time.Now())
	if err := view.RenderText(out, view.Build(s)); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for {
		if _, err := io.WriteString(out, "> "); err != nil {
			return err
		}
		if !sc.Scan() {
			break
		}
		err := execLine(s, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		page := view.Build(s)
		if err != nil {
			log.Debug("command ignored", "line", sc.Text(), "error", err)
			if showErrors {
				page.Error = describe(err)
			}
		}
		if err := view.RenderText(out, page); err != nil {
			return err
		}
	}
	return sc.Err()
}

func execLine(s *app.Session, line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}
	arg := func() (int, error) {
		if len(fields) < 2 {
			return 0, fmt.Errorf("%s needs a number", fields[0])
		}
		return strconv.Atoi(fields[1])
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return errQuit
	case "restart":
		s.Restart()
		return nil
	case "sort":
		s.ToggleSort()
		return nil
	case "jump":
		n, err := arg()
		if err != nil {
			return err
		}
		return s.JumpTo(n)
	case "play":
		n, err := arg()
		if err != nil {
			return err
		}
		return s.Play(n)
	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("unknown command %q", fields[0])
		}
		return s.Play(n)
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrCellOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, history.ErrOutOfRange):
		return "No such move"
	default:
		return err.Error()
	}
}
