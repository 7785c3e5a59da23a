package nutricu

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/nutrition"
	"github.com/saadjs/nutricu/internal/service"
)

var sessionMixtures []int64

const sessionHelp = `Commands:
  show [DAY]            print the table for all days or one day
  + DAY MIXTURE [N]     increase volume by N steps of 10 ml (default 1)
  - DAY MIXTURE [N]     decrease volume by N steps of 10 ml (default 1)
  set DAY MIXTURE ML    override the volume
  reset DAY MIXTURE     drop the override and use the computed volume
  select DAY MIXTURE    toggle the mixture exported for the day
  report                print the report text
  save PATH             write the report to a file or directory
  help                  show this help
  quit                  leave the session`

var sessionCmd = &cobra.Command{
	Use:   "session <patient-id>",
	Short: "Adjust volumes interactively; commands are read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			c, err := loadCalculation(sqldb, args[0], sessionMixtures)
			if err != nil {
				return err
			}
			t, err := localizer(sqldb)
			if err != nil {
				return err
			}
			logger.Debug().Str("patient", c.patient.ID).Int("mixtures", len(c.mixtures)).Msg("session started")
			return runSession(cmd.InOrStdin(), cmd.OutOrStdout(), c, t)
		})
	},
}

// runSession reads one command per line until quit or EOF. Command errors are
// printed and the session continues.
func runSession(in io.Reader, out io.Writer, c *calculation, t nutrition.Localizer) error {
	renderWarnings(out, c.patient, c.mixtures, t)
	renderTable(out, c.patient, c.plan, c.mixtures, c.session, t)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		done, err := sessionCommand(out, c, t, fields)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if done {
			return nil
		}
	}
}

func sessionCommand(out io.Writer, c *calculation, t nutrition.Localizer, fields []string) (bool, error) {
	name, args := fields[0], fields[1:]
	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(out, sessionHelp)
	case "show":
		if len(args) == 0 {
			renderTable(out, c.patient, c.plan, c.mixtures, c.session, t)
			return false, nil
		}
		day, err := parseDay(args[0])
		if err != nil {
			return false, err
		}
		d, _ := c.plan.Day(day)
		renderDay(out, c.patient, d, c.mixtures, c.session, t)
	case "+", "-":
		if len(args) < 2 || len(args) > 3 {
			return false, fmt.Errorf("usage: %s DAY MIXTURE [N]", name)
		}
		day, id, err := sessionTarget(args)
		if err != nil {
			return false, err
		}
		n := 1
		if len(args) == 3 {
			n, err = strconv.Atoi(args[2])
			if err != nil || n < 1 {
				return false, fmt.Errorf("invalid step count %q", args[2])
			}
		}
		if name == "-" {
			n = -n
		}
		if _, err := c.step(day, id, n); err != nil {
			return false, err
		}
		d, _ := c.plan.Day(day)
		renderDay(out, c.patient, d, c.mixtures, c.session, t)
	case "set":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: set DAY MIXTURE ML")
		}
		day, id, err := sessionTarget(args)
		if err != nil {
			return false, err
		}
		ml, err := strconv.Atoi(args[2])
		if err != nil {
			return false, fmt.Errorf("invalid volume %q", args[2])
		}
		if err := c.set(day, id, ml); err != nil {
			return false, err
		}
		d, _ := c.plan.Day(day)
		renderDay(out, c.patient, d, c.mixtures, c.session, t)
	case "reset":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: reset DAY MIXTURE")
		}
		day, id, err := sessionTarget(args)
		if err != nil {
			return false, err
		}
		if err := c.reset(day, id); err != nil {
			return false, err
		}
		d, _ := c.plan.Day(day)
		renderDay(out, c.patient, d, c.mixtures, c.session, t)
	case "select":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: select DAY MIXTURE")
		}
		day, id, err := sessionTarget(args)
		if err != nil {
			return false, err
		}
		if err := c.toggle(day, id); err != nil {
			return false, err
		}
		d, _ := c.plan.Day(day)
		renderDay(out, c.patient, d, c.mixtures, c.session, t)
	case "report":
		fmt.Fprint(out, c.report(t))
	case "save":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: save PATH")
		}
		path, err := writeReport(args[0], c.patient.ID, c.report(t))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Report saved to %s\n", path)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func sessionTarget(args []string) (int, int64, error) {
	day, err := parseDay(args[0])
	if err != nil {
		return 0, 0, err
	}
	id, err := service.ParseMixtureID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return day, id, nil
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().Int64SliceVar(&sessionMixtures, "mixture", nil, "Mixture ID to calculate (repeatable)")
	_ = sessionCmd.MarkFlagRequired("mixture")
}
