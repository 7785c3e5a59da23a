package nutricu

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
	"github.com/saadjs/nutricu/internal/service"
)

var (
	calcMixtures []int64
	calcSets     []string
	calcAdjusts  []string
	calcSelects  []string
	calcOut      string
	calcQuiet    bool
)

// calculation is everything a volume calculation for one patient needs.
type calculation struct {
	patient  model.Patient
	plan     nutrition.Plan
	mixtures []model.Mixture
	session  *nutrition.Session
}

func loadCalculation(sqldb *sql.DB, patientID string, mixtureIDs []int64) (*calculation, error) {
	stored, err := service.GetPatient(sqldb, patientID)
	if err != nil {
		return nil, err
	}
	p := nutrition.ComputeDerived(*stored)
	mixtures, err := service.ResolveMixtures(sqldb, mixtureIDs)
	if err != nil {
		return nil, err
	}
	if len(mixtures) == 0 {
		return nil, fmt.Errorf("no known mixtures among %v", mixtureIDs)
	}
	if len(mixtures) < len(mixtureIDs) {
		logger.Warn().Ints64("requested", mixtureIDs).Int("resolved", len(mixtures)).Msg("unknown or repeated mixtures ignored")
	}
	return &calculation{
		patient:  p,
		plan:     nutrition.BuildPlan(p),
		mixtures: mixtures,
		session:  nutrition.NewSession(),
	}, nil
}

func (c *calculation) lookup(day int, mixtureID int64) (nutrition.Day, model.Mixture, error) {
	d, ok := c.plan.Day(day)
	if !ok {
		return nutrition.Day{}, model.Mixture{}, fmt.Errorf("invalid day %d (expected 1-%d)", day, nutrition.PlanDays)
	}
	for _, m := range c.mixtures {
		if m.ID == mixtureID {
			return d, m, nil
		}
	}
	return nutrition.Day{}, model.Mixture{}, fmt.Errorf("mixture %d is not part of this calculation", mixtureID)
}

func (c *calculation) set(day int, mixtureID int64, ml int) error {
	if _, _, err := c.lookup(day, mixtureID); err != nil {
		return err
	}
	if ml < 0 {
		return fmt.Errorf("volume must be >= 0")
	}
	c.session.SetVolume(day, mixtureID, ml)
	return nil
}

// step applies n adjustments of StepML each; a negative n decreases.
func (c *calculation) step(day int, mixtureID int64, n int) (nutrition.VolumeResult, error) {
	d, m, err := c.lookup(day, mixtureID)
	if err != nil {
		return nutrition.VolumeResult{}, err
	}
	delta := nutrition.StepML
	if n < 0 {
		delta, n = -delta, -n
	}
	res := c.session.Reconcile(c.patient, d, m)
	for i := 0; i < n; i++ {
		res = c.session.Adjust(c.patient, d, m, delta)
	}
	return res, nil
}

func (c *calculation) reset(day int, mixtureID int64) error {
	if _, _, err := c.lookup(day, mixtureID); err != nil {
		return err
	}
	c.session.ClearOverride(day, mixtureID)
	return nil
}

func (c *calculation) toggle(day int, mixtureID int64) error {
	if _, _, err := c.lookup(day, mixtureID); err != nil {
		return err
	}
	c.session.ToggleExport(day, mixtureID)
	return nil
}

func (c *calculation) report(t nutrition.Localizer) string {
	return nutrition.FormatCalculationReport(c.patient, c.plan, c.mixtures, c.session, t)
}

var calcCmd = &cobra.Command{
	Use:   "calc <patient-id>",
	Short: "Calculate mixture volumes for the 7-day plan",
	Example: `  nutricu calc icu-7 --mixture 2 --mixture 5
  nutricu calc icu-7 --mixture 2,5 --adjust 1:5=-1 --set 2:2=400 --select 1:5 --out reports/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			c, err := loadCalculation(sqldb, args[0], calcMixtures)
			if err != nil {
				return err
			}
			for _, raw := range calcSets {
				day, id, ml, err := parseDayMixtureValue(raw)
				if err != nil {
					return err
				}
				if err := c.set(day, id, ml); err != nil {
					return err
				}
			}
			for _, raw := range calcAdjusts {
				day, id, n, err := parseDayMixtureValue(raw)
				if err != nil {
					return err
				}
				if _, err := c.step(day, id, n); err != nil {
					return err
				}
			}
			for _, raw := range calcSelects {
				day, id, err := parseDayMixture(raw)
				if err != nil {
					return err
				}
				if err := c.toggle(day, id); err != nil {
					return err
				}
			}

			t, err := localizer(sqldb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderWarnings(out, c.patient, c.mixtures, t)
			text := c.report(t)
			if !calcQuiet {
				renderTable(out, c.patient, c.plan, c.mixtures, c.session, t)
				fmt.Fprintln(out)
				fmt.Fprint(out, text)
			}
			if calcOut != "" {
				path, err := writeReport(calcOut, c.patient.ID, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Report saved to %s\n", path)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().Int64SliceVar(&calcMixtures, "mixture", nil, "Mixture ID to calculate (repeatable)")
	calcCmd.Flags().StringArrayVar(&calcSets, "set", nil, "Override volume as DAY:MIXTURE=ML (repeatable)")
	calcCmd.Flags().StringArrayVar(&calcAdjusts, "adjust", nil, "Step volume as DAY:MIXTURE=STEPS, 10 ml per step, negative decreases (repeatable)")
	calcCmd.Flags().StringArrayVar(&calcSelects, "select", nil, "Toggle the export selection as DAY:MIXTURE (repeatable)")
	calcCmd.Flags().StringVar(&calcOut, "out", "", "Write the report to a file or a directory")
	calcCmd.Flags().BoolVar(&calcQuiet, "quiet", false, "Print only warnings and the saved report path")
	_ = calcCmd.MarkFlagRequired("mixture")
}
