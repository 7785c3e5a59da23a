package nutricu

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
	"github.com/saadjs/nutricu/internal/service"
)

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage patients",
}

var (
	patientID            string
	patientGender        string
	patientHeight        float64
	patientWeight        float64
	patientAge           int
	patientDiabetes      bool
	patientKidneyFailure bool
	patientRefeedingRisk bool
	patientJSON          bool
)

func bindPatientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&patientGender, "gender", "", "Gender: male or female")
	cmd.Flags().Float64Var(&patientHeight, "height", 0, "Height in cm")
	cmd.Flags().Float64Var(&patientWeight, "weight", 0, "Actual weight in kg")
	cmd.Flags().IntVar(&patientAge, "age", 0, "Age in years")
	cmd.Flags().BoolVar(&patientDiabetes, "diabetes", false, "Patient has diabetes")
	cmd.Flags().BoolVar(&patientKidneyFailure, "kidney-failure", false, "Patient has kidney failure")
	cmd.Flags().BoolVar(&patientRefeedingRisk, "refeeding-risk", false, "Patient is at risk of refeeding syndrome")
}

// applyPatientFlags overwrites only the fields whose flags were set.
func applyPatientFlags(cmd *cobra.Command, in *service.PatientInput) {
	if cmd.Flags().Changed("gender") {
		in.Gender = model.Gender(patientGender)
	}
	if cmd.Flags().Changed("height") {
		in.HeightCm = patientHeight
	}
	if cmd.Flags().Changed("weight") {
		in.WeightKg = patientWeight
	}
	if cmd.Flags().Changed("age") {
		in.AgeYears = patientAge
	}
	if cmd.Flags().Changed("diabetes") {
		in.HasDiabetes = patientDiabetes
	}
	if cmd.Flags().Changed("kidney-failure") {
		in.HasKidneyFailure = patientKidneyFailure
	}
	if cmd.Flags().Changed("refeeding-risk") {
		in.HasRefeedingRisk = patientRefeedingRisk
	}
}

var patientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a patient",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			in := service.PatientInput{ID: patientID}
			applyPatientFlags(cmd, &in)
			p, err := service.AddPatient(sqldb, in)
			if err != nil {
				return err
			}
			logger.Info().Str("patient", p.ID).Msg("patient added")
			fmt.Fprintf(cmd.OutOrStdout(), "Added patient %s (BMI %s, calculation weight %s kg)\n", p.ID, nutrition.FormatNumber(p.BMI), nutrition.FormatNumber(p.CalculationWeight))
			return nil
		})
	},
}

var patientEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a patient; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			existing, err := service.GetPatient(sqldb, args[0])
			if err != nil {
				return err
			}
			in := service.InputFromPatient(*existing)
			applyPatientFlags(cmd, &in)
			p, err := service.UpdatePatient(sqldb, existing.ID, in)
			if err != nil {
				return err
			}
			logger.Info().Str("patient", p.ID).Msg("patient updated")
			fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %s (BMI %s, calculation weight %s kg)\n", p.ID, nutrition.FormatNumber(p.BMI), nutrition.FormatNumber(p.CalculationWeight))
			return nil
		})
	},
}

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListPatients(sqldb)
			if err != nil {
				return err
			}
			if patientJSON {
				return writeJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tGENDER\tAGE\tHEIGHT\tWEIGHT\tBMI\tCALC_WEIGHT\tDIABETES\tKIDNEY\tREFEEDING\tCREATED")
			for _, p := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Gender, p.AgeYears,
					nutrition.FormatNumber(p.HeightCm), nutrition.FormatNumber(p.WeightKg),
					nutrition.FormatNumber(p.BMI), nutrition.FormatNumber(p.CalculationWeight),
					yesNo(p.HasDiabetes), yesNo(p.HasKidneyFailure), yesNo(p.HasRefeedingRisk),
					p.CreatedAt.Local().Format(time.DateTime),
				)
			}
			return nil
		})
	},
}

var patientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a patient with anthropometry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetPatient(sqldb, args[0])
			if err != nil {
				return err
			}
			if patientJSON {
				return writeJSON(cmd, p)
			}
			t, err := localizer(sqldb)
			if err != nil {
				return err
			}
			category := nutrition.BMICategoryOf(p.BMI)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t("patientID"), p.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s (%s, %s)\n", t("bmi"), nutrition.FormatNumber(p.BMI), t("kgm2"), t(category.Category), category.Color)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", t("idealWeight"), nutrition.FormatNumber(p.IdealWeight), t("kg"))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", t("adjustedWeight"), nutrition.FormatNumber(p.AdjustedWeight), t("kg"))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", t("calculationWeight"), nutrition.FormatNumber(nutrition.CalculationWeight(*p)), t("kg"))
			if nutrition.DerivedStale(*p) {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: stored derived fields are stale; run `nutricu doctor --fix`")
			}
			return nil
		})
	},
}

var patientPlanCmd = &cobra.Command{
	Use:   "plan <id>",
	Short: "Show the 7-day nutrition plan for a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			stored, err := service.GetPatient(sqldb, args[0])
			if err != nil {
				return err
			}
			p := nutrition.ComputeDerived(*stored)
			plan := nutrition.BuildPlan(p)
			if patientJSON {
				return writeJSON(cmd, plan)
			}
			t, err := localizer(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), nutrition.FormatPlanReport(p, plan, t))
			return nil
		})
	},
}

var patientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeletePatient(sqldb, args[0]); err != nil {
				return err
			}
			logger.Info().Str("patient", args[0]).Msg("patient deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %s\n", args[0])
			return nil
		})
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(patientCmd)
	patientCmd.AddCommand(patientAddCmd, patientEditCmd, patientListCmd, patientShowCmd, patientPlanCmd, patientDeleteCmd)

	patientAddCmd.Flags().StringVar(&patientID, "id", "", "Patient identifier (required)")
	bindPatientFlags(patientAddCmd)
	bindPatientFlags(patientEditCmd)
	for _, c := range []*cobra.Command{patientListCmd, patientShowCmd, patientPlanCmd} {
		c.Flags().BoolVar(&patientJSON, "json", false, "Output JSON")
	}
}
