package nutricu

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/nutrition"
	"github.com/saadjs/nutricu/internal/service"
)

var mixtureCmd = &cobra.Command{
	Use:   "mixture",
	Short: "Manage enteral mixtures",
}

var (
	mixtureName          string
	mixtureCalories      float64
	mixtureProtein       float64
	mixtureDiabetic      bool
	mixtureSemiElemental bool
	mixtureJSON          bool
)

func bindMixtureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mixtureName, "name", "", "Mixture name (unique, case-insensitive)")
	cmd.Flags().Float64Var(&mixtureCalories, "calories", 0, "kcal per 1000 ml")
	cmd.Flags().Float64Var(&mixtureProtein, "protein", 0, "Protein grams per 1000 ml")
	cmd.Flags().BoolVar(&mixtureDiabetic, "diabetic", false, "Formulated for diabetic patients")
	cmd.Flags().BoolVar(&mixtureSemiElemental, "semi-elemental", false, "Semi-elemental (peptide) formula")
}

func applyMixtureFlags(cmd *cobra.Command, in *service.MixtureInput) {
	if cmd.Flags().Changed("name") {
		in.Name = mixtureName
	}
	if cmd.Flags().Changed("calories") {
		in.CaloriesPer1000ml = mixtureCalories
	}
	if cmd.Flags().Changed("protein") {
		in.ProteinPer1000ml = mixtureProtein
	}
	if cmd.Flags().Changed("diabetic") {
		in.IsDiabetic = mixtureDiabetic
	}
	if cmd.Flags().Changed("semi-elemental") {
		in.IsSemiElemental = mixtureSemiElemental
	}
}

var mixtureAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a mixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			in := service.MixtureInput{}
			applyMixtureFlags(cmd, &in)
			m, err := service.AddMixture(sqldb, in)
			if err != nil {
				return err
			}
			logger.Info().Int64("mixture", m.ID).Str("name", m.Name).Msg("mixture added")
			fmt.Fprintf(cmd.OutOrStdout(), "Added mixture %d (%s)\n", m.ID, m.Name)
			return nil
		})
	},
}

var mixtureEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a mixture; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseMixtureID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			existing, err := service.GetMixture(sqldb, id)
			if err != nil {
				return err
			}
			in := service.InputFromMixture(*existing)
			applyMixtureFlags(cmd, &in)
			m, err := service.UpdateMixture(sqldb, id, in)
			if err != nil {
				return err
			}
			logger.Info().Int64("mixture", m.ID).Msg("mixture updated")
			fmt.Fprintf(cmd.OutOrStdout(), "Updated mixture %d (%s)\n", m.ID, m.Name)
			return nil
		})
	},
}

var mixtureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListMixtures(sqldb)
			if err != nil {
				return err
			}
			if mixtureJSON {
				return writeJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tKCAL_PER_L\tPROTEIN_PER_L\tDIABETIC\tSEMI_ELEMENTAL\tDEFAULT")
			for _, m := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.Name,
					nutrition.FormatNumber(m.CaloriesPer1000ml), nutrition.FormatNumber(m.ProteinPer1000ml),
					yesNo(m.IsDiabetic), yesNo(m.IsSemiElemental), yesNo(m.IsDefault),
				)
			}
			return nil
		})
	},
}

var mixtureShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a mixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseMixtureID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.GetMixture(sqldb, id)
			if err != nil {
				return err
			}
			if mixtureJSON {
				return writeJSON(cmd, m)
			}
			t, err := localizer(sqldb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d\t%s\n", m.ID, m.Name)
			fmt.Fprintf(out, "%s: %s %s / 1000 %s\n", t("energy"), nutrition.FormatNumber(m.CaloriesPer1000ml), t("kcal"), t("ml"))
			fmt.Fprintf(out, "%s: %s %s / 1000 %s\n", t("protein"), nutrition.FormatNumber(m.ProteinPer1000ml), t("g"), t("ml"))
			fmt.Fprintf(out, "%s: %s\n", t("forDiabetics"), t(yesNo(m.IsDiabetic)))
			fmt.Fprintf(out, "%s: %s\n", t("semiElemental"), t(yesNo(m.IsSemiElemental)))
			return nil
		})
	},
}

var mixtureDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a mixture (bundled defaults included)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseMixtureID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteMixture(sqldb, id); err != nil {
				return err
			}
			logger.Info().Int64("mixture", id).Msg("mixture deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted mixture %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mixtureCmd)
	mixtureCmd.AddCommand(mixtureAddCmd, mixtureEditCmd, mixtureListCmd, mixtureShowCmd, mixtureDeleteCmd)

	bindMixtureFlags(mixtureAddCmd)
	bindMixtureFlags(mixtureEditCmd)
	mixtureListCmd.Flags().BoolVar(&mixtureJSON, "json", false, "Output JSON")
	mixtureShowCmd.Flags().BoolVar(&mixtureJSON, "json", false, "Output JSON")
}
