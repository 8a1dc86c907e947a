package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"triage-advisor/internal/core"
	"triage-advisor/pkg"
)

var (
	gender      string
	age         string
	preExisting string
	raw         bool
)

var assessCmd = &cobra.Command{
	Use:   "assess [symptoms...]",
	Short: "Assess a single patient and print the report",
	Long: `Sends one triage request and prints the formatted report.

Example:
  triage assess --gender Female --age 55 --pre-existing "High BP" "Chest tightness and breathlessness"`,
	RunE: runAssess,
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List the sample cases shown on the intake form",
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, ex := range core.Examples() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s, %s, pre-existing: %s, symptoms: %s\n",
				i+1, ex.Gender, ex.Age, ex.PreExisting, ex.Symptoms)
		}
		return nil
	},
}

func init() {
	assessCmd.Flags().StringVarP(&gender, "gender", "g", string(pkg.GenderMale), "Male, Female or Other")
	assessCmd.Flags().StringVarP(&age, "age", "a", "", "Patient age")
	assessCmd.Flags().StringVarP(&preExisting, "pre-existing", "p", "", "Pre-existing conditions")
	assessCmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
}

func runAssess(cmd *cobra.Command, args []string) error {
	in := pkg.PatientInput{
		Gender:      pkg.Gender(gender),
		Age:         age,
		PreExisting: preExisting,
		Symptoms:    strings.Join(args, " "),
	}
	rec, err := newTriageService(cfg, logger).Evaluate(cmd.Context(), in)
	report := core.Format(rec, err)

	out := report
	if !raw {
		r, rerr := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if rerr == nil {
			if styled, rerr := r.Render(report); rerr == nil {
				out = styled
			}
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	if err != nil {
		return errReported
	}
	return nil
}
