package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aidetect/internal/features"
)

var questionsJSON bool

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questionnaire fields and their accepted answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := features.DefaultCatalog()
		if questionsJSON {
			return printJSON(cmd, catalog)
		}

		out := cmd.OutOrStdout()
		for _, g := range catalog.Groups {
			fmt.Fprintf(out, "%s (--%s)\n  %s\n", g.Label, flagName(g.Field), strings.Join(g.Options, " | "))
		}
		fmt.Fprintf(out, "Symptoms (--symptom, repeatable)\n  %s\n", strings.Join(catalog.Symptoms, " | "))
		return nil
	},
}

func init() {
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "Print the catalog as JSON")
}

// flagName converts a camelCase field name to its kebab-case flag.
func flagName(field string) string {
	var b strings.Builder
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
