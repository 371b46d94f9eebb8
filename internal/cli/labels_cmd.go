package cli

import (
	"github.com/spf13/cobra"
)

func newLabelsCmd(app *App) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the labels, texts and prompt template as YAML",
		Long: "Prints the built-in localization for a language merged with the --labels file.\n" +
			"Save the output, edit it and pass it back with --labels or ROADMAP_LABELS.",
		Annotations: map[string]string{offline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := language
			if lang == "" {
				lang = app.Locale.Language
			}
			data, err := app.Locale.Resolved(lang).YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "Language to resolve (en or de)")
	return cmd
}
