package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"feedbackbot/internal/app"
	"feedbackbot/internal/config"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the theme vocabulary and its keyword triggers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := configOverrides()
		overrides.Provider = config.ProviderNone
		vocab, err := app.Vocabulary(config.LoadConfigWith(overrides))
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "THEME\tID\tTRIGGERS")
		for _, th := range vocab.Themes() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", th.Display, th.ID, strings.Join(th.Triggers, ", "))
		}
		return tw.Flush()
	},
}
