package cmd

import (
	"github.com/spf13/cobra"

	"feedbackbot/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "feedbackbot",
	Short: "Classify customer feedback by theme and sentiment",
	Long: `FeedbackBot tags customer feedback with a theme, a sentiment and a short
highlight. A hosted language model proposes the labels and a deterministic
keyword scorer backs them up, overriding the model whenever its keywords disagree.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func configOverrides() config.Overrides {
	return config.Overrides{Path: cfgFile}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(themesCmd)
}
