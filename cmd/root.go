package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/logger"
)

var (
	logLevel string
	log      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "perfdex",
	Short: "Aligns performances to scores and describes how they were played",
	Long: `perfdex aligns a recorded performance (MIDI) with its score and derives a
performance description: tempo curve, rubato, asynchrony, articulation, dynamics,
arpeggios and timing imprecision.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		constants.LoadEnv()
		if logLevel == "" {
			logLevel = constants.GetLogLevel()
		}
		l, err := logger.New(logLevel)
		cobra.CheckErr(err)
		log = l
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from PERFDEX_LOG_LEVEL)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
