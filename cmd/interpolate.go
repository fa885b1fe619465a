package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/perfdex/file"
	"github.com/jsphweid/perfdex/project"
)

var interpolateOut string

func init() {
	addProjectFlags(interpolateCmd)
	interpolateCmd.Flags().StringVarP(&interpolateOut, "out", "o", "-", "where to write the performance description")
	rootCmd.AddCommand(interpolateCmd)
}

var interpolateCmd = &cobra.Command{
	Use:   "interpolate <score> <performance>",
	Short: "Describes a performance",
	Long:  `Aligns a performance with its score and writes the derived performance description as JSON.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		cobra.CheckErr(err)
		p, err := openProject(context.Background(), args[0], args[1], store, project.WithSettle(0))
		cobra.CheckErr(err)

		for _, status := range p.Regenerate() {
			fmt.Fprintln(cmd.ErrOrStderr(), status)
		}
		cobra.CheckErr(file.WriteJSON(interpolateOut, p.Document()))
	},
}
