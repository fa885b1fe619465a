package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/file"
)

var (
	alignOut  string
	alignSave string
)

func init() {
	addProjectFlags(alignCmd)
	alignCmd.Flags().StringVarP(&alignOut, "out", "o", "-", "where to write the triples")
	alignCmd.Flags().StringVar(&alignSave, "save", "", "also save the alignment to the store under this id")
	rootCmd.AddCommand(alignCmd)
}

var alignCmd = &cobra.Command{
	Use:   "align <score> <performance>",
	Short: "Aligns a performance with its score",
	Long:  `Aligns a performance with its score and writes the alignment as JSON triples.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := openStore()
		cobra.CheckErr(err)
		p, err := openProject(ctx, args[0], args[1], store)
		cobra.CheckErr(err)

		triples := p.Triples()
		cobra.CheckErr(file.WriteJSON(alignOut, triples))
		if alignSave != "" {
			cobra.CheckErr(p.Save(ctx, store, alignSave))
			log.Info("saved alignment", zap.String("id", alignSave), zap.Int("triples", len(triples)))
		}
	},
}
