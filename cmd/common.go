package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/db"
	"github.com/jsphweid/perfdex/file"
	"github.com/jsphweid/perfdex/pipeline"
	"github.com/jsphweid/perfdex/project"
)

// flags shared by the commands that build a project
var (
	preset        string
	alignmentPath string
	alignmentID   string
	useDynamo     bool

	cfg = pipeline.DefaultConfig()
)

func addProjectFlags(c *cobra.Command) {
	c.Flags().StringVar(&preset, "preset", "", "chordal-texture or melodic-texture (default from PERFDEX_PRESET)")
	c.Flags().StringVar(&alignmentPath, "alignment", "", "JSON triples to start from instead of the automatic alignment")
	c.Flags().StringVar(&alignmentID, "load", "", "alignment id to load from the store")
	c.Flags().BoolVar(&useDynamo, "dynamo", false, "use DynamoDB as the alignment store")

	c.Flags().StringVar(&cfg.TempoInterval, "tempo-interval", cfg.TempoInterval, "everything, bar, halfbar, thirdbar or denominator")
	c.Flags().Float64Var(&cfg.TempoEpsilon, "tempo-epsilon", cfg.TempoEpsilon, "largest tolerated tempo deviation in bpm")
	c.Flags().StringVar(&cfg.RubatoInterval, "rubato-interval", cfg.RubatoInterval, "rubato frame length")
	c.Flags().Float64Var(&cfg.RubatoTolerance, "rubato-tolerance", cfg.RubatoTolerance, "")
	c.Flags().Float64Var(&cfg.ArticulationTolerance, "articulation-tolerance", cfg.ArticulationTolerance, "")
	c.Flags().IntVar(&cfg.PrimaryPart, "primary-part", cfg.PrimaryPart, "part the others are measured against (melodic-texture)")
	c.Flags().Float64Var(&cfg.AsynchronyTolerance, "asynchrony-tolerance", cfg.AsynchronyTolerance, "in milliseconds")
	c.Flags().Float64Var(&cfg.PredefinedImprecision, "predefined-imprecision", cfg.PredefinedImprecision, "timing jitter of the recording medium, in milliseconds")
	c.Flags().Float64Var(&cfg.MinArpeggioSpan, "min-arpeggio-span", cfg.MinArpeggioSpan, "in milliseconds")
}

func openStore() (db.Store, error) {
	if !useDynamo {
		return db.NewMemoryStore(), nil
	}
	return db.NewDynamoStore(constants.GetAlignmentTable(), constants.GetDynamoEndpoint(), constants.GetRegion())
}

// openProject loads both inputs, aligns them and applies a stored or saved
// alignment if one was asked for.
func openProject(ctx context.Context, scorePath, performancePath string, store db.Store, opts ...project.Option) (*project.Project, error) {
	score, err := file.LoadScore(scorePath)
	if err != nil {
		return nil, err
	}
	perf, err := file.LoadPerformance(performancePath)
	if err != nil {
		return nil, err
	}
	if preset == "" {
		preset = constants.GetPreset()
	}
	opts = append([]project.Option{project.WithLogger(log), project.WithPPQ(constants.GetPPQ())}, opts...)
	p, err := project.New(score, perf, preset, cfg, opts...)
	if err != nil {
		return nil, err
	}

	if alignmentPath != "" {
		triples, err := file.LoadTriples(alignmentPath)
		if err != nil {
			return nil, err
		}
		if err := p.Import(triples); err != nil {
			return nil, errors.Wrapf(err, "importing %s", alignmentPath)
		}
	}
	if alignmentID != "" {
		if err := p.Load(ctx, store, alignmentID); err != nil {
			return nil, errors.Wrapf(err, "loading alignment %s", alignmentID)
		}
	}
	return p, nil
}
