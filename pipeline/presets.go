package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/constants"
)

var ErrUnknownPreset = errors.New("unknown pipeline preset")

// Chordal treats the parts as one texture, for block-chord playing.
func Chordal(cfg Config, l *zap.Logger) *Pipeline {
	return New(constants.PresetChordal, l,
		&OrnamentStage{Scoping: AcrossParts, MinChordSize: cfg.MinChordSize, MinSpan: cfg.MinArpeggioSpan},
		&TempoStage{Scoping: AcrossParts, Interval: cfg.TempoInterval, Epsilon: cfg.TempoEpsilon, Precision: cfg.TempoPrecision},
		&RubatoStage{Scoping: AcrossParts, Interval: cfg.RubatoInterval, Tolerance: cfg.RubatoTolerance},
		&ArticulationStage{Scoping: AcrossParts, Tolerance: cfg.ArticulationTolerance, Precision: cfg.ArticulationPrecision},
		&DynamicsStage{Scoping: AcrossParts},
		&ImprecisionStage{Predefined: cfg.PredefinedImprecision},
		&StyleStage{Step: cfg.DefinitionStep},
	)
}

// Melodic treats every part on its own, for independent hands.
func Melodic(cfg Config, l *zap.Logger) *Pipeline {
	return New(constants.PresetMelodic, l,
		&OrnamentStage{Scoping: PerPart, MinChordSize: cfg.MinChordSize, MinSpan: cfg.MinArpeggioSpan},
		&TempoStage{Scoping: AcrossParts, Interval: cfg.TempoInterval, Epsilon: cfg.TempoEpsilon, Precision: cfg.TempoPrecision},
		&AsynchronyStage{Primary: cfg.PrimaryPart, Tolerance: cfg.AsynchronyTolerance},
		&RubatoStage{Scoping: PerPart, Interval: cfg.RubatoInterval, Tolerance: cfg.RubatoTolerance},
		&ArticulationStage{Scoping: PerPart, Tolerance: cfg.ArticulationTolerance, Precision: cfg.ArticulationPrecision},
		&DynamicsStage{Scoping: PerPart},
		&ImprecisionStage{Predefined: cfg.PredefinedImprecision},
		&StyleStage{Step: cfg.DefinitionStep},
	)
}

func Preset(name string, cfg Config, l *zap.Logger) (*Pipeline, error) {
	switch name {
	case constants.PresetChordal:
		return Chordal(cfg, l), nil
	case constants.PresetMelodic:
		return Melodic(cfg, l), nil
	}
	return nil, errors.Wrapf(ErrUnknownPreset, "%q", name)
}
