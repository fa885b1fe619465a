package pipeline

import (
	"github.com/pkg/errors"

	"github.com/jsphweid/perfdex/model"
)

// Sampling intervals for tempo and rubato.
const (
	IntervalEverything  = "everything"
	IntervalBar         = "bar"
	IntervalHalfBar     = "halfbar"
	IntervalThirdBar    = "thirdbar"
	IntervalDenominator = "denominator"
)

var ErrUnknownInterval = errors.New("unknown beat interval")

// Config holds the tunables of the preset pipelines. Times are in milliseconds.
type Config struct {
	MinChordSize    int
	MinArpeggioSpan float64

	TempoInterval  string
	TempoEpsilon   float64
	TempoPrecision int

	RubatoInterval  string
	RubatoTolerance float64

	ArticulationTolerance float64
	ArticulationPrecision int

	PrimaryPart         int
	AsynchronyTolerance float64

	PredefinedImprecision float64

	DefinitionStep float64
}

func DefaultConfig() Config {
	return Config{
		MinChordSize:          2,
		MinArpeggioSpan:       0,
		TempoInterval:         IntervalEverything,
		TempoEpsilon:          2,
		TempoPrecision:        2,
		RubatoInterval:        IntervalDenominator,
		RubatoTolerance:       0.1,
		ArticulationTolerance: 0.05,
		ArticulationPrecision: 2,
		PrimaryPart:           0,
		AsynchronyTolerance:   10,
		PredefinedImprecision: 0,
		DefinitionStep:        0.1,
	}
}

// beatFor returns the beat length (fraction of a whole note) for an interval, and
// whether samples are taken at every chord rather than on a fixed grid.
func beatFor(interval string, ts model.TimeSignature) (float64, bool, error) {
	bar := ts.BarLength()
	switch interval {
	case IntervalEverything:
		return 1 / float64(ts.Denominator), true, nil
	case IntervalDenominator:
		return 1 / float64(ts.Denominator), false, nil
	case IntervalBar:
		return bar, false, nil
	case IntervalHalfBar:
		return bar / 2, false, nil
	case IntervalThirdBar:
		return bar / 3, false, nil
	}
	return 0, false, errors.Wrapf(ErrUnknownInterval, "%q", interval)
}
