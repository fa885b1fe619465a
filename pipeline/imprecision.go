package pipeline

import (
	"fmt"
	"math"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

// ImprecisionStage describes what timing jitter is left after every other stage as a
// symmetric uniform distribution. It always writes to the global scope: jitter belongs
// to the recording, not to a part.
type ImprecisionStage struct {
	// Predefined is the jitter, in milliseconds, already known to come from the
	// recording medium and not worth describing.
	Predefined float64
}

func (s *ImprecisionStage) Name() string {
	return "imprecision"
}

func (s *ImprecisionStage) Transform(c *Context) string {
	if len(c.TempoMaps) == 0 {
		c.Logger.Warn("imprecision stage needs a tempo model, forwarding unchanged")
		return skipped(s.Name(), "no tempo model")
	}
	if len(c.Merge.Notes) < 2 {
		return skipped(s.Name(), "too few notes")
	}

	residuals := make([]float64, len(c.Merge.Notes))
	for i, n := range c.Merge.Notes {
		residuals[i] = n.PerformedOnset
	}
	// A uniform distribution of width w has standard deviation w/(2*sqrt(3)).
	measured := 2 * math.Sqrt(3) * util.StdDev(residuals)
	limit := util.Round((measured-s.Predefined)/2, 1)
	if limit <= 0 {
		return fmt.Sprintf("%s: within predefined imprecision", s.Name())
	}

	c.Document.InsertInstructions(model.Global, &document.ImprecisionTiming{
		Base:         document.Base{Date: 0},
		Distribution: "uniform",
		LowerLimit:   -limit,
		UpperLimit:   limit,
	})
	return fmt.Sprintf("%s: ±%.1f ms", s.Name(), limit)
}
