// Package pipeline turns a score/performance merge into a performance description.
// Stages run strictly in order; each one explains part of the deviation, removes it
// from the merge and records it in the document, leaving the residual to the next.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/logger"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
)

type Stage interface {
	Name() string
	// Transform reads and mutates c.Merge, appends to c.Document and returns a status line.
	Transform(c *Context) string
}

// TempoEstimate is the modeled tempo at one note's date.
type TempoEstimate struct {
	BPM        float64
	BeatLength float64
}

// Context is threaded through one run. Stage outputs other stages depend on live
// here instead of on the merged notes.
type Context struct {
	Merge    *merge.Merge
	Document *document.Document
	// Tempo is keyed by merged note id.
	Tempo     map[string]TempoEstimate
	TempoMaps map[model.Scope]*TempoMap
	Logger    *zap.Logger
}

func NewContext(m *merge.Merge, doc *document.Document, l *zap.Logger) *Context {
	return &Context{
		Merge:     m,
		Document:  doc,
		Tempo:     make(map[string]TempoEstimate),
		TempoMaps: make(map[model.Scope]*TempoMap),
		Logger:    logger.OrNop(l),
	}
}

// TempoMapFor prefers the part's own tempo map over the global one. Nil when no tempo
// stage has run.
func (c *Context) TempoMapFor(part int) *TempoMap {
	if tm, ok := c.TempoMaps[model.Part(part)]; ok {
		return tm
	}
	return c.TempoMaps[model.Global]
}

// PhysicalTime puts back whatever the tempo stage subtracted from the note's onset.
func (c *Context) PhysicalTime(n *merge.MergedNote) float64 {
	if tm := c.TempoMapFor(n.Part); tm != nil {
		return n.PerformedOnset + tm.Milliseconds(n.Date)
	}
	return n.PerformedOnset
}

// Pipeline is an ordered list of stages run by a driver loop.
type Pipeline struct {
	name   string
	stages []Stage
	logger *zap.Logger
}

func New(name string, l *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{name: name, stages: stages, logger: logger.OrNop(l)}
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes every stage in order and returns one status per stage.
func (p *Pipeline) Run(m *merge.Merge, doc *document.Document) []string {
	c := NewContext(m, doc, p.logger)
	statuses := make([]string, 0, len(p.stages))
	for i, s := range p.stages {
		status := s.Transform(c)
		p.logger.Debug("stage finished",
			zap.String("pipeline", p.name),
			zap.Int("step", i+1),
			zap.String("stage", s.Name()),
			zap.String("status", status))
		statuses = append(statuses, status)
	}
	p.logger.Info("pipeline finished",
		zap.String("pipeline", p.name),
		zap.Int("notes", len(m.Notes)),
		zap.Int("instructions", doc.Count()))
	return statuses
}

// Scoping says whether a stage treats all parts as one, or each part on its own.
type Scoping int

const (
	AcrossParts Scoping = iota
	PerPart
)

func (s Scoping) scopes(m *merge.Merge) []model.Scope {
	if s == AcrossParts {
		return []model.Scope{model.Global}
	}
	var res []model.Scope
	for _, p := range m.Parts() {
		res = append(res, model.Part(p))
	}
	return res
}

func (s Scoping) String() string {
	if s == PerPart {
		return "per part"
	}
	return "across parts"
}

func skipped(stage, reason string) string {
	return fmt.Sprintf("%s: skipped, %s", stage, reason)
}
