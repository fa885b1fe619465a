// Package project ties one score, one performance, their alignment and the derived
// performance description together. Every alignment edit marks the description
// stale; it is rebuilt on the next read, or after edits settle down.
package project

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/align"
	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/db"
	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/logger"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/pipeline"
)

const defaultSettle = 500 * time.Millisecond

var (
	ErrUnknownNote       = errors.New("unknown note")
	ErrNotAligned        = errors.New("note is not aligned")
	ErrUnknownMotivation = align.ErrUnknownMotivation
)

type Project struct {
	mu sync.Mutex

	score       *model.Score
	performance *model.Performance
	aligner     *align.Aligner
	pipeline    *pipeline.Pipeline
	ppq         int

	doc      *document.Document
	statuses []string
	dirty    bool

	settle    time.Duration
	debounced func(func())
	logger    *zap.Logger
}

type Option func(*Project)

func WithLogger(l *zap.Logger) Option {
	return func(p *Project) {
		p.logger = l
	}
}

func WithPPQ(ppq int) Option {
	return func(p *Project) {
		if ppq > 0 {
			p.ppq = ppq
		}
	}
}

// WithSettle sets how long edits must pause before the description is rebuilt in
// the background. Zero turns background rebuilding off.
func WithSettle(d time.Duration) Option {
	return func(p *Project) {
		p.settle = d
	}
}

// New aligns the performance against the score and prepares the named preset.
func New(score *model.Score, performance *model.Performance, preset string, cfg pipeline.Config, opts ...Option) (*Project, error) {
	p := &Project{
		score:       score,
		performance: performance,
		ppq:         constants.DefaultPPQ,
		settle:      defaultSettle,
		doc:         document.New(),
		dirty:       true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.OrNop(p.logger)

	pl, err := pipeline.Preset(preset, cfg, p.logger)
	if err != nil {
		return nil, err
	}
	p.pipeline = pl
	p.aligner = align.New(align.WithLogger(p.logger))
	p.aligner.Align(score, performance)
	if p.settle > 0 {
		p.debounced = debounce.New(p.settle)
	}
	return p, nil
}

func (p *Project) Score() *model.Score {
	return p.score
}

func (p *Project) Performance() *model.Performance {
	return p.performance
}

// Pairs returns copies of the current pairs. The notes they point at are shared
// and must not be changed.
func (p *Project) Pairs() []model.AlignmentPair {
	p.mu.Lock()
	defer p.mu.Unlock()
	pairs := p.aligner.Pairs()
	res := make([]model.AlignmentPair, len(pairs))
	for i, pair := range pairs {
		res[i] = *pair
	}
	return res
}

func (p *Project) Triples() []model.Triple {
	p.mu.Lock()
	defer p.mu.Unlock()
	return align.Export(p.aligner.Pairs())
}

// changed must be called with mu held.
func (p *Project) changed() {
	p.dirty = true
	if p.debounced != nil {
		p.debounced(p.regenerateIfDirty)
	}
}

func (p *Project) notes(scoreNoteID, performedNoteID string) (*model.ScoreNote, *model.PerformedNote, error) {
	var sn *model.ScoreNote
	var pn *model.PerformedNote
	var ok bool
	if p.score != nil {
		sn, ok = p.score.NoteByID(scoreNoteID)
	}
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnknownNote, "score note %q", scoreNoteID)
	}
	ok = false
	if p.performance != nil {
		pn, ok = p.performance.NoteByID(performedNoteID)
	}
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnknownNote, "performed note %q", performedNoteID)
	}
	return sn, pn, nil
}

func parseMotivation(s string) ([]model.Motivation, error) {
	if s == "" {
		return nil, nil
	}
	m, ok := model.ParseMotivation(s)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMotivation, "%q", s)
	}
	return []model.Motivation{m}, nil
}

// Link aligns two notes by hand. An empty motivation lets the aligner decide.
func (p *Project) Link(scoreNoteID, performedNoteID, motivation string) (model.AlignmentPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sn, pn, err := p.notes(scoreNoteID, performedNoteID)
	if err != nil {
		return model.AlignmentPair{}, err
	}
	m, err := parseMotivation(motivation)
	if err != nil {
		return model.AlignmentPair{}, err
	}
	pair, ok := p.aligner.AlignNotes(pn, sn, m...)
	if !ok {
		return model.AlignmentPair{}, errors.Wrapf(ErrUnknownNote, "%s or %s is not part of the alignment", scoreNoteID, performedNoteID)
	}
	p.changed()
	return *pair, nil
}

// Unlink breaks the pair the score note is matched in.
func (p *Project) Unlink(scoreNoteID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pair := p.aligner.FindByScoreNote(scoreNoteID)
	if pair == nil || !p.aligner.RemoveAlignment(pair) {
		return errors.Wrapf(ErrNotAligned, "score note %q", scoreNoteID)
	}
	p.changed()
	return nil
}

// SetMotivation relabels the pair holding the score note, or the performed note when
// no score note id is given.
func (p *Project) SetMotivation(scoreNoteID, performedNoteID, motivation string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, err := parseMotivation(motivation)
	if err != nil {
		return err
	}
	if len(m) == 0 {
		return errors.Wrap(ErrUnknownMotivation, "motivation is required")
	}
	var pair *model.AlignmentPair
	if scoreNoteID != "" {
		pair = p.aligner.FindByScoreNote(scoreNoteID)
	} else {
		pair = p.aligner.FindByPerformedNote(performedNoteID)
	}
	if pair == nil || !p.aligner.UpdateMotivation(pair, m[0]) {
		return errors.Wrapf(ErrUnknownNote, "no pair for %q/%q", scoreNoteID, performedNoteID)
	}
	p.changed()
	return nil
}

func (p *Project) ClearAlignments() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aligner.RemoveAllAlignments()
	p.changed()
}

// Realign throws away manual edits and reruns the automatic matcher.
func (p *Project) Realign() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aligner.Align(p.score, p.performance)
	p.changed()
}

func (p *Project) Import(triples []model.Triple) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.aligner.Import(triples, p.score, p.performance); err != nil {
		return err
	}
	p.changed()
	return nil
}

func (p *Project) Save(ctx context.Context, store db.Store, id string) error {
	return store.Save(ctx, id, p.Triples())
}

func (p *Project) Load(ctx context.Context, store db.Store, id string) error {
	triples, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	return p.Import(triples)
}

func (p *Project) regenerateIfDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		p.regenerate()
	}
}

// regenerate must be called with mu held. The merge and the document are rebuilt
// from scratch, so stale state from the last run never leaks into this one.
func (p *Project) regenerate() {
	var ts *model.TimeSignature
	if p.score != nil {
		ts = p.score.TimeSignature
	}
	m := merge.Build(p.aligner.Pairs(), p.ppq, ts)
	doc := document.New()
	p.statuses = p.pipeline.Run(m, doc)
	p.doc = doc
	p.dirty = false
}

// Regenerate rebuilds the description now and returns one status per stage.
func (p *Project) Regenerate() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regenerate()
	return append([]string(nil), p.statuses...)
}

// Document returns the current description, rebuilding it first if it is stale.
// The returned document is never mutated afterwards.
func (p *Project) Document() *document.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		p.regenerate()
	}
	return p.doc
}

func (p *Project) Statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.statuses...)
}
