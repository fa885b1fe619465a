package document

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/perfdex/model"
)

func dates(list []Instruction) []float64 {
	var res []float64
	for _, ins := range list {
		res = append(res, DateOf(ins))
	}
	return res
}

func TestInsertKeepsDateOrderAndAssignsIds(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global,
		&Tempo{Base: Base{Date: 1440}, BPM: 60, BeatLength: 0.25},
		&Tempo{Base: Base{Date: 0}, BPM: 50, BeatLength: 0.25},
	)
	d.InsertInstructions(model.Global, &Tempo{Base: Base{Date: 720}, BPM: 55, BeatLength: 0.25})

	require.Len(t, d.Global.Tempo, 3)
	assert.Equal(t, []float64{0, 720, 1440}, []float64{d.Global.Tempo[0].Date, d.Global.Tempo[1].Date, d.Global.Tempo[2].Date})
	for _, tempo := range d.Global.Tempo {
		assert.NotEmpty(t, tempo.ID)
	}

	d.InsertInstructions(model.Global, &Tempo{Base: Base{ID: "mine", Date: 2000}, BPM: 60})
	assert.Equal(t, "mine", d.Global.Tempo[3].ID)
}

type labelled struct {
	Base
	Label string
}

func (*labelled) Kind() Kind { return KindTempo }

type namedTempo struct {
	*Tempo
	Name string
}

func TestInstructionSetIsClosed(t *testing.T) {
	iface := reflect.TypeOf((*Instruction)(nil)).Elem()
	assert.False(t, reflect.TypeOf(&labelled{}).Implements(iface))
	assert.True(t, reflect.TypeOf(&Rubato{}).Implements(iface))
}

func TestInsertEmbeddedInstructionLandsInItsList(t *testing.T) {
	d := New()
	wrapped := namedTempo{Tempo: &Tempo{Base: Base{Date: 720}, BPM: 60, BeatLength: 0.25}, Name: "intro"}

	assert.NotPanics(t, func() { d.InsertInstructions(model.Global, wrapped) })
	require.Len(t, d.Global.Tempo, 1)
	assert.Same(t, wrapped.Tempo, d.Global.Tempo[0])
	assert.NotEmpty(t, wrapped.Tempo.ID)
}

func TestInstructionsFiltersByKindAndScope(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global,
		&Dynamics{Base: Base{Date: 720}, Volume: 50},
		&Tempo{Base: Base{Date: 0}, BPM: 60},
	)
	d.InsertInstructions(model.Part(1), &Articulation{Base: Base{Date: 360}, NoteID: "n1", RelativeDuration: 0.5})

	assert.Equal(t, []float64{0, 720}, dates(d.Instructions(model.Global)))
	assert.Equal(t, []float64{720}, dates(d.Instructions(model.Global, KindDynamics)))
	assert.Equal(t, []float64{360}, dates(d.Instructions(model.Part(1))))
	assert.Empty(t, d.Instructions(model.Part(7)))
	assert.Equal(t, []model.Scope{model.Global, model.Part(1)}, d.Scopes())
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 1, d.Count(KindArticulation))
}

func TestEffectiveAtTempoPersists(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global,
		&Tempo{Base: Base{Date: 0}, BPM: 60},
		&Tempo{Base: Base{Date: 2880}, BPM: 90},
	)

	eff := d.EffectiveAt(1000, model.Global, KindTempo)
	require.Len(t, eff, 1)
	assert.Equal(t, 60.0, eff[0].(*Tempo).BPM)

	eff = d.EffectiveAt(2880, model.Global, KindTempo)
	require.Len(t, eff, 1)
	assert.Equal(t, 90.0, eff[0].(*Tempo).BPM)

	assert.Empty(t, d.EffectiveAt(-1, model.Global, KindTempo))
}

func TestEffectiveAtOrnamentIsOneShot(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global, &Ornament{Base: Base{Date: 720}, NameRef: "arpeggio"})

	assert.Len(t, d.EffectiveAt(720, model.Global, KindOrnament), 1)
	assert.Empty(t, d.EffectiveAt(721, model.Global, KindOrnament))
}

func TestEffectiveAtRubatoWindow(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global, &Rubato{Base: Base{Date: 0}, FrameLength: 720, Intensity: 1.5})

	assert.Len(t, d.EffectiveAt(700, model.Global, KindRubato), 1)
	assert.Empty(t, d.EffectiveAt(720, model.Global, KindRubato))

	d.Global.Rubatos[0].Loop = true
	assert.Len(t, d.EffectiveAt(50000, model.Global, KindRubato), 1)
}

func TestEffectiveAtUsesLatestOnly(t *testing.T) {
	d := New()
	d.InsertInstructions(model.Global,
		&Rubato{Base: Base{Date: 0}, FrameLength: 720, Intensity: 1.5, Loop: true},
		&Rubato{Base: Base{Date: 2880}, FrameLength: 720, Intensity: 1},
	)

	assert.Len(t, d.EffectiveAt(1000, model.Global, KindRubato), 1)
	assert.Empty(t, d.EffectiveAt(4000, model.Global, KindRubato))
}

func TestInsertDefinitionDeduplicates(t *testing.T) {
	d := New()
	spread := TemporalSpread{FrameStart: -35, FrameLength: 70, Intensity: 1, Unit: UnitMillisecondsOffset}

	first := d.InsertDefinition(model.Global, Definition{Type: "arpeggio", Spread: spread})
	second := d.InsertDefinition(model.Global, Definition{Type: "arpeggio", Spread: spread})
	other := d.InsertDefinition(model.Global, Definition{Type: "arpeggio", Spread: TemporalSpread{FrameLength: 20}})

	assert.Equal(t, "arpeggio.1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, "arpeggio.2", other)
	assert.Len(t, d.Global.Definitions, 2)

	def, ok := d.Definition(model.Global, "arpeggio.1")
	require.True(t, ok)
	assert.Equal(t, spread, def.Spread)

	_, ok = d.Definition(model.Part(3), "arpeggio.1")
	assert.False(t, ok)
}

func TestInsertDefinitionRenamesClash(t *testing.T) {
	d := New()
	a := d.InsertDefinition(model.Global, Definition{Name: "roll", Type: "arpeggio", Spread: TemporalSpread{FrameLength: 10}})
	b := d.InsertDefinition(model.Global, Definition{Name: "roll", Type: "arpeggio", Spread: TemporalSpread{FrameLength: 20}})

	assert.Equal(t, "roll", a)
	assert.Equal(t, "arpeggio.2", b)
}
