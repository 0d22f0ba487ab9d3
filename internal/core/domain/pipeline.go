// Package domain contains the core models of the pipeline topology and its validation.
package domain

import (
	"iter"
	"regexp"
	"slices"

	"go.trai.ch/zerr"
)

// maxNameLength is the longest stage, action or artifact name the pipeline engine accepts.
const maxNameLength = 100

var validNameRegex = regexp.MustCompile(`^[A-Za-z0-9@_-]+$`)

// Stage is a named, ordered step of the pipeline. It is a barrier: the next stage starts
// only after every action in this one succeeded.
type Stage struct {
	Name    InternedString
	Actions []Action
}

// Pipeline is an ordered sequence of stages that owns the artifact namespace.
type Pipeline struct {
	Name                     string
	RestartExecutionOnUpdate bool
	CrossAccountKeys         bool

	stages     []Stage
	stageIndex map[InternedString]int
	producers  map[InternedString]ArtifactRef
	consumers  map[InternedString][]ArtifactRef
	validated  bool
}

// ArtifactRef locates an action that produces or consumes an artifact.
type ArtifactRef struct {
	Stage InternedString
	// Position is the 1-based ordinal of the stage.
	Position int
	Action   InternedString
}

// NewPipeline creates a new empty Pipeline.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{
		Name:       name,
		stageIndex: make(map[InternedString]int),
	}
}

// AddStage appends a stage to the pipeline.
// It returns an error if a stage with the same name already exists.
func (p *Pipeline) AddStage(s Stage) error {
	if _, exists := p.stageIndex[s.Name]; exists {
		return tag(ErrDuplicateStageName, "stage", s.Name.String())
	}
	p.stageIndex[s.Name] = len(p.stages)
	p.stages = append(p.stages, s)
	p.validated = false
	return nil
}

// Validate checks names and the artifact graph: unique stage and action names, no empty
// stages, exactly one producer per artifact and every consumer strictly after its
// producer. Because consumers must come later than producers, a valid artifact graph
// is acyclic by construction.
func (p *Pipeline) Validate() error {
	producers := make(map[InternedString]ArtifactRef)
	consumers := make(map[InternedString][]ArtifactRef)
	actions := make(map[InternedString]struct{})

	if err := checkName("pipeline", p.Name); err != nil {
		return err
	}

	// First pass: names and producers.
	for i, stage := range p.stages {
		if err := checkName("stage", stage.Name.String()); err != nil {
			return err
		}
		if len(stage.Actions) == 0 {
			return tag(ErrEmptyStage, "stage", stage.Name.String())
		}
		for _, action := range stage.Actions {
			if err := checkName("action", action.Name.String()); err != nil {
				return err
			}
			if action.Kind < ActionSource || action.Kind > ActionDeploy {
				return tag(ErrUnknownActionKind, "action", action.Name.String())
			}
			if _, exists := actions[action.Name]; exists {
				return tag(ErrDuplicateAction, "action", action.Name.String())
			}
			actions[action.Name] = struct{}{}

			ref := ArtifactRef{Stage: stage.Name, Position: i + 1, Action: action.Name}
			for _, out := range action.Outputs {
				if err := checkName("artifact", out.String()); err != nil {
					return err
				}
				if prev, exists := producers[out]; exists {
					return zerr.With(tag(ErrDuplicateProducer, "artifact", out.String()),
						"producers", prev.Action.String()+", "+action.Name.String())
				}
				producers[out] = ref
			}
		}
	}

	// Second pass: every consumer must see a producer from a strictly earlier stage.
	for i, stage := range p.stages {
		for j := range stage.Actions {
			action := &stage.Actions[j]
			ref := ArtifactRef{Stage: stage.Name, Position: i + 1, Action: action.Name}
			for _, in := range action.Consumes() {
				producer, exists := producers[in]
				if !exists {
					return zerr.With(tag(ErrMissingProducer, "artifact", in.String()),
						"consumer", action.Name.String())
				}
				if producer.Position >= ref.Position {
					return zerr.With(tag(ErrArtifactOrder, "artifact", in.String()),
						"consumer", action.Name.String())
				}
				consumers[in] = append(consumers[in], ref)
			}
		}
	}

	p.producers = producers
	p.consumers = consumers
	p.validated = true
	return nil
}

func checkName(kind, name string) error {
	if name == "" || len(name) > maxNameLength || !validNameRegex.MatchString(name) {
		return zerr.With(tag(ErrInvalidName, "kind", kind), "name", name)
	}
	return nil
}

// Validated reports whether Validate has succeeded since the last change.
func (p *Pipeline) Validated() bool {
	return p.validated
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stage returns the stage with the given name.
func (p *Pipeline) Stage(name InternedString) (Stage, bool) {
	i, ok := p.stageIndex[name]
	if !ok {
		return Stage{}, false
	}
	return p.stages[i], true
}

// Walk returns an iterator that yields stages in execution order with their 1-based position.
func (p *Pipeline) Walk() iter.Seq2[int, Stage] {
	return func(yield func(int, Stage) bool) {
		for i, s := range p.stages {
			if !yield(i+1, s) {
				return
			}
		}
	}
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name.String()
	}
	return names
}

// Artifacts returns every produced artifact name, sorted.
// It assumes Validate() has been called and returned nil.
func (p *Pipeline) Artifacts() []InternedString {
	names := make([]InternedString, 0, len(p.producers))
	for name := range p.producers {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	})
	return names
}

// Producer returns the action producing the artifact.
// It assumes Validate() has been called and returned nil.
func (p *Pipeline) Producer(artifact InternedString) (ArtifactRef, bool) {
	ref, ok := p.producers[artifact]
	return ref, ok
}

// Consumers returns the actions consuming the artifact in stage order.
// It assumes Validate() has been called and returned nil.
func (p *Pipeline) Consumers(artifact InternedString) []ArtifactRef {
	return slices.Clone(p.consumers[artifact])
}

// StagePair names two adjacent stages.
type StagePair struct {
	First  InternedString
	Second InternedString
}

// IndependentStages reports adjacent stage pairs where the later stage consumes nothing
// produced by the earlier one. Such stages are serialized by declaration only and could
// be merged into one stage to run concurrently.
// It assumes Validate() has been called and returned nil.
func (p *Pipeline) IndependentStages() []StagePair {
	var pairs []StagePair
	for i := 1; i < len(p.stages); i++ {
		prev, cur := p.stages[i-1], p.stages[i]

		produced := make(map[InternedString]struct{})
		for _, a := range prev.Actions {
			for _, out := range a.Outputs {
				produced[out] = struct{}{}
			}
		}

		dependent := false
		for j := range cur.Actions {
			for _, in := range cur.Actions[j].Consumes() {
				if _, ok := produced[in]; ok {
					dependent = true
				}
			}
		}

		if !dependent {
			pairs = append(pairs, StagePair{First: prev.Name, Second: cur.Name})
		}
	}
	return pairs
}
