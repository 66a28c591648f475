package pipeline

import (
	"errors"
	"fmt"
)

// Imputer fills missing raw cells.
type Imputer interface {
	Fit(X [][]string) error
	Transform(X [][]string) ([][]string, error)
}

// Encoder turns raw cells into numeric features.
type Encoder interface {
	Fit(X [][]string) error
	Transform(X [][]string) ([][]float64, error)
	FeatureNames(input []string) []string
}

// Transformer interface for fit/transform pattern on numeric features.
type Transformer interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}

// Step is a named numeric stage.
type Step struct {
	Name        string
	Transformer Transformer
}

// Pipeline chains an imputer, an encoder and numeric steps.
type Pipeline struct {
	Imputer     Imputer
	ImputerName string
	Encoder     Encoder
	EncoderName string
	Steps       []Step
}

// NewPipeline builds imputer -> encoder -> steps. The imputer may be nil.
func NewPipeline(imputer Imputer, encoder Encoder, steps ...Step) *Pipeline {
	return &Pipeline{
		Imputer:     imputer,
		ImputerName: "imputer",
		Encoder:     encoder,
		EncoderName: "encoder",
		Steps:       steps,
	}
}

// StepNames lists the stages in execution order.
func (p *Pipeline) StepNames() []string {
	var names []string
	if p.Imputer != nil {
		names = append(names, p.ImputerName)
	}
	names = append(names, p.EncoderName)
	for _, s := range p.Steps {
		names = append(names, s.Name)
	}
	return names
}

func (p *Pipeline) FitTransform(X [][]string) ([][]float64, error) {
	if p.Encoder == nil {
		return nil, errors.New("pipeline: no encoder")
	}
	var err error
	if p.Imputer != nil {
		if err = p.Imputer.Fit(X); err != nil {
			return nil, fmt.Errorf("%s: %w", p.ImputerName, err)
		}
		if X, err = p.Imputer.Transform(X); err != nil {
			return nil, fmt.Errorf("%s: %w", p.ImputerName, err)
		}
	}
	if err = p.Encoder.Fit(X); err != nil {
		return nil, fmt.Errorf("%s: %w", p.EncoderName, err)
	}
	F, err := p.Encoder.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.EncoderName, err)
	}
	for _, step := range p.Steps {
		if err = step.Transformer.Fit(F); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name, err)
		}
		if F, err = step.Transformer.Transform(F); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return F, nil
}

func (p *Pipeline) Transform(X [][]string) ([][]float64, error) {
	if p.Encoder == nil {
		return nil, errors.New("pipeline: no encoder")
	}
	var err error
	if p.Imputer != nil {
		if X, err = p.Imputer.Transform(X); err != nil {
			return nil, fmt.Errorf("%s: %w", p.ImputerName, err)
		}
	}
	F, err := p.Encoder.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.EncoderName, err)
	}
	for _, step := range p.Steps {
		if F, err = step.Transformer.Transform(F); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return F, nil
}

// FeatureNames returns output names given the input column names.
func (p *Pipeline) FeatureNames(input []string) []string {
	return p.Encoder.FeatureNames(input)
}
