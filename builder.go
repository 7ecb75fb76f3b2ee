package strata

import "github.com/jonwraymond/strata/clock"

// Builder assembles a Pipeline from strategy builders. Strategies execute in
// the order they are added, first added outermost.
type Builder struct {
	name         string
	instanceName string
	props        Properties
	listener     TelemetryListener
	clk          clock.Clock
	pending      []StrategyBuilder
}

// NewBuilder creates a pipeline builder. The name identifies the pipeline in
// telemetry.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// WithInstanceName sets the instance name distinguishing pipelines built
// from the same builder configuration. It becomes the strategy-key tag on
// execution metrics.
func (b *Builder) WithInstanceName(name string) *Builder {
	b.instanceName = name
	return b
}

// WithTelemetryListener routes strategy events and execution metrics to l.
func (b *Builder) WithTelemetryListener(l TelemetryListener) *Builder {
	b.listener = l
	return b
}

// WithClock overrides the time source used by the pipeline and its
// strategies. Defaults to the system clock.
func (b *Builder) WithClock(clk clock.Clock) *Builder {
	b.clk = clk
	return b
}

// Properties returns the builder-level property bag attached to every
// telemetry event emitted by the built pipeline.
func (b *Builder) Properties() *Properties {
	return &b.props
}

// AddStrategy appends a strategy to the pipeline. Options are validated at
// Build time.
func (b *Builder) AddStrategy(sb StrategyBuilder) *Builder {
	b.pending = append(b.pending, sb)
	return b
}

// Build validates every added strategy's options and returns the composed
// pipeline. The first validation failure is returned as an *OptionError.
func (b *Builder) Build() (*Pipeline, error) {
	clk := b.clk
	if clk == nil {
		clk = clock.System()
	}

	strategies := make([]Strategy, 0, len(b.pending))
	for _, sb := range b.pending {
		tel := NewTelemetrySource(b.name, &b.props, sb.StrategyName(), sb.StrategyType(), b.listener)
		s, err := sb.Build(tel, clk)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	return &Pipeline{
		name:         b.name,
		instanceName: b.instanceName,
		strategies:   strategies,
		builderProps: &b.props,
		listener:     b.listener,
		clk:          clk,
	}, nil
}
