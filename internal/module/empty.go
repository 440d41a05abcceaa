package module

import "context"

// EmptyName is the dotted identifier of the reserved no-op module every
// container provides. Failed Catch lookups resolve to it so the graph
// stays buildable.
const EmptyName = "empty.empty"

// emptyDescriptor describes the reserved no-op type. It is registered by
// the container itself instead of a modules/ package because the container
// must always be able to create it.
var emptyDescriptor = &Descriptor{
	Type: "empty",
	New: func(map[string]any) (Behavior, error) {
		return &emptyBehavior{}, nil
	},
}

// emptyBehavior produces constant silence.
type emptyBehavior struct{}

func (b *emptyBehavior) Build(ctx context.Context, host *Module) error {
	sig, err := host.NewUnit("silence")
	if err != nil {
		return err
	}
	host.SetOutput(sig)
	return nil
}

func (b *emptyBehavior) Initialise(ctx context.Context, host *Module, params map[string]any) error {
	return nil
}

func (b *emptyBehavior) Duration() float64 { return 0 }
