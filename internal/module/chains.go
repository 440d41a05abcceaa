package module

// chainCache holds the memoized traversal results. The control plane is
// single-threaded and the graph is immutable once prepared, so a computed
// chain never changes.
type chainCache struct {
	input         []*Module
	implicitInput []*Module
	output        []*Module
	full          []*Module
	implicit      []*Module

	inputDone         bool
	implicitInputDone bool
	outputDone        bool
	fullDone          bool
	implicitDone      bool
}

// InputChain returns every upstream module in left-to-right declaration
// order, inputs before the modules that need them, each module appearing
// once even when reachable via multiple paths.
func (m *Module) InputChain() []*Module {
	if !m.chains.inputDone {
		m.chains.input = m.inputChain(
			func(in *Module) []*Module { return in.InputChain() },
			func(Input) bool { return true },
		)
		m.chains.inputDone = true
	}
	return m.chains.input
}

// ImplicitInputChain is InputChain restricted to edges whose binding is
// marked implicit. Only these edges count toward implicit transitive
// activation.
func (m *Module) ImplicitInputChain() []*Module {
	if !m.chains.implicitInputDone {
		m.chains.implicitInput = m.inputChain(
			func(in *Module) []*Module { return in.ImplicitInputChain() },
			func(i Input) bool { return i.Implicit() },
		)
		m.chains.implicitInputDone = true
	}
	return m.chains.implicitInput
}

func (m *Module) inputChain(recurse func(*Module) []*Module, keep func(Input) bool) []*Module {
	var list []*Module
	for _, slot := range m.slots {
		if !keep(slot.Default) {
			continue
		}
		in := m.resolved[slot.Name]
		if in == nil {
			continue
		}
		list = appendUnique(list, in)
		chain := recurse(in)
		for i := len(chain) - 1; i >= 0; i-- {
			list = appendUnique(list, chain[i])
		}
	}
	reverseModules(list)
	return list
}

// OutputChain returns every downstream consumer, transitively, following
// each consumer's implicit chain.
func (m *Module) OutputChain() []*Module {
	if !m.chains.outputDone {
		var list []*Module
		for _, consumer := range m.consumers {
			list = appendUnique(list, consumer)
			for _, reached := range consumer.ImplicitChain() {
				if reached != m {
					list = appendUnique(list, reached)
				}
			}
		}
		m.chains.output = list
		m.chains.outputDone = true
	}
	return m.chains.output
}

// Chain is the input chain followed by the output chain, deduplicated.
func (m *Module) Chain() []*Module {
	if !m.chains.fullDone {
		list := append([]*Module(nil), m.InputChain()...)
		for _, out := range m.OutputChain() {
			list = appendUnique(list, out)
		}
		m.chains.full = list
		m.chains.fullDone = true
	}
	return m.chains.full
}

// ImplicitChain is the implicit input chain followed by the output chain,
// deduplicated.
func (m *Module) ImplicitChain() []*Module {
	if !m.chains.implicitDone {
		list := append([]*Module(nil), m.ImplicitInputChain()...)
		for _, out := range m.OutputChain() {
			list = appendUnique(list, out)
		}
		m.chains.implicit = list
		m.chains.implicitDone = true
	}
	return m.chains.implicit
}

func appendUnique(list []*Module, m *Module) []*Module {
	for _, existing := range list {
		if existing == m {
			return list
		}
	}
	return append(list, m)
}

func reverseModules(list []*Module) {
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
}
