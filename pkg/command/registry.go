package command

import (
	"fmt"
	"sort"
	"strings"
)

// node is one command in the registry tree. Insertion order is kept for
// help output; lookup goes through the map.
type node struct {
	reg      Registration
	children map[string]*node
	order    []string
}

func newNode(reg Registration) *node {
	return &node{reg: reg, children: make(map[string]*node)}
}

func (n *node) add(name string, child *node) {
	n.children[name] = child
	n.order = append(n.order, name)
}

// Registry is a forest of command trees keyed by top-level name.
// It is not safe for concurrent use: all mutation and resolution happen
// on the owning session's runner goroutine.
type Registry struct {
	root *node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{root: newNode(Registration{})}
}

// Resolved is the outcome of a successful lookup: the matched
// registration, its full path from the root, and the unconsumed tokens.
type Resolved struct {
	Registration
	Path []string
	Args []string
}

// Register adds a list of command trees beneath prefix. A nil or empty
// prefix registers at the root. The list may terminate with the zero
// Registration (End); entries after it are ignored.
//
// Registration is all-or-nothing: the whole list is validated against
// the existing tree before anything is inserted, so a DuplicateName
// failure leaves the registry unchanged.
func (r *Registry) Register(prefix []string, regs []Registration) error {
	parent, err := r.lookup(prefix)
	if err != nil {
		return err
	}

	regs = trimEnd(regs)
	if err := validate(parent, regs); err != nil {
		return err
	}

	for _, reg := range regs {
		insert(parent, reg)
	}
	return nil
}

// Unregister removes the command tree at prefix, including all of its
// sub-commands.
func (r *Registry) Unregister(prefix []string) error {
	if len(prefix) == 0 {
		return fmt.Errorf("%w: empty path", ErrUnknownPrefix)
	}
	parent, err := r.lookup(prefix[:len(prefix)-1])
	if err != nil {
		return err
	}
	name := prefix[len(prefix)-1]
	if _, ok := parent.children[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrefix, strings.Join(prefix, " "))
	}
	delete(parent.children, name)
	for i, n := range parent.order {
		if n == name {
			parent.order = append(parent.order[:i], parent.order[i+1:]...)
			break
		}
	}
	return nil
}

// Resolve walks tokens down the tree, consuming one token per level while
// a matching child exists, and returns the deepest matched node that has
// a handler. Remaining tokens become the handler's arguments.
func (r *Registry) Resolve(tokens []string) (*Resolved, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty token list", ErrUnknownCommand)
	}

	cur := r.root
	var (
		best     *node
		bestPath []string
		bestArgs []string
		path     []string
	)
	for i, tok := range tokens {
		child, ok := cur.children[tok]
		if !ok {
			break
		}
		path = append(path, tok)
		if child.reg.Handler != nil {
			best = child
			bestPath = append([]string(nil), path...)
			bestArgs = tokens[i+1:]
		}
		cur = child
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, tokens[0])
	}
	return &Resolved{
		Registration: best.reg,
		Path:         bestPath,
		Args:         bestArgs,
	}, nil
}

// Describe returns the registration at path, for help output.
func (r *Registry) Describe(path []string) (Registration, error) {
	n, err := r.lookup(path)
	if err != nil {
		return Registration{}, err
	}
	return n.reg, nil
}

// Walk visits every registered command in depth-first insertion order,
// calling fn with the full path and registration.
func (r *Registry) Walk(fn func(path []string, reg Registration)) {
	walk(r.root, nil, fn)
}

// TopLevel returns the sorted names of all root commands.
func (r *Registry) TopLevel() []string {
	names := append([]string(nil), r.root.order...)
	sort.Strings(names)
	return names
}

func walk(n *node, path []string, fn func(path []string, reg Registration)) {
	for _, name := range n.order {
		child := n.children[name]
		childPath := append(append([]string(nil), path...), name)
		fn(childPath, child.reg)
		walk(child, childPath, fn)
	}
}

func (r *Registry) lookup(path []string) (*node, error) {
	cur := r.root
	for i, name := range path {
		child, ok := cur.children[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, strings.Join(path[:i+1], " "))
		}
		cur = child
	}
	return cur, nil
}

// trimEnd cuts the list at the first terminator entry.
func trimEnd(regs []Registration) []Registration {
	for i, reg := range regs {
		if reg.isEnd() {
			return regs[:i]
		}
	}
	return regs
}

// validate checks a registration list against an existing parent without
// mutating it. Sibling names must be unique, both within the list and
// against already-registered children.
func validate(parent *node, regs []Registration) error {
	seen := make(map[string]bool, len(regs))
	for _, reg := range regs {
		if reg.Name == "" {
			return fmt.Errorf("%w: empty name before terminator", ErrInvalidRegistration)
		}
		if reg.Handler == nil && len(trimEnd(reg.Children)) == 0 {
			return fmt.Errorf("%w: %q has neither handler nor sub-commands", ErrInvalidRegistration, reg.Name)
		}
		if seen[reg.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, reg.Name)
		}
		if _, exists := parent.children[reg.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, reg.Name)
		}
		seen[reg.Name] = true

		if err := validate(newNode(Registration{}), trimEnd(reg.Children)); err != nil {
			return fmt.Errorf("under %q: %w", reg.Name, err)
		}
	}
	return nil
}

func insert(parent *node, reg Registration) {
	children := trimEnd(reg.Children)
	reg.Children = nil
	n := newNode(reg)
	parent.add(reg.Name, n)
	for _, child := range children {
		insert(n, child)
	}
}
