package generate

import (
	"errors"
	"fmt"

	"pixelgraph/internal/encoding"
)

// ErrCyclicDependency is returned when generators depend on each other in a
// loop.
var ErrCyclicDependency = errors.New("cyclic generator dependency")

// Node declares that a channel can be generated once its required channels
// resolve.
type Node struct {
	Channel  encoding.Channel
	Requires []encoding.Channel
}

// Registry maps channels to the generator that can produce them.
type Registry struct {
	nodes map[encoding.Channel]Node
}

// NewRegistry creates a registry from nodes. Later nodes replace earlier ones
// for the same channel.
func NewRegistry(nodes ...Node) *Registry {
	r := &Registry{nodes: make(map[encoding.Channel]Node)}
	for _, n := range nodes {
		r.nodes[n.Channel] = n
	}
	return r
}

// DefaultRegistry holds the built-in generators: normals and occlusion from
// height.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Node{Channel: encoding.NormalX, Requires: []encoding.Channel{encoding.Height}},
		Node{Channel: encoding.NormalY, Requires: []encoding.Channel{encoding.Height}},
		Node{Channel: encoding.NormalZ, Requires: []encoding.Channel{encoding.Height}},
		Node{Channel: encoding.Occlusion, Requires: []encoding.Channel{encoding.Height}},
	)
}

// Lookup returns the generator for a channel.
func (r *Registry) Lookup(ch encoding.Channel) (Node, bool) {
	n, ok := r.nodes[ch]
	return n, ok
}

// Validate rejects registries with dependency cycles.
func (r *Registry) Validate() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[encoding.Channel]int)

	var visit func(ch encoding.Channel, trail []encoding.Channel) error
	visit = func(ch encoding.Channel, trail []encoding.Channel) error {
		switch state[ch] {
		case visiting:
			return fmt.Errorf("generate: %v -> %s: %w", trail, ch, ErrCyclicDependency)
		case done:
			return nil
		}
		state[ch] = visiting
		if n, ok := r.nodes[ch]; ok {
			for _, dep := range n.Requires {
				if err := visit(dep, append(trail, ch)); err != nil {
					return err
				}
			}
		}
		state[ch] = done
		return nil
	}

	for _, ch := range encoding.AllChannels {
		if err := visit(ch, nil); err != nil {
			return err
		}
	}
	return nil
}
