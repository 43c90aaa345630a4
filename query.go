package depot

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
}

type leafNode struct {
	components []Component
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, components []Component) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   make([]QueryNode, 0),
		components: components,
	}
}

func newLeafNode(components []Component) *leafNode {
	return &leafNode{components: components}
}

// nodeMask builds the mask of components as seen by storage. complete is
// false when any of them is not registered (or not visible) there.
func nodeMask(components []Component, storage Storage) (m mask.Mask, complete bool) {
	complete = true
	for _, comp := range components {
		bit, ok := storage.RowIndexFor(comp)
		if !ok {
			complete = false
			continue
		}
		m.Mark(bit)
	}
	return m, complete
}

func (n *compositeNode) Evaluate(signature mask.Mask, storage Storage) bool {
	// Build mask at evaluation time
	nm, complete := nodeMask(n.components, storage)

	switch n.op {
	case OpAnd:
		if !complete || !signature.ContainsAll(nm) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(signature, storage) {
				return false
			}
		}
		return true

	case OpOr:
		if signature.ContainsAny(nm) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(signature, storage) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range n.children {
			if child.Evaluate(signature, storage) {
				return false
			}
		}
		return !signature.ContainsAny(nm)
	}
	return false
}

func (n *leafNode) Evaluate(signature mask.Mask, storage Storage) bool {
	nm, complete := nodeMask(n.components, storage)
	return complete && signature.ContainsAll(nm)
}

// And matches entities carrying every component and satisfying every child.
// Plain component lists become leaf nodes.
func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	var node QueryNode
	if len(children) == 0 {
		node = newLeafNode(components)
	} else {
		composite := newCompositeNode(OpAnd, components)
		composite.children = children
		node = composite
	}
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// processItems splits query arguments into components and nested nodes.
// Anything else is ignored.
func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Evaluate(signature mask.Mask, storage Storage) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(signature, storage)
}
