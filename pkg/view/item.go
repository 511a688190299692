package view

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// Item is the state shared by every drawable element.
type Item struct {
	ID   string
	Time time.Time

	kind  Kind
	attrs Attrs
	style Style
}

func newItem(id string, k Kind, t time.Time) Item {
	return Item{ID: id, Time: t, kind: k, style: k.Style(0)}
}

// Kind returns the variant tag.
func (it *Item) Kind() Kind { return it.kind }

// Attrs returns the discrete state word.
func (it *Item) Attrs() Attrs { return it.attrs }

// Style returns the rendering word derived from Attrs.
func (it *Item) Style() Style { return it.style }

// SetAttrs replaces the state word and recomputes the style.
func (it *Item) SetAttrs(a Attrs) {
	it.attrs = a
	it.style = it.kind.Style(a)
}

// Timestamp returns the item's instant.
func (it *Item) Timestamp() time.Time { return it.Time }

// Node is an event or alert vertex.
type Node struct {
	Item

	Features Features

	// Next holds outgoing edge ids, Prev incoming edge ids, in insertion order.
	Next []string
	Prev []string

	label     string
	labelHash uint64
}

// NewNode creates a node of kind k. Non-node kinds fall back to KindEvent.
func NewNode(id string, k Kind, t time.Time, label string) *Node {
	if !k.IsNode() {
		k = KindEvent
	}
	n := &Node{Item: newItem(id, k, t)}
	n.SetLabel(label)
	return n
}

// Label returns the display label.
func (n *Node) Label() string { return n.label }

// LabelHash returns the 64-bit hash of the label, used in raster cache keys.
func (n *Node) LabelHash() uint64 { return n.labelHash }

// SetLabel replaces the label and its hash.
func (n *Node) SetLabel(label string) {
	n.label = label
	n.labelHash = HashLabel(label)
}

// Edge is a directed causal link between two nodes.
type Edge struct {
	Item

	Source string
	Target string

	// Length is the nominal spring length handed to the layout simulation.
	Length float64
}

// NewEdge creates a causal edge from source to target.
func NewEdge(id, source, target string, t time.Time) *Edge {
	return &Edge{Item: newItem(id, KindCausal, t), Source: source, Target: target}
}

// HashLabel hashes a label for cache keying.
func HashLabel(label string) uint64 {
	return xxhash.Sum64String(label)
}
