package view

// Style is the rendering word of an item. It is a pure function of the
// item's Kind and Attrs and is recomputed whenever Attrs change.
//
// Layout (owned by this package, opaque to the render core):
//
//	bits 0-7   kind tag
//	bits 8-9   emphasis (full, dim, faint)
//	bits 10-11 selection
//	bit 12     hidden
//	bit 13     collapsed badge
type Style uint32

// Emphasis is the paint strength derived from focus.
type Emphasis uint8

const (
	EmphasisFull Emphasis = iota
	EmphasisDim
	EmphasisFaint
)

const (
	styleKindMask      Style = 0xff
	styleEmphasisShift       = 8
	styleSelectShift         = 10
	styleHiddenBit     Style = 1 << 12
	styleBadgeBit      Style = 1 << 13
)

// PaintMask selects the style bits that change drawing-context state (color,
// alpha, stroke). Items equal under this mask can share one draw batch.
const PaintMask uint32 = uint32(styleKindMask | 0b11<<styleEmphasisShift | 0b11<<styleSelectShift)

// Kind tags the variant of an item. Each variant owns a pure attrs → style
// function selected in [Kind.Style].
type Kind uint8

const (
	// KindEvent is a raw telemetry event node.
	KindEvent Kind = iota + 1
	// KindAlert is a derived analytic alert node.
	KindAlert
	// KindCausal is a causal edge between two nodes.
	KindCausal
)

// IsNode reports whether k tags a node variant.
func (k Kind) IsNode() bool { return k == KindEvent || k == KindAlert }

// IsEdge reports whether k tags an edge variant.
func (k Kind) IsEdge() bool { return k == KindCausal }

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindAlert:
		return "alert"
	case KindCausal:
		return "causal"
	default:
		return "unknown"
	}
}

// ParseKind returns the Kind named s, or false.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "event", "":
		return KindEvent, true
	case "alert":
		return KindAlert, true
	case "causal":
		return KindCausal, true
	}
	return 0, false
}

// Style computes the style word for attrs under kind k.
func (k Kind) Style(a Attrs) Style {
	switch k {
	case KindEvent:
		return eventStyle(a)
	case KindAlert:
		return alertStyle(a)
	case KindCausal:
		return causalStyle(a)
	default:
		return baseStyle(k, a)
	}
}

func baseStyle(k Kind, a Attrs) Style {
	s := Style(k) & styleKindMask
	s |= Style(emphasisOf(a.Focus())) << styleEmphasisShift
	s |= Style(a.Selection()) << styleSelectShift
	if a.Hidden() {
		s |= styleHiddenBit
	}
	return s
}

func eventStyle(a Attrs) Style {
	s := baseStyle(KindEvent, a)
	if a.Collapsed() {
		s |= styleBadgeBit
	}
	return s
}

// Alerts stay at full emphasis while selected so the analyst never loses
// track of the alert they are inspecting.
func alertStyle(a Attrs) Style {
	s := baseStyle(KindAlert, a)
	if a.Selected() {
		s &^= 0b11 << styleEmphasisShift
	}
	if a.Collapsed() {
		s |= styleBadgeBit
	}
	return s
}

// Edges have no collapse badge; a collapsed edge simply disappears.
func causalStyle(a Attrs) Style {
	return baseStyle(KindCausal, a)
}

func emphasisOf(f Focus) Emphasis {
	switch f {
	case NotFocused1, NotFocused2:
		return EmphasisDim
	case NotFocusedBoth:
		return EmphasisFaint
	default:
		return EmphasisFull
	}
}

// Kind returns the kind tag encoded in s.
func (s Style) Kind() Kind { return Kind(s & styleKindMask) }

// Emphasis returns the paint strength encoded in s.
func (s Style) Emphasis() Emphasis {
	return Emphasis((s >> styleEmphasisShift) & 0b11)
}

// Selection returns the selection encoded in s.
func (s Style) Selection() Selection {
	return Selection((s >> styleSelectShift) & 0b11)
}

// Hidden reports whether s paints nothing.
func (s Style) Hidden() bool { return s&styleHiddenBit != 0 }

// Badge reports whether s carries a collapse badge.
func (s Style) Badge() bool { return s&styleBadgeBit != 0 }

// Alpha returns the opacity a painter should apply for s.
func (s Style) Alpha() float64 {
	switch s.Emphasis() {
	case EmphasisDim:
		return 0.5
	case EmphasisFaint:
		return 0.25
	default:
		return 1
	}
}
