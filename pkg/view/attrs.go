package view

// Attrs is the bit-packed discrete state of an item.
type Attrs uint32

// Visibility of an item.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

// Selection state of an item.
type Selection uint8

const (
	SelectNone Selection = iota
	SelectSingle
	SelectMulti
)

// Focus state of an item. The two not-focused bits are independent reasons
// an item is out of focus; both may apply at once.
type Focus uint8

const (
	Focused Focus = iota
	NotFocused1
	NotFocused2
	NotFocusedBoth
)

const (
	visibilityShift = 0
	selectionShift  = 1
	focusShift      = 3
	collapsedShift  = 5

	visibilityMask Attrs = 0b1 << visibilityShift
	selectionMask  Attrs = 0b11 << selectionShift
	focusMask      Attrs = 0b11 << focusShift
	collapsedMask  Attrs = 0b1 << collapsedShift
)

// Visibility returns the visibility field.
func (a Attrs) Visibility() Visibility {
	return Visibility((a & visibilityMask) >> visibilityShift)
}

// Selection returns the selection field.
func (a Attrs) Selection() Selection {
	return Selection((a & selectionMask) >> selectionShift)
}

// Focus returns the focus field.
func (a Attrs) Focus() Focus {
	return Focus((a & focusMask) >> focusShift)
}

// Collapsed reports whether the collapsed flag is set.
func (a Attrs) Collapsed() bool { return a&collapsedMask != 0 }

// Hidden reports whether the item is hidden.
func (a Attrs) Hidden() bool { return a.Visibility() == Hidden }

// Selected reports whether the item is part of any selection.
func (a Attrs) Selected() bool { return a.Selection() != SelectNone }

// WithVisibility returns a copy of a with the visibility field replaced.
func (a Attrs) WithVisibility(v Visibility) Attrs {
	return a&^visibilityMask | (Attrs(v)<<visibilityShift)&visibilityMask
}

// WithSelection returns a copy of a with the selection field replaced.
// Values above SelectMulti are clamped to SelectMulti.
func (a Attrs) WithSelection(s Selection) Attrs {
	s = min(s, SelectMulti)
	return a&^selectionMask | (Attrs(s)<<selectionShift)&selectionMask
}

// WithFocus returns a copy of a with the focus field replaced.
func (a Attrs) WithFocus(f Focus) Attrs {
	return a&^focusMask | (Attrs(f)<<focusShift)&focusMask
}

// WithCollapsed returns a copy of a with the collapsed flag replaced.
func (a Attrs) WithCollapsed(c bool) Attrs {
	if c {
		return a | collapsedMask
	}
	return a &^ collapsedMask
}

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

func (s Selection) String() string {
	switch s {
	case SelectSingle:
		return "single"
	case SelectMulti:
		return "multi"
	default:
		return "none"
	}
}

func (f Focus) String() string {
	switch f {
	case NotFocused1:
		return "not-focused-1"
	case NotFocused2:
		return "not-focused-2"
	case NotFocusedBoth:
		return "not-focused-both"
	default:
		return "focused"
	}
}
