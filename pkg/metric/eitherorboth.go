package metric

import "encoding/json"

// EitherOrBoth is the first-class sum type used wherever a "new" side,
// an "old" side, or both can be present: every such place collapses onto
// this primitive instead of a pair of nullable pointers.
type EitherOrBoth[T any] struct {
	hasLeft  bool
	hasRight bool
	left     T
	right    T
}

// Left builds an EitherOrBoth holding only the left (new) value.
func Left[T any](v T) EitherOrBoth[T] {
	return EitherOrBoth[T]{hasLeft: true, left: v}
}

// Right builds an EitherOrBoth holding only the right (old) value.
func Right[T any](v T) EitherOrBoth[T] {
	return EitherOrBoth[T]{hasRight: true, right: v}
}

// Both builds an EitherOrBoth holding both values.
func Both[T any](l, r T) EitherOrBoth[T] {
	return EitherOrBoth[T]{hasLeft: true, hasRight: true, left: l, right: r}
}

// HasLeft reports whether the left (new) side is present.
func (e EitherOrBoth[T]) HasLeft() bool { return e.hasLeft }

// HasRight reports whether the right (old) side is present.
func (e EitherOrBoth[T]) HasRight() bool { return e.hasRight }

// IsBoth reports whether both sides are present.
func (e EitherOrBoth[T]) IsBoth() bool { return e.hasLeft && e.hasRight }

// LeftValue returns the left value and whether it was present.
func (e EitherOrBoth[T]) LeftValue() (T, bool) { return e.left, e.hasLeft }

// RightValue returns the right value and whether it was present.
func (e EitherOrBoth[T]) RightValue() (T, bool) { return e.right, e.hasRight }

// Combine merges a with b, another EitherOrBoth of the same key,
// according to the left+left, left+right->both, right+right, both+left,
// both+right, both+both truth table, using add to combine any
// overlapping sides.
func Combine[T any](a, b EitherOrBoth[T], add func(x, y T) T) EitherOrBoth[T] {
	out := EitherOrBoth[T]{}

	switch {
	case a.hasLeft && b.hasLeft:
		out.hasLeft = true
		out.left = add(a.left, b.left)
	case a.hasLeft:
		out.hasLeft = true
		out.left = a.left
	case b.hasLeft:
		out.hasLeft = true
		out.left = b.left
	}

	switch {
	case a.hasRight && b.hasRight:
		out.hasRight = true
		out.right = add(a.right, b.right)
	case a.hasRight:
		out.hasRight = true
		out.right = a.right
	case b.hasRight:
		out.hasRight = true
		out.right = b.right
	}

	return out
}

// MarshalJSON renders whichever sides are present under "new"/"old" keys,
// matching the JSON summary's `new`/`old` metric pairing.
func (e EitherOrBoth[T]) MarshalJSON() ([]byte, error) {
	out := make(map[string]T, 2)
	if e.hasLeft {
		out["new"] = e.left
	}
	if e.hasRight {
		out["old"] = e.right
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the "new"/"old" shape produced by MarshalJSON.
func (e *EitherOrBoth[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		New *T `json:"new"`
		Old *T `json:"old"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = EitherOrBoth[T]{}
	if raw.New != nil {
		e.hasLeft = true
		e.left = *raw.New
	}
	if raw.Old != nil {
		e.hasRight = true
		e.right = *raw.Old
	}
	return nil
}

// Zip walks two ordered key sequences under EitherOrBoth semantics: a key
// present in both left and right is passed to fn via Both; a key present
// only on one side is passed via Left or Right. Output order is left
// sequence first (in its order), then any right-only keys in their order,
// matching the Metrics union ordering invariant.
func Zip[K comparable](leftKeys, rightKeys []K) []EitherOrBoth[K] {
	rightSet := make(map[K]bool, len(rightKeys))
	for _, k := range rightKeys {
		rightSet[k] = true
	}
	leftSet := make(map[K]bool, len(leftKeys))
	for _, k := range leftKeys {
		leftSet[k] = true
	}

	out := make([]EitherOrBoth[K], 0, len(leftKeys)+len(rightKeys))
	for _, k := range leftKeys {
		if rightSet[k] {
			out = append(out, Both(k, k))
		} else {
			out = append(out, Left(k))
		}
	}
	for _, k := range rightKeys {
		if !leftSet[k] {
			out = append(out, Right(k))
		}
	}
	return out
}
