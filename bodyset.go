package gridfinity

import "github.com/soypat/gridfinity/kernel"

// BodySet is the immutable pair of tool body lists a composer hands to its
// caller: bodies to join into the parent and bodies to cut from it. Methods
// return new values and never modify the receiver.
type BodySet struct {
	merge    []kernel.Body
	subtract []kernel.Body
}

// Merge returns the bodies to join.
func (s BodySet) Merge() []kernel.Body { return append([]kernel.Body(nil), s.merge...) }

// Subtract returns the bodies to cut.
func (s BodySet) Subtract() []kernel.Body { return append([]kernel.Body(nil), s.subtract...) }

// WithMerge returns s with bs appended to the merge list.
func (s BodySet) WithMerge(bs ...kernel.Body) BodySet {
	s.merge = append(s.Merge(), bs...)
	return s
}

// WithSubtract returns s with bs appended to the subtract list.
func (s BodySet) WithSubtract(bs ...kernel.Body) BodySet {
	s.subtract = append(s.Subtract(), bs...)
	return s
}

// Concat returns the lists of s followed by those of o.
func (s BodySet) Concat(o BodySet) BodySet {
	return s.WithMerge(o.merge...).WithSubtract(o.subtract...)
}

// Len returns the total number of bodies held.
func (s BodySet) Len() int { return len(s.merge) + len(s.subtract) }
