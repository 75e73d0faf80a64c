package entity

import "image"

// TupleSample is one sampled tuple ready for a training consumer: clips in
// presentation (shuffled) order, the order labels that map each presentation
// slot back to its original timeline position, and the permutation class
// index derived from those labels.
type TupleSample struct {
	// Clips[i] holds the transformed frames of the clip shown in slot i.
	Clips [][]*image.RGBA
	// Order[i] is the original temporal position of Clips[i].
	Order []int
	// Class is the rank of Order within all TupleLen! permutations.
	Class int
}
