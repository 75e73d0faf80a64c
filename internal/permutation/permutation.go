// Package permutation maps order labels to classification targets: every
// permutation of [0,n) gets a unique class index, the rank of that
// permutation in the lexicographic enumeration of all n! orderings.
package permutation

import "fmt"

// MaxArity keeps the enumeration (n! permutations) a sane size to hold in
// memory. Order-prediction tuples are 2-5 clips in practice.
const MaxArity = 8

// Codec is a bijection between permutations of [0,n) and [0, n!). The
// enumeration is generated once at construction and indexed both ways, so
// Encode and Decode are lookups.
type Codec struct {
	n     int
	perms [][]int
	rank  map[string]int
}

func NewCodec(n int) (*Codec, error) {
	if n < 2 || n > MaxArity {
		return nil, fmt.Errorf("permutation arity must be in [2,%d], got %d", MaxArity, n)
	}
	c := &Codec{n: n, rank: make(map[string]int)}
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	c.generate(remaining, nil)
	return c, nil
}

// generate emits permutations in lexicographic order: remaining is kept
// sorted, so taking its elements left to right as the next prefix element
// enumerates suffixes in increasing order.
func (c *Codec) generate(remaining, prefix []int) {
	if len(remaining) == 0 {
		c.rank[permKey(prefix)] = len(c.perms)
		c.perms = append(c.perms, append([]int(nil), prefix...))
		return
	}
	for i, v := range remaining {
		rest := make([]int, 0, len(remaining)-1)
		rest = append(rest, remaining[:i]...)
		rest = append(rest, remaining[i+1:]...)
		next := append(append([]int(nil), prefix...), v)
		c.generate(rest, next)
	}
}

// Arity is the permutation length n.
func (c *Codec) Arity() int {
	return c.n
}

// Classes is the size of the label space, n factorial.
func (c *Codec) Classes() int {
	return len(c.perms)
}

// Encode returns the class index of an order-label vector. The input must be
// a permutation of [0,n).
func (c *Codec) Encode(order []int) (int, error) {
	if len(order) != c.n {
		return 0, fmt.Errorf("order has %d elements, codec arity is %d", len(order), c.n)
	}
	for _, v := range order {
		if v < 0 || v >= c.n {
			return 0, fmt.Errorf("order element %d out of range [0,%d)", v, c.n)
		}
	}
	class, ok := c.rank[permKey(order)]
	if !ok {
		return 0, fmt.Errorf("order %v is not a permutation of [0,%d)", order, c.n)
	}
	return class, nil
}

// Decode returns the permutation for a class index. The inverse of Encode.
func (c *Codec) Decode(class int) ([]int, error) {
	if class < 0 || class >= len(c.perms) {
		return nil, fmt.Errorf("class %d out of range [0,%d)", class, len(c.perms))
	}
	return append([]int(nil), c.perms[class]...), nil
}

func permKey(p []int) string {
	b := make([]byte, len(p))
	for i, v := range p {
		b[i] = byte(v)
	}
	return string(b)
}
