// Package internal holds helpers shared by the id16 packages.
package internal

import (
	"iter"
)

// IterSeq2Concat chains key/value sequences, yielding each in turn until
// the consumer stops. Assembler equates are built from the defines of every
// package this way; a later duplicate key overrides an earlier one when
// collected into a map.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
