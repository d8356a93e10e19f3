// Package fold groups a flat sequence of fragments into composite records.
package fold

import "iter"

// Folder describes how fragments of type F are grouped into accumulators of
// type A.
//
// IsFull is asked before each fragment is absorbed, with the proposed next
// fragment and the current accumulator. When it reports true the current
// accumulator is emitted and the fragment starts a fresh one. Accumulate may
// mutate acc in place or return a new value; callers use the returned value.
type Folder[F, A any] interface {
	Identity() A
	Accumulate(fragment F, acc A) A
	IsFull(next F, acc A) bool
}

// Fold drives folder over seq. An accumulator is emitted only if at least one
// fragment was absorbed into it, so an empty stream emits nothing.
//
// An error from seq is yielded and ends the sequence; the pending accumulator
// is dropped since it may be missing fragments. When the consumer stops
// early, seq is not pulled any further.
func Fold[F, A any](seq iter.Seq2[F, error], folder Folder[F, A]) iter.Seq2[A, error] {
	return func(yield func(A, error) bool) {
		acc := folder.Identity()
		absorbed := 0

		for fragment, err := range seq {
			if err != nil {
				var zero A
				yield(zero, err)
				return
			}
			if absorbed > 0 && folder.IsFull(fragment, acc) {
				if !yield(acc, nil) {
					return
				}
				acc = folder.Identity()
				absorbed = 0
			}
			acc = folder.Accumulate(fragment, acc)
			absorbed++
		}

		if absorbed > 0 {
			yield(acc, nil)
		}
	}
}

// FoldSlice is Fold over an in-memory slice.
func FoldSlice[F, A any](fragments []F, folder Folder[F, A]) []A {
	var out []A
	for acc := range Fold(seqOf(fragments), folder) {
		out = append(out, acc)
	}
	return out
}

func seqOf[F any](fragments []F) iter.Seq2[F, error] {
	return func(yield func(F, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
	}
}

// Zip pairs left and right one to one until either side is exhausted.
func Zip[L, R, O any](left iter.Seq[L], right iter.Seq[R], combine func(L, R) O) iter.Seq[O] {
	return func(yield func(O) bool) {
		next, stop := iter.Pull(right)
		defer stop()

		for l := range left {
			r, ok := next()
			if !ok {
				return
			}
			if !yield(combine(l, r)) {
				return
			}
		}
	}
}
