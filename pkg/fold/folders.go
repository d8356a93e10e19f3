package fold

// ListFolder collects fragments into lists of at most Size elements.
type ListFolder[T any] struct {
	Size int
}

func (f ListFolder[T]) Identity() []T {
	return nil
}

func (f ListFolder[T]) Accumulate(fragment T, acc []T) []T {
	return append(acc, fragment)
}

func (f ListFolder[T]) IsFull(_ T, acc []T) bool {
	return f.Size > 0 && len(acc) >= f.Size
}

// KeyFolder groups consecutive fragments that share a key.
type KeyFolder[T any, K comparable] struct {
	Key func(T) K
}

func (f KeyFolder[T, K]) Identity() []T {
	return nil
}

func (f KeyFolder[T, K]) Accumulate(fragment T, acc []T) []T {
	return append(acc, fragment)
}

func (f KeyFolder[T, K]) IsFull(next T, acc []T) bool {
	return len(acc) > 0 && f.Key(acc[0]) != f.Key(next)
}
