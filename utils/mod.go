package utils

// FindIndex returns the index of the first element equal to item, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Rotate returns a copy of slice with every element moved k places to the
// right, wrapping around. Negative k rotates left.
func Rotate[T any](slice []T, k int) []T {
	n := len(slice)
	out := make([]T, n)
	if n == 0 {
		return out
	}
	k = ((k % n) + n) % n
	for i, v := range slice {
		out[(i+k)%n] = v
	}
	return out
}
