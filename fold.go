package multidict

// Fold canonicalizes a key before it is indexed or compared. Two keys name
// the same binding when their folded forms are equal; iteration and Pairs
// always report the key exactly as it was inserted.
//
// A Fold must be pure and stable for the life of the dict.
type Fold[K any] func(K) K

// NewCaseInsensitive initializes a MultiDict with string keys compared
// case-insensitively using FoldASCIILower, the common policy for HTTP
// header names. Stored key casing is preserved for output.
func NewCaseInsensitive[V any]() *MultiDict[string, V] {
	return NewFolded[string, V](FoldASCIILower)
}

// FoldASCIILower lowercases the ASCII letters of a key and leaves all other
// bytes untouched. No Unicode case mapping is applied: HTTP field names are
// ASCII, and byte-level folding keeps the policy allocation-free for keys
// that are already lowercase.
func FoldASCIILower(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] < 'A' || key[i] > 'Z' {
			continue
		}
		b := []byte(key)
		for j := i; j < len(b); j++ {
			if b[j] >= 'A' && b[j] <= 'Z' {
				b[j] += 'a' - 'A'
			}
		}
		return string(b)
	}
	return key
}
