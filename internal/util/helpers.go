package util

import "sort"

// OrderedKeys returns the keys of m sorted lexicographically. Used anywhere a
// map needs to be walked in a deterministic order.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortBy returns a sorted copy of items using less as the comparator.
func SortBy[E any](items []E, less func(a, b E) bool) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// ArticleFor returns "a" or "an" depending on whether word begins with a
// vowel sound, capitalized if capitalize is true.
func ArticleFor(word string, capitalize bool) string {
	article := "a"
	if len(word) > 0 {
		switch word[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capitalize {
		return string(article[0]-32) + article[1:]
	}
	return article
}
