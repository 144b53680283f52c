package validation

// DuplicateNames returns the set of names occurring more than once in the
// given list. The result is recomputed from the whole list on every call so
// an edit that resolves a clash clears the flag for every affected row.
func DuplicateNames(names []string) map[string]bool {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name]++
	}

	duplicates := make(map[string]bool)

	for name, count := range counts {
		if count > 1 {
			duplicates[name] = true
		}
	}

	return duplicates
}

// DuplicateVersionTags flags version tags shared by more than one revision
// within a single revision group. Tags is the list of version tags of all
// transformations in the group.
func DuplicateVersionTags(tags []string) map[string]bool {
	return DuplicateNames(tags)
}
