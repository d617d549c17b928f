package aggregate

// Bucket is one labelled count of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusDistribution counts items per label in the order labels are given.
// Labels with no items are kept with a zero count; items whose label is not
// listed are ignored.
func StatusDistribution[T any](items []T, label func(T) string, labels []string) []Bucket {
	out := make([]Bucket, len(labels))
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		out[i] = Bucket{Label: l}
		if _, dup := index[l]; !dup {
			index[l] = i
		}
	}
	for _, item := range items {
		if i, ok := index[label(item)]; ok {
			out[i].Count++
		}
	}
	return out
}
