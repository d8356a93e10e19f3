package match

import "slices"

// Folder merges consecutive fragments of the same event into one Match. A
// fragment for a different event completes the current one.
type Folder struct{}

func (Folder) Identity() *Match {
	return nil
}

func (Folder) IsFull(next *Match, acc *Match) bool {
	return !acc.SameEvent(next)
}

func (Folder) Accumulate(next *Match, acc *Match) *Match {
	if acc == nil {
		return next.clone()
	}

	if acc.Season.IsZero() {
		acc.Season = next.Season
	}
	if acc.Fixture == (Fixture{}) {
		acc.Fixture = next.Fixture
	}
	for _, src := range next.FileSources {
		acc.addFileSource(src)
	}
	return acc
}

// addFileSource merges src into the source with the same metadata, or
// appends a copy of it.
func (m *Match) addFileSource(src *VideoFileSource) {
	for _, existing := range m.FileSources {
		if existing.SameMetadata(src) {
			existing.AddFiles(src.Files...)
			return
		}
	}
	m.FileSources = append(m.FileSources, src.clone())
}

func (m *Match) clone() *Match {
	out := *m
	out.FileSources = make([]*VideoFileSource, 0, len(m.FileSources))
	for _, src := range m.FileSources {
		out.FileSources = append(out.FileSources, src.clone())
	}
	return &out
}

func (s *VideoFileSource) clone() *VideoFileSource {
	out := *s
	out.Files = slices.Clone(s.Files)
	return &out
}
