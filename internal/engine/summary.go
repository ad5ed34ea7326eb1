package engine

import (
	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
)

// Summary counts the entities of a timeline.
type Summary struct {
	Name        string
	Tracks      int
	Clips       int
	Gaps        int
	Transitions int
	Markers     int
	Effects     int
	Duration    rtime.RationalTime
}

// Summarize walks tl once. Shared entities are counted each time they are
// reached.
func Summarize(tl *model.Timeline) Summary {
	s := Summary{Name: tl.Name, Duration: tl.Duration()}
	if tl.Tracks == nil {
		return s
	}
	s.Markers += len(tl.Tracks.Markers)
	for _, tr := range tl.Tracks.Children {
		if tr == nil {
			continue
		}
		s.Tracks++
		s.Markers += len(tr.Markers)
		for _, it := range tr.Children {
			switch v := it.(type) {
			case *model.Clip:
				if v == nil {
					continue
				}
				s.Clips++
				s.Markers += len(v.Markers)
				s.Effects += len(v.Effects)
			case *model.Gap:
				s.Gaps++
			case *model.Transition:
				s.Transitions++
			}
		}
	}
	return s
}
