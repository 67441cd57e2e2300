package stats

import (
	"github.com/leighmacdonald/q3stats/pkg/logparse"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownSortKey = errors.New("Unknown sort key")
	ErrResultCount    = errors.New("Result count out of range")
)

// sortValues maps every literal and synthetic sort key onto its value
// function. The "name" key intentionally ranks by ascending frag/death ratio
// rather than by name, matching the long documented behaviour of the
// original report generator.
var sortValues = map[string]func(career *PlayerCareer) float64{
	"games":      func(c *PlayerCareer) float64 { return float64(c.Games) },
	"time":       func(c *PlayerCareer) float64 { return float64(c.Time) },
	"won":        func(c *PlayerCareer) float64 { return float64(c.Won) },
	"frags":      func(c *PlayerCareer) float64 { return float64(c.Frags) },
	"deaths":     func(c *PlayerCareer) float64 { return float64(c.Deaths) },
	"suicides":   func(c *PlayerCareer) float64 { return float64(c.Suicides) },
	"wfrags":     func(c *PlayerCareer) float64 { return float64(c.WorldFrags) },
	"assist":     func(c *PlayerCareer) float64 { return float64(c.Awards[logparse.AwardAssist]) },
	"capture":    func(c *PlayerCareer) float64 { return float64(c.Awards[logparse.AwardCapture]) },
	"defence":    func(c *PlayerCareer) float64 { return float64(c.Awards[logparse.AwardDefence]) },
	"excellent":  func(c *PlayerCareer) float64 { return float64(c.Awards[logparse.AwardExcellent]) },
	"impressive": func(c *PlayerCareer) float64 { return float64(c.Awards[logparse.AwardImpressive]) },

	"frag_death_ratio": func(c *PlayerCareer) float64 { return c.FragDeathRatio() },
	"won_percentage":   func(c *PlayerCareer) float64 { return c.WonPercentage() },
	"frags_per_hour":   func(c *PlayerCareer) float64 { return c.FragsPerHour() },
	"name":             func(c *PlayerCareer) float64 { return c.FragDeathRatio() },
}

// Rank orders the career set descending by the named key and truncates to
// the first limit entries. An unknown key or a limit outside 1..len(careers)
// fails whole, no partial result.
func Rank(careers []*PlayerCareer, key string, limit int) ([]*PlayerCareer, error) {
	value, found := sortValues[key]
	if !found {
		return nil, errors.Wrapf(ErrUnknownSortKey, "Sort key: %s", key)
	}

	if limit <= 0 || limit > len(careers) {
		return nil, errors.Wrapf(ErrResultCount, "Requested %d of %d", limit, len(careers))
	}

	ranked := make([]*PlayerCareer, len(careers))
	copy(ranked, careers)

	ascending := key == "name"

	slices.SortStableFunc(ranked, func(a, b *PlayerCareer) int {
		left, right := value(a), value(b)
		if ascending {
			left, right = right, left
		}

		switch {
		case left > right:
			return -1
		case left < right:
			return 1
		default:
			return 0
		}
	})

	return ranked[0:limit], nil
}

// ApplyBan removes every career whose name matches a ban list entry exactly,
// colour markers included. Deletions run over descending indexes so multiple
// hits cannot shift each other, and the survivors keep their relative order.
func ApplyBan(careers []*PlayerCareer, banned []string) []*PlayerCareer {
	var hits []int

	for index, career := range careers {
		if slices.Contains(banned, career.Name) {
			hits = append(hits, index)
		}
	}

	for i := len(hits) - 1; i >= 0; i-- {
		careers = append(careers[:hits[i]], careers[hits[i]+1:]...)
	}

	return careers
}
