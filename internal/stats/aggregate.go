// Package stats folds retained matches into ranked per-player career
// statistics and derives the presentation neutral report tables.
package stats

import (
	"sort"

	"github.com/leighmacdonald/q3stats/pkg/logparse"
)

// PlayerCareer is the aggregated entity of one player name across every
// match that tagged the name valid. Immutable once produced.
type PlayerCareer struct {
	Name     string  `json:"name"`
	Games    int     `json:"games"`
	Won      int     `json:"won"`
	Time     int     `json:"time"`
	Handicap float64 `json:"handicap"`
	PingMin  int     `json:"ping_min"`
	PingAvg  float64 `json:"ping_avg"`
	PingMax  int     `json:"ping_max"`

	Frags      int `json:"frags"`
	Deaths     int `json:"deaths"`
	Suicides   int `json:"suicides"`
	WorldFrags int `json:"world_frags"`

	Awards  map[logparse.AwardType]int `json:"awards"`
	Weapons map[logparse.Weapon]int    `json:"weapons"`
	CTF     map[logparse.CTFEvent]int  `json:"ctf"`
}

// FragDeathRatio guards the zero deaths case instead of faulting, a player
// who never died ranks by raw frags.
func (career *PlayerCareer) FragDeathRatio() float64 {
	if career.Deaths == 0 {
		return float64(career.Frags)
	}

	return float64(career.Frags) / float64(career.Deaths)
}

func (career *PlayerCareer) WonPercentage() float64 {
	if career.Games == 0 {
		return 0
	}

	return float64(career.Won) / float64(career.Games)
}

func (career *PlayerCareer) FragsPerHour() float64 {
	if career.Time == 0 {
		return 0
	}

	return 3600 * float64(career.Frags) / float64(career.Time)
}

// Aggregate folds every match's valid players into career totals. Only the
// matches that tagged a name valid contribute to that name's totals. Players
// whose career frag count is zero are excluded whole, they are drive-by
// connects, not participants.
func Aggregate(games []*logparse.Game) []*PlayerCareer {
	names := map[string]struct{}{}
	for _, game := range games {
		for _, name := range game.ValidPlayers {
			names[name] = struct{}{}
		}
	}

	// Deterministic fold order so that equal sort keys rank identically on
	// every run
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}

	sort.Strings(ordered)

	var careers []*PlayerCareer

	for _, name := range ordered {
		career := foldPlayer(games, name)
		if career.Frags == 0 {
			continue
		}

		careers = append(careers, career)
	}

	return careers
}

func foldPlayer(games []*logparse.Game, name string) *PlayerCareer {
	career := &PlayerCareer{
		Name:    name,
		Awards:  map[logparse.AwardType]int{},
		Weapons: map[logparse.Weapon]int{},
		CTF:     map[logparse.CTFEvent]int{},
	}

	var (
		handicapSum int
		pingSum     int
	)

	for _, game := range games {
		if !game.IsValid(name) {
			continue
		}

		career.Games++
		career.Time += game.PlayTime(name)
		career.Frags += game.Frags(name)
		career.Deaths += game.Deaths[name]
		career.Suicides += len(game.Suicides[name])
		career.WorldFrags += game.WorldFrags(name)

		if won(game, name) {
			career.Won++
		}

		handicapSum += game.Handicaps[name]

		ping := game.Pings[name]
		pingSum += ping

		if career.Games == 1 || ping < career.PingMin {
			career.PingMin = ping
		}

		if ping > career.PingMax {
			career.PingMax = ping
		}

		for _, award := range logparse.AwardTypes {
			career.Awards[award] += game.Awards[name][award]
		}

		for _, weapon := range logparse.Weapons {
			career.Weapons[weapon] += game.Weapons[name][weapon]
		}

		for _, event := range logparse.CTFEvents {
			career.CTF[event] += game.CTF[name][event]
		}
	}

	if career.Games > 0 {
		career.Handicap = float64(handicapSum) / float64(career.Games)
		career.PingAvg = float64(pingSum) / float64(career.Games)
	}

	return career
}

// won decides a single match win. Free-for-all gametypes win on scoreboard
// rank 1. Team gametypes win when the player's team holds the maximum of the
// two recorded scores. A team slot outside red/blue, eg a spectator, is a
// loss rather than an error.
func won(game *logparse.Game, name string) bool {
	if !game.GameType.TeamBased() {
		return game.Ranks[name] == 1
	}

	if game.Scores == nil {
		return false
	}

	var side int

	switch game.Teams[name] {
	case logparse.TeamRed:
		side = game.Scores.Red
	case logparse.TeamBlue:
		side = game.Scores.Blue
	default:
		return false
	}

	return side >= game.Scores.Red && side >= game.Scores.Blue
}
