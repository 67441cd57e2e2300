package logparse

import (
	"github.com/gofrs/uuid/v5"
	"github.com/pkg/errors"
)

var (
	ErrIgnored       = errors.New("Ignored msg")
	ErrInvalidType   = errors.New("Invalid event type")
	ErrUnknownPlayer = errors.New("Unknown player reference")
)

// Quote is one distinct (speaker, message) chat pair
type Quote struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// TeamScores is the final red/blue score pair of a team gametype match
type TeamScores struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Game accumulates the state of a single match. It is owned exclusively by
// the Scanner while the match is live and becomes read-only input to the
// stats aggregation afterwards.
//
// The clients id to name table is rebuilt from empty at every match start.
// The engine recycles client ids, a table surviving across matches would
// leak events onto the wrong player.
type Game struct {
	MatchID  uuid.UUID `json:"match_id"`
	Number   int       `json:"number"`
	MapName  string    `json:"map_name"`
	GameType GameType  `json:"game_type"`
	// Duration is only defined once a recognized exit line was seen
	Duration  int  `json:"duration"`
	Completed bool `json:"completed"`

	// JoinTimes maps player name to the match clock at first registration
	JoinTimes map[string]int `json:"join_times"`
	Handicaps map[string]int `json:"handicaps"`
	Teams     map[string]int `json:"teams"`
	Pings     map[string]int `json:"pings"`
	// Ranks is the 1-based scoreboard position, in score line order
	Ranks map[string]int `json:"ranks"`

	Weapons map[string]map[Weapon]int    `json:"weapons"`
	Deaths  map[string]int               `json:"deaths"`
	Awards  map[string]map[AwardType]int `json:"awards"`
	CTF     map[string]map[CTFEvent]int  `json:"ctf"`
	// Suicides holds the raw means-of-death token per self kill
	Suicides map[string][]string `json:"suicides"`
	// WorldKills lists the victims of environmental deaths
	WorldKills []string    `json:"world_kills"`
	Scores     *TeamScores `json:"scores,omitempty"`

	Quotes map[Quote]struct{} `json:"-"`
	// ValidPlayers lists players who pass the minimum play time predicate
	ValidPlayers []string `json:"valid_players"`

	clients  map[int]string
	scorePos int
	minPlay  float64
}

func NewGame(number int, minPlay float64) *Game {
	matchID, errID := uuid.NewV4()
	if errID != nil {
		panic(errID)
	}

	return &Game{
		MatchID:   matchID,
		Number:    number,
		JoinTimes: map[string]int{},
		Handicaps: map[string]int{},
		Teams:     map[string]int{},
		Pings:     map[string]int{},
		Ranks:     map[string]int{},
		Weapons:   map[string]map[Weapon]int{},
		Deaths:    map[string]int{},
		Awards:    map[string]map[AwardType]int{},
		CTF:       map[string]map[CTFEvent]int{},
		Suicides:  map[string][]string{},
		Quotes:    map[Quote]struct{}{},
		clients:   map[int]string{},
		scorePos:  1,
		minPlay:   minPlay,
	}
}

// PlayerCount is the number of players registered during the match
func (game *Game) PlayerCount() int {
	return len(game.JoinTimes)
}

// EarliestJoin returns the join clock of the first player who joined the
// match, false when nobody registered.
func (game *Game) EarliestJoin() (int, bool) {
	if len(game.JoinTimes) == 0 {
		return 0, false
	}

	var (
		first    = true
		earliest int
	)

	for _, clock := range game.JoinTimes {
		if first || clock < earliest {
			earliest = clock
			first = false
		}
	}

	return earliest, true
}

// PlayTime is the seconds a player was present for, zero for unknown names
// and for matches without a recognized termination.
func (game *Game) PlayTime(name string) int {
	join, found := game.JoinTimes[name]
	if !found || !game.Completed {
		return 0
	}

	return game.Duration - join
}

// WorldFrags counts the environmental deaths of one player
func (game *Game) WorldFrags(name string) int {
	var total int

	for _, victim := range game.WorldKills {
		if victim == name {
			total++
		}
	}

	return total
}

// Frags is the sum of a player's weapon counters
func (game *Game) Frags(name string) int {
	var total int

	for _, count := range game.Weapons[name] {
		total += count
	}

	return total
}

// IsValid reports whether a player passed the minimum play time predicate
func (game *Game) IsValid(name string) bool {
	for _, valid := range game.ValidPlayers {
		if valid == name {
			return true
		}
	}

	return false
}

// PlayerValid is the validity predicate: the time a player was present for
// must strictly exceed the minPlay fraction of the time the earliest joiner
// was present for.
func PlayerValid(duration int, joinClock int, earliestJoin int, minPlay float64) bool {
	return float64(duration-joinClock) > minPlay*float64(duration-earliestJoin)
}

// Apply folds one parsed line into the match state. The server accumulator
// takes the per-kill total frag count.
//
// Per-event failures are recoverable by design: an event referencing a player
// the match never registered, or carrying a weapon outside the tracked set,
// is dropped whole and the error reported back for the caller to log.
func (game *Game) Apply(result *Results, server *Server) error {
	switch result.EventType {
	case IgnoredMsg, Item:
		return ErrIgnored
	case Kill:
		evt, ok := result.Event.(KillEvt)
		if !ok {
			return ErrInvalidType
		}

		return game.kill(evt, server)
	case CTF:
		evt, ok := result.Event.(CTFEvt)
		if !ok {
			return ErrInvalidType
		}

		return game.ctf(evt)
	case Award:
		evt, ok := result.Event.(AwardEvt)
		if !ok {
			return ErrInvalidType
		}

		return game.award(evt)
	case UserinfoChanged:
		evt, ok := result.Event.(UserinfoChangedEvt)
		if !ok {
			return ErrInvalidType
		}

		game.userinfo(evt)

		return nil
	case Say:
		evt, ok := result.Event.(SayEvt)
		if !ok {
			return ErrInvalidType
		}

		game.Quotes[Quote{evt.Name, evt.Msg}] = struct{}{}

		return nil
	case Score:
		evt, ok := result.Event.(ScoreEvt)
		if !ok {
			return ErrInvalidType
		}

		return game.score(evt)
	case TeamScore:
		evt, ok := result.Event.(TeamScoreEvt)
		if !ok {
			return ErrInvalidType
		}

		game.Scores = &TeamScores{Red: evt.Red, Blue: evt.Blue}

		return nil
	case Exit:
		evt, ok := result.Event.(ExitEvt)
		if !ok {
			return ErrInvalidType
		}

		game.Duration = evt.Clock
		game.Completed = true

		return nil
	default:
		return errors.Wrapf(ErrInvalidType, "Unhandled apply event: %d", result.EventType)
	}
}

// kill applies a kill event. The victim's death counter always moves. The
// killer's weapon counter only moves for a player-vs-player kill, a self kill
// goes onto the self kill list and an environmental kill onto the world list.
// An event naming an unregistered player or an untracked weapon is dropped
// whole, no partial counts.
func (game *Game) kill(evt KillEvt, server *Server) error {
	if _, registered := game.Deaths[evt.Victim]; !registered {
		return errors.Wrapf(ErrUnknownPlayer, "Unknown victim: %s", evt.Victim)
	}

	switch {
	case evt.Killer == evt.Victim:
		game.Suicides[evt.Killer] = append(game.Suicides[evt.Killer], evt.MeansOfDeath)
	case evt.Killer == WorldID:
		game.WorldKills = append(game.WorldKills, evt.Victim)
	default:
		weapons, registered := game.Weapons[evt.Killer]
		if !registered {
			return errors.Wrapf(ErrUnknownPlayer, "Unknown killer: %s", evt.Killer)
		}

		weapon := WeaponFromString(evt.MeansOfDeath)
		if weapon == UnknownWeapon {
			return errors.Wrapf(ErrMalformed, "Untracked weapon: %s", evt.MeansOfDeath)
		}

		weapons[weapon]++
		server.Frags++
	}

	game.Deaths[evt.Victim]++

	return nil
}

func (game *Game) ctf(evt CTFEvt) error {
	name, found := game.clients[evt.ClientID]
	if !found {
		return errors.Wrapf(ErrUnknownPlayer, "Unknown client id: %d", evt.ClientID)
	}

	game.CTF[name][evt.Event]++

	return nil
}

func (game *Game) award(evt AwardEvt) error {
	counters, registered := game.Awards[evt.Name]
	if !registered {
		return errors.Wrapf(ErrUnknownPlayer, "Unknown award player: %s", evt.Name)
	}

	counters[evt.Award]++

	return nil
}

// userinfo registers a player on first sight and rebinds the client id on
// later sightings. Join clock and counters are never reset for a name seen
// before, a reconnecting player keeps their accumulated match data.
func (game *Game) userinfo(evt UserinfoChangedEvt) {
	if _, seen := game.JoinTimes[evt.Name]; !seen {
		game.JoinTimes[evt.Name] = evt.Clock
		game.Suicides[evt.Name] = nil
		game.Deaths[evt.Name] = 0
		game.Weapons[evt.Name] = newWeaponCounters()
		game.Awards[evt.Name] = newAwardCounters()
		game.CTF[evt.Name] = newCTFCounters()
	}

	game.Handicaps[evt.Name] = evt.Handicap
	game.Teams[evt.Name] = evt.Team
	game.clients[evt.ClientID] = evt.Name
}

// score records one scoreboard row. Rank is the 1-based order score lines
// were seen in. The row also decides player validity, score lines are
// printed after the exit line so the match duration is known here.
func (game *Game) score(evt ScoreEvt) error {
	if _, registered := game.JoinTimes[evt.Name]; !registered {
		return errors.Wrapf(ErrUnknownPlayer, "Unknown scorer: %s", evt.Name)
	}

	game.Pings[evt.Name] = evt.Ping
	game.Ranks[evt.Name] = game.scorePos
	game.scorePos++

	earliest, _ := game.EarliestJoin()
	if PlayerValid(game.Duration, game.JoinTimes[evt.Name], earliest, game.minPlay) && !game.IsValid(evt.Name) {
		game.ValidPlayers = append(game.ValidPlayers, evt.Name)
	}

	return nil
}

func newWeaponCounters() map[Weapon]int {
	counters := make(map[Weapon]int, len(Weapons))
	for _, weapon := range Weapons {
		counters[weapon] = 0
	}

	return counters
}

func newAwardCounters() map[AwardType]int {
	counters := make(map[AwardType]int, len(AwardTypes))
	for _, award := range AwardTypes {
		counters[award] = 0
	}

	return counters
}

func newCTFCounters() map[CTFEvent]int {
	counters := make(map[CTFEvent]int, len(CTFEvents))
	for _, event := range CTFEvents {
		counters[event] = 0
	}

	return counters
}
