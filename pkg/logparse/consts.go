package logparse

// EventType defines a known, parsable log line category
type EventType int

const (
	// IgnoredMsg is used for lines we know about but do not extract
	IgnoredMsg EventType = 0
	// UnknownMsg is for any unexpected line formats
	UnknownMsg EventType = 1

	// In-match events

	Kill            EventType = 10
	CTF             EventType = 11
	Award           EventType = 12
	UserinfoChanged EventType = 13
	Say             EventType = 14
	Score           EventType = 15
	TeamScore       EventType = 16
	// Item lines are classified but never extracted. They are by far the most
	// frequent line type and nothing downstream consumes them.
	Item EventType = 17

	// Match boundary events

	InitGame EventType = 100
	Warmup   EventType = 101
	Exit     EventType = 102
	Shutdown EventType = 103
)

// WorldID is the killer name the engine uses for environmental deaths
// (lava, falling, trigger_hurt, ...).
const WorldID = "<world>"

// Weapon is the fixed 3 character means-of-death code tracked per player.
// Splash variants share the code of their base weapon, eg. MOD_ROCKET and
// MOD_ROCKET_SPLASH both count towards ROC.
type Weapon string

const (
	Shotgun    Weapon = "SHO"
	Gauntlet   Weapon = "GAU"
	Machinegun Weapon = "MAC"
	Grenade    Weapon = "GRE"
	Rocket     Weapon = "ROC"
	Plasma     Weapon = "PLA"
	Railgun    Weapon = "RAI"
	Lightning  Weapon = "LIG"
	Nailgun    Weapon = "NAI"
	Chaingun   Weapon = "CHA"
	BFG        Weapon = "BFG"
	Telefrag   Weapon = "TEL"

	UnknownWeapon Weapon = ""
)

// Weapons is the tracked weapon set in report column order.
var Weapons = []Weapon{
	Shotgun, Gauntlet, Machinegun, Grenade, Rocket, Plasma,
	Railgun, Lightning, Nailgun, Chaingun, BFG, Telefrag,
}

// WeaponFromString maps a means-of-death token (with the MOD_ prefix already
// stripped, eg "ROCKET_SPLASH") onto its weapon code. Returns UnknownWeapon
// for anything outside the tracked set.
func WeaponFromString(mod string) Weapon {
	if len(mod) < 3 {
		return UnknownWeapon
	}

	code := Weapon(mod[0:3])
	for _, known := range Weapons {
		if code == known {
			return code
		}
	}

	return UnknownWeapon
}

// GameType is the g_gametype server setting
type GameType int

const (
	FFA GameType = iota
	Duel
	SingleDM
	TDM
	CaptureTheFlag
	OneFlag
	Overload
	Harvester
	Elimination
	CTFElimination
	LastManStanding
	DoubleElimination
	Domination
)

var gameTypeNames = map[GameType]string{
	FFA:               "Death Match",
	Duel:              "1 vs 1",
	SingleDM:          "Single Death Match",
	TDM:               "Team Death Match",
	CaptureTheFlag:    "Capture the Flag",
	OneFlag:           "One-Flag CTF",
	Overload:          "Overload",
	Harvester:         "Harvester",
	Elimination:       "Elimination",
	CTFElimination:    "CTF Elimination",
	LastManStanding:   "Last Man Standing",
	DoubleElimination: "Double Elimination",
	Domination:        "Domination",
}

func (gt GameType) String() string {
	name, found := gameTypeNames[gt]
	if !found {
		return "Unknown"
	}

	return name
}

// TeamBased is true for gametypes where winning is decided by the team score
// pair instead of the individual scoreboard rank.
func (gt GameType) TeamBased() bool {
	return gt == TDM || gt == CaptureTheFlag
}

// Team slot numbers as used by the t\ userinfo key
const (
	TeamFree      = 0
	TeamRed       = 1
	TeamBlue      = 2
	TeamSpectator = 3
)

// AwardType is the single letter code of an in-game medal
type AwardType string

const (
	AwardAssist     AwardType = "A"
	AwardCapture    AwardType = "C"
	AwardDefence    AwardType = "D"
	AwardExcellent  AwardType = "E"
	AwardImpressive AwardType = "I"
)

// AwardTypes is the tracked medal set
var AwardTypes = []AwardType{
	AwardAssist, AwardCapture, AwardDefence, AwardExcellent, AwardImpressive,
}

// AwardFromString maps the full medal name from an Award line (eg "EXCELLENT")
// onto its letter code, false when the medal is not tracked.
func AwardFromString(name string, award *AwardType) bool {
	if name == "" {
		return false
	}

	code := AwardType(name[0:1])
	for _, known := range AwardTypes {
		if code == known {
			*award = code

			return true
		}
	}

	return false
}

// CTFEvent is a numeric flag event code from a CTF line
type CTFEvent int

const (
	FlagTaken CTFEvent = iota
	FlagCapture
	FlagReturn
	FlagCarrierFrag
)

// CTFEvents is the tracked flag event set
var CTFEvents = []CTFEvent{FlagTaken, FlagCapture, FlagReturn, FlagCarrierFrag}
