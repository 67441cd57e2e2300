package stats

import (
	"math/rand"
	"sort"

	"github.com/leighmacdonald/q3stats/pkg/logparse"
)

// ServerSummary heads the report with the process wide totals
type ServerSummary struct {
	Hostname string `json:"hostname"`
	GameType string `json:"game_type"`
	Time     int    `json:"time"`
	Frags    int    `json:"frags"`
}

type MainRow struct {
	Name       string  `json:"name"`
	Games      int     `json:"games"`
	Won        int     `json:"won"`
	Time       int     `json:"time"`
	Handicap   float64 `json:"handicap"`
	PingMin    int     `json:"ping_min"`
	PingAvg    float64 `json:"ping_avg"`
	PingMax    int     `json:"ping_max"`
	Frags      int     `json:"frags"`
	Deaths     int     `json:"deaths"`
	Suicides   int     `json:"suicides"`
	WorldFrags int     `json:"world_frags"`
	Excellent  int     `json:"excellent"`
	Impressive int     `json:"impressive"`
}

type RatioRow struct {
	Name             string  `json:"name"`
	WonPct           float64 `json:"won_pct"`
	FragsPerDeath    float64 `json:"frags_per_death"`
	FragsPerHour     float64 `json:"frags_per_hour"`
	FragsPerGame     float64 `json:"frags_per_game"`
	DeathsPerHour    float64 `json:"deaths_per_hour"`
	DeathsPerGame    float64 `json:"deaths_per_game"`
	AccidentsPerHour float64 `json:"accidents_per_hour"`
	AccidentsPerGame float64 `json:"accidents_per_game"`
	Efficiency       float64 `json:"efficiency"`
}

// WeaponRow holds each tracked weapon's share of the player's career frags
// in percent, indexed parallel to logparse.Weapons.
type WeaponRow struct {
	Name  string    `json:"name"`
	Usage []float64 `json:"usage"`
}

type CTFRow struct {
	Name         string `json:"name"`
	Taken        int    `json:"taken"`
	Captures     int    `json:"captures"`
	Returns      int    `json:"returns"`
	CarrierFrags int    `json:"carrier_frags"`
	Defence      int    `json:"defence"`
	Assist       int    `json:"assist"`
	Capture      int    `json:"capture"`
}

// Report is the complete in-memory output of a run. Rendering it to any
// concrete format is somebody else's job.
type Report struct {
	Server  ServerSummary    `json:"server"`
	Main    []MainRow        `json:"main"`
	Ratios  []RatioRow       `json:"ratios"`
	Weapons []WeaponRow      `json:"weapons"`
	CTF     []CTFRow         `json:"ctf,omitempty"`
	Quotes  []logparse.Quote `json:"quotes"`
}

type ReportOptions struct {
	// GameTypeOverride replaces the parsed gametype name in the summary,
	// useful for mixed logs. The ctf/dm shorthands map onto their canonical
	// names.
	GameTypeOverride string
	CTFTable         bool
	QuoteCount       int
}

// GameTypeName resolves the human readable gametype name, honouring the
// override string.
func GameTypeName(gameType logparse.GameType, override string) string {
	switch override {
	case "":
		return gameType.String()
	case "ctf", "CTF":
		return logparse.CaptureTheFlag.String()
	case "dm", "DM":
		return logparse.FFA.String()
	default:
		return override
	}
}

// CollectQuotes merges the distinct quote sets of every retained match.
// Order is deterministic so identical logs produce identical pools.
func CollectQuotes(games []*logparse.Game) []logparse.Quote {
	distinct := map[logparse.Quote]struct{}{}

	for _, game := range games {
		for quote := range game.Quotes {
			distinct[quote] = struct{}{}
		}
	}

	quotes := make([]logparse.Quote, 0, len(distinct))
	for quote := range distinct {
		quotes = append(quotes, quote)
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Name != quotes[j].Name {
			return quotes[i].Name < quotes[j].Name
		}

		return quotes[i].Message < quotes[j].Message
	})

	return quotes
}

// BuildReport derives every report view from the ranked career set. Pure
// numeric derivation, every degenerate denominator is guarded.
func BuildReport(server *logparse.Server, careers []*PlayerCareer, quotes []logparse.Quote, opts ReportOptions) *Report {
	report := &Report{
		Server: ServerSummary{
			Hostname: server.Hostname,
			GameType: GameTypeName(server.GameType, opts.GameTypeOverride),
			Time:     server.Time,
			Frags:    server.Frags,
		},
		Quotes: sampleQuotes(quotes, opts.QuoteCount),
	}

	for _, career := range careers {
		report.Main = append(report.Main, mainRow(career))
		report.Ratios = append(report.Ratios, ratioRow(career))
		report.Weapons = append(report.Weapons, weaponRow(career))
	}

	if opts.CTFTable && hasCTFData(careers) {
		for _, career := range careers {
			report.CTF = append(report.CTF, ctfRow(career))
		}
	}

	return report
}

func mainRow(career *PlayerCareer) MainRow {
	return MainRow{
		Name:       career.Name,
		Games:      career.Games,
		Won:        career.Won,
		Time:       career.Time,
		Handicap:   career.Handicap,
		PingMin:    career.PingMin,
		PingAvg:    career.PingAvg,
		PingMax:    career.PingMax,
		Frags:      career.Frags,
		Deaths:     career.Deaths,
		Suicides:   career.Suicides,
		WorldFrags: career.WorldFrags,
		Excellent:  career.Awards[logparse.AwardExcellent],
		Impressive: career.Awards[logparse.AwardImpressive],
	}
}

func ratioRow(career *PlayerCareer) RatioRow {
	var (
		games     = float64(career.Games)
		frags     = float64(career.Frags)
		deaths    = float64(career.Deaths)
		accidents = float64(career.Suicides + career.WorldFrags)
		row       = RatioRow{
			Name: career.Name,
			// Add-one smoothing keeps the zero deaths case finite
			FragsPerDeath: frags / (1 + deaths),
			Efficiency:    100 * frags / (1 + frags + deaths),
		}
	)

	if career.Games > 0 {
		row.WonPct = 100 * float64(career.Won) / games
		row.FragsPerGame = frags / games
		row.DeathsPerGame = deaths / games
		row.AccidentsPerGame = accidents / games
	}

	if career.Time > 0 {
		hours := float64(career.Time) / 3600
		row.FragsPerHour = frags / hours
		row.DeathsPerHour = deaths / hours
		row.AccidentsPerHour = accidents / hours
	}

	return row
}

func weaponRow(career *PlayerCareer) WeaponRow {
	row := WeaponRow{
		Name:  career.Name,
		Usage: make([]float64, len(logparse.Weapons)),
	}

	if career.Frags == 0 {
		return row
	}

	for index, weapon := range logparse.Weapons {
		row.Usage[index] = 100 * float64(career.Weapons[weapon]) / float64(career.Frags)
	}

	return row
}

func ctfRow(career *PlayerCareer) CTFRow {
	return CTFRow{
		Name:         career.Name,
		Taken:        career.CTF[logparse.FlagTaken],
		Captures:     career.CTF[logparse.FlagCapture],
		Returns:      career.CTF[logparse.FlagReturn],
		CarrierFrags: career.CTF[logparse.FlagCarrierFrag],
		Defence:      career.Awards[logparse.AwardDefence],
		Assist:       career.Awards[logparse.AwardAssist],
		Capture:      career.Awards[logparse.AwardCapture],
	}
}

func hasCTFData(careers []*PlayerCareer) bool {
	for _, career := range careers {
		for _, count := range career.CTF {
			if count > 0 {
				return true
			}
		}
	}

	return false
}

// sampleQuotes draws count quotes independently, with replacement, the same
// quote may repeat within one sample. The sample is the only permitted
// source of run to run variation.
func sampleQuotes(quotes []logparse.Quote, count int) []logparse.Quote {
	if len(quotes) == 0 || count <= 0 {
		return nil
	}

	sample := make([]logparse.Quote, count)
	for i := range sample {
		sample[i] = quotes[rand.Intn(len(quotes))]
	}

	return sample
}
