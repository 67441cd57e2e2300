// Package logparse parses Quake 3 / OpenArena server console logs into known
// events and values, and accumulates them into per-match statistics.
//
// Classification is done with fixed literal markers, surrounding spaces
// included, so that eg. " say:" can never match a player nick containing the
// word. Extraction is lenient on purpose, server logs are noisy and a single
// damaged line must never abort a run.
package logparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type parserType struct {
	// marker is the literal classification substring of the line category
	marker string
	// rx extracts the category fields, nil when nothing is extracted
	rx   *regexp.Regexp
	kind EventType
}

// Every extracting pattern starts with the elapsed match clock, eg "  0:00 ".
const rxClockPrefix = `^\s*(?P<clock>\d+:\d{2})\s+`

var (
	rxInitGame = regexp.MustCompile(rxClockPrefix + `InitGame:\s(?P<blob>\\.+)$`)
	rxKill     = regexp.MustCompile(rxClockPrefix + `Kill:\s\d+\s\d+\s\d+:\s(?P<killer>.+?) killed (?P<victim>.+) by MOD_(?P<weapon>\S+)$`)
	rxCTF      = regexp.MustCompile(rxClockPrefix + `CTF:\s(?P<pid>\d+)\s(?P<team>\d+)\s(?P<event>\d+):`)
	rxAward    = regexp.MustCompile(rxClockPrefix + `Award:\s\d+\s\d+:\s(?P<name>.+) gained the (?P<award>[A-Z]+) award!`)
	rxUserinfo = regexp.MustCompile(rxClockPrefix + `ClientUserinfoChanged:\s(?P<pid>\d+)\s(?P<blob>.+)$`)
	rxSay      = regexp.MustCompile(rxClockPrefix + `say:\s?(?P<name>[^:]+):\s?(?P<msg>.*)$`)
	rxScore    = regexp.MustCompile(rxClockPrefix + `score:\s(?P<score>-?\d+)\s+ping:\s(?P<ping>-?\d+)\s+client:\s(?P<pid>\d+)\s(?P<name>.+)$`)
	rxRedBlue  = regexp.MustCompile(rxClockPrefix + `red:(?P<red>\d+)\s+blue:(?P<blue>\d+)`)
	rxExit     = regexp.MustCompile(rxClockPrefix + `Exit:\s(?P<reason>\w+ hit)`)
)

// Results holds the outcome of classifying and extracting a single log line
type Results struct {
	EventType EventType
	Event     any
}

// LogParser is the read-only classification and extraction table. Build one
// with New before processing begins and share it freely, Parse never mutates.
type LogParser struct {
	parsers []parserType
}

func New() *LogParser {
	// Most frequent line types first: Item >> Kill > Userinfo > Award
	return &LogParser{parsers: []parserType{
		{" Item: ", nil, Item},
		{" Kill: ", rxKill, Kill},
		{" CTF: ", rxCTF, CTF},
		{" Award: ", rxAward, Award},
		{"ClientUserinfoChanged: ", rxUserinfo, UserinfoChanged},
		{" say:", rxSay, Say},
		{" score: ", rxScore, Score},
		{" red:", rxRedBlue, TeamScore},
		{"Exit: Timelimit hit", rxExit, Exit},
		{"Exit: Fraglimit hit", rxExit, Exit},
		{"Exit: Capturelimit hit", rxExit, Exit},
		{" ShutdownGame:", nil, Shutdown},
		{" InitGame: ", rxInitGame, InitGame},
		{" Warmup:", nil, Warmup},
	}}
}

// Parse classifies a raw log line and extracts its typed event.
//
// A line matching no marker returns IgnoredMsg with a nil error. A line whose
// marker matched but whose fields could not be extracted returns an error
// wrapping ErrMalformed, so callers can tell "not for us" apart from
// "damaged line".
func (parser *LogParser) Parse(line string) (*Results, error) {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

	for _, matcher := range parser.parsers {
		if !strings.Contains(line, matcher.marker) {
			continue
		}

		if matcher.rx == nil {
			return &Results{matcher.kind, nil}, nil
		}

		values, found := reSubMatchMap(matcher.rx, line)
		if !found {
			return nil, errors.Wrapf(ErrMalformed, "Failed to extract fields: %s", line)
		}

		event, errEvent := parser.decode(matcher.kind, values)
		if errEvent != nil {
			return nil, errEvent
		}

		return &Results{matcher.kind, event}, nil
	}

	return &Results{IgnoredMsg, nil}, nil
}

func (parser *LogParser) decode(kind EventType, values map[string]any) (any, error) {
	switch kind {
	case InitGame:
		return decodeInitGame(values)
	case Kill:
		var evt KillEvt

		return evt, Unmarshal(values, &evt)
	case CTF:
		var evt CTFEvt

		return evt, Unmarshal(values, &evt)
	case Award:
		var evt AwardEvt

		return evt, Unmarshal(values, &evt)
	case UserinfoChanged:
		return decodeUserinfo(values)
	case Say:
		var evt SayEvt

		return evt, Unmarshal(values, &evt)
	case Score:
		var evt ScoreEvt

		return evt, Unmarshal(values, &evt)
	case TeamScore:
		var evt TeamScoreEvt

		return evt, Unmarshal(values, &evt)
	case Exit:
		var evt ExitEvt

		return evt, Unmarshal(values, &evt)
	default:
		return nil, errors.Wrapf(ErrMalformed, "Unhandled event type: %d", kind)
	}
}

// decodeInitGame pulls the interesting keys out of the init line's
// `\key\value\key\value` configuration blob.
func decodeInitGame(values map[string]any) (any, error) {
	blob, ok := values["blob"].(string)
	if !ok {
		return nil, errors.Wrap(ErrMalformed, "Missing init blob")
	}

	info := parseInfoString(blob)

	mapName, foundMap := info["mapname"]
	if !foundMap {
		return nil, errors.Wrap(ErrMalformed, "Init blob missing mapname")
	}

	hostname, foundHost := info["sv_hostname"]
	if !foundHost {
		return nil, errors.Wrap(ErrMalformed, "Init blob missing sv_hostname")
	}

	// Default to DM when the server reports garbage
	if _, errGT := strconv.Atoi(info["g_gametype"]); errGT != nil {
		info["g_gametype"] = "0"
	}

	var evt InitGameEvt

	return evt, Unmarshal(map[string]any{
		"clock":       values["clock"],
		"mapname":     mapName,
		"sv_hostname": hostname,
		"g_gametype":  info["g_gametype"],
	}, &evt)
}

// decodeUserinfo pulls name, team and handicap out of a userinfo blob such as
// `n\Foo\t\1\model\sarge\hc\100\w\0\l\0`.
func decodeUserinfo(values map[string]any) (any, error) {
	blob, ok := values["blob"].(string)
	if !ok {
		return nil, errors.Wrap(ErrMalformed, "Missing userinfo blob")
	}

	info := parseInfoString(blob)

	name, foundName := info["n"]
	if !foundName || name == "" {
		return nil, errors.Wrap(ErrMalformed, "Userinfo missing name")
	}

	team, foundTeam := info["t"]
	if !foundTeam {
		return nil, errors.Wrap(ErrMalformed, "Userinfo missing team")
	}

	// Handicap is only present when a player actually set one
	handicap, foundHC := info["hc"]
	if !foundHC || handicap == "" {
		handicap = "100"
	}

	var evt UserinfoChangedEvt

	return evt, Unmarshal(map[string]any{
		"clock": values["clock"],
		"pid":   values["pid"],
		"n":     name,
		"t":     team,
		"hc":    handicap,
	}, &evt)
}

// parseInfoString splits a `\key\value\key\value` blob, with or without the
// leading backslash, into a map. A trailing key without a value is dropped.
func parseInfoString(blob string) map[string]string {
	blob = strings.TrimPrefix(blob, `\`)

	var (
		parts = strings.Split(blob, `\`)
		info  = make(map[string]string, len(parts)/2)
	)

	for i := 0; i+1 < len(parts); i += 2 {
		info[parts[i]] = parts[i+1]
	}

	return info
}

func reSubMatchMap(r *regexp.Regexp, str string) (map[string]any, bool) {
	match := r.FindStringSubmatch(str)
	if match == nil {
		return nil, false
	}

	subMatchMap := make(map[string]any)

	for i, name := range r.SubexpNames() {
		if i != 0 && name != "" {
			subMatchMap[name] = match[i]
		}
	}

	return subMatchMap, true
}
