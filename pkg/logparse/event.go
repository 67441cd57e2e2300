package logparse

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

var (
	ErrMalformed = errors.New("Malformed event line")

	rxClock = regexp.MustCompile(`^(\d+):(\d{2})$`)
)

// ParseClock converts the leading "mm:ss" match clock of a log line into
// elapsed seconds. Minutes are unbounded, long matches roll past 99:59.
func ParseClock(value string) (int, error) {
	match := rxClock.FindStringSubmatch(value)
	if match == nil {
		return 0, errors.Wrapf(ErrMalformed, "Invalid clock: %s", value)
	}

	mins, errMins := strconv.Atoi(match[1])
	if errMins != nil {
		return 0, errors.Wrapf(ErrMalformed, "Invalid clock minutes: %s", value)
	}

	secs, errSecs := strconv.Atoi(match[2])
	if errSecs != nil {
		return 0, errors.Wrapf(ErrMalformed, "Invalid clock seconds: %s", value)
	}

	return mins*60 + secs, nil
}

// EmptyEvt is the base event for all other events. It just contains the
// elapsed match clock of the line, in seconds.
type EmptyEvt struct {
	Clock int `mapstructure:"clock"`
}

type WarmupEvt EmptyEvt

type ShutdownEvt EmptyEvt

// InitGameEvt carries the values pulled from the init line's backslash
// delimited key/value blob.
type InitGameEvt struct {
	EmptyEvt `mapstructure:",squash"`
	MapName  string   `mapstructure:"mapname"`
	GameType GameType `mapstructure:"g_gametype"`
	Hostname string   `mapstructure:"sv_hostname"`
}

// ExitEvt marks a completed match. The line clock is the match duration.
type ExitEvt struct {
	EmptyEvt `mapstructure:",squash"`
	Reason   string `mapstructure:"reason"`
}

type KillEvt struct {
	EmptyEvt `mapstructure:",squash"`
	Killer   string `mapstructure:"killer"`
	Victim   string `mapstructure:"victim"`
	// MeansOfDeath is the raw engine token with the MOD_ prefix stripped,
	// eg "ROCKET_SPLASH". Resolution to a Weapon code happens on apply since
	// self kills keep the full token.
	MeansOfDeath string `mapstructure:"weapon"`
}

type CTFEvt struct {
	EmptyEvt `mapstructure:",squash"`
	ClientID int      `mapstructure:"pid"`
	Team     int      `mapstructure:"team"`
	Event    CTFEvent `mapstructure:"event"`
}

type AwardEvt struct {
	EmptyEvt `mapstructure:",squash"`
	Name     string    `mapstructure:"name"`
	Award    AwardType `mapstructure:"award"`
}

type UserinfoChangedEvt struct {
	EmptyEvt `mapstructure:",squash"`
	ClientID int    `mapstructure:"pid"`
	Name     string `mapstructure:"n"`
	Handicap int    `mapstructure:"hc"`
	Team     int    `mapstructure:"t"`
}

type SayEvt struct {
	Name string `mapstructure:"name"`
	Msg  string `mapstructure:"msg"`
}

type ScoreEvt struct {
	EmptyEvt `mapstructure:",squash"`
	Score    int    `mapstructure:"score"`
	Ping     int    `mapstructure:"ping"`
	ClientID int    `mapstructure:"pid"`
	Name     string `mapstructure:"name"`
}

type TeamScoreEvt struct {
	EmptyEvt `mapstructure:",squash"`
	Red      int `mapstructure:"red"`
	Blue     int `mapstructure:"blue"`
}

func decodeClock() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, d any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int {
			return d, nil
		}

		value, ok := d.(string)
		if !ok || !strings.Contains(value, ":") {
			return d, nil
		}

		seconds, errClock := ParseClock(value)
		if errClock != nil {
			return d, nil
		}

		return seconds, nil
	}
}

func decodeAward() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, d any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(AwardType("")) {
			return d, nil
		}

		var award AwardType
		if !AwardFromString(d.(string), &award) {
			return d, errors.Wrapf(ErrMalformed, "Unknown award: %v", d)
		}

		return award, nil
	}
}

func decodeCTFEvent() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, d any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(FlagTaken) {
			return d, nil
		}

		code, errCode := strconv.Atoi(d.(string))
		if errCode != nil || code < int(FlagTaken) || code > int(FlagCarrierFrag) {
			return d, errors.Wrapf(ErrMalformed, "Unknown flag event: %v", d)
		}

		return CTFEvent(code), nil
	}
}

// Unmarshal transforms a map of extracted line values into the typed event
// passed in, eg: {"mapname": "q3dm17"} -> InitGameEvt.
func Unmarshal(input any, output any) error {
	decoder, errDecoder := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decodeClock(),
			decodeAward(),
			decodeCTFEvent(),
		),
		Result:           output,
		WeaklyTypedInput: true, // Lets us do str -> int easily
		Squash:           true,
	})
	if errDecoder != nil {
		return errors.Wrap(errDecoder, "Failed to create decoder")
	}

	if errDecode := decoder.Decode(input); errDecode != nil {
		return errors.Wrap(ErrMalformed, errDecode.Error())
	}

	return nil
}
