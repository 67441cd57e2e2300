package logparse

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const exampleLog = `  0:00 ------------------------------------------------------------
  0:00 InitGame: \sv_hostname\The Lost Arena\g_gametype\0\mapname\q3dm17\fraglimit\20\timelimit\10\version\ioq3 1.36
  0:00 Warmup:
  0:02 ClientConnect: 0
  0:02 ClientUserinfoChanged: 0 n\Foo\t\0\model\sarge\hc\95\w\0\l\0
  0:05 ClientUserinfoChanged: 1 n\^2Bar\t\0\model\grunt\w\0\l\0
  0:20 Item: 0 weapon_rocketlauncher
  0:30 Kill: 0 1 6: Foo killed ^2Bar by MOD_ROCKET
  0:41 Kill: 0 1 7: Foo killed ^2Bar by MOD_ROCKET_SPLASH
  1:02 Kill: 1022 1 19: <world> killed ^2Bar by MOD_FALLING
  2:03 say: Foo: good game so far
  3:00 Award: 0 2: Foo gained the EXCELLENT award!
  5:12 CTF: 0 1 0: Foo got the BLUE flag!
 10:00 Exit: Timelimit hit.
 10:00 score: 12  ping: 48  client: 0 Foo
 10:00 red:8  blue:5
 10:02 ShutdownGame:`

func TestParse(t *testing.T) {
	logEntries := strings.Split(exampleLog, "\n")
	tests := []struct {
		T EventType // Expected type
		E any       // Expected event
	}{
		{IgnoredMsg, nil},
		{InitGame, InitGameEvt{EmptyEvt{0}, "q3dm17", FFA, "The Lost Arena"}},
		{Warmup, nil},
		{IgnoredMsg, nil},
		{UserinfoChanged, UserinfoChangedEvt{EmptyEvt{2}, 0, "Foo", 95, 0}},
		{UserinfoChanged, UserinfoChangedEvt{EmptyEvt{5}, 1, "^2Bar", 100, 0}},
		{Item, nil},
		{Kill, KillEvt{EmptyEvt{30}, "Foo", "^2Bar", "ROCKET"}},
		{Kill, KillEvt{EmptyEvt{41}, "Foo", "^2Bar", "ROCKET_SPLASH"}},
		{Kill, KillEvt{EmptyEvt{62}, "<world>", "^2Bar", "FALLING"}},
		{Say, SayEvt{"Foo", "good game so far"}},
		{Award, AwardEvt{EmptyEvt{180}, "Foo", AwardExcellent}},
		{CTF, CTFEvt{EmptyEvt{312}, 0, 1, FlagTaken}},
		{Exit, ExitEvt{EmptyEvt{600}, "Timelimit hit"}},
		{Score, ScoreEvt{EmptyEvt{600}, 12, 48, 0, "Foo"}},
		{TeamScore, TeamScoreEvt{EmptyEvt{600}, 8, 5}},
		{Shutdown, nil},
	}

	parser := New()

	require.Equal(t, len(tests), len(logEntries))

	for i, test := range tests {
		result, errResult := parser.Parse(logEntries[i])
		require.NoErrorf(t, errResult, "Failed to parse line %d: %s", i, logEntries[i])
		require.Equalf(t, test.T, result.EventType, "Wrong type for line %d: %s", i, logEntries[i])
		require.Equalf(t, test.E, result.Event, "Wrong values for line %d: %s", i, logEntries[i])
	}
}

func TestParseMalformed(t *testing.T) {
	parser := New()

	// Marker matched but the fields are damaged
	for _, line := range []string{
		`  0:30 Kill: 0 1 6: truncated garbage`,
		`  5:12 CTF: x y z: nonsense`,
		`  3:00 Award: 0 2: Foo gained the BOGUS award!`,
		`  0:02 ClientUserinfoChanged: 0 model\sarge\w\0`,
		`  0:00 InitGame: \g_gametype\0\fraglimit\20`,
	} {
		result, errResult := parser.Parse(line)
		require.Errorf(t, errResult, "Expected extraction failure: %s", line)
		require.Truef(t, errors.Is(errResult, ErrMalformed), "Expected ErrMalformed: %s", line)
		require.Nil(t, result)
	}

	// No marker at all is not an error, just not ours
	result, errResult := parser.Parse(`  0:07 ClientBegin: 0`)
	require.NoError(t, errResult)
	require.Equal(t, IgnoredMsg, result.EventType)
}

func TestParseClock(t *testing.T) {
	for clock, expected := range map[string]int{
		"0:00":   0,
		"5:40":   340,
		"10:14":  614,
		"102:30": 6150,
	} {
		seconds, errClock := ParseClock(clock)
		require.NoError(t, errClock)
		require.Equal(t, expected, seconds)
	}

	_, errClock := ParseClock("nope")
	require.Error(t, errClock)
}

func TestWeaponFromString(t *testing.T) {
	require.Equal(t, Rocket, WeaponFromString("ROCKET"))
	require.Equal(t, Rocket, WeaponFromString("ROCKET_SPLASH"))
	require.Equal(t, Grenade, WeaponFromString("GRENADE_SPLASH"))
	require.Equal(t, BFG, WeaponFromString("BFG10K"))
	require.Equal(t, Telefrag, WeaponFromString("TELEFRAG"))
	require.Equal(t, UnknownWeapon, WeaponFromString("FALLING"))
	require.Equal(t, UnknownWeapon, WeaponFromString(""))
}
