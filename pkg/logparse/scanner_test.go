package logparse_test

import (
	"strings"
	"testing"

	"github.com/leighmacdonald/q3stats/pkg/logparse"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const ffaLog = `  0:00 ------------------------------------------------------------
  0:00 InitGame: \sv_hostname\The Lost Arena\g_gametype\0\mapname\q3dm17\fraglimit\20\timelimit\10
  0:00 ClientConnect: 0
  0:00 ClientUserinfoChanged: 0 n\Foo\t\0\model\sarge\hc\95\w\0\l\0
  0:05 ClientConnect: 1
  0:05 ClientUserinfoChanged: 1 n\Bar\t\0\model\grunt\w\0\l\0
  0:20 Item: 0 weapon_rocketlauncher
  0:30 Kill: 0 1 6: Foo killed Bar by MOD_ROCKET
  0:41 Kill: 0 1 7: Foo killed Bar by MOD_ROCKET_SPLASH
  1:02 Kill: 1022 1 19: <world> killed Bar by MOD_FALLING
  1:10 Kill: 1 1 7: Bar killed Bar by MOD_ROCKET_SPLASH
  1:30 Kill: 1 0 10: Bar killed Foo by MOD_RAILGUN
  2:03 say: Foo: good game so far
  2:04 say: Foo: good game so far
  3:00 Award: 1 2: Foo gained the EXCELLENT award!
  9:30 Kill: 0 2 5: Foo killed Baz by MOD_LIGHTNING
 10:00 Exit: Timelimit hit.
 10:00 score: 12  ping: 48  client: 0 Foo
 10:00 score: 5  ping: 90  client: 1 Bar
 10:00 ShutdownGame:`

func TestProcess(t *testing.T) {
	server, games, errProcess := logparse.NewScanner(0.5).Process(strings.NewReader(ffaLog))
	require.NoError(t, errProcess)
	require.Len(t, games, 1)

	require.Equal(t, "The Lost Arena", server.Hostname)
	require.Equal(t, logparse.FFA, server.GameType)
	require.Equal(t, 600, server.Time)
	// The kill on the never registered Baz is dropped whole
	require.Equal(t, 3, server.Frags)

	game := games[0]
	require.Equal(t, 1, game.Number)
	require.Equal(t, "q3dm17", game.MapName)
	require.True(t, game.Completed)
	require.Equal(t, 600, game.Duration)
	require.Equal(t, 2, game.PlayerCount())

	// Sub-type frags fold into their base weapon column
	require.Equal(t, 2, game.Weapons["Foo"][logparse.Rocket])
	require.Equal(t, 2, game.Frags("Foo"))
	require.Equal(t, 1, game.Deaths["Foo"])
	require.Equal(t, 95, game.Handicaps["Foo"])
	require.Equal(t, 1, game.Awards["Foo"][logparse.AwardExcellent])

	require.Equal(t, 1, game.Weapons["Bar"][logparse.Railgun])
	require.Equal(t, 4, game.Deaths["Bar"])
	require.Equal(t, []string{"ROCKET_SPLASH"}, game.Suicides["Bar"])
	require.Equal(t, 1, game.WorldFrags("Bar"))

	require.Equal(t, map[string]int{"Foo": 1, "Bar": 2}, game.Ranks)
	require.Equal(t, map[string]int{"Foo": 48, "Bar": 90}, game.Pings)
	require.ElementsMatch(t, []string{"Foo", "Bar"}, game.ValidPlayers)

	// Repeated chatter collapses to one quote
	require.Len(t, game.Quotes, 1)
	require.Contains(t, game.Quotes, logparse.Quote{Name: "Foo", Message: "good game so far"})
}

func TestProcessWarmupExcluded(t *testing.T) {
	warmupLog := `  0:00 InitGame: \sv_hostname\X\g_gametype\0\mapname\q3dm6
  0:00 Warmup:
  0:03 ClientUserinfoChanged: 0 n\Foo\t\0\hc\100
  0:05 ClientUserinfoChanged: 1 n\Bar\t\0\hc\100
  0:10 Kill: 0 1 10: Foo killed Bar by MOD_RAILGUN
  0:20 ------------------------------------------------------------
  0:20 InitGame: \sv_hostname\X\g_gametype\0\mapname\q3dm6
  0:20 ClientUserinfoChanged: 0 n\Foo\t\0\hc\100
  5:00 Exit: Fraglimit hit.
  5:00 score: 20  ping: 10  client: 0 Foo
  5:01 ShutdownGame:`

	server, games, errProcess := logparse.NewScanner(0.5).Process(strings.NewReader(warmupLog))
	require.NoError(t, errProcess)
	require.Len(t, games, 1)

	// Nothing from the warm-up segment leaks into the totals
	require.Equal(t, 0, server.Frags)
	require.Equal(t, 280, server.Time)

	require.Equal(t, 1, games[0].PlayerCount())
	require.Equal(t, []string{"Foo"}, games[0].ValidPlayers)
}

func TestProcessDiscards(t *testing.T) {
	// First match registered nobody, second has no termination before the
	// next init line, only the third counts.
	discardLog := ` 10:00 Exit: Timelimit hit.
  0:00 InitGame: \sv_hostname\MyServer\g_gametype\0\mapname\q3dm6
 10:00 Exit: Timelimit hit.
 10:00 ShutdownGame:
  0:00 InitGame: \sv_hostname\MyServer\g_gametype\0\mapname\q3dm7
  0:01 ClientUserinfoChanged: 0 n\Foo\t\0\hc\100
  0:30 InitGame: \sv_hostname\MyServer\g_gametype\0\mapname\q3dm8
  0:31 ClientUserinfoChanged: 0 n\Foo\t\0\hc\100
  5:00 Exit: Timelimit hit.
  5:00 score: 3  ping: 30  client: 0 Foo
  5:00 ShutdownGame:`

	server, games, errProcess := logparse.NewScanner(0.5).Process(strings.NewReader(discardLog))
	require.NoError(t, errProcess)
	require.Len(t, games, 1)
	require.Equal(t, "q3dm8", games[0].MapName)
	require.Equal(t, 300-31, server.Time)
}

func TestProcessNoValidGames(t *testing.T) {
	emptyLog := `  0:00 InitGame: \sv_hostname\MyServer\g_gametype\0\mapname\q3dm6
 10:00 Exit: Timelimit hit.
 10:00 ShutdownGame:`

	server, games, errProcess := logparse.NewScanner(0.5).Process(strings.NewReader(emptyLog))
	require.Error(t, errProcess)
	require.True(t, errors.Is(errProcess, logparse.ErrNoValidGames))
	require.Nil(t, server)
	require.Nil(t, games)
}

func TestProcessCTF(t *testing.T) {
	ctfLog := `  0:00 InitGame: \sv_hostname\CTF Night\g_gametype\4\mapname\q3ctf2
  0:01 ClientUserinfoChanged: 0 n\Foo\t\1\hc\100
  0:02 ClientUserinfoChanged: 1 n\Bar\t\2\hc\100
  1:00 CTF: 0 2 0: Foo got the BLUE flag!
  1:20 CTF: 0 1 1: Foo captured the flag!
  2:00 CTF: 1 2 2: Bar returned the BLUE flag!
  2:30 Kill: 1 0 10: Bar killed Foo by MOD_RAILGUN
  2:31 CTF: 1 2 3: Bar fragged RED's flag carrier!
 20:00 Exit: Capturelimit hit.
 20:00 red:8  blue:5
 20:00 score: 15  ping: 20  client: 0 Foo
 20:00 score: 9  ping: 25  client: 1 Bar
 20:00 ShutdownGame:`

	server, games, errProcess := logparse.NewScanner(0.5).Process(strings.NewReader(ctfLog))
	require.NoError(t, errProcess)
	require.Len(t, games, 1)
	require.Equal(t, logparse.CaptureTheFlag, server.GameType)
	require.True(t, server.GameType.TeamBased())

	game := games[0]
	require.Equal(t, &logparse.TeamScores{Red: 8, Blue: 5}, game.Scores)
	require.Equal(t, logparse.TeamRed, game.Teams["Foo"])
	require.Equal(t, logparse.TeamBlue, game.Teams["Bar"])

	require.Equal(t, 1, game.CTF["Foo"][logparse.FlagTaken])
	require.Equal(t, 1, game.CTF["Foo"][logparse.FlagCapture])
	require.Equal(t, 1, game.CTF["Bar"][logparse.FlagReturn])
	require.Equal(t, 1, game.CTF["Bar"][logparse.FlagCarrierFrag])
}
