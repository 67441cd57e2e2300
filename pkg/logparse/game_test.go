package logparse_test

import (
	"testing"

	"github.com/leighmacdonald/q3stats/pkg/logparse"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPlayerValid(t *testing.T) {
	tests := []struct {
		duration int
		join     int
		earliest int
		minPlay  float64
		valid    bool
	}{
		{600, 0, 0, 0.5, true},
		{600, 299, 0, 0.5, true},
		// Exactly the threshold is not enough
		{600, 300, 0, 0.5, false},
		{600, 301, 0, 0.5, false},
		// minPlay 0 still excludes a join on the final whistle
		{600, 599, 0, 0, true},
		{600, 600, 0, 0, false},
		// The window shrinks when the first join came late
		{600, 400, 200, 0.5, false},
		{600, 399, 200, 0.5, true},
	}

	for _, test := range tests {
		require.Equalf(t, test.valid,
			logparse.PlayerValid(test.duration, test.join, test.earliest, test.minPlay),
			"duration=%d join=%d earliest=%d minPlay=%.2f",
			test.duration, test.join, test.earliest, test.minPlay)
	}
}

func userinfo(clock int, clientID int, name string, team int) *logparse.Results {
	return &logparse.Results{
		EventType: logparse.UserinfoChanged,
		Event: logparse.UserinfoChangedEvt{
			EmptyEvt: logparse.EmptyEvt{Clock: clock},
			ClientID: clientID,
			Name:     name,
			Handicap: 100,
			Team:     team,
		},
	}
}

func TestGameRebindsClientIDs(t *testing.T) {
	var (
		game   = logparse.NewGame(1, 0.5)
		server = &logparse.Server{}
	)

	require.NoError(t, game.Apply(userinfo(0, 0, "Foo", logparse.TeamRed), server))
	require.NoError(t, game.Apply(userinfo(30, 1, "Bar", logparse.TeamBlue), server))

	// Foo drops and reconnects under Bar's old id, Bar moves on to id 2
	require.NoError(t, game.Apply(userinfo(120, 1, "Foo", logparse.TeamRed), server))
	require.NoError(t, game.Apply(userinfo(125, 2, "Bar", logparse.TeamBlue), server))

	// Join clocks survive the reconnect
	require.Equal(t, 0, game.JoinTimes["Foo"])
	require.Equal(t, 30, game.JoinTimes["Bar"])
	require.Equal(t, 2, game.PlayerCount())

	// Flag events resolve through the current binding
	require.NoError(t, game.Apply(&logparse.Results{
		EventType: logparse.CTF,
		Event: logparse.CTFEvt{
			EmptyEvt: logparse.EmptyEvt{Clock: 130},
			ClientID: 1,
			Team:     logparse.TeamRed,
			Event:    logparse.FlagTaken,
		},
	}, server))

	require.Equal(t, 1, game.CTF["Foo"][logparse.FlagTaken])
	require.Equal(t, 0, game.CTF["Bar"][logparse.FlagTaken])
}

func TestGameDropsKillsWhole(t *testing.T) {
	var (
		game   = logparse.NewGame(1, 0.5)
		server = &logparse.Server{}
	)

	require.NoError(t, game.Apply(userinfo(0, 0, "Foo", logparse.TeamFree), server))

	kill := func(killer string, victim string, mod string) error {
		return game.Apply(&logparse.Results{
			EventType: logparse.Kill,
			Event: logparse.KillEvt{
				EmptyEvt:     logparse.EmptyEvt{Clock: 60},
				Killer:       killer,
				Victim:       victim,
				MeansOfDeath: mod,
			},
		}, server)
	}

	// Victim never registered, nothing moves
	errVictim := kill("Foo", "Ghost", "ROCKET")
	require.True(t, errors.Is(errVictim, logparse.ErrUnknownPlayer))

	// Killer never registered, the victim's death counter must not move either
	errKiller := kill("Ghost", "Foo", "ROCKET")
	require.True(t, errors.Is(errKiller, logparse.ErrUnknownPlayer))
	require.Equal(t, 0, game.Deaths["Foo"])

	// A player kill with an untracked means of death is dropped whole
	require.NoError(t, game.Apply(userinfo(0, 1, "Bar", logparse.TeamFree), server))
	errWeapon := kill("Foo", "Bar", "CRUSH")
	require.True(t, errors.Is(errWeapon, logparse.ErrMalformed))
	require.Equal(t, 0, game.Deaths["Bar"])
	require.Equal(t, 0, game.Frags("Foo"))
	require.Equal(t, 0, server.Frags)

	// World and self kills move only the death side counters
	require.NoError(t, kill(logparse.WorldID, "Foo", "LAVA"))
	require.NoError(t, kill("Bar", "Bar", "ROCKET_SPLASH"))
	require.Equal(t, 1, game.Deaths["Foo"])
	require.Equal(t, 1, game.Deaths["Bar"])
	require.Equal(t, 0, server.Frags)
}
