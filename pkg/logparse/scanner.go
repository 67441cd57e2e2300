package logparse

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// ErrNoValidGames is returned when a whole log yields no retained match
var ErrNoValidGames = errors.New("No valid games found in log")

// Server accumulates process wide totals across every retained match of a
// run. Frags move per successful kill event, time only when a match is
// retained.
type Server struct {
	Hostname string   `json:"hostname"`
	GameType GameType `json:"game_type"`
	Time     int      `json:"time"`
	Frags    int      `json:"frags"`
}

// Scanner segments an ordered log line stream into matches. It is a two
// state machine: idle, scanning for an init line, and in-match, dispatching
// lines into the current Game. The single line of lookahead after an init
// line is the warm-up check, a warm-up only match is excluded whole.
//
// A Scanner is single-use and not safe for concurrent use. Independent logs
// get independent scanners.
type Scanner struct {
	parser  *LogParser
	minPlay float64

	server  *Server
	games   []*Game
	current *Game
	// pendingInit is set between seeing an init line and classifying the
	// line after it
	pendingInit *InitGameEvt
	nextNumber  int
	lineNo      int
}

func NewScanner(minPlay float64) *Scanner {
	return &Scanner{
		parser:     New(),
		minPlay:    minPlay,
		server:     &Server{},
		nextNumber: 1,
	}
}

// Process consumes the whole log in a single strictly ordered pass and
// returns the server totals and every retained match. Returns
// ErrNoValidGames when nothing was retained.
func (scanner *Scanner) Process(reader io.Reader) (*Server, []*Game, error) {
	lines := bufio.NewScanner(reader)
	for lines.Scan() {
		scanner.line(lines.Text())
	}

	if errRead := lines.Err(); errRead != nil {
		return nil, nil, errors.Wrap(errRead, "Failed to read log")
	}

	// EOF terminates a still open match the same way a shutdown line does
	scanner.finalize()

	if len(scanner.games) == 0 {
		return nil, nil, ErrNoValidGames
	}

	return scanner.server, scanner.games, nil
}

func (scanner *Scanner) line(raw string) {
	scanner.lineNo++

	result, errParse := scanner.parser.Parse(raw)
	if errParse != nil {
		slog.Debug("Dropping malformed line",
			slog.Int("line", scanner.lineNo), slog.String("error", errParse.Error()))

		result = &Results{UnknownMsg, nil}
	}

	if scanner.pendingInit != nil {
		pending := scanner.pendingInit
		scanner.pendingInit = nil

		if result.EventType == Warmup {
			// Warm-up only match, both lines discarded and nothing leaks
			// downstream
			return
		}

		scanner.begin(*pending)
	}

	switch result.EventType {
	case InitGame:
		evt, ok := result.Event.(InitGameEvt)
		if !ok {
			return
		}

		// A missing shutdown line ends the previous match implicitly
		scanner.finalize()

		scanner.pendingInit = &evt
	case Warmup, UnknownMsg:
		return
	case Shutdown:
		scanner.finalize()
	default:
		if scanner.current == nil {
			return
		}

		if errApply := scanner.current.Apply(result, scanner.server); errApply != nil && !errors.Is(errApply, ErrIgnored) {
			slog.Debug("Dropping event",
				slog.Int("line", scanner.lineNo), slog.String("error", errApply.Error()))
		}
	}
}

func (scanner *Scanner) begin(evt InitGameEvt) {
	game := NewGame(scanner.nextNumber, scanner.minPlay)
	scanner.nextNumber++

	game.MapName = evt.MapName
	game.GameType = evt.GameType

	scanner.server.Hostname = evt.Hostname
	scanner.server.GameType = evt.GameType

	scanner.current = game
}

// finalize closes the current match, if any. Matches without a recognized
// termination and matches that registered nobody are discarded whole,
// including their contribution to the server's cumulative time.
func (scanner *Scanner) finalize() {
	if scanner.current == nil {
		return
	}

	game := scanner.current
	scanner.current = nil

	if !game.Completed {
		slog.Debug("Discarding unterminated match",
			slog.Int("number", game.Number), slog.String("map", game.MapName))

		return
	}

	if game.PlayerCount() == 0 {
		slog.Debug("Discarding match without players",
			slog.Int("number", game.Number), slog.String("map", game.MapName))

		return
	}

	earliest, _ := game.EarliestJoin()
	scanner.server.Time += game.Duration - earliest
	scanner.games = append(scanner.games, game)
}
