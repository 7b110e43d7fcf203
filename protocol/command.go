package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Command is a protocol command.
type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

func protocolVersion(e *Engine) string { return "1" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }
func listCommands(e *Engine) string    { return strings.Join(e.commands(), "\n") }
func quit(e *Engine) string            { e.quit = true; return "" }

func showboard(e *Engine) string {
	b, ok := e.p.(recon.Believer)
	if !ok {
		return ""
	}
	return strings.TrimRight(fmt.Sprintf("\n%v", b.Belief()), "\n")
}

// showtree prints the last search in the DOT language.
func showtree(e *Engine) string {
	t, ok := e.p.(recon.Searcher)
	if !ok {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(t.SearchTree()), "\n")
	nonEmpty := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	return "\n" + strings.Join(nonEmpty, "\n")
}

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[strings.ToLower(args[0])]; ok {
		return "true", nil
	}
	return "false", nil
}

// new_game color [opponent]
func newGame(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"new_game\"")
	}
	c, err := parseColor(args[0])
	if err != nil {
		return "", err
	}
	if c == chess.NoColor {
		return "", errors.Errorf("A player must be white or black, not %q", args[0])
	}
	var opponent string
	if len(args) > 1 {
		opponent = strings.Join(args[1:], " ")
	}
	board := game.StartingPlacement(chess.White).Overlay(game.StartingPlacement(chess.Black))
	e.p.OnGameStart(c, board, opponent)
	return "", nil
}

// opponent_move_result captured [square]
func opponentMoveResult(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"opponent_move_result\"")
	}
	captured, at, err := parseCapture(args)
	if err != nil {
		return "", err
	}
	e.p.OnOpponentMoveResult(captured, at)
	return "", nil
}

// choose_sense seconds_left [move ...]
func chooseSense(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"choose_sense\"")
	}
	left, err := parseSeconds(args[0])
	if err != nil {
		return "", err
	}
	moves, err := parseMoves(args[1:])
	if err != nil {
		return "", err
	}
	candidates := make([]chess.Square, 0, 64)
	for sq := chess.A1; sq <= chess.H8; sq++ {
		candidates = append(candidates, sq)
	}
	return game.SquareName(e.p.ChooseSense(candidates, moves, left)), nil
}

// sense_result square:piece ... where piece is a FEN letter, or "-" for an empty square
func senseResult(e *Engine, args []string) (string, error) {
	results := make([]game.SenseResult, 0, len(args))
	for _, a := range args {
		parts := strings.SplitN(a, ":", 2)
		if len(parts) != 2 {
			return "", errors.Errorf("Cannot parse sense result %q", a)
		}
		sq, err := game.ParseSquare(parts[0])
		if err != nil {
			return "", errors.WithMessage(err, "Unable to parse sense result")
		}
		if !game.OnBoard(sq) {
			return "", errors.Errorf("Sense result %q is off the board", a)
		}
		pc, err := parsePiece(parts[1])
		if err != nil {
			return "", err
		}
		results = append(results, game.SenseResult{Square: sq, Piece: pc})
	}
	e.p.OnSenseResult(results)
	return "", nil
}

// choose_move seconds_left move ...
func chooseMove(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"choose_move\"")
	}
	left, err := parseSeconds(args[0])
	if err != nil {
		return "", err
	}
	moves, err := parseMoves(args[1:])
	if err != nil {
		return "", err
	}
	return e.p.ChooseMove(moves, left).String(), nil
}

// move_result requested taken captured [square [reason ...]]
func moveResult(e *Engine, args []string) (string, error) {
	if len(args) < 3 {
		return "", errors.New("Not enough arguments for \"move_result\"")
	}
	requested, err := game.ParseMove(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "Unable to parse the requested move")
	}
	taken, err := game.ParseMove(args[1])
	if err != nil {
		return "", errors.WithMessage(err, "Unable to parse the taken move")
	}
	captured, at, err := parseCapture(args[2:])
	if err != nil {
		return "", err
	}
	var reason string
	if len(args) > 4 {
		reason = strings.Join(args[4:], " ")
	}
	e.p.OnMoveResult(requested, taken, reason, captured, at)
	return "", nil
}

// game_over winner [reason ...]
func gameOver(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"game_over\"")
	}
	winner, err := parseColor(args[0])
	if err != nil {
		return "", err
	}
	e.p.OnGameEnd(winner, strings.Join(args[1:], " "))
	return "", nil
}

// StandardLib returns the commands every engine knows.
func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             stdlib(quit),
		"showboard":        stdlib(showboard),
		"showtree":         stdlib(showtree),

		"known_command":        stdlib2(knownCommand),
		"new_game":             stdlib2(newGame),
		"opponent_move_result": stdlib2(opponentMoveResult),
		"choose_sense":         stdlib2(chooseSense),
		"sense_result":         stdlib2(senseResult),
		"choose_move":          stdlib2(chooseMove),
		"move_result":          stdlib2(moveResult),
		"game_over":            stdlib2(gameOver),
	}
}

func parseColor(s string) (chess.Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return chess.White, nil
	case "black", "b":
		return chess.Black, nil
	case "none", "draw", "-":
		return chess.NoColor, nil
	}
	return chess.NoColor, errors.Errorf("Unknown colour %q", s)
}

// parseCapture parses "captured [square]". The square is required when captured is true.
func parseCapture(args []string) (bool, chess.Square, error) {
	captured, err := strconv.ParseBool(args[0])
	if err != nil {
		return false, chess.NoSquare, errors.WithMessage(err, "Unable to parse capture flag")
	}
	if !captured {
		return false, chess.NoSquare, nil
	}
	if len(args) < 2 {
		return false, chess.NoSquare, errors.New("A capture needs a square")
	}
	at, err := game.ParseSquare(args[1])
	if err != nil {
		return false, chess.NoSquare, errors.WithMessage(err, "Unable to parse capture square")
	}
	return true, at, nil
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "Unable to parse the time left")
	}
	return time.Duration(f * float64(time.Second)), nil
}

func parseMoves(args []string) ([]game.Move, error) {
	retVal := make([]game.Move, 0, len(args))
	for _, a := range args {
		m, err := game.ParseMove(a)
		if err != nil {
			return nil, err
		}
		retVal = append(retVal, m)
	}
	return retVal, nil
}

const pieceLetters = "PNBRQK"

func parsePiece(s string) (chess.Piece, error) {
	if s == "-" || s == "." || s == "" {
		return chess.NoPiece, nil
	}
	if len(s) != 1 {
		return chess.NoPiece, errors.Errorf("Cannot parse piece %q", s)
	}
	c := chess.White
	if s != strings.ToUpper(s) {
		c = chess.Black
	}
	i := strings.Index(pieceLetters, strings.ToUpper(s))
	if i < 0 {
		return chess.NoPiece, errors.Errorf("Cannot parse piece %q", s)
	}
	types := [...]chess.PieceType{chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King}
	return game.MakePiece(types[i], c), nil
}
