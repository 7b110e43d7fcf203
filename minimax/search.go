package minimax

import (
	"context"
	"time"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// rootMove is a move at the root with its score in the last completed iteration.
type rootMove struct {
	Move  game.Move
	Score Score
	Best  bool
}

// Engine is the search engine. It is not safe for concurrent use.
type Engine struct {
	Config

	// Clock returns the current time. It defaults to time.Now.
	Clock func() time.Time

	logger zerolog.Logger

	// search state
	ctx         context.Context
	deadline    time.Time
	perspective chess.Color
	rootLen     int
	nodes       int
	cutoff      bool // some frame stopped at the depth limit
	children    []rootMove
	evals       map[uint64]Score
	hits        int

	// last completed search
	root  game.Placement
	turn  chess.Color
	moves []rootMove

	lumberjack
}

// New creates a new Engine.
func New(conf Config) *Engine {
	e := &Engine{
		Config:     conf,
		Clock:      time.Now,
		logger:     zerolog.Nop(),
		evals:      make(map[uint64]Score),
		lumberjack: makeLumberJack(),
	}
	go e.start()
	return e
}

// SetLogger sets the logger.
func (e *Engine) SetLogger(l zerolog.Logger) { e.logger = l }

func (e *Engine) remaining() time.Duration { return e.deadline.Sub(e.Clock()) }

// Search searches the board for the side to move within the budget.
//
// Iterations start at depth 1 and go one deeper while the time left exceeds the time the previous
// iteration took. An iteration that runs out of time is discarded. The board is restored before
// Search returns.
func (e *Engine) Search(ctx context.Context, board game.Board, budget time.Duration) (retVal Result) {
	start := e.Clock()
	e.ctx = ctx
	e.deadline = start.Add(budget)
	e.perspective = board.Turn()
	e.rootLen = len(board.History())
	e.nodes = 0
	e.hits = 0
	clear(e.evals)
	e.root = board.Placement()
	e.turn = board.Turn()
	e.moves = nil
	e.Reset()
	e.log("SEARCH. Player %v. Budget %v\n%v", e.turn, budget, e.root)

	for depth := 1; e.MaxDepth == 0 || depth <= e.MaxDepth; depth++ {
		iterStart := e.Clock()
		e.cutoff = false
		e.children = e.children[:0]

		score, line := e.minimax(board, 0, depth, true, negInf, posInf)
		if isNullResult(score) {
			e.logger.Debug().Int("depth", depth).Msg("out of time")
			break
		}
		e.moves = append(e.moves[:0], e.children...)
		if len(line) <= e.rootLen {
			// no legal moves at the root
			retVal = Result{Score: score, Depth: depth}
			break
		}
		retVal = Result{
			Move:  line[e.rootLen],
			Score: score,
			Depth: depth,
			Found: true,
		}
		elapsed := e.Clock().Sub(iterStart)
		e.logger.Debug().Int("depth", depth).Str("best", retVal.Move.String()).Float32("score", float32(score)).Dur("took", elapsed).Msg("deepening-iteratively")
		e.log("Depth %d. Best %v (%v). Took %v", depth, retVal.Move, score, elapsed)
		if !e.cutoff || e.remaining() <= elapsed {
			break
		}
	}

	if retVal.Depth == 0 {
		retVal = e.greedy(board)
	}
	retVal.Nodes = e.nodes
	retVal.CacheHits = e.hits
	e.markBest(retVal.Move)
	e.logger.Info().Str("move", retVal.Move.String()).Int("depth", retVal.Depth).Int("nodes", retVal.Nodes).Bool("fallback", retVal.Fallback).Dur("took", e.Clock().Sub(start)).Msg("search done")
	return retVal
}

// minimax returns the score of the board and the move history of the board that produced it.
func (e *Engine) minimax(board game.Board, depth, maxDepth int, isMax bool, alpha, beta Score) (Score, []game.Move) {
	if e.remaining() < e.Epsilon || e.ctx.Err() != nil {
		return noResult(), nil
	}
	e.nodes++
	if depth == maxDepth {
		e.cutoff = true
		return e.evaluate(board), board.History()
	}
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return Evaluate(board, e.perspective), board.History()
	}

	bestVal := posInf
	if isMax {
		bestVal = negInf
	}
	var bestLine []game.Move
	for _, m := range moves {
		won := capturesKing(board, m)
		if err := board.Push(m); err != nil {
			e.logger.Warn().Err(err).Msg("generated move rejected")
			continue
		}
		var val Score
		var line []game.Move
		if won {
			// the game is over, nothing is searched past it
			e.nodes++
			val, line = e.evaluate(board), board.History()
		} else {
			val, line = e.minimax(board, depth+1, maxDepth, !isMax, alpha, beta)
		}
		board.Pop()
		if isNullResult(val) {
			return noResult(), nil
		}
		if depth == 0 {
			e.children = append(e.children, rootMove{Move: m, Score: val})
		}

		if isMax {
			if bestLine == nil || val > bestVal {
				bestVal, bestLine = val, line
			}
			if bestVal > alpha {
				alpha = bestVal
			}
		} else {
			if bestLine == nil || val < bestVal {
				bestVal, bestLine = val, line
			}
			if bestVal < beta {
				beta = bestVal
			}
		}
		if beta <= alpha {
			break
		}
	}
	if bestLine == nil {
		return Evaluate(board, e.perspective), board.History()
	}
	return bestVal, bestLine
}

// greedy picks the move with the best static evaluation one ply deep, without looking at the clock.
func (e *Engine) greedy(board game.Board) Result {
	retVal := Result{Fallback: true}
	e.moves = e.moves[:0]
	for _, m := range board.LegalMoves() {
		if err := board.Push(m); err != nil {
			continue
		}
		val := Evaluate(board, e.perspective)
		board.Pop()
		e.nodes++
		e.moves = append(e.moves, rootMove{Move: m, Score: val})
		if !retVal.Found || val > retVal.Score {
			retVal.Move = m
			retVal.Score = val
			retVal.Found = true
		}
	}
	e.logger.Warn().Bool("found", retVal.Found).Msg("no iteration completed, falling back to one ply")
	return retVal
}

// capturesKing reports whether m takes the king of the side not to move.
func capturesKing(board game.Board, m game.Move) bool {
	pc := board.Piece(m.To)
	return pc != chess.NoPiece && pc.Type() == chess.King && pc.Color() != board.Turn()
}

func (e *Engine) markBest(m game.Move) {
	for i := range e.moves {
		e.moves[i].Best = e.moves[i].Move == m
	}
}
