package recon

import (
	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/game/standard"
	"github.com/notnil/chess"
)

// PseudoMoves are the moves of colour c on the placement without regard to check: a king may be
// left en prise and may be captured. Castling only needs the king and rook on their home squares
// and the squares between them empty. There is never an en passant capture.
func PseudoMoves(p game.Placement, c chess.Color) []game.Move {
	king := chess.NoSquare
	kingless := p
	for sq, pc := range p {
		if pc == game.MakePiece(chess.King, c) {
			king = chess.Square(sq)
			kingless[sq] = chess.NoPiece
		}
	}

	// without its king the side is never in check, so notnil/chess hands back every pseudo-legal move
	var retVal []game.Move
	if b, err := standard.New(kingless, c); err == nil {
		retVal = b.LegalMoves()
	}
	if king == chess.NoSquare {
		return retVal
	}

	for _, to := range game.Neighbourhood(king) {
		if to == king {
			continue
		}
		if pc := p[to]; pc != chess.NoPiece && pc.Color() == c {
			continue
		}
		retVal = append(retVal, game.Move{From: king, To: to})
	}
	return append(retVal, castles(p, c, king)...)
}

func castles(p game.Placement, c chess.Color, king chess.Square) []game.Move {
	back, _ := game.HomeRanks(c)
	if king != game.Square(4, back) {
		return nil
	}
	var retVal []game.Move
	rook := game.MakePiece(chess.Rook, c)
	if p[game.Square(7, back)] == rook && p[game.Square(5, back)] == chess.NoPiece && p[game.Square(6, back)] == chess.NoPiece {
		retVal = append(retVal, game.Move{From: king, To: game.Square(6, back)})
	}
	if p[game.Square(0, back)] == rook && p[game.Square(1, back)] == chess.NoPiece && p[game.Square(2, back)] == chess.NoPiece && p[game.Square(3, back)] == chess.NoPiece {
		retVal = append(retVal, game.Move{From: king, To: game.Square(2, back)})
	}
	return retVal
}

// MoveActions are the moves a player may request when it only sees its own pieces: every pseudo
// move on the board of its own pieces, plus every pawn capture, since an enemy piece might be there.
func MoveActions(own game.Placement, c chess.Color) []game.Move {
	own = own.Only(c)
	retVal := PseudoMoves(own, c)
	dir := 1
	if c == chess.Black {
		dir = -1
	}
	for sq, pc := range own {
		if pc != game.MakePiece(chess.Pawn, c) {
			continue
		}
		f, r := game.FileRank(chess.Square(sq))
		nr := r + dir
		if nr < 0 || nr > 7 {
			continue
		}
		for _, nf := range []int{f - 1, f + 1} {
			if nf < 0 || nf > 7 {
				continue
			}
			to := game.Square(nf, nr)
			if own[to] != chess.NoPiece {
				continue
			}
			if nr == 0 || nr == 7 {
				for _, promo := range []chess.PieceType{chess.Queen, chess.Rook, chess.Bishop, chess.Knight} {
					retVal = append(retVal, game.Move{From: chess.Square(sq), To: to, Promo: promo})
				}
				continue
			}
			retVal = append(retVal, game.Move{From: chess.Square(sq), To: to})
		}
	}
	return retVal
}

// findMove returns the move in moves that matches m. A move without a promotion piece matches
// the queen promotion.
func findMove(moves []game.Move, m game.Move) (game.Move, bool) {
	for _, mv := range moves {
		if mv.From != m.From || mv.To != m.To {
			continue
		}
		if mv.Promo == m.Promo || (m.Promo == chess.NoPieceType && mv.Promo == chess.Queen) {
			return mv, true
		}
	}
	return game.Null, false
}

// Revise returns the move the referee takes when colour c requests m on the true placement.
//
// A legal move is taken as is. A sliding piece, or a pawn pushed forward, stops at the first piece
// in its way: it captures it if it is an enemy piece (pawns never capture forward), and stops just
// before it otherwise. Anything else becomes a pass.
func Revise(truth game.Placement, c chess.Color, m game.Move) (taken game.Move, reason string) {
	if m.IsNull() {
		return game.Null, "pass"
	}
	legal := PseudoMoves(truth, c)
	if mv, ok := findMove(legal, m); ok {
		return mv, ""
	}
	pc := truth[m.From]
	if pc == chess.NoPiece || pc.Color() != c {
		return game.Null, "no piece to move"
	}

	ff, fr := game.FileRank(m.From)
	tf, tr := game.FileRank(m.To)
	df, dr := sign(tf-ff), sign(tr-fr)
	isLine := tf == ff || tr == fr || tf-ff == tr-fr || tf-ff == fr-tr
	switch {
	case !isLine:
		return game.Null, "illegal move"
	case pc.Type() == chess.Pawn && df != 0:
		return game.Null, "pawn capture on an empty square"
	case pc.Type() != chess.Pawn && pc.Type() != chess.Bishop && pc.Type() != chess.Rook && pc.Type() != chess.Queen:
		return game.Null, "illegal move"
	}

	stop := m.From
	for f, r := ff+df, fr+dr; ; f, r = f+df, r+dr {
		sq := game.Square(f, r)
		if occupant := truth[sq]; occupant != chess.NoPiece {
			if occupant.Color() != c && pc.Type() != chess.Pawn {
				stop = sq
			}
			break
		}
		stop = sq
		if sq == m.To {
			break
		}
	}
	if stop == m.From {
		return game.Null, "blocked"
	}
	if mv, ok := findMove(legal, game.Move{From: m.From, To: stop, Promo: m.Promo}); ok {
		return mv, "revised"
	}
	return game.Null, "illegal move"
}

func sign(a int) int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}
