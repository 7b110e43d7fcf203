package recon

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/notnil/chess"
)

// Statistics keeps the cumulative record of every player that played in an arena. After each game
// the running win, loss and draw counts of both players are appended.
type Statistics struct {
	Creation []string
	Wins     map[string][]float32
	Losses   map[string][]float32
	Draws    map[string][]float32

	wins, losses, draws map[string]float32
}

// MakeStatistics creates an empty Statistics.
func MakeStatistics() Statistics {
	return Statistics{
		Creation: make([]string, 0, 64),
		Wins:     make(map[string][]float32),
		Losses:   make(map[string][]float32),
		Draws:    make(map[string][]float32),

		wins:   make(map[string]float32),
		losses: make(map[string]float32),
		draws:  make(map[string]float32),
	}
}

// Update records the result of a game. A winner of chess.NoColor is a draw.
func (s *Statistics) Update(winner chess.Color, white, black string) {
	switch winner {
	case chess.White:
		s.wins[white]++
		s.losses[black]++
	case chess.Black:
		s.wins[black]++
		s.losses[white]++
	default:
		s.draws[white]++
		s.draws[black]++
	}
	s.record(white)
	if black != white {
		s.record(black)
	}
}

func (s *Statistics) record(name string) {
	if _, ok := s.Wins[name]; !ok {
		s.Creation = append(s.Creation, name)
	}
	s.Wins[name] = append(s.Wins[name], s.wins[name])
	s.Losses[name] = append(s.Losses[name], s.losses[name])
	s.Draws[name] = append(s.Draws[name], s.draws[name])
}

// WinRate is the latest win rate of the named player.
func (s *Statistics) WinRate(name string) float32 {
	n := len(s.Wins[name])
	if n == 0 {
		return 0
	}
	return winRate(s.Wins[name][n-1], s.Losses[name][n-1], s.Draws[name][n-1])
}

func winRate(win, loss, draw float32) float32 {
	if win+loss+draw == 0 {
		return 0
	}
	return win / (win + loss + draw)
}

// Dump writes the win rate history of every player as a CSV file, one column per player.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(s.Creation); err != nil {
		return err
	}
	var records [][]string
	for i, player := range s.Creation {
		for j, win := range s.Wins[player] {
			record := make([]string, len(s.Creation))
			rate := winRate(win, s.Losses[player][j], s.Draws[player][j])
			record[i] = strconv.FormatFloat(float64(rate), 'f', 3, 32)
			records = append(records, record)
		}
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// rebuild restores the running counts from the history, as after decoding.
func (s *Statistics) rebuild() {
	s.wins = make(map[string]float32)
	s.losses = make(map[string]float32)
	s.draws = make(map[string]float32)
	if s.Wins == nil {
		s.Wins = make(map[string][]float32)
		s.Losses = make(map[string][]float32)
		s.Draws = make(map[string][]float32)
	}
	for name, w := range s.Wins {
		if n := len(w); n > 0 {
			s.wins[name] = w[n-1]
			s.losses[name] = s.Losses[name][n-1]
			s.draws[name] = s.Draws[name][n-1]
		}
	}
}
