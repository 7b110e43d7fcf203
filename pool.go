package recon

import (
	"sync"
)

var iterPool = &sync.Pool{
	New: func() interface{} { return make([][]float32, 8) },
}

// makeIterator views an 8x8 plane as rows indexed by rank. The rows share memory with plane.
func makeIterator(plane []float32) [][]float32 {
	it := iterPool.Get().([][]float32)
	for r := range it {
		it[r] = plane[r*8 : r*8+8 : r*8+8]
	}
	return it
}

func returnIterator(it [][]float32) {
	for r := range it {
		it[r] = nil
	}
	iterPool.Put(it)
}
