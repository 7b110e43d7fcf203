//go:build debug
// +build debug

package minimax

import (
	"bytes"
	"fmt"
	"sync"
)

type logstruct struct {
	msg  string
	args []interface{}
}

// lumberjack collects a trace of the search. It is only compiled in with the debug tag.
type lumberjack struct {
	*bytes.Buffer
	ch chan logstruct
	wg *sync.WaitGroup
}

func makeLumberJack() lumberjack {
	return lumberjack{
		Buffer: new(bytes.Buffer),
		ch:     make(chan logstruct),
		wg:     new(sync.WaitGroup),
	}
}

func (l *lumberjack) start() {
	for s := range l.ch {
		fmt.Fprintf(l.Buffer, s.msg, s.args...)
		l.WriteByte('\n')
		l.wg.Done()
	}
}

func (l *lumberjack) log(msg string, args ...interface{}) {
	l.wg.Add(1)
	l.ch <- logstruct{msg: msg, args: args}
}

func (l *lumberjack) Reset() {
	l.wg.Wait()
	l.Buffer.Reset()
}

// Log returns the trace of the last search.
func (l *lumberjack) Log() string {
	l.wg.Wait()
	return l.String()
}
