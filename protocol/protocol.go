// package protocol lets a harness in another process drive a recon.Player with line-oriented text
// commands.
//
// Every command is a single line: an optional numeric id, the command name and its arguments.
// Every response is "= [id] result" or "? [id] error", followed by an empty line.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lealex262/recon"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Engine executes commands on a player.
type Engine struct {
	p recon.Player

	known map[string]Command

	ch  chan string
	ret chan string

	name, version string
	quit          bool
	logger        zerolog.Logger
}

// New creates an Engine. If known is nil, StandardLib is used.
func New(p recon.Player, name, version string, known map[string]Command) *Engine {
	if known == nil {
		known = StandardLib()
	}
	return &Engine{
		p:       p,
		known:   known,
		name:    name,
		version: version,
		logger:  zerolog.Nop(),
	}
}

// SetLogger sets the logger. Every command and its response are logged at debug level.
func (e *Engine) SetLogger(l zerolog.Logger) { e.logger = l }

// Player returns the player the engine drives.
func (e *Engine) Player() recon.Player { return e.p }

// Start runs the engine in a goroutine. Each command sent on input gets exactly one response on
// output, except blank lines. Closing input stops the engine, and so does the quit command.
func (e *Engine) Start() (input chan<- string, output <-chan string) {
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

func (e *Engine) start() {
	defer close(e.ret)
	for cmd := range e.ch {
		resp, ok := e.Exec(cmd)
		if !ok {
			continue
		}
		e.ret <- resp
		if e.quit {
			return
		}
	}
}

// Serve reads commands from r and writes the responses to w until r is exhausted or the quit
// command is received.
func (e *Engine) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		resp, ok := e.Exec(scanner.Text())
		if !ok {
			continue
		}
		if _, err := io.WriteString(w, resp); err != nil {
			return errors.WithStack(err)
		}
		if e.quit {
			return nil
		}
	}
	return errors.WithStack(scanner.Err())
}

// Exec executes a single command line. It returns false if the line holds no command.
func (e *Engine) Exec(cmd string) (string, bool) {
	id, x, args, err := e.parse(cmd)
	if x == nil && err == nil {
		return "", false
	}
	var resp string
	if err != nil {
		resp = handleErr(id, err)
	} else {
		id, result, err := x.Do(id, args, e)
		resp = handleResult(id, result, err)
	}
	e.logger.Debug().Str("command", strings.TrimSpace(cmd)).Str("response", strings.TrimSpace(resp)).Msg("exec")
	return resp, true
}

func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	tokens := strings.Fields(preprocess(cmd))
	id = -1
	if len(tokens) == 0 {
		return id, nil, nil, nil
	}
	if n, err := strconv.Atoi(tokens[0]); err == nil {
		// the id is optional
		id = n
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return id, nil, nil, nil
	}

	name := strings.ToLower(tokens[0])
	var ok bool
	if x, ok = e.known[name]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", name)
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

// preprocess drops comments and surrounding space.
func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	return strings.TrimSpace(a)
}

func (e *Engine) commands() []string {
	retVal := make([]string, 0, len(e.known))
	for c := range e.known {
		retVal = append(retVal, c)
	}
	sort.Strings(retVal)
	return retVal
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
