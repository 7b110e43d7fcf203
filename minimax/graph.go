package minimax

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

type rootNode struct {
	Turn  chess.Color
	Moves int
	board game.Placement
}

func (n rootNode) State() string {
	s := fmt.Sprintf("%v", n.board)
	return strings.Replace(strings.TrimSuffix(s, "\n"), "\n", "<BR />", -1)
}

// ToDot returns the root of the last search and its scored moves as a graphviz graph.
func (e *Engine) ToDot() string {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		panic(err)
	}
	g.SetDir(true)

	var buf bytes.Buffer
	tmpl.Execute(&buf, rootNode{Turn: e.turn, Moves: len(e.moves), board: e.root})
	g.AddNode("G", "root", map[string]string{
		"fontname": "Monaco",
		"shape":    "none",
		"label":    buf.String(),
	})

	for i, m := range e.moves {
		id := fmt.Sprintf("m%d", i)
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%v\\n%.0f\"", m.Move, float32(m.Score)),
		}
		if m.Best {
			attrs["color"] = "red"
		}
		g.AddNode("G", id, attrs)
		g.AddEdge("root", id, true, nil)
	}
	return g.String()
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>To Move</TD><TD>{{.Turn}}</TD></TR>
<TR><TD>Moves</TD><TD>{{.Moves}}</TD></TR>
<TR><TD>State</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
