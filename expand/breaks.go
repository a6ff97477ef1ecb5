package expand

import (
	goast "go/ast"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// frame is an entry of the break target stack: a statement that an unlabeled
// break can leave, or a function literal which no break can cross.
type frame struct {
	stmt    goast.Stmt
	label   string
	barrier bool
}

// breakResolver walks the staged file and finds every break statement that
// targets a loop being expanded.
type breakResolver struct {
	file *token.File

	// byFor maps the staged offset of the `for` keyword of each expanded loop
	// to its state.
	byFor map[int]*loopState

	// byNode maps the matched loop statements to their state.
	byNode map[goast.Stmt]*loopState

	// labels maps labeled statements to their label.
	labels map[goast.Stmt]string

	stack []frame

	edits editList
}

func newBreakResolver(file *token.File, states []*loopState) *breakResolver {
	br := &breakResolver{
		file:   file,
		byFor:  make(map[int]*loopState, len(states)),
		byNode: make(map[goast.Stmt]*loopState, len(states)),
		labels: make(map[goast.Stmt]string),
	}

	for _, st := range states {
		br.byFor[st.forOffset] = st
	}

	return br
}

// resolve walks the file, matching expanded loops to their statements and
// recording an edit for every break that leaves one of them.
func (br *breakResolver) resolve(f *goast.File) {
	astutil.Apply(f, br.pre, br.post)
}

func (br *breakResolver) pre(c *astutil.Cursor) bool {
	switch n := c.Node().(type) {
	case *goast.FuncLit:
		br.stack = append(br.stack, frame{barrier: true})
	case *goast.LabeledStmt:
		br.labels[n.Stmt] = n.Label.Name
	case *goast.ForStmt:
		br.matchLoop(n, n.For, n.Body)
		br.push(n)
	case *goast.RangeStmt:
		br.matchLoop(n, n.For, n.Body)
		br.push(n)
	case *goast.SwitchStmt, *goast.TypeSwitchStmt, *goast.SelectStmt:
		br.push(n.(goast.Stmt))
	case *goast.BranchStmt:
		if n.Tok == token.BREAK {
			br.rewriteBreak(n)
		}
	}

	return true
}

func (br *breakResolver) post(c *astutil.Cursor) bool {
	switch c.Node().(type) {
	case *goast.FuncLit, *goast.ForStmt, *goast.RangeStmt, *goast.SwitchStmt, *goast.TypeSwitchStmt, *goast.SelectStmt:
		br.stack = br.stack[:len(br.stack)-1]
	}

	return true
}

func (br *breakResolver) push(stmt goast.Stmt) {
	br.stack = append(br.stack, frame{stmt: stmt, label: br.labels[stmt]})
}

// matchLoop associates a loop statement with the expanded loop whose `for`
// keyword and body it shares.
func (br *breakResolver) matchLoop(stmt goast.Stmt, forPos token.Pos, body *goast.BlockStmt) {
	st, ok := br.byFor[br.file.Offset(forPos)]
	if !ok || br.file.Offset(body.Lbrace) != st.lbraceOffset {
		return
	}

	st.matched = true
	br.byNode[stmt] = st
}

// target returns the statement a break leaves, or nil if it leaves none (a
// misplaced break, reported by the Go compiler).
func (br *breakResolver) target(bs *goast.BranchStmt) goast.Stmt {
	for i := len(br.stack) - 1; i >= 0; i-- {
		fr := br.stack[i]
		if fr.barrier {
			return nil
		}

		if bs.Label == nil || fr.label == bs.Label.Name {
			return fr.stmt
		}
	}

	return nil
}

// rewriteBreak clears the completion flag of the loop a break leaves, if that
// loop is being expanded.
func (br *breakResolver) rewriteBreak(bs *goast.BranchStmt) {
	st, ok := br.byNode[br.target(bs)]
	if !ok {
		return
	}

	text := "{ " + st.flag + " = false; break"
	if bs.Label != nil {
		text += " " + bs.Label.Name
	}
	text += " }"

	br.edits.replace(br.file.Offset(bs.Pos()), br.file.Offset(bs.End()), text)
	st.breaks++
}
