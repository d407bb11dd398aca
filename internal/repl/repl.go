// Package repl implements the interactive prompt: line editing and history
// through liner, with multi-line input accepted by probing the reader until
// the form is complete.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"opal/internal/evaluate"
	"opal/internal/reader"
	"opal/internal/runtime"
)

const (
	promptMain = "opal=> "
	promptCont = "  ...  "
)

type Repl struct {
	Ctx         *runtime.Context
	Eval        *evaluate.Processor
	HistoryFile string
}

func (r *Repl) Run() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(r.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Printf("opal repl, namespace %s\n", r.Ctx.CurrentNs().Name)

	for {
		src, ok := r.readForm(ln)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		res, err := r.Eval.EvalString(src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(res.Inspect())
	}

	if f, err := os.Create(r.HistoryFile); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

// readForm accumulates lines until the reader accepts the buffer as complete
// forms. Unbalanced delimiters keep the prompt open; any other read error
// returns the buffer so evaluation can report it.
func (r *Repl) readForm(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the partial input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := reader.New(src, r.Ctx).ReadAll(); reader.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
