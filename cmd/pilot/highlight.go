package main

import (
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

const highlightStyle = "dracula"

// colorOutput reports whether structured output to w should be highlighted.
var colorOutput = func(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// highlight writes text to w colored as the given language ("json" or "yaml").
// Text the lexer cannot handle is written unchanged.
func highlight(w io.Writer, text, language string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		_, err := io.WriteString(w, text)
		return err
	}
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	return formatters.TTY256.Format(w, style, iterator)
}
