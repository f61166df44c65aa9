package main

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	sitterc "github.com/smacker/go-tree-sitter/c"
)

// cSyntaxChecker runs an advisory parse of the buffer before a build.
// gcc remains the authority; this only surfaces obvious breakage early.
type cSyntaxChecker struct {
	lastSource string
	lastErrs   []syntaxError
	checked    bool
}

type syntaxError struct {
	Line int
	Col  int
}

func newCSyntaxChecker() *cSyntaxChecker {
	return &cSyntaxChecker{}
}

const maxSyntaxErrors = 20

func (c *cSyntaxChecker) errorsFor(src string) []syntaxError {
	if c == nil {
		return nil
	}
	if c.checked && c.lastSource == src {
		return c.lastErrs
	}

	var errs []syntaxError
	root, err := sitter.ParseCtx(context.Background(), []byte(src), sitterc.GetLanguage())
	if err == nil && root != nil {
		errs = collectErrorNodes(root, nil)
	}
	c.lastSource = src
	c.lastErrs = errs
	c.checked = true
	return errs
}

func collectErrorNodes(node *sitter.Node, out []syntaxError) []syntaxError {
	if node == nil || len(out) >= maxSyntaxErrors {
		return out
	}
	if node.IsError() || node.IsMissing() {
		p := node.StartPoint()
		return append(out, syntaxError{Line: int(p.Row), Col: int(p.Column)})
	}
	if !node.HasError() {
		return out
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		out = collectErrorNodes(node.Child(i), out)
	}
	return out
}
