package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"stratforge/internal/artifact"
	"stratforge/internal/logging"
)

// SourceSlots must appear in the source template: they are the strategy
// tunables compiled into the binary.
var SourceSlots = []string{"imbalance_threshold", "min_volume_threshold", "lookback_periods", "signal_cooldown_ms"}

var sourceMarkers = []struct{ marker, what string }{
	{"use std::", "standard library import"},
	{"fn main()", "main function"},
	{"struct", "struct definition"},
	{"UdpSocket", "UDP socket"},
}

var stdImport = regexp.MustCompile(`use\s+std::`)

type sourceChecker struct{}

func (sourceChecker) Kind() artifact.Kind { return artifact.KindSource }
func (sourceChecker) Policy() Policy      { return Hard }

func (sourceChecker) PreRender(template string) Report {
	var r Report
	requireSlots(&r, template, SourceSlots...)
	for _, m := range sourceMarkers {
		if !strings.Contains(template, m.marker) {
			r.Errorf("template should include %s (%q)", m.what, m.marker)
		}
	}
	return r
}

func (sourceChecker) PostRender(text string) Report {
	r := Common(text)
	if !strings.Contains(text, "fn main()") {
		r.Errorf("generated code missing main function")
	}
	if !stdImport.MatchString(text) {
		r.Errorf("generated code missing standard library imports")
	}
	if msg, ok := RustSyntax(text); !ok {
		r.Errorf("generated code does not parse: %s", msg)
	}
	return r
}

// RustSyntax parses src with the tree-sitter Rust grammar. It reports
// false and the position of the first error or missing node when the
// parse is not clean.
func RustSyntax(src string) (string, bool) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		logging.Get(logging.CategoryValidate).Error("rust parse failed: %v", err)
		return err.Error(), false
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return "", true
	}
	if bad := firstError(root); bad != nil {
		p := bad.StartPoint()
		what := "syntax error"
		if bad.IsMissing() {
			what = "missing " + bad.Type()
		}
		return formatPoint(what, p), false
	}
	return "syntax error", false
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

func formatPoint(what string, p sitter.Point) string {
	return fmt.Sprintf("%s at line %d, column %d", what, p.Row+1, p.Column+1)
}
