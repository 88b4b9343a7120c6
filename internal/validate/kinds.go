package validate

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"stratforge/internal/artifact"
)

// ManifestSlots must appear in the manifest template.
var ManifestSlots = []string{"project_name", "strategy_description"}

type manifestChecker struct{}

func (manifestChecker) Kind() artifact.Kind { return artifact.KindManifest }
func (manifestChecker) Policy() Policy      { return Hard }

func (manifestChecker) PreRender(template string) Report {
	var r Report
	requireSlots(&r, template, ManifestSlots...)
	for _, section := range []string{"[package]", "[dependencies]"} {
		if !strings.Contains(template, section) {
			r.Errorf("missing required section: %s", section)
		}
	}
	if !strings.Contains(template, "name =") {
		r.Errorf("missing package name field")
	}
	if !strings.Contains(template, "version =") {
		r.Errorf("missing version field")
	}
	return r
}

func (manifestChecker) PostRender(text string) Report {
	r := Common(text)
	sc := bufio.NewScanner(strings.NewReader(text))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		if !quotedValueClosed(line) {
			r.Errorf("line %d: unterminated string value", n)
		}
	}
	return r
}

// quotedValueClosed reports whether the value of a key = value line has
// balanced quotes and, when it is a plain string, nothing after it.
func quotedValueClosed(line string) bool {
	value := strings.TrimSpace(line[strings.Index(line, "=")+1:])
	if !strings.HasPrefix(value, `"`) {
		return unescapedQuotes(value)%2 == 0
	}
	escaped := false
	for i := 1; i < len(value); i++ {
		switch {
		case escaped:
			escaped = false
		case value[i] == '\\':
			escaped = true
		case value[i] == '"':
			rest := strings.TrimSpace(value[i+1:])
			return rest == "" || strings.HasPrefix(rest, "#")
		}
	}
	return false
}

// unescapedQuotes counts double quotes not preceded by a backslash.
func unescapedQuotes(line string) int {
	count := 0
	escaped := false
	for i := 0; i < len(line); i++ {
		switch {
		case escaped:
			escaped = false
		case line[i] == '\\':
			escaped = true
		case line[i] == '"':
			count++
		}
	}
	return count
}

// ContainerInstructions must each appear in a container build file.
var ContainerInstructions = []string{"FROM", "WORKDIR", "COPY", "RUN"}

type containerChecker struct{}

func (containerChecker) Kind() artifact.Kind { return artifact.KindContainerBuild }
func (containerChecker) Policy() Policy      { return Soft }

func (containerChecker) PreRender(template string) Report {
	var r Report
	counts := map[string]int{}
	for _, line := range strings.Split(template, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		counts[strings.ToUpper(fields[0])]++
	}
	for _, inst := range ContainerInstructions {
		if counts[inst] == 0 {
			r.Errorf("missing required instruction: %s", inst)
		}
	}
	if counts["FROM"] < 2 {
		r.Warnf("template should use a multi-stage build")
	}
	if counts["USER"] == 0 {
		r.Warnf("template should include a USER instruction so the image does not run as root")
	}
	return r
}

func (containerChecker) PostRender(text string) Report { return Common(text) }

// markdown is safe to share; parsing creates per-call state.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type docChecker struct{}

func (docChecker) Kind() artifact.Kind     { return artifact.KindDocumentation }
func (docChecker) Policy() Policy          { return Hard }
func (docChecker) PreRender(string) Report { return Report{} }

// PostRender requires balanced delimiters and warns when the document has
// no single top-level heading.
func (docChecker) PostRender(src string) Report {
	r := Common(src)

	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))
	titles := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
			titles++
		}
		return ast.WalkContinue, nil
	})
	switch {
	case titles == 0:
		r.Warnf("documentation has no level-1 heading")
	case titles > 1:
		r.Warnf("documentation has %d level-1 headings", titles)
	}
	return r
}

var envKey = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

type envChecker struct{}

func (envChecker) Kind() artifact.Kind     { return artifact.KindEnvExample }
func (envChecker) Policy() Policy          { return Hard }
func (envChecker) PreRender(string) Report { return Report{} }

// PostRender requires every non-blank, non-comment line to be KEY=value
// with an upper-snake key, each key defined once.
func (envChecker) PostRender(src string) Report {
	r := Common(src)
	seen := map[string]int{}
	sc := bufio.NewScanner(strings.NewReader(src))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			r.Errorf("line %d: expected KEY=value", n)
			continue
		}
		if !envKey.MatchString(key) {
			r.Errorf("line %d: key %q is not UPPER_SNAKE_CASE", n, key)
			continue
		}
		if prev, dup := seen[key]; dup {
			r.Warnf("line %d: %s already set on line %d", n, key, prev)
			continue
		}
		seen[key] = n
	}
	return r
}
