package solr

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
)

// ws and nonWS match the full Unicode whitespace set, including \v, the
// C0 separators and NEL. RE2 \s alone is ASCII only.
const (
	ws    = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`
	nonWS = `[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`
)

var (
	doubledConnectors = regexp.MustCompile(`[&+]{2,}`)
	structuralChars   = regexp.MustCompile(`[()^{}|\\]`)
	connectors        = regexp.MustCompile(`[&+]`)
	anyDash           = regexp.MustCompile(`-`)
	innerDash         = regexp.MustCompile(`(` + nonWS + `)(-)(` + nonWS + `)`)
	spacedDash        = regexp.MustCompile(`(` + ws + `+)(-)(` + ws + `+)`)
	leadingSpecial    = regexp.MustCompile(`(^|` + ws + `)([+\-/!])`)
	reservedChars     = regexp.MustCompile(`[:~<>?"\[\]]`)
)

type prepOptions struct {
	dash       dash.Mode
	replaceAnd bool
}

// rewrite is one step of the query preparation pipeline.
type rewrite struct {
	apply func(string) string
	when  func(prepOptions) bool
}

// prepPipeline runs in order: each step assumes the shape left by the previous ones.
// Dash handling must precede leading-special escaping.
var prepPipeline = []rewrite{
	{apply: strings.ToLower, when: always},
	{apply: collapseConnectors, when: always},
	{apply: replaceWith(structuralChars, ""), when: always},
	{apply: replaceWith(connectors, " and "), when: func(o prepOptions) bool { return o.replaceAnd }},
	{apply: replaceWith(anyDash, " "), when: dashIs(dash.Replace)},
	{apply: replaceWith(anyDash, ""), when: dashIs(dash.Remove)},
	{apply: replaceWith(innerDash, "$1 $2 $3"), when: dashIs(dash.Pad)},
	{apply: replaceWith(spacedDash, "$2"), when: dashIs(dash.Tighten)},
	{apply: replaceWith(spacedDash, ""), when: dashIs(dash.TightenRemove)},
	{apply: replaceWith(leadingSpecial, `${1}\${2}`), when: always},
	{apply: replaceWith(reservedChars, `\$0`), when: always},
	{apply: normalizeSpace, when: always},
}

// PrepareQuery rewrites free text into an escaped Solr query expression.
//
// The result is lowercase, has no doubled & or + characters, has ( ) ^ { } | \
// removed, and escapes + - / ! at word starts and : ~ < > ? " [ ] everywhere.
// With replaceAnd, & and + become the word "and". mode selects how hyphens
// are rewritten before escaping.
func PrepareQuery(query string, mode dash.Mode, replaceAnd bool) string {
	if query == "" {
		return ""
	}
	opts := prepOptions{dash: mode, replaceAnd: replaceAnd}
	for _, step := range prepPipeline {
		if step.when(opts) {
			query = step.apply(query)
		}
	}
	return query
}

func always(prepOptions) bool { return true }

func dashIs(m dash.Mode) func(prepOptions) bool {
	return func(o prepOptions) bool { return o.dash == m }
}

func replaceWith(re *regexp.Regexp, repl string) func(string) string {
	return func(s string) string { return re.ReplaceAllString(s, repl) }
}

// collapseConnectors keeps the first character of every &/+ run.
func collapseConnectors(s string) string {
	return doubledConnectors.ReplaceAllStringFunc(s, func(run string) string { return run[:1] })
}

// normalizeSpace replaces "  " with " " in a single pass, so a run of three
// spaces still leaves two.
func normalizeSpace(s string) string {
	return strings.TrimFunc(strings.ReplaceAll(strings.ToLower(s), "  ", " "), isSpace)
}

// isSpace reports whether r is whitespace in the sense of ws.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders v as a Solr phrase literal.
func quote(v string) string {
	return `"` + phraseEscaper.Replace(v) + `"`
}
