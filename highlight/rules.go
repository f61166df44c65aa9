package highlight

import (
	"fmt"
	"regexp"
)

// rule pairs a compiled pattern with the category it stamps. Rules are
// applied in table order; priority decides who wins when ranges overlap
// (see classify.go). group selects the submatch whose range is stamped,
// 0 meaning the whole match. The callable rule needs group 1 because RE2
// has no lookahead: the pattern consumes the "(" but only the identifier
// is stamped.
type rule struct {
	re       *regexp.Regexp
	cat      Category
	priority int
	group    int
}

// RuleSet is the fixed, ordered C rule table. Built once at startup and
// read-only afterwards; safe to share across goroutines.
type RuleSet struct {
	rules []rule
}

var cKeywords = []string{
	"if", "else", "for", "while", "do", "switch", "case", "break",
	"continue", "return", "goto", "sizeof", "struct", "union", "enum",
	"typedef", "static", "const", "volatile", "extern", "register",
	"inline", "restrict",
}

var cTypes = []string{
	"int", "long", "short", "char", "float", "double", "void",
	"signed", "unsigned", "bool",
}

// Priority of the callable rule. Lower than every word rule so an
// identifier that is also a keyword or type keeps its earlier stamp
// even though the callable rule runs last.
const callablePriority = 0

// NewCRuleSet compiles the C rule table. A pattern that fails to compile
// is a defect in this table, not a runtime condition, so it panics.
func NewCRuleSet() *RuleSet {
	rs := &RuleSet{}
	pri := 1
	for _, w := range cKeywords {
		rs.add(`\b`+w+`\b`, CatKeyword, pri, 0)
		pri++
	}
	for _, t := range cTypes {
		rs.add(`\b`+t+`\b`, CatType, pri, 0)
		pri++
	}
	rs.add(`\b[0-9]+(\.[0-9]+)?\b`, CatNumber, pri, 0)
	pri++
	rs.add(`"[^"\\]*(\\.[^"\\]*)*"`, CatString, pri, 0)
	pri++
	rs.add(`'[^'\\]*(\\.[^'\\]*)*'`, CatString, pri, 0)
	pri++
	rs.add(`^\s*#.*`, CatPreproc, pri, 0)
	pri++
	rs.add(`//[^\n]*`, CatComment, pri, 0)
	pri++
	rs.add(`/\*.*?\*/`, CatComment, pri, 0)
	rs.add(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`, CatCallable, callablePriority, 1)
	return rs
}

func (rs *RuleSet) add(pattern string, cat Category, priority, group int) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("highlight: bad rule pattern %q: %v", pattern, err))
	}
	rs.rules = append(rs.rules, rule{re: re, cat: cat, priority: priority, group: group})
}

// Len reports the number of rules in the table.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
