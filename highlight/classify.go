package highlight

import "unicode/utf8"

// cell is one rune's resolved category plus the priority of the rule
// that stamped it. Unstamped cells sit below every rule, including the
// callable rule at priority 0.
type cell struct {
	cat Category
	pri int
}

const unstamped = -1

// Classify runs the rule table over one block of text and returns its
// spans in left-to-right order. It is a pure function of (text, rules):
// identical input yields identical output, and no lexer state is carried
// between blocks. An empty block, or a block nothing matches, yields nil.
func Classify(text string, rs *RuleSet) []Span {
	if text == "" || rs == nil || len(rs.rules) == 0 {
		return nil
	}

	// Rule matches arrive as byte offsets; spans are rune offsets.
	byteToRune := make([]int, len(text)+1)
	n := 0
	for i := range text {
		byteToRune[i] = n
		n++
	}
	byteToRune[len(text)] = n

	grid := make([]cell, n)
	for i := range grid {
		grid[i] = cell{cat: CatNone, pri: unstamped}
	}

	for _, r := range rs.rules {
		// Successive non-overlapping matches: each search resumes after
		// the previous match's end, so a rule never re-covers its own
		// characters.
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			lo, hi := m[2*r.group], m[2*r.group+1]
			if lo < 0 || hi <= lo {
				continue
			}
			stamp(grid, byteToRune[lo], byteToRune[hi], r.cat, r.priority)
		}
	}

	return compress(grid)
}

// stamp overwrites [lo, hi) when the incoming rule's priority is at
// least the cell's. Distinct rules never share a priority; the >= lets
// a rule restamp its own earlier match.
func stamp(grid []cell, lo, hi int, cat Category, pri int) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(grid) {
		hi = len(grid)
	}
	for i := lo; i < hi; i++ {
		if pri >= grid[i].pri {
			grid[i] = cell{cat: cat, pri: pri}
		}
	}
}

// compress folds the flat per-rune map into maximal spans, skipping
// unstamped runs.
func compress(grid []cell) []Span {
	var spans []Span
	i := 0
	for i < len(grid) {
		c := grid[i].cat
		if c == CatNone {
			i++
			continue
		}
		j := i + 1
		for j < len(grid) && grid[j].cat == c {
			j++
		}
		spans = append(spans, Span{Start: i, Len: j - i, Cat: c})
		i = j
	}
	return spans
}

// CategoryAt resolves the category covering rune offset i, or CatNone.
// Paint code uses this to style one rune at a time.
func CategoryAt(spans []Span, i int) Category {
	for _, s := range spans {
		if i >= s.Start && i < s.Start+s.Len {
			return s.Cat
		}
		if s.Start > i {
			break
		}
	}
	return CatNone
}

// RuneLen reports the rune count of a block, the upper bound for span
// offsets within it.
func RuneLen(text string) int {
	return utf8.RuneCountInString(text)
}
