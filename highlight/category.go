// Package highlight classifies C source lines into syntactic spans.
// It is UI-agnostic: input is one block (line) of text, output is a list
// of rune-offset spans tagged with a category. Mapping categories to
// colors is the presentation layer's job.
package highlight

// Category is the syntactic class of a span.
type Category int

const (
	CatNone Category = iota
	CatKeyword
	CatType
	CatNumber
	CatString
	CatComment
	CatPreproc
	CatCallable
)

func (c Category) String() string {
	switch c {
	case CatKeyword:
		return "keyword"
	case CatType:
		return "type"
	case CatNumber:
		return "number"
	case CatString:
		return "string"
	case CatComment:
		return "comment"
	case CatPreproc:
		return "preproc"
	case CatCallable:
		return "callable"
	default:
		return "none"
	}
}

// Span is a contiguous run of runes within one block, tagged with a
// category. Start and Len are rune offsets into the block's text.
type Span struct {
	Start int
	Len   int
	Cat   Category
}
