// Package gutter lays out the line-number column for a scrolled view of
// a block-based buffer. It produces text and geometry only; drawing is
// the caller's job.
package gutter

import "strconv"

// Viewport is the visible window over the buffer: the first visible
// block index and how many block rows fit on screen. Each block renders
// as exactly one row.
type Viewport struct {
	First  int
	Height int
}

// Clamp bounds a viewport against the buffer size so First never points
// past the last block.
func (v Viewport) Clamp(blockCount int) Viewport {
	if v.Height < 1 {
		v.Height = 1
	}
	maxFirst := blockCount - v.Height
	if maxFirst < 0 {
		maxFirst = 0
	}
	if v.First > maxFirst {
		v.First = maxFirst
	}
	if v.First < 0 {
		v.First = 0
	}
	return v
}

// Line is one gutter row: the block it numbers and its right-aligned
// label.
type Line struct {
	Block  int
	Number string
}

// Digits reports how many digits the largest line number needs. A
// buffer always shows at least line 1.
func Digits(blockCount int) int {
	if blockCount < 1 {
		blockCount = 1
	}
	d := 0
	for blockCount > 0 {
		d++
		blockCount /= 10
	}
	return d
}

// Width is the column width in character cells: the digit run plus
// three cells of fixed padding. It must be re-read after any change to
// the block count; crossing a power of ten widens it.
func Width(blockCount int) int {
	return 3 + Digits(blockCount)
}

// Lines returns one entry per visible block, numbers 1-based and
// right-aligned to the digit width. Rows below the last block get no
// entry.
func Lines(v Viewport, blockCount int) []Line {
	v = v.Clamp(blockCount)
	digits := Digits(blockCount)
	out := make([]Line, 0, v.Height)
	for row := 0; row < v.Height; row++ {
		block := v.First + row
		if block >= blockCount {
			break
		}
		out = append(out, Line{Block: block, Number: pad(block+1, digits)})
	}
	return out
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = " " + s
	}
	return s
}
