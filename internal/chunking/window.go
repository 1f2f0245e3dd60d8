package chunking

import "unicode"

type span struct {
	start int
	end   int
}

// window cuts text[start:end] into spans of about cfg.TargetChars runes.
// Consecutive spans overlap by about cfg.OverlapChars. Every span is trimmed
// of surrounding whitespace, so text[span.start:span.end] is the chunk body.
func window(text []rune, start, end int, cfg Config) []span {
	start, end = trimSpan(text, start, end)

	var spans []span
	pos := start
	for pos < end {
		for pos < end && unicode.IsSpace(text[pos]) {
			pos++
		}
		if pos >= end {
			break
		}

		var cut int
		if pos+cfg.TargetChars+cfg.Tolerance() >= end {
			cut = end
		} else {
			cut = snapBack(text, pos, pos+cfg.TargetChars)
		}

		s, e := trimSpan(text, pos, cut)
		if cut < end && e-s < cfg.MinChars {
			merged, ok := mergeForward(text, cut, min(end, pos+cfg.TargetChars+cfg.Tolerance()), end)
			if ok {
				cut = merged
				s, e = trimSpan(text, pos, cut)
			}
			if cut < end && e-s < cfg.MinChars {
				pos = cut
				continue
			}
		}

		if e > s {
			spans = append(spans, span{start: s, end: e})
		}
		if cut >= end {
			break
		}

		next := cut - cfg.OverlapChars
		if next <= pos {
			next = cut
		}
		pos = alignWordStart(text, next, cut)
	}
	return spans
}

// snapBack moves cut backwards to the nearest paragraph break, then sentence
// end, then newline, then any whitespace. A boundary before the window's
// midpoint is never used; with none available the window is cut hard.
func snapBack(text []rune, pos, cut int) int {
	mid := pos + (cut-pos)/2
	for _, boundary := range []func([]rune, int) bool{isParagraphBreak, isSentenceEnd, isNewline, isSpaceBefore} {
		for i := cut; i >= mid && i > pos; i-- {
			if boundary(text, i) {
				return i
			}
		}
	}
	return cut
}

// mergeForward finds the next paragraph break after from, no further than limit.
// Reaching the section end also counts.
func mergeForward(text []rune, from, limit, sectionEnd int) (int, bool) {
	for i := from + 1; i <= limit; i++ {
		if isParagraphBreak(text, i) {
			return i, true
		}
	}
	if limit >= sectionEnd {
		return sectionEnd, true
	}
	return from, false
}

// alignWordStart advances i to the start of a word so overlapping chunks do
// not open mid-word. It never moves past limit.
func alignWordStart(text []rune, i, limit int) int {
	for i < limit && i > 0 && !unicode.IsSpace(text[i-1]) && !unicode.IsSpace(text[i]) {
		i++
	}
	return i
}

// isParagraphBreak reports whether a blank line ends right before i.
func isParagraphBreak(text []rune, i int) bool {
	if i < 2 || i > len(text) || text[i-1] != '\n' {
		return false
	}
	j := i - 2
	for j >= 0 && (text[j] == ' ' || text[j] == '\t') {
		j--
	}
	return j >= 0 && text[j] == '\n'
}

func isSentenceEnd(text []rune, i int) bool {
	if i < 1 || i > len(text) {
		return false
	}
	switch text[i-1] {
	case '.', '!', '?':
		return i == len(text) || unicode.IsSpace(text[i])
	}
	return false
}

func isNewline(text []rune, i int) bool {
	return i >= 1 && i <= len(text) && text[i-1] == '\n'
}

func isSpaceBefore(text []rune, i int) bool {
	return i >= 1 && i <= len(text) && unicode.IsSpace(text[i-1])
}
