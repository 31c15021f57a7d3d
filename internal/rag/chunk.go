package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var separators = []string{"\n\n", "\n", " "}

// SplitText breaks text into pieces of at most size runes, preferring
// paragraph, then line, then word boundaries. Consecutive chunks share up to
// overlap runes of trailing context.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	return merge(splitPieces(text, size, 0), size, overlap)
}

// splitPieces recursively splits until every piece fits in size.
func splitPieces(text string, size, level int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}
	if level >= len(separators) {
		return hardSplit(text, size)
	}
	sep := separators[level]
	var out []string
	for _, part := range strings.Split(text, sep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		sub := splitPieces(part, size, level+1)
		sub[len(sub)-1] += sep
		out = append(out, sub...)
	}
	return out
}

func hardSplit(text string, size int) []string {
	r := []rune(text)
	var out []string
	for len(r) > 0 {
		n := min(size, len(r))
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return out
}

// merge packs pieces greedily into chunks, seeding each new chunk with the
// tail of the previous one.
func merge(pieces []string, size, overlap int) []string {
	var (
		chunks []string
		cur    []string
		curLen int
	)
	flush := func() {
		s := strings.TrimSpace(strings.Join(cur, ""))
		if s != "" {
			chunks = append(chunks, s)
		}
	}
	for _, p := range pieces {
		pl := utf8.RuneCountInString(p)
		if curLen+pl > size && len(cur) > 0 {
			flush()
			// keep trailing pieces that fit in the overlap window
			var keep []string
			kl := 0
			for i := len(cur) - 1; i >= 0; i-- {
				l := utf8.RuneCountInString(cur[i])
				if kl+l > overlap || kl+l+pl > size {
					break
				}
				keep = append([]string{cur[i]}, keep...)
				kl += l
			}
			cur, curLen = keep, kl
		}
		cur = append(cur, p)
		curLen += pl
	}
	flush()
	return chunks
}
