// Package splitter breaks extracted document text into token-bounded,
// overlapping chunks suitable for embedding. Splitting prefers paragraph
// boundaries, degrades to sentences and then words when a unit exceeds the
// token budget, and falls back to a fixed character window if the token
// counter misbehaves.
package splitter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// charsPerToken is the rough character width of one token, used by the
// character fallback and the config size advisory.
const charsPerToken = 4

// TokenCounter maps text to a non-negative token count. It must be
// deterministic; the splitter calls it once per packing decision, so its
// latency bounds splitting latency.
type TokenCounter func(text string) int

// sentenceBoundary marks sentence-ending punctuation followed by whitespace.
// Deliberately simple and deterministic, not natural-language detection.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Split breaks text into chunks of at most cfg.ChunkSize tokens, in original
// order, each trimmed. Consecutive chunks share cfg.ChunkOverlap tokens of
// context. Split never fails for well-formed input: if the hierarchical pass
// panics (a broken token counter, typically), it degrades to a fixed-width
// character split with no overlap.
func Split(text string, cfg Config, count TokenCounter) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	s := splitter{cfg: cfg, count: count}
	chunks, err := s.hierarchical(text)
	if err != nil {
		return characterSplit(text, cfg.ChunkSize)
	}
	return chunks
}

type splitter struct {
	cfg   Config
	count TokenCounter
}

// hierarchical runs the recursive pass, converting any panic into an error
// so Split can fall back instead of crashing the caller.
func (s splitter) hierarchical(text string) (chunks []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hierarchical split failed: %v", r)
		}
	}()
	return s.recursiveSplit(text), nil
}

func (s splitter) recursiveSplit(text string) []string {
	if s.count(text) <= s.cfg.ChunkSize {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")
	if len(paragraphs) > 1 {
		var current string
		currentTokens := 0
		for _, paragraph := range paragraphs {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}
			paraTokens := s.count(paragraph)

			if paraTokens > s.cfg.ChunkSize {
				// Oversized paragraph: flush the buffer and degrade to
				// sentence granularity. The pieces go straight to the
				// output, never merged with surrounding paragraphs.
				if current != "" {
					chunks = append(chunks, strings.TrimSpace(current))
					current = ""
					currentTokens = 0
				}
				chunks = append(chunks, s.splitBySentences(paragraph)...)
				continue
			}

			if currentTokens+paraTokens > s.cfg.ChunkSize && current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
				current = paragraph
				currentTokens = paraTokens
			} else if current != "" {
				current += "\n\n" + paragraph
				currentTokens += paraTokens
			} else {
				current = paragraph
				currentTokens = paraTokens
			}
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
	} else {
		// No paragraph breaks at all; go straight to sentences.
		chunks = s.splitBySentences(text)
	}

	if len(chunks) > 1 && s.cfg.ChunkOverlap > 0 {
		chunks = s.applyOverlap(chunks)
	}
	return chunks
}

// splitBySentences packs sentences greedily up to the token budget. A single
// sentence over the budget is split by words.
func (s splitter) splitBySentences(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []string{text}
	}

	var chunks []string
	var current string
	currentTokens := 0
	for _, sentence := range sentences {
		sentTokens := s.count(sentence)

		if sentTokens > s.cfg.ChunkSize {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
				current = ""
				currentTokens = 0
			}
			chunks = append(chunks, s.splitByWords(sentence)...)
			continue
		}

		if currentTokens+sentTokens > s.cfg.ChunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = sentence
			currentTokens = sentTokens
		} else if current != "" {
			current += " " + sentence
			currentTokens += sentTokens
		} else {
			current = sentence
			currentTokens = sentTokens
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace. No boundary found means the whole text is one sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation byte; the sentence ends right after it.
		if sentence := strings.TrimSpace(text[start : loc[0]+1]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitByWords packs whitespace-delimited words greedily, recounting the
// buffer plus the next word at each step. A single word over the budget is
// kept whole in its own chunk; character-level word splitting is not
// attempted.
func (s splitter) splitByWords(text string) []string {
	var chunks []string
	var current string
	for _, word := range strings.Fields(text) {
		test := strings.TrimSpace(current + " " + word)
		if s.count(test) > s.cfg.ChunkSize && current != "" {
			chunks = append(chunks, current)
			current = word
		} else {
			current = test
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// applyOverlap prepends each chunk (except the first) with the tail of its
// predecessor. Tails are always taken from the pre-overlap sequence, so
// overlap text never compounds.
func (s splitter) applyOverlap(chunks []string) []string {
	if len(chunks) <= 1 {
		return chunks
	}
	out := make([]string, 0, len(chunks))
	out = append(out, chunks[0])
	for i := 1; i < len(chunks); i++ {
		tail := s.overlapTail(chunks[i-1])
		if tail != "" {
			out = append(out, tail+" "+chunks[i])
		} else {
			out = append(out, chunks[i])
		}
	}
	return out
}

// overlapTail returns the longest word-aligned suffix of text whose token
// count stays within the overlap budget. The first word that would overflow
// is excluded whole, never truncated.
func (s splitter) overlapTail(text string) string {
	words := strings.Fields(text)
	var overlap []string
	for i := len(words) - 1; i >= 0; i-- {
		test := strings.Join(append([]string{words[i]}, overlap...), " ")
		if s.count(test) > s.cfg.ChunkOverlap {
			break
		}
		overlap = append([]string{words[i]}, overlap...)
	}
	return strings.Join(overlap, " ")
}

// characterSplit is the terminal safety net: fixed windows of roughly one
// chunk's worth of characters. It performs no token counting, applies no
// overlap, and cannot fail.
func characterSplit(text string, chunkSize int) []string {
	window := chunkSize * charsPerToken
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += window {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Fragment is one retained piece of the input after splitting, overlap
// injection, and minimum-size filtering.
type Fragment struct {
	Content    string
	Index      int
	TokenCount int
	CharCount  int
}

// Fragments trims each chunk, drops any shorter than cfg.MinChunkSize
// characters, and indexes the retained fragments sequentially from zero.
// Dropped fragments do not consume index slots. Token counts are recomputed
// on the final, post-overlap content.
func Fragments(chunks []string, cfg Config, count TokenCounter) []Fragment {
	var frags []Fragment
	for _, chunk := range chunks {
		content := strings.TrimSpace(chunk)
		chars := utf8.RuneCountInString(content)
		if chars < cfg.MinChunkSize {
			continue
		}
		frags = append(frags, Fragment{
			Content:    content,
			Index:      len(frags),
			TokenCount: safeCount(count, content),
			CharCount:  chars,
		})
	}
	return frags
}

// safeCount guards the reporting recount the same way Split guards the main
// pass; a panicking counter yields a zero count rather than a crash.
func safeCount(count TokenCounter, text string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return count(text)
}
