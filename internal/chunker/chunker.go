package chunker

import (
	"strings"

	"studybuddy/internal/tokenizer"
)

const (
	// DefaultTargetTokens is the soft bound a segment is closed at.
	DefaultTargetTokens = 500
	// DefaultMaxTokens is the hard bound no emitted segment may exceed.
	DefaultMaxTokens = 650
)

// Segment is one token-bounded span of a document's text, in document order.
type Segment struct {
	Index      int
	Text       string
	TokenCount int
}

// Chunker splits document text into token-bounded segments. It accumulates
// whole paragraphs up to the target bound and force-splits any paragraph whose
// own token count exceeds the hard maximum.
type Chunker struct {
	counter      tokenizer.Counter
	targetTokens int
	maxTokens    int
}

// New creates a Chunker. Non-positive bounds fall back to the defaults, and
// the maximum is raised to the target if configured below it.
func New(counter tokenizer.Counter, targetTokens, maxTokens int) *Chunker {
	if targetTokens <= 0 {
		targetTokens = DefaultTargetTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxTokens < targetTokens {
		maxTokens = targetTokens
	}
	return &Chunker{
		counter:      counter,
		targetTokens: targetTokens,
		maxTokens:    maxTokens,
	}
}

// Split converts raw document text into ordered segments with 0-based,
// gap-free indices. Text with no non-empty paragraphs yields no segments.
//
// Paragraphs are accumulated while the token count of the joined candidate
// stays within the target; the candidate is re-counted on the joined text
// rather than summed per paragraph, since BPE token counts are not additive
// across concatenation boundaries. Paragraphs whose own count exceeds the
// maximum are force-split into word groups that each stay within the target,
// including the trailing remainder group, so no word is dropped or reordered.
func (c *Chunker) Split(text string) []Segment {
	var (
		segments  []Segment
		accText   string
		accTokens int
	)

	flush := func() {
		if accText == "" {
			return
		}
		segments = append(segments, Segment{
			Index:      len(segments),
			Text:       accText,
			TokenCount: accTokens,
		})
		accText = ""
		accTokens = 0
	}

	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paraTokens := c.counter.Count(para)

		if paraTokens > c.maxTokens {
			flush()
			c.forceSplit(para, &segments)
			continue
		}

		candidate := para
		if accText != "" {
			candidate = accText + "\n" + para
		}
		if candTokens := c.counter.Count(candidate); candTokens <= c.targetTokens {
			accText = candidate
			accTokens = candTokens
			continue
		}

		flush()
		accText = para
		accTokens = paraTokens
	}

	flush()
	return segments
}

// forceSplit appends word-group segments for a paragraph too large to keep
// whole. Each group is grown until adding the next word would push it past
// the target, so every emitted group stays within the target bound.
func (c *Chunker) forceSplit(para string, segments *[]Segment) {
	var (
		groupText   string
		groupTokens int
	)

	emit := func() {
		if groupText == "" {
			return
		}
		*segments = append(*segments, Segment{
			Index:      len(*segments),
			Text:       groupText,
			TokenCount: groupTokens,
		})
		groupText = ""
		groupTokens = 0
	}

	for _, word := range strings.Fields(para) {
		candidate := word
		if groupText != "" {
			candidate = groupText + " " + word
		}
		candTokens := c.counter.Count(candidate)
		if candTokens > c.targetTokens && groupText != "" {
			emit()
			groupText = word
			groupTokens = c.counter.Count(word)
			continue
		}
		groupText = candidate
		groupTokens = candTokens
	}

	emit()
}
