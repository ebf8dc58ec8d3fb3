// Package stream merges mechanical events and narration tokens into one
// ordered outbound frame stream, keeping control tags out of consumer
// view even when they arrive split across token boundaries.
package stream

import "strings"

const (
	tagOpen  = "<<"
	tagClose = ">>"
)

// TagFilter strips <<...>> control tags from a token stream. Text that
// might be the start of an unfinished tag is held back until the tag
// completes or the stream ends, so a tag is never exposed in split form.
type TagFilter struct {
	pending string
	tags    []string
	speaker string
}

// Write feeds one token into the filter and returns the text that is
// safe to flush to the consumer.
func (f *TagFilter) Write(token string) string {
	f.pending += token
	return f.drain(false)
}

// Flush ends the stream: complete tags are stripped and any residual
// buffer is returned verbatim.
func (f *TagFilter) Flush() string {
	return f.drain(true)
}

// Tags returns the control tags stripped so far, in order.
func (f *TagFilter) Tags() []string {
	return f.tags
}

// Speaker returns the most recent speaker attribution, if any tag
// carried one.
func (f *TagFilter) Speaker() string {
	return f.speaker
}

func (f *TagFilter) drain(eof bool) string {
	var out strings.Builder
	for {
		start := strings.Index(f.pending, tagOpen)
		if start == -1 {
			break
		}
		end := strings.Index(f.pending[start+len(tagOpen):], tagClose)
		if end == -1 {
			// unfinished tag: flush what precedes it, hold the rest
			out.WriteString(f.pending[:start])
			f.pending = f.pending[start:]
			if eof {
				// the tag never completed; emit the residue verbatim
				out.WriteString(f.pending)
				f.pending = ""
			}
			return out.String()
		}
		tag := f.pending[start+len(tagOpen) : start+len(tagOpen)+end]
		f.recordTag(tag)
		out.WriteString(f.pending[:start])
		f.pending = f.pending[start+len(tagOpen)+end+len(tagClose):]
	}

	if !eof {
		// a trailing "<" may be the first half of a tag marker
		if strings.HasSuffix(f.pending, "<") {
			out.WriteString(f.pending[:len(f.pending)-1])
			f.pending = "<"
			return out.String()
		}
	}
	out.WriteString(f.pending)
	f.pending = ""
	return out.String()
}

func (f *TagFilter) recordTag(tag string) {
	f.tags = append(f.tags, tag)
	if name, ok := ParseSpeakerTag(tag); ok {
		f.speaker = name
	}
}

// ParseSpeakerTag extracts the speaker name from a SPEAKER control tag.
func ParseSpeakerTag(tag string) (string, bool) {
	key, value, found := strings.Cut(tag, ":")
	if !found {
		return "", false
	}
	if !strings.EqualFold(strings.TrimSpace(key), "SPEAKER") {
		return "", false
	}
	name := strings.TrimSpace(value)
	if name == "" {
		return "", false
	}
	return name, true
}
