package genius

import "encoding/json"

// Reply is the structured result of one generation turn.
type Reply struct {
	Message         string
	SectionComplete bool
	SectionContent  string
}

type rawReply struct {
	Message         string `json:"message"`
	SectionComplete bool   `json:"sectionComplete"`
	SectionContent  string `json:"sectionContent"`
}

// ParseReply decodes the full raw text of a completed stream. The model is
// instructed to answer with a single JSON object but may wrap it in prose or
// a markdown fence, so the first balanced {...} span is extracted before
// decoding. If no well-formed object can be found the whole raw text becomes
// the message and the turn degrades to plain display.
func ParseReply(raw string) Reply {
	if span, ok := firstJSONObject(raw); ok {
		var r rawReply
		if err := json.Unmarshal([]byte(span), &r); err == nil {
			out := Reply{
				Message:         r.Message,
				SectionComplete: r.SectionComplete,
			}
			if out.Message == "" {
				out.Message = raw
			}
			if r.SectionComplete && r.SectionContent != "" {
				out.SectionContent = r.SectionContent
			}
			return out
		}
	}
	return Reply{Message: raw}
}

// firstJSONObject returns the first balanced top-level {...} span in s,
// respecting strings and escapes.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
