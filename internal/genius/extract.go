package genius

import "strings"

// ExtractField progressively decodes the string value of key out of a
// partial JSON document. partial is the text accumulated from an in-flight
// stream that will eventually form one JSON object. The returned value is
// always a prefix of the field's fully decoded value, so repeated calls on a
// growing buffer never un-reveal characters. ok is false until the key and
// the opening quote of its value have both arrived.
func ExtractField(partial, key string) (value string, ok bool) {
	keyToken := `"` + key + `"`
	keyStart := strings.Index(partial, keyToken)
	if keyStart == -1 {
		return "", false
	}

	colon := strings.IndexByte(partial[keyStart+len(keyToken):], ':')
	if colon == -1 {
		return "", false
	}
	colon += keyStart + len(keyToken)

	valueStart := strings.IndexByte(partial[colon+1:], '"')
	if valueStart == -1 {
		return "", false
	}
	valueStart += colon + 2

	var b strings.Builder
	for i := valueStart; i < len(partial); {
		c := partial[i]
		if c == '\\' {
			if i+1 >= len(partial) {
				// escape cut off mid-stream; wait for the next chunk
				break
			}
			switch next := partial[i+1]; next {
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(next)
			}
			i += 2
			continue
		}
		if c == '"' {
			break
		}
		b.WriteByte(c)
		i++
	}

	return b.String(), true
}
