package lexer

// TokenRecord is the serializable form of a Token used by the CLI's json and
// cbor dumps.
type TokenRecord struct {
	Kind    string        `json:"kind" cbor:"kind"`
	Start   int           `json:"start" cbor:"start"`
	Stop    int           `json:"stop" cbor:"stop"`
	Text    string        `json:"text" cbor:"text"`
	Leading []TokenRecord `json:"leading,omitempty" cbor:"leading,omitempty"`
}

// Record converts a token and its trivia.
func Record(t Token) TokenRecord {
	r := TokenRecord{
		Kind:  t.Kind.String(),
		Start: t.Start,
		Stop:  t.Stop,
		Text:  t.Text,
	}
	for _, w := range t.Leading {
		r.Leading = append(r.Leading, Record(w))
	}
	return r
}

// Records converts a token list.
func Records(tokens []Token) []TokenRecord {
	out := make([]TokenRecord, len(tokens))
	for i, t := range tokens {
		out[i] = Record(t)
	}
	return out
}
