// Package syntax defines the operator and keyword tables ("syntax profiles")
// that drive both the lexer and the expression parser.
//
// A Profile is built once through a Builder and is read-only afterwards, so a
// single Profile can be shared by any number of lexers and parsers running in
// parallel.
package syntax

import (
	"sort"
	"strings"

	"github.com/nattlua/nattlua-go/core/invariant"
)

// RightAssociative is the marker prefix that makes a binary operator
// right-associative when registered through SetBinaryOperatorTiers ("R..", "R^").
const RightAssociative = "R"

// BinaryOperatorInfo holds the climbing priorities of a binary operator.
//
// Left-associative operators have LeftPriority == RightPriority == tier.
// Right-associative operators have LeftPriority == tier+1 and
// RightPriority == tier, so an operator of the same tier to the right is
// absorbed into the right operand.
type BinaryOperatorInfo struct {
	LeftPriority  int
	RightPriority int
}

// RightAssociative reports whether the operator rebinds at its own tier.
func (i BinaryOperatorInfo) RightAssociative() bool {
	return i.LeftPriority > i.RightPriority
}

type set map[string]struct{}

func (s set) add(words []string) {
	for _, w := range words {
		s[w] = struct{}{}
	}
}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}

func (s set) clone() set {
	out := make(set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Profile is an immutable keyword/operator table.
type Profile struct {
	name string

	symbols           []string // longest first
	numberAnnotations []string

	keywords            set
	nonStandardKeywords set
	keywordValues       set
	prefixOperators     set
	postfixOperators    set
	primaryBinary       set
	binary              map[string]BinaryOperatorInfo
	tiers               int

	prefixTranslations  map[string]Template
	postfixTranslations map[string]Template
	binaryTranslations  map[string]Template
}

// Name returns the profile name ("runtime", "typesystem", ...).
func (p *Profile) Name() string { return p.name }

// Symbols returns the registered symbols sorted by descending length.
func (p *Profile) Symbols() []string { return append([]string(nil), p.symbols...) }

// NumberAnnotations returns the numeric literal suffixes in match order.
func (p *Profile) NumberAnnotations() []string {
	return append([]string(nil), p.numberAnnotations...)
}

// MatchSymbol returns the longest registered symbol that src starts with.
func (p *Profile) MatchSymbol(src string) (string, bool) {
	for _, sym := range p.symbols {
		if strings.HasPrefix(src, sym) {
			return sym, true
		}
	}
	return "", false
}

// MatchNumberAnnotation returns the first annotation src starts with,
// compared case-insensitively. The returned string is the matched text in src.
func (p *Profile) MatchNumberAnnotation(src string) (string, bool) {
	for _, a := range p.numberAnnotations {
		if len(src) >= len(a) && strings.EqualFold(src[:len(a)], a) {
			return src[:len(a)], true
		}
	}
	return "", false
}

func (p *Profile) IsKeyword(text string) bool            { return p.keywords.has(text) }
func (p *Profile) IsNonStandardKeyword(text string) bool { return p.nonStandardKeywords.has(text) }
func (p *Profile) IsKeywordValue(text string) bool       { return p.keywordValues.has(text) }
func (p *Profile) IsPrefixOperator(text string) bool     { return p.prefixOperators.has(text) }
func (p *Profile) IsPostfixOperator(text string) bool    { return p.postfixOperators.has(text) }
func (p *Profile) IsPrimaryBinaryOperator(text string) bool {
	return p.primaryBinary.has(text)
}

// IsBinaryOperator reports whether text has an entry in the priority table.
func (p *Profile) IsBinaryOperator(text string) bool {
	_, ok := p.binary[text]
	return ok
}

// BinaryOperator returns the priorities of a binary operator.
func (p *Profile) BinaryOperator(text string) (BinaryOperatorInfo, bool) {
	info, ok := p.binary[text]
	return info, ok
}

// Tiers returns the number of binary priority tiers. Tier numbers run from 1
// (lowest) to Tiers() (highest).
func (p *Profile) Tiers() int { return p.tiers }

// PrefixTranslation returns the code generation template for a prefix
// operator. "~" has both a prefix and a binary template, so lookups are split
// by operator position.
func (p *Profile) PrefixTranslation(op string) (Template, bool) {
	t, ok := p.prefixTranslations[op]
	return t, ok
}

func (p *Profile) PostfixTranslation(op string) (Template, bool) {
	t, ok := p.postfixTranslations[op]
	return t, ok
}

func (p *Profile) BinaryTranslation(op string) (Template, bool) {
	t, ok := p.binaryTranslations[op]
	return t, ok
}

// Keywords returns the keyword set in sorted order.
func (p *Profile) Keywords() []string { return p.keywords.sorted() }

// OperatorWords returns every letter-shaped operator or keyword the profile
// knows (and, or, not, typeof, extends, ...). Used for suggestions.
func (p *Profile) OperatorWords() []string {
	words := make(set)
	collect := func(s set) {
		for w := range s {
			if !containsSymbol(w) {
				words[w] = struct{}{}
			}
		}
	}
	collect(p.keywords)
	collect(p.nonStandardKeywords)
	collect(p.keywordValues)
	collect(p.prefixOperators)
	collect(p.postfixOperators)
	for w := range p.binary {
		if !containsSymbol(w) {
			words[w] = struct{}{}
		}
	}
	return words.sorted()
}

// Builder accumulates registrations for a Profile. Every Add call is
// append-only; Build freezes a copy.
type Builder struct {
	p Profile
}

// NewBuilder starts an empty profile.
func NewBuilder(name string) *Builder {
	return &Builder{p: Profile{
		name:                name,
		keywords:            make(set),
		nonStandardKeywords: make(set),
		keywordValues:       make(set),
		prefixOperators:     make(set),
		postfixOperators:    make(set),
		primaryBinary:       make(set),
		binary:              make(map[string]BinaryOperatorInfo),
		prefixTranslations:  make(map[string]Template),
		postfixTranslations: make(map[string]Template),
		binaryTranslations:  make(map[string]Template),
	}}
}

// NewBuilderFrom starts a profile that extends base.
func NewBuilderFrom(base *Profile, name string) *Builder {
	invariant.NotNil(base, "base profile")
	b := &Builder{p: Profile{
		name:                name,
		symbols:             append([]string(nil), base.symbols...),
		numberAnnotations:   append([]string(nil), base.numberAnnotations...),
		keywords:            base.keywords.clone(),
		nonStandardKeywords: base.nonStandardKeywords.clone(),
		keywordValues:       base.keywordValues.clone(),
		prefixOperators:     base.prefixOperators.clone(),
		postfixOperators:    base.postfixOperators.clone(),
		primaryBinary:       base.primaryBinary.clone(),
		binary:              make(map[string]BinaryOperatorInfo, len(base.binary)),
		tiers:               base.tiers,
		prefixTranslations:  cloneTemplates(base.prefixTranslations),
		postfixTranslations: cloneTemplates(base.postfixTranslations),
		binaryTranslations:  cloneTemplates(base.binaryTranslations),
	}}
	for k, v := range base.binary {
		b.p.binary[k] = v
	}
	return b
}

func (b *Builder) AddKeywords(words ...string) *Builder {
	b.p.keywords.add(words)
	b.addSymbols(words)
	return b
}

func (b *Builder) AddNonStandardKeywords(words ...string) *Builder {
	b.p.nonStandardKeywords.add(words)
	b.addSymbols(words)
	return b
}

// AddKeywordValues registers keyword literals (nil, true, false, ...).
func (b *Builder) AddKeywordValues(words ...string) *Builder {
	b.p.keywordValues.add(words)
	b.addSymbols(words)
	return b
}

func (b *Builder) AddPrefixOperators(ops ...string) *Builder {
	b.p.prefixOperators.add(ops)
	b.addSymbols(ops)
	return b
}

func (b *Builder) AddPostfixOperators(ops ...string) *Builder {
	b.p.postfixOperators.add(ops)
	b.addSymbols(ops)
	return b
}

// AddPrimaryBinaryOperators registers the operators that bind inside a
// postfix chain ("." and ":").
func (b *Builder) AddPrimaryBinaryOperators(ops ...string) *Builder {
	b.p.primaryBinary.add(ops)
	b.addSymbols(ops)
	return b
}

// AddSymbolCharacters registers punctuation that is neither keyword nor
// operator (brackets, separators, ...).
func (b *Builder) AddSymbolCharacters(symbols ...string) *Builder {
	b.addSymbols(symbols)
	return b
}

// AddNumberAnnotations appends numeric literal suffixes. They are tried in
// registration order, so longer suffixes sharing a prefix go first.
func (b *Builder) AddNumberAnnotations(suffixes ...string) *Builder {
	b.p.numberAnnotations = append(b.p.numberAnnotations, suffixes...)
	return b
}

// SetBinaryOperatorTiers replaces the binary priority table. tiers[0] is the
// lowest priority; an operator written with the RightAssociative prefix (and
// longer than the prefix) is right-associative.
func (b *Builder) SetBinaryOperatorTiers(tiers ...[]string) *Builder {
	b.p.binary = make(map[string]BinaryOperatorInfo)
	b.p.tiers = len(tiers)

	for i, tier := range tiers {
		priority := i + 1
		ops := make([]string, 0, len(tier))
		for _, op := range tier {
			if len(op) > len(RightAssociative) && strings.HasPrefix(op, RightAssociative) && containsSymbol(op[len(RightAssociative):]) {
				op = op[len(RightAssociative):]
				b.p.binary[op] = BinaryOperatorInfo{LeftPriority: priority + 1, RightPriority: priority}
			} else {
				b.p.binary[op] = BinaryOperatorInfo{LeftPriority: priority, RightPriority: priority}
			}
			ops = append(ops, op)
		}
		b.addSymbols(ops)
	}
	return b
}

// AddBinaryOperatorTranslation registers templates with A and B slots.
func (b *Builder) AddBinaryOperatorTranslation(templates map[string]string) *Builder {
	return b.addTranslations(b.p.binaryTranslations, templates, 2)
}

// AddPrefixOperatorTranslation registers templates with an A slot.
func (b *Builder) AddPrefixOperatorTranslation(templates map[string]string) *Builder {
	return b.addTranslations(b.p.prefixTranslations, templates, 1)
}

// AddPostfixOperatorTranslation registers templates with an A slot.
func (b *Builder) AddPostfixOperatorTranslation(templates map[string]string) *Builder {
	return b.addTranslations(b.p.postfixTranslations, templates, 1)
}

func (b *Builder) addTranslations(dst map[string]Template, templates map[string]string, slots int) *Builder {
	for op, text := range templates {
		t, err := ParseTemplate(op, text, slots)
		invariant.ExpectNoError(err, "operator translation "+op)
		dst[op] = t
	}
	return b
}

func cloneTemplates(src map[string]Template) map[string]Template {
	out := make(map[string]Template, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// addSymbols inserts every string with at least one symbol-class byte.
func (b *Builder) addSymbols(words []string) {
	for _, w := range words {
		if w == "" || !containsSymbol(w) {
			continue
		}
		dup := false
		for _, s := range b.p.symbols {
			if s == w {
				dup = true
				break
			}
		}
		if !dup {
			b.p.symbols = append(b.p.symbols, w)
		}
	}
}

// Build freezes the registrations into a Profile. The builder stays usable.
func (b *Builder) Build() *Profile {
	out := NewBuilderFrom(&b.p, b.p.name).p

	sort.SliceStable(out.symbols, func(i, j int) bool {
		if len(out.symbols[i]) != len(out.symbols[j]) {
			return len(out.symbols[i]) > len(out.symbols[j])
		}
		return out.symbols[i] < out.symbols[j]
	})

	invariant.Postcondition(sortedByLength(out.symbols), "symbols must be sorted by descending length")
	return &out
}

func sortedByLength(symbols []string) bool {
	for i := 1; i < len(symbols); i++ {
		if len(symbols[i]) > len(symbols[i-1]) {
			return false
		}
	}
	return true
}
