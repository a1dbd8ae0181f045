package syntax

var (
	runtimeProfile    = NewRuntimeBuilder().Build()
	typesystemProfile = NewTypesystemBuilder().Build()
)

// Runtime returns the shared profile for ordinary code.
func Runtime() *Profile { return runtimeProfile }

// Typesystem returns the shared profile for type annotations.
func Typesystem() *Profile { return typesystemProfile }

// Profiles returns the lexer's default profile order: runtime first, then
// typesystem.
func Profiles() []*Profile { return []*Profile{runtimeProfile, typesystemProfile} }

// ByName looks up a built-in profile.
func ByName(name string) (*Profile, bool) {
	switch name {
	case runtimeProfile.Name():
		return runtimeProfile, true
	case typesystemProfile.Name():
		return typesystemProfile, true
	}
	return nil, false
}

// NewRuntimeBuilder returns a builder preloaded with the runtime grammar:
// Lua 5.x plus bitwise operators, C-style comparison/logic spellings, ++ and
// a few extra keywords.
func NewRuntimeBuilder() *Builder {
	b := NewBuilder("runtime")

	b.AddNumberAnnotations("ull", "ll", "ul", "i")

	b.AddPrefixOperatorTranslation(map[string]string{
		"~": "bit.bnot(A)",
	})
	b.AddPostfixOperatorTranslation(map[string]string{
		"++": "A = A + 1",
	})
	b.AddBinaryOperatorTranslation(map[string]string{
		">>": "bit.rshift(A, B)",
		"<<": "bit.lshift(A, B)",
		"|":  "bit.bor(A, B)",
		"&":  "bit.band(A, B)",
		"//": "math.floor(A / B)",
		"~":  "bit.bxor(A, B)",
	})

	b.AddKeywordValues("...", "nil", "true", "false")
	b.AddSymbolCharacters(",", ";", "(", ")", "{", "}", "[", "]", "=", "::", "\"", "'", "<|", "|>", "//")
	b.AddNonStandardKeywords("continue", "import", "literal", "mutable")
	b.AddKeywords(
		"do", "end", "if", "then", "else", "elseif", "for", "in", "while",
		"repeat", "until", "break", "return", "local", "function",
		"and", "not", "or",
	)
	b.AddPrefixOperators("-", "#", "not", "!", "~", "supertype")
	b.AddPrimaryBinaryOperators(".", ":")
	b.AddPostfixOperators("++")
	b.SetBinaryOperatorTiers(
		[]string{"or", "||"},
		[]string{"and", "&&"},
		[]string{"<", ">", "<=", ">=", "~=", "==", "!="},
		[]string{"|"},
		[]string{"~"},
		[]string{"&"},
		[]string{"<<", ">>"},
		[]string{"R.."},
		[]string{"+", "-"},
		[]string{"*", "/", "/idiv/", "%"},
		[]string{"R^"},
	)
	return b
}

// NewTypesystemBuilder returns a builder for the type annotation grammar. It
// extends the runtime grammar with type-level prefix operators and the
// extends/subsetof/supersetof relations, which bind tighter than and/or but
// looser than comparisons.
func NewTypesystemBuilder() *Builder {
	b := NewBuilderFrom(NewRuntimeBuilder().Build(), "typesystem")

	b.AddPrefixOperators("-", "#", "not", "~", "typeof", "$", "unique", "mutable", "literal", "supertype", "expand")
	b.AddPrimaryBinaryOperators(".", ":")
	b.SetBinaryOperatorTiers(
		[]string{"or", "||"},
		[]string{"and", "&&"},
		[]string{"extends"},
		[]string{"subsetof"},
		[]string{"supersetof"},
		[]string{"<", ">", "<=", ">=", "~=", "=="},
		[]string{"|"},
		[]string{"~"},
		[]string{"&"},
		[]string{"<<", ">>"},
		[]string{"R.."},
		[]string{"+", "-"},
		[]string{"*", "/", "/idiv/", "%"},
		[]string{"R^"},
	)
	return b
}
