// Package parser builds expression trees from lexer tokens.
//
// Binary operators are folded by precedence climbing over the priorities of
// a syntax.Profile. Errors are returned, never panicked, and abort the
// current parse; the caller discards any partial tree.
package parser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/core/invariant"
	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

// maxArguments caps the argument list of a single call.
const maxArguments = 1000

// ParseTree is the result of parsing a whole buffer as one expression.
type ParseTree struct {
	Source      *code.Code
	Tokens      []lexer.Token
	LexErrors   []lexer.LexError
	Root        Expression      // nil for empty input or on error
	Error       *ParseError     // nil on success
	Telemetry   *ParseTelemetry // nil if disabled
	DebugEvents []DebugEvent    // nil if disabled
}

// Err returns the first problem found: a lex error, then the parse error.
func (t *ParseTree) Err() error {
	if len(t.LexErrors) > 0 {
		return t.LexErrors[0]
	}
	if t.Error != nil {
		return t.Error
	}
	return nil
}

// Parse lexes src and parses it as exactly one expression followed by end of
// file. Lex errors do not stop the parse: the recovered tokens are parsed
// anyway.
func Parse(src *code.Code, opts ...ParserOpt) *ParseTree {
	invariant.NotNil(src, "src")

	config := newConfig(append([]ParserOpt{WithSource(src)}, opts...))

	var startLex time.Time
	if config.telemetry >= TelemetryTiming {
		startLex = time.Now()
	}
	lex := lexer.New(src,
		lexer.WithProfiles(config.profile, syntax.Runtime(), syntax.Typesystem()),
		lexer.WithLogger(config.logger),
	)
	tokens, lexErrors := lex.Tokenize()

	var lexTime time.Duration
	if config.telemetry >= TelemetryTiming {
		lexTime = time.Since(startLex)
	}

	tree := parseTokens(config, tokens)
	tree.LexErrors = lexErrors
	if tree.Telemetry != nil {
		tree.Telemetry.LexTime = lexTime
		tree.Telemetry.TotalTime += lexTime
		tree.Telemetry.ErrorCount += len(lexErrors)
	}
	return tree
}

// ParseString is a convenience wrapper for tests
func ParseString(input string, opts ...ParserOpt) *ParseTree {
	return Parse(code.FromString(input, "string"), opts...)
}

// ParseTokens parses pre-lexed tokens as one whole expression.
func ParseTokens(tokens []lexer.Token, opts ...ParserOpt) *ParseTree {
	return parseTokens(newConfig(opts), tokens)
}

func newConfig(opts []ParserOpt) *ParserConfig {
	config := &ParserConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.profile == nil {
		config.profile = syntax.Runtime()
	}
	if config.logger == nil {
		config.logger = lexer.DefaultLogger("NATTLUA_DEBUG_PARSER")
	}
	return config
}

func parseTokens(config *ParserConfig, tokens []lexer.Token) *ParseTree {
	var startParse time.Time
	if config.telemetry >= TelemetryTiming {
		startParse = time.Now()
	}

	p := newParser(config, tokens)
	root, err := p.parseWhole()

	tree := &ParseTree{
		Source:      config.source,
		Tokens:      tokens,
		Root:        root,
		Error:       err,
		Telemetry:   p.telemetry,
		DebugEvents: p.debugEvents,
	}
	if tree.Telemetry != nil {
		if err != nil {
			tree.Telemetry.ErrorCount++
		}
		if config.telemetry >= TelemetryTiming {
			tree.Telemetry.ParseTime = time.Since(startParse)
			tree.Telemetry.TotalTime = tree.Telemetry.ParseTime
		}
	}
	return tree
}

// Parser walks a token list with a cursor. It is not safe for concurrent
// use.
type Parser struct {
	tokens  []lexer.Token
	pos     int
	profile *syntax.Profile
	source  *code.Code
	logger  *slog.Logger

	maxDepth int
	depth    int

	telemetryMode TelemetryMode
	telemetry     *ParseTelemetry

	debug       bool
	debugEvents []DebugEvent
}

// New creates a parser over tokens, which must end with EndOfFile.
func New(tokens []lexer.Token, opts ...ParserOpt) *Parser {
	return newParser(newConfig(opts), tokens)
}

func newParser(config *ParserConfig, tokens []lexer.Token) *Parser {
	invariant.Precondition(len(tokens) > 0 && tokens[len(tokens)-1].Kind == lexer.EndOfFile,
		"token list must end with EndOfFile")

	p := &Parser{
		tokens:        tokens,
		profile:       config.profile,
		source:        config.source,
		logger:        config.logger,
		maxDepth:      config.maxDepth,
		telemetryMode: config.telemetry,
		debug:         config.debug,
	}
	if config.telemetry > TelemetryOff {
		p.telemetry = &ParseTelemetry{TokenCount: len(tokens)}
	}
	if config.debug {
		p.debugEvents = make([]DebugEvent, 0, 64)
	}
	return p
}

// parseWhole parses one expression and requires end of file after it.
func (p *Parser) parseWhole() (Expression, *ParseError) {
	p.logger.Debug("parse start", "tokens", len(p.tokens), "profile", p.profile.Name())

	root, err := p.ParseExpression(0)
	if err != nil {
		return nil, p.fail(err)
	}

	if tok := p.Peek(0); tok.Kind != lexer.EndOfFile {
		var perr *ParseError
		if root == nil {
			perr = p.errorf(tok, tok, "", "unexpected %s, expected an expression", describe(tok))
		} else {
			perr = p.errorf(tok, tok, "", "unexpected %s after expression", describe(tok))
		}
		if tok.Kind == lexer.Letter {
			perr.Suggestions = suggest(tok.Text, p.profile.OperatorWords())
		}
		return nil, p.fail(perr)
	}

	p.logger.Debug("parse done", "node", KindName(root))
	return root, nil
}

func (p *Parser) fail(err error) *ParseError {
	perr, ok := err.(*ParseError)
	invariant.Invariant(ok, "parser returned %T, want *ParseError", err)
	p.logger.Debug("parse error", "message", perr.Message, "context", perr.Context, "start", perr.Start.Start)
	p.recordDebugEvent("parse_error", perr.Message)
	return perr
}

// Peek returns the token offset positions ahead of the cursor. Past the end
// it keeps returning the EndOfFile token.
func (p *Parser) Peek(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// Advance consumes and returns the token at the cursor. The cursor never
// moves past EndOfFile.
func (p *Parser) Advance() lexer.Token {
	tok := p.Peek(0)
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// IsValue reports whether the token at offset has the given text. String
// tokens never match.
func (p *Parser) IsValue(text string, offset int) bool {
	return p.Peek(offset).Is(text)
}

// IsKind reports whether the token at offset has the given kind.
func (p *Parser) IsKind(kind lexer.Kind, offset int) bool {
	return p.Peek(offset).Kind == kind
}

// ExpectValue consumes a token with the given text or fails.
func (p *Parser) ExpectValue(text, context string) (lexer.Token, error) {
	if p.IsValue(text, 0) {
		return p.Advance(), nil
	}
	tok := p.Peek(0)
	return tok, p.errorf(tok, tok, context, "expected %q, got %s", text, describe(tok))
}

// ExpectKind consumes a token of the given kind or fails.
func (p *Parser) ExpectKind(kind lexer.Kind, context string) (lexer.Token, error) {
	if p.IsKind(kind, 0) {
		return p.Advance(), nil
	}
	tok := p.Peek(0)
	return tok, p.errorf(tok, tok, context, "expected %s, got %s", kind, describe(tok))
}

// Position returns the cursor's token index.
func (p *Parser) Position() int { return p.pos }

// ParseExpression parses the longest expression at the cursor whose binary
// operators all bind tighter than minPriority. It returns nil, nil when the
// cursor is not at the start of an expression.
func (p *Parser) ParseExpression(minPriority int) (Expression, error) {
	if p.maxDepth > 0 && p.depth >= p.maxDepth {
		tok := p.Peek(0)
		return nil, p.errorf(tok, tok, "", "expression nested deeper than %d levels", p.maxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.telemetry != nil && p.depth > p.telemetry.MaxDepth {
		p.telemetry.MaxDepth = p.depth
	}

	if p.debug {
		p.recordDebugEvent("enter_expression", fmt.Sprintf("min_priority=%d", minPriority))
		defer p.recordDebugEvent("exit_expression", "")
	}

	node, chain, err := p.parsePrimary()
	if err != nil || node == nil {
		return nil, err
	}
	if chain {
		if node, err = p.parsePostfixChain(node); err != nil {
			return nil, err
		}
	}
	return p.parseBinary(node, minPriority)
}

// parsePrimary parses a paren group, prefix operator, atomic value or table.
// chain is false for prefix operators, whose operand already consumed any
// postfix chain.
func (p *Parser) parsePrimary() (node Expression, chain bool, err error) {
	tok := p.Peek(0)

	switch {
	case tok.Is("("):
		node, err = p.parseGroup()
		return node, true, err

	case isOperatorToken(tok) && p.profile.IsPrefixOperator(tok.Text):
		op := p.Advance()
		right, err := p.ParseExpression(p.prefixOperandPriority())
		if err != nil {
			return nil, false, err
		}
		if right == nil {
			next := p.Peek(0)
			return nil, false, p.errorf(op, next, "prefix operator",
				"expected expression after prefix operator %q, got %s", op.Text, describe(next))
		}
		return p.built(&PrefixOperator{Operator: op, Right: right}), false, nil

	case p.isAtomic(tok):
		return p.built(&Atomic{Value: p.Advance()}), true, nil

	case tok.Is("{"):
		node, err = p.parseTable()
		return node, true, err
	}

	return nil, false, nil
}

// parseGroup parses ( expression ) and records the parens on the inner node.
func (p *Parser) parseGroup() (Expression, error) {
	open := p.Advance()
	inner, err := p.ParseExpression(0)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, p.errorf(open, p.Peek(0), "parentheses", "empty parentheses group")
	}
	closing, err := p.ExpectValue(")", "parentheses")
	if err != nil {
		return nil, err
	}

	parens := inner.parenthesized()
	parens.Left = append(parens.Left, open)
	parens.Right = append(parens.Right, closing)
	return inner, nil
}

// prefixOperandPriority is the threshold for a prefix operand: tighter than
// multiplication, so -a^b is -(a^b) and -a*b is (-a)*b.
func (p *Parser) prefixOperandPriority() int {
	if info, ok := p.profile.BinaryOperator("*"); ok {
		return info.LeftPriority + 1
	}
	return p.profile.Tiers()
}

func (p *Parser) isAtomic(tok lexer.Token) bool {
	switch {
	case tok.Kind == lexer.Number || tok.Kind == lexer.String:
		return true
	case p.profile.IsKeywordValue(tok.Text):
		return true
	case p.profile.IsKeyword(tok.Text):
		return false
	}
	return tok.Kind == lexer.Letter
}

func isOperatorToken(tok lexer.Token) bool {
	return tok.Kind == lexer.Symbol || tok.Kind == lexer.Letter
}

// parsePostfixChain applies index, call, postfix operator and cast suffixes
// until none matches.
func (p *Parser) parsePostfixChain(node Expression) (Expression, error) {
	for {
		tok := p.Peek(0)

		switch {
		case tok.Is(".") && p.IsKind(lexer.Letter, 1):
			node = p.built(&Index{Left: node, Dot: p.Advance(), Name: p.Advance()})

		case tok.Is(":") && p.IsKind(lexer.Letter, 1) && p.isCallStart(2):
			node = p.built(&SelfCall{Left: node, Colon: p.Advance(), Name: p.Advance()})

		case p.isCallStart(0):
			call, err := p.parseCall(node)
			if err != nil {
				return nil, err
			}
			node = call

		case tok.Kind == lexer.Symbol && p.profile.IsPostfixOperator(tok.Text):
			node = p.built(&PostfixOperator{Left: node, Operator: p.Advance()})

		case tok.Is("["):
			open := p.Advance()
			index, err := p.ParseExpression(0)
			if err != nil {
				return nil, err
			}
			if index == nil {
				next := p.Peek(0)
				return nil, p.errorf(open, next, "index expression",
					"expected expression after \"[\", got %s", describe(next))
			}
			closing, err := p.ExpectValue("]", "index expression")
			if err != nil {
				return nil, err
			}
			node = p.built(&IndexExpression{Left: node, Open: open, Index: index, Close: closing})

		case tok.Is(":") || tok.Is("as"):
			op := p.Advance()
			target, err := p.ParseExpression(0)
			if err != nil {
				return nil, err
			}
			if target == nil {
				next := p.Peek(0)
				return nil, p.errorf(op, next, "type cast",
					"expected type expression after %q, got %s", op.Text, describe(next))
			}
			node = p.built(&TypeCast{Left: node, Operator: op, Target: target})

		default:
			return node, nil
		}
	}
}

// isCallStart reports whether call arguments begin at offset: "(", "<|", a
// table, a string, or "!(".
func (p *Parser) isCallStart(offset int) bool {
	tok := p.Peek(offset)
	switch {
	case tok.Kind == lexer.String:
		return true
	case tok.Is("("), tok.Is("<|"), tok.Is("{"):
		return true
	case tok.Is("!"):
		return p.IsValue("(", offset+1)
	}
	return false
}

func (p *Parser) parseCall(left Expression) (*Call, error) {
	tok := p.Peek(0)

	switch {
	case tok.Kind == lexer.String:
		arg := p.built(&Atomic{Value: p.Advance()})
		return p.builtCall(&Call{Left: left, Kind: CallString, Arguments: []Expression{arg}}), nil

	case tok.Is("{"):
		table, err := p.parseTable()
		if err != nil {
			return nil, err
		}
		return p.builtCall(&Call{Left: left, Kind: CallTable, Arguments: []Expression{table}}), nil

	case tok.Is("!"):
		call := &Call{Left: left, Kind: CallType, Bang: p.Advance()}
		return call, p.parseArguments(call, "(", ")")

	case tok.Is("<|"):
		call := &Call{Left: left, Kind: CallGeneric}
		return call, p.parseArguments(call, "<|", "|>")
	}

	call := &Call{Left: left, Kind: CallParens}
	return call, p.parseArguments(call, "(", ")")
}

// parseArguments reads a comma separated expression list between open and
// closer, recording every comma.
func (p *Parser) parseArguments(call *Call, open, closer string) error {
	const context = "call arguments"

	tok, err := p.ExpectValue(open, context)
	if err != nil {
		return err
	}
	call.Open = tok

	for len(call.Commas) > 0 || !p.IsValue(closer, 0) {
		arg, err := p.ParseExpression(0)
		if err != nil {
			return err
		}
		if arg == nil {
			if len(call.Commas) > 0 {
				next := p.Peek(0)
				return p.errorf(call.Commas[len(call.Commas)-1], next, context,
					"expected argument after \",\", got %s", describe(next))
			}
			break
		}
		if len(call.Arguments) == maxArguments {
			return p.errorf(call.Open, p.Peek(0), context, "too many arguments (limit %d)", maxArguments)
		}
		call.Arguments = append(call.Arguments, arg)

		if !p.IsValue(",", 0) {
			break
		}
		call.Commas = append(call.Commas, p.Advance())
	}

	if call.Close, err = p.ExpectValue(closer, context); err != nil {
		return err
	}
	p.builtCall(call)
	return nil
}

// parseTable parses { entry (sep entry)* sep? }.
func (p *Parser) parseTable() (*Table, error) {
	const context = "table"

	table := &Table{Open: p.Advance()}
	key := 0

	for !p.IsValue("}", 0) {
		entry, err := p.parseTableEntry(&key)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			tok := p.Peek(0)
			return nil, p.errorf(tok, tok, context, "Expected something")
		}
		table.Entries = append(table.Entries, entry)

		if p.IsValue(",", 0) || p.IsValue(";", 0) {
			table.Separators = append(table.Separators, p.Advance())
			continue
		}
		if !p.IsValue("}", 0) {
			tok := p.Peek(0)
			return nil, p.errorf(tok, tok, context, "Expected something")
		}
	}

	table.Close = p.Advance()
	p.built(table)
	return table, nil
}

func (p *Parser) parseTableEntry(key *int) (TableEntry, error) {
	const context = "table"

	switch {
	case p.IsValue("[", 0):
		entry := &ExpressionKeyValue{OpenBracket: p.Advance()}
		k, err := p.ParseExpression(0)
		if err != nil {
			return nil, err
		}
		if k == nil {
			next := p.Peek(0)
			return nil, p.errorf(entry.OpenBracket, next, context,
				"expected expression after \"[\", got %s", describe(next))
		}
		entry.Key = k
		if entry.CloseBracket, err = p.ExpectValue("]", context); err != nil {
			return nil, err
		}
		if entry.Equals, err = p.ExpectValue("=", context); err != nil {
			return nil, err
		}
		if entry.Value, err = p.parseTableValue(entry.Equals); err != nil {
			return nil, err
		}
		return entry, nil

	case p.IsKind(lexer.Letter, 0) && p.IsValue("=", 1):
		entry := &IdentifierKeyValue{Key: p.Advance(), Equals: p.Advance()}
		value, err := p.parseTableValue(entry.Equals)
		if err != nil {
			return nil, err
		}
		entry.Value = value
		return entry, nil
	}

	value, err := p.ParseExpression(0)
	if err != nil || value == nil {
		return nil, err
	}
	entry := &IndexValue{Key: *key, Value: value}
	*key++
	return entry, nil
}

func (p *Parser) parseTableValue(equals lexer.Token) (Expression, error) {
	value, err := p.ParseExpression(0)
	if err != nil {
		return nil, err
	}
	if value == nil {
		next := p.Peek(0)
		return nil, p.errorf(equals, next, "table", "expected value after \"=\", got %s", describe(next))
	}
	return value, nil
}

// parseBinary folds binary operators onto left while they bind tighter than
// minPriority. An operator is consumed iff its left priority is strictly
// greater; its right operand is parsed at its right priority, so
// right-associative operators (left = tier+1) rebind at their own tier.
func (p *Parser) parseBinary(left Expression, minPriority int) (Expression, error) {
	for {
		tok := p.Peek(0)
		if !isOperatorToken(tok) {
			return left, nil
		}
		info, ok := p.profile.BinaryOperator(tok.Text)
		if !ok || info.LeftPriority <= minPriority {
			return left, nil
		}

		op := p.Advance()
		right, err := p.ParseExpression(info.RightPriority)
		if err != nil {
			return nil, err
		}
		if right == nil {
			next := p.Peek(0)
			return nil, p.errorf(op, next, "binary operator",
				"expected right side to be an expression, got %s", describe(next))
		}
		left = p.built(&BinaryOperator{Left: left, Operator: op, Right: right})
	}
}

// TokenClass is the role a token can play in an expression.
type TokenClass int

const (
	ClassNone TokenClass = iota
	ClassKeyword
	ClassPrefixOperator
	ClassPostfixOperator
	ClassBinaryOperator
)

func (c TokenClass) String() string {
	switch c {
	case ClassKeyword:
		return "Keyword"
	case ClassPrefixOperator:
		return "PrefixOperator"
	case ClassPostfixOperator:
		return "PostfixOperator"
	case ClassBinaryOperator:
		return "BinaryOperator"
	}
	return "None"
}

// ClassifyToken reports the role of tok under the parser's profile. Letter
// keywords win over operators; symbols are checked as prefix, then postfix,
// then binary operators.
func (p *Parser) ClassifyToken(tok lexer.Token) TokenClass {
	switch tok.Kind {
	case lexer.Letter:
		if p.profile.IsKeyword(tok.Text) {
			return ClassKeyword
		}
	case lexer.Symbol:
		switch {
		case p.profile.IsPrefixOperator(tok.Text):
			return ClassPrefixOperator
		case p.profile.IsPostfixOperator(tok.Text):
			return ClassPostfixOperator
		case p.profile.IsBinaryOperator(tok.Text):
			return ClassBinaryOperator
		}
	}
	return ClassNone
}

// errorf builds a ParseError spanning start..stop.
func (p *Parser) errorf(start, stop lexer.Token, context, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Context: context,
		Start:   start,
		Stop:    stop,
		Source:  p.source,
	}
}

func (p *Parser) built(e Expression) Expression {
	if p.telemetry != nil {
		p.telemetry.NodeCount++
	}
	return e
}

func (p *Parser) builtCall(c *Call) *Call {
	p.built(c)
	return c
}

// GetTelemetry returns telemetry data (nil if disabled)
func (p *Parser) GetTelemetry() *ParseTelemetry { return p.telemetry }

// GetDebugEvents returns debug events (nil if disabled)
func (p *Parser) GetDebugEvents() []DebugEvent { return p.debugEvents }

// recordDebugEvent records debug events when debug tracing is enabled
func (p *Parser) recordDebugEvent(event, context string) {
	if !p.debug || p.debugEvents == nil {
		return
	}

	p.debugEvents = append(p.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		TokenPos:  p.pos,
		Context:   context,
	})
}
