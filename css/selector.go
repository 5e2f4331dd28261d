package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chrisuehlinger/domkit/dom"
)

// CSSSelector represents a parsed selector list.
type CSSSelector struct {
	// A selector is a list of complex selectors separated by commas
	ComplexSelectors []*ComplexSelector
	// Source is the text the selector was parsed from.
	Source string
}

// ComplexSelector is a chain of compound selectors separated by combinators.
type ComplexSelector struct {
	// Leading is the combinator before the first compound in a relative
	// selector, as in :has(> img). CombinatorNone elsewhere.
	Leading   CombinatorType
	Compounds []*CompoundSelector
}

// CompoundSelector is a sequence of simple selectors.
type CompoundSelector struct {
	TypeSelector      *TypeSelector
	IDSelectors       []string
	ClassSelectors    []string
	AttributeMatchers []*AttributeMatcher
	PseudoClasses     []*PseudoClassSelector
	PseudoElement     string
	Combinator        CombinatorType // Combinator following this compound selector
}

// CombinatorType represents the type of combinator.
type CombinatorType int

const (
	CombinatorNone              CombinatorType = iota
	CombinatorDescendant                       // (whitespace)
	CombinatorChild                            // >
	CombinatorNextSibling                      // +
	CombinatorSubsequentSibling                // ~
)

// TypeSelector represents a type (tag) selector.
type TypeSelector struct {
	// AnyNamespace is set for "*|name"; NoNamespace for "|name".
	AnyNamespace bool
	NoNamespace  bool
	Name         string // "*" for universal, or lowercased tag name
}

// AttributeMatcher represents an attribute selector.
type AttributeMatcher struct {
	Name            string
	Operator        AttributeOperator
	Value           string
	CaseInsensitive bool
}

// AttributeOperator represents the operator in an attribute selector.
type AttributeOperator int

const (
	AttrExists    AttributeOperator = iota // [attr]
	AttrEquals                             // [attr=value]
	AttrIncludes                           // [attr~=value]
	AttrDashMatch                          // [attr|=value]
	AttrPrefix                             // [attr^=value]
	AttrSuffix                             // [attr$=value]
	AttrSubstring                          // [attr*=value]
)

// PseudoClassSelector represents a pseudo-class.
type PseudoClassSelector struct {
	Name     string
	Argument string       // For :lang() and :dir()
	Nth      *NthExpr     // For the :nth-* family
	Selector *CSSSelector // For :not(), :is(), :where(), :has() and nth "of S"
}

// NthExpr is a parsed An+B expression.
type NthExpr struct {
	A, B int
}

// Matches reports whether the 1-based position pos satisfies An+B for some n >= 0.
func (n NthExpr) Matches(pos int) bool {
	if n.A == 0 {
		return pos == n.B
	}
	diff := pos - n.B
	return diff%n.A == 0 && diff/n.A >= 0
}

// Pseudo-classes without arguments that the matcher understands.
var simplePseudoClasses = map[string]bool{
	"root": true, "empty": true, "scope": true, "defined": true,
	"first-child": true, "last-child": true, "only-child": true,
	"first-of-type": true, "last-of-type": true, "only-of-type": true,
	"enabled": true, "disabled": true, "checked": true, "indeterminate": true,
	"required": true, "optional": true, "read-only": true, "read-write": true,
	"placeholder-shown": true, "default": true,
	"link": true, "any-link": true, "visited": true, "target": true,
	"hover": true, "active": true, "focus": true, "focus-within": true, "focus-visible": true,
}

// Functional pseudo-classes.
var functionalPseudoClasses = map[string]bool{
	"not": true, "is": true, "where": true, "has": true, "matches": true,
	"nth-child": true, "nth-last-child": true, "nth-of-type": true, "nth-last-of-type": true,
	"lang": true, "dir": true,
}

// Pseudo-elements; a compound carrying one never matches an element.
var pseudoElements = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
	"marker": true, "placeholder": true, "selection": true, "backdrop": true,
	"file-selector-button": true,
}

// SelectorParser parses CSS selectors.
type SelectorParser struct {
	tokens []Token
	pos    int
	source string
}

// ParseSelector parses a selector list. Malformed input yields a
// dom.SyntaxError naming the offending selector, the error document.querySelector
// throws.
func ParseSelector(input string) (*CSSSelector, error) {
	tokens := NewTokenizer(input).TokenizeAll()
	p := &SelectorParser{tokens: tokens, source: input}
	sel, err := p.parseSelectorList(false)
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, p.errorf("unexpected %s", tok)
	}
	sel.Source = input
	return sel, nil
}

func (p *SelectorParser) errorf(format string, args ...any) error {
	return dom.ErrSyntax(fmt.Sprintf("'%s' is not a valid selector: %s.", p.source, fmt.Sprintf(format, args...)))
}

func (p *SelectorParser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *SelectorParser) peek(offset int) Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) || pos < 0 {
		return Token{Type: TokenEOF}
	}
	return p.tokens[pos]
}

func (p *SelectorParser) consume() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *SelectorParser) skipWhitespace() bool {
	skipped := false
	for p.current().Type == TokenWhitespace {
		p.consume()
		skipped = true
	}
	return skipped
}

func (p *SelectorParser) isDelim(r rune) bool {
	tok := p.current()
	return tok.Type == TokenDelim && tok.Delim == r
}

// parseSelectorList parses comma-separated complex selectors. It stops at EOF
// or at a token that cannot continue a selector, leaving it for the caller.
func (p *SelectorParser) parseSelectorList(relative bool) (*CSSSelector, error) {
	selector := &CSSSelector{}
	for {
		p.skipWhitespace()
		complex, err := p.parseComplexSelector(relative)
		if err != nil {
			return nil, err
		}
		selector.ComplexSelectors = append(selector.ComplexSelectors, complex)

		p.skipWhitespace()
		if p.current().Type != TokenComma {
			return selector, nil
		}
		p.consume()
	}
}

func (p *SelectorParser) combinator() (CombinatorType, bool) {
	tok := p.current()
	if tok.Type != TokenDelim {
		return CombinatorNone, false
	}
	switch tok.Delim {
	case '>':
		return CombinatorChild, true
	case '+':
		return CombinatorNextSibling, true
	case '~':
		return CombinatorSubsequentSibling, true
	}
	return CombinatorNone, false
}

// parseComplexSelector parses a complex selector.
func (p *SelectorParser) parseComplexSelector(relative bool) (*ComplexSelector, error) {
	complex := &ComplexSelector{}

	if relative {
		complex.Leading = CombinatorDescendant
		if c, ok := p.combinator(); ok {
			p.consume()
			p.skipWhitespace()
			complex.Leading = c
		}
	}

	for {
		compound, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		if compound == nil {
			if tok := p.current(); len(complex.Compounds) == 0 || tok.Type != TokenEOF {
				return nil, p.errorf("expected a selector but found %s", tok)
			}
			return nil, p.errorf("selector ends with a combinator")
		}
		complex.Compounds = append(complex.Compounds, compound)

		hadWhitespace := p.skipWhitespace()
		if c, ok := p.combinator(); ok {
			p.consume()
			p.skipWhitespace()
			compound.Combinator = c
			continue
		}

		switch tok := p.current(); tok.Type {
		case TokenEOF, TokenComma, TokenCloseParen:
			return complex, nil
		default:
			if !hadWhitespace {
				return nil, p.errorf("unexpected %s", tok)
			}
			compound.Combinator = CombinatorDescendant
		}
	}
}

// parseCompoundSelector parses a compound selector, returning nil when no
// simple selector starts at the current token.
func (p *SelectorParser) parseCompoundSelector() (*CompoundSelector, error) {
	compound := &CompoundSelector{}
	hasContent := false

	if p.isTypeSelector() {
		ts, err := p.parseTypeSelector()
		if err != nil {
			return nil, err
		}
		compound.TypeSelector = ts
		hasContent = true
	}

	for {
		if compound.PseudoElement != "" {
			// Only user-action pseudo-classes may follow a pseudo-element; none are modeled.
			if t := p.current().Type; t != TokenWhitespace && t != TokenEOF && t != TokenComma && t != TokenCloseParen {
				return nil, p.errorf("nothing may follow ::%s", compound.PseudoElement)
			}
			return compound, nil
		}

		tok := p.current()
		switch tok.Type {
		case TokenHash:
			if tok.HashType != HashID {
				return nil, p.errorf("'#%s' is not a valid id selector", tok.Value)
			}
			p.consume()
			compound.IDSelectors = append(compound.IDSelectors, tok.Value)

		case TokenDelim:
			switch tok.Delim {
			case '.':
				p.consume()
				if p.current().Type != TokenIdent {
					return nil, p.errorf("expected a class name after '.'")
				}
				compound.ClassSelectors = append(compound.ClassSelectors, p.consume().Value)
			case '*', '|':
				return nil, p.errorf("type selector must come first in a compound")
			default:
				if !hasContent {
					return nil, nil
				}
				return compound, nil
			}

		case TokenColon:
			p.consume()
			if p.current().Type == TokenColon {
				p.consume()
				tok := p.consume()
				if tok.Type != TokenIdent || !pseudoElements[strings.ToLower(tok.Value)] {
					return nil, p.errorf("unknown pseudo-element %s", tok)
				}
				compound.PseudoElement = strings.ToLower(tok.Value)
				hasContent = true
				continue
			}
			pc, err := p.parsePseudoClass()
			if err != nil {
				return nil, err
			}
			if pc.Name == "" {
				compound.PseudoElement = pc.Argument
				hasContent = true
				continue
			}
			compound.PseudoClasses = append(compound.PseudoClasses, pc)

		case TokenOpenSquare:
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return nil, err
			}
			compound.AttributeMatchers = append(compound.AttributeMatchers, attr)

		default:
			if !hasContent {
				return nil, nil
			}
			return compound, nil
		}
		hasContent = true
	}
}

// isTypeSelector checks if current position starts a type selector.
func (p *SelectorParser) isTypeSelector() bool {
	tok := p.current()
	if tok.Type == TokenIdent {
		return true
	}
	return tok.Type == TokenDelim && (tok.Delim == '*' || tok.Delim == '|')
}

// parseTypeSelector parses a type selector with an optional "*|" or "|"
// namespace prefix. Named prefixes need a namespace map, which a query has no
// way to declare, so they are rejected.
func (p *SelectorParser) parseTypeSelector() (*TypeSelector, error) {
	ts := &TypeSelector{}

	switch {
	case p.isDelim('*') && p.peek(1).Type == TokenDelim && p.peek(1).Delim == '|':
		p.consume()
		p.consume()
		ts.AnyNamespace = true
	case p.isDelim('|'):
		p.consume()
		ts.NoNamespace = true
	case p.current().Type == TokenIdent && p.peek(1).Type == TokenDelim && p.peek(1).Delim == '|' &&
		!(p.peek(2).Type == TokenDelim && p.peek(2).Delim == '='):
		return nil, p.errorf("undeclared namespace prefix '%s'", p.current().Value)
	}

	tok := p.current()
	switch {
	case tok.Type == TokenIdent:
		p.consume()
		ts.Name = strings.ToLower(tok.Value)
	case tok.Type == TokenDelim && tok.Delim == '*':
		p.consume()
		ts.Name = "*"
	default:
		return nil, p.errorf("expected an element name after namespace prefix")
	}
	return ts, nil
}

// parseAttributeSelector parses [name], [name op value] and [name op value i|s].
func (p *SelectorParser) parseAttributeSelector() (*AttributeMatcher, error) {
	p.consume() // [
	p.skipWhitespace()

	attr := &AttributeMatcher{}

	switch {
	case p.isDelim('*') && p.peek(1).Type == TokenDelim && p.peek(1).Delim == '|':
		p.consume()
		p.consume()
	case p.isDelim('|') && p.peek(1).Type == TokenIdent:
		p.consume()
	}

	if p.current().Type != TokenIdent {
		return nil, p.errorf("expected an attribute name")
	}
	attr.Name = strings.ToLower(p.consume().Value)
	p.skipWhitespace()

	if p.current().Type == TokenCloseSquare {
		p.consume()
		attr.Operator = AttrExists
		return attr, nil
	}

	tok := p.current()
	if tok.Type != TokenDelim {
		return nil, p.errorf("expected an attribute operator or ']'")
	}
	p.consume()
	if tok.Delim == '=' {
		attr.Operator = AttrEquals
	} else {
		ops := map[rune]AttributeOperator{
			'~': AttrIncludes,
			'|': AttrDashMatch,
			'^': AttrPrefix,
			'$': AttrSuffix,
			'*': AttrSubstring,
		}
		op, ok := ops[tok.Delim]
		if !ok || !p.isDelim('=') {
			return nil, p.errorf("invalid attribute operator")
		}
		p.consume()
		attr.Operator = op
	}
	p.skipWhitespace()

	tok = p.current()
	if tok.Type != TokenString && tok.Type != TokenIdent {
		return nil, p.errorf("expected an attribute value")
	}
	attr.Value = p.consume().Value
	p.skipWhitespace()

	if tok := p.current(); tok.Type == TokenIdent {
		switch strings.ToLower(tok.Value) {
		case "i":
			attr.CaseInsensitive = true
		case "s":
		default:
			return nil, p.errorf("invalid attribute flag '%s'", tok.Value)
		}
		p.consume()
		p.skipWhitespace()
	}

	if p.current().Type != TokenCloseSquare {
		return nil, p.errorf("unclosed attribute selector")
	}
	p.consume()
	return attr, nil
}

// parsePseudoClass parses a pseudo-class after its colon. The legacy
// single-colon pseudo-elements come back with an empty Name and the element
// name in Argument.
func (p *SelectorParser) parsePseudoClass() (*PseudoClassSelector, error) {
	tok := p.consume()
	name := strings.ToLower(tok.Value)

	switch tok.Type {
	case TokenIdent:
		switch {
		case simplePseudoClasses[name]:
			return &PseudoClassSelector{Name: name}, nil
		case name == "before" || name == "after" || name == "first-line" || name == "first-letter":
			return &PseudoClassSelector{Argument: name}, nil
		}
		return nil, p.errorf("unknown pseudo-class ':%s'", tok.Value)

	case TokenFunction:
		if !functionalPseudoClasses[name] {
			return nil, p.errorf("unknown pseudo-class ':%s()'", tok.Value)
		}
		pc := &PseudoClassSelector{Name: name}
		p.skipWhitespace()

		var err error
		switch name {
		case "not", "is", "where", "matches":
			pc.Selector, err = p.parseSelectorList(false)
		case "has":
			pc.Selector, err = p.parseSelectorList(true)
		case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
			err = p.parseNthArgument(pc)
		case "lang", "dir":
			arg := p.consume()
			if arg.Type != TokenIdent && arg.Type != TokenString {
				return nil, p.errorf("expected an argument to :%s()", name)
			}
			pc.Argument = arg.Value
		}
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()
		if p.current().Type != TokenCloseParen {
			return nil, p.errorf("unclosed :%s()", name)
		}
		p.consume()
		return pc, nil
	}

	return nil, p.errorf("expected a pseudo-class name after ':'")
}

// parseNthArgument reads An+B, optionally followed by "of S" for :nth-child
// and :nth-last-child.
func (p *SelectorParser) parseNthArgument(pc *PseudoClassSelector) error {
	var sb strings.Builder
scan:
	for {
		tok := p.current()
		switch tok.Type {
		case TokenIdent:
			if strings.EqualFold(tok.Value, "of") && sb.Len() > 0 {
				break scan
			}
			sb.WriteString(tok.Value)
		case TokenNumber:
			sb.WriteString(tok.Value)
		case TokenDimension:
			sb.WriteString(tok.Value)
			sb.WriteString(tok.Unit)
		case TokenDelim:
			if tok.Delim != '+' && tok.Delim != '-' {
				return p.errorf("invalid :%s() argument", pc.Name)
			}
			sb.WriteRune(tok.Delim)
		case TokenWhitespace:
		default:
			break scan
		}
		p.consume()
	}

	nth, ok := parseAnPlusB(sb.String())
	if !ok {
		return p.errorf("invalid :%s() argument '%s'", pc.Name, sb.String())
	}
	pc.Nth = &nth

	if tok := p.current(); tok.Type == TokenIdent && strings.EqualFold(tok.Value, "of") {
		if pc.Name != "nth-child" && pc.Name != "nth-last-child" {
			return p.errorf("'of' is not allowed in :%s()", pc.Name)
		}
		p.consume()
		p.skipWhitespace()
		sel, err := p.parseSelectorList(false)
		if err != nil {
			return err
		}
		pc.Selector = sel
	}
	return nil
}

// parseAnPlusB parses an An+B expression such as "2n+1", "-n+3", "odd" or "5".
func parseAnPlusB(s string) (NthExpr, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "odd":
		return NthExpr{A: 2, B: 1}, true
	case "even":
		return NthExpr{A: 2, B: 0}, true
	case "":
		return NthExpr{}, false
	}

	if b, err := strconv.Atoi(s); err == nil {
		return NthExpr{A: 0, B: b}, true
	}

	aStr, bStr, ok := strings.Cut(s, "n")
	if !ok {
		return NthExpr{}, false
	}

	var nth NthExpr
	switch aStr {
	case "", "+":
		nth.A = 1
	case "-":
		nth.A = -1
	default:
		a, err := strconv.Atoi(aStr)
		if err != nil {
			return NthExpr{}, false
		}
		nth.A = a
	}

	if bStr == "" {
		return nth, true
	}
	if bStr[0] != '+' && bStr[0] != '-' {
		return NthExpr{}, false
	}
	b, err := strconv.Atoi(bStr)
	if err != nil {
		return NthExpr{}, false
	}
	nth.B = b
	return nth, true
}
