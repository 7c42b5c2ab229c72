package formula

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/value"
)

// knownFunctions is the closed set of function names the parser accepts,
// covering every dedicated AST node plus names reserved for the generic
// Call extensibility point. An identifier-followed-by-'(' outside this
// set is a KindUnknownFunction ParseError with an edit-distance
// suggestion.
var knownFunctions = []string{
	"AND", "OR", "NOT", "IF",
	"SUM", "COUNT", "AVERAGE", "MIN", "MAX", "COUNTA",
	"LEFT", "RIGHT", "MID", "LEN", "UPPER", "LOWER",
	"TODAY", "NOW", "DATE", "YEAR", "MONTH", "DAY",
	"CONCATENATE", "ISERROR", "ISBLANK", "ROUND", "ABS", "TRIM", "TRANSPOSE",
}

func isKnownFunction(name string) bool {
	u := strings.ToUpper(name)
	for _, k := range knownFunctions {
		if k == u {
			return true
		}
	}
	return false
}

// Parse parses formula text (with or without a leading '=') into an
// Expr using a recursive-descent grammar.
func Parse(text string) (Expr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, text: text}
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokEOF {
		return nil, &ParseError{Kind: KindTrailingTokens, Pos: p.cur().Pos, Text: text}
	}
	return expr, nil
}

type parser struct {
	toks []Token
	pos  int
	text string
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k Tok, desc string) (Token, error) {
	if p.cur().Kind != k {
		return Token{}, &ParseError{Kind: KindTokenExpected, Pos: p.cur().Pos, Text: p.text, Expected: []string{desc}}
	}
	return p.advance(), nil
}

// parseComparison handles =, <>, <, <=, >, >= — the lowest-precedence level.
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Kind {
		case TokEq:
			op = OpEq
		case TokNeq:
			op = OpNeq
		case TokLt:
			op = OpLt
		case TokLe:
			op = OpLe
		case TokGt:
			op = OpGt
		case TokGe:
			op = OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// parseConcat handles the '&' text-join operator.
func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	args := []Expr{left}
	for p.cur().Kind == TokAmp {
		p.advance()
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return Concatenate{Args: args}, nil
}

func (p *parser) parseAddSub() (Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Kind {
		case TokPlus:
			op = OpAdd
		case TokMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMulDiv() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Kind {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// parsePower handles right-associative '^'.
func (p *parser) parsePower() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokCaret {
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return Binary{Op: OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.cur().Kind == TokMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg{X: x}, nil
	}
	if p.cur().Kind == TokPlus {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokPercent {
		p.advance()
		x = Percent{X: x}
	}
	return x, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokNumber:
		p.advance()
		d, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return nil, &ParseError{Kind: KindUnexpectedChar, Pos: tok.Pos, Text: p.text}
		}
		return Literal{Value: value.NewNumber(d)}, nil
	case TokString:
		p.advance()
		return Literal{Value: value.NewText(tok.Text)}, nil
	case TokLParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, &ParseError{Kind: KindUnbalancedParen, Pos: tok.Pos, Text: p.text}
		}
		return inner, nil
	case TokQuotedName:
		return p.parseQualifiedRef(tok.Text)
	case TokIdent:
		return p.parseIdentLed()
	}
	return nil, &ParseError{Kind: KindUnexpectedChar, Pos: tok.Pos, Text: p.text}
}

// parseIdentLed dispatches on a bare identifier: a function call, a
// sheet-qualified reference, a TRUE/FALSE literal, or a plain cell/range
// reference.
func (p *parser) parseIdentLed() (Expr, error) {
	tok := p.advance()
	if p.cur().Kind == TokBang {
		return p.parseQualifiedRefFromBang(tok.Text)
	}
	if p.cur().Kind == TokLParen {
		return p.parseCall(tok)
	}
	if strings.EqualFold(tok.Text, "TRUE") || strings.EqualFold(tok.Text, "FALSE") {
		return Literal{Value: value.NewBool(strings.EqualFold(tok.Text, "TRUE"))}, nil
	}
	return p.parseRefOrRange("", tok.Text, tok.Pos)
}

// parseQualifiedRef handles a quoted sheet name token, which must be
// followed by '!' and then a ref or range.
func (p *parser) parseQualifiedRef(sheetName string) (Expr, error) {
	if _, err := p.expect(TokBang, "'!'"); err != nil {
		return nil, err
	}
	return p.consumeRefAfterBang(sheetName)
}

func (p *parser) parseQualifiedRefFromBang(sheetName string) (Expr, error) {
	p.advance() // consume '!'
	return p.consumeRefAfterBang(sheetName)
}

func (p *parser) consumeRefAfterBang(sheetName string) (Expr, error) {
	tok, err := p.expect(TokIdent, "cell reference")
	if err != nil {
		return nil, err
	}
	return p.parseRefOrRange(sheetName, tok.Text, tok.Pos)
}

// parseRefOrRange parses a single ref token text (e.g. "$A1") that may be
// followed by ':' and a second ref, building the appropriately-qualified
// Ref/RangeRef node.
func (p *parser) parseRefOrRange(sheet, first string, pos int) (Expr, error) {
	start, err := addr.ParseARef(first)
	if err != nil {
		return nil, &ParseError{Kind: KindRefOutOfRange, Pos: pos, Text: p.text}
	}
	if p.cur().Kind == TokColon {
		p.advance()
		endTok, err := p.expect(TokIdent, "range end reference")
		if err != nil {
			return nil, err
		}
		end, err := addr.ParseARef(endTok.Text)
		if err != nil {
			return nil, &ParseError{Kind: KindRefOutOfRange, Pos: endTok.Pos, Text: p.text}
		}
		rng := addr.NewRange(start, end)
		if sheet != "" {
			return QualifiedRangeRef{Sheet: sheet, Range: rng}, nil
		}
		return RangeRef{Range: rng}, nil
	}
	if sheet != "" {
		return QualifiedRef{Sheet: sheet, At: start}, nil
	}
	return Ref{At: start}, nil
}

func (p *parser) parseCall(nameTok Token) (Expr, error) {
	name := nameTok.Text
	if !isKnownFunction(name) {
		return nil, &ParseError{
			Kind:       KindUnknownFunction,
			Pos:        nameTok.Pos,
			Text:       p.text,
			Unknown:    name,
			Suggestion: suggestFunction(name, knownFunctions),
		}
	}
	p.advance() // '('
	var args []Expr
	if p.cur().Kind != TokRParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, &ParseError{Kind: KindUnbalancedParen, Pos: nameTok.Pos, Text: p.text}
	}
	return buildCallNode(strings.ToUpper(name), args)
}

func buildCallNode(name string, args []Expr) (Expr, error) {
	switch name {
	case "AND":
		return And{Args: args}, nil
	case "OR":
		return Or{Args: args}, nil
	case "NOT":
		return arity1(name, args, func(a Expr) Expr { return Not{X: a} })
	case "IF":
		if len(args) != 3 {
			return nil, &ParseError{Kind: KindTokenExpected, Text: name, Expected: []string{"IF(cond, then, else)"}}
		}
		return If{Cond: args[0], Then: args[1], Else: args[2]}, nil
	case "CONCATENATE":
		return Concatenate{Args: args}, nil
	case "SUM":
		return Aggregate{Fn: AggSum, Args: args}, nil
	case "COUNT":
		return Aggregate{Fn: AggCount, Args: args}, nil
	case "AVERAGE":
		return Aggregate{Fn: AggAverage, Args: args}, nil
	case "MIN":
		return Aggregate{Fn: AggMin, Args: args}, nil
	case "MAX":
		return Aggregate{Fn: AggMax, Args: args}, nil
	case "COUNTA":
		return Aggregate{Fn: AggCountA, Args: args}, nil
	case "LEFT":
		return TextCall{Fn: FnLeft, Args: args}, nil
	case "RIGHT":
		return TextCall{Fn: FnRight, Args: args}, nil
	case "MID":
		return TextCall{Fn: FnMid, Args: args}, nil
	case "LEN":
		return TextCall{Fn: FnLen, Args: args}, nil
	case "UPPER":
		return TextCall{Fn: FnUpper, Args: args}, nil
	case "LOWER":
		return TextCall{Fn: FnLower, Args: args}, nil
	case "TODAY":
		return DateCall{Fn: FnToday, Args: args}, nil
	case "NOW":
		return DateCall{Fn: FnNow, Args: args}, nil
	case "DATE":
		return DateCall{Fn: FnDate, Args: args}, nil
	case "YEAR":
		return DateCall{Fn: FnYear, Args: args}, nil
	case "MONTH":
		return DateCall{Fn: FnMonth, Args: args}, nil
	case "DAY":
		return DateCall{Fn: FnDay, Args: args}, nil
	default:
		return Call{Name: name, Args: args}, nil
	}
}

func arity1(name string, args []Expr, build func(Expr) Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, &ParseError{Kind: KindTokenExpected, Text: name, Expected: []string{name + "(x)"}}
	}
	return build(args[0]), nil
}

// numberLiteral builds an integer Literal node. Nothing in the package
// calls it.
func numberLiteral(n int64) Expr {
	return Literal{Value: value.NewNumber(decimal.NewFromInt(n))}
}
