package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames       = invertSymbols(dslLexer.Symbols())
	newlineTokenType = mustTokenType("Newline")
	lbraceTokenType  = mustTokenType("LBrace")
	rbraceTokenType  = mustTokenType("RBrace")
	symbolTokenType  = mustTokenType("Symbol")
	stringTokenType  = mustTokenType("String")

	profileParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a layout profile:
//
//	profile Report v1 {
//	  meta { title: "Report" }
//	  page A4 portrait margin 20pt
//	  text { size: 12pt leading: 18pt }
//	  fonts { bold: "builtin:go-bold" }
//	  pagination: auto
//	}
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'profile' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Section is one top-level entry of a profile.
type Section struct {
	Meta   *MetaSection  `parser:"  @@"`
	Page   *PageSection  `parser:"| @@"`
	Text   *TextSection  `parser:"| @@"`
	Fonts  *FontsSection `parser:"| @@"`
	Option *Assignment   `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Page != nil:
		return "page"
	case s.Text != nil:
		return "text"
	case s.Fonts != nil:
		return "fonts"
	case s.Option != nil:
		return "option"
	default:
		return "unknown"
	}
}

// MetaSection captures document metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// TextSection captures body text parameters (size, leading, marker).
type TextSection struct {
	Block *Block `parser:"'text' @@"`
}

// FontsSection maps style names to font identities.
type FontsSection struct {
	Block *Block `parser:"'fonts' @@"`
}

// PageSection stores the page header tokens, eg: `page A4 landscape margin 10mm 15mm`.
type PageSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Size   string         `parser:"'page' @Ident"`
	Params []*Lexeme      `parser:"@@*"`
}

// Block is a delimited list of assignments.
type Block struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// Text returns the scalar form of the value; arrays are not scalars.
func (v *Value) Text() (string, bool) {
	switch {
	case v == nil:
		return "", false
	case v.String != nil:
		return string(*v.String), true
	case v.Number != nil:
		return *v.Number, true
	case v.Ident != nil:
		return *v.Ident, true
	default:
		return "", false
	}
}

// Strings flattens the value into a list of scalars.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s, ok := v.Text(); ok {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range v.Array.Values {
		out = append(out, item.Strings()...)
	}
	return out
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Lexeme captures a single lexical token of a page header.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if shouldStopArg(tok) {
		return participle.NextMatch
	}

	next := lex.Next()
	lexeme, err := newLexeme(*next)
	if err != nil {
		return err
	}
	*l = lexeme
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a profile from an io.Reader. filename is only used in error positions.
func Parse(filename string, r io.Reader) (*Document, error) {
	return profileParser.Parse(filename, r)
}

// ParseString parses a profile from a string.
func ParseString(filename, input string) (*Document, error) {
	return profileParser.ParseString(filename, input)
}

// shouldStopArg ends a page header at a newline, brace or semicolon.
func shouldStopArg(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return true
	case symbolTokenType:
		return tok.Value == ";"
	default:
		return false
	}
}

func newLexeme(tok lexer.Token) (Lexeme, error) {
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	val := tok.Value
	if tok.Type == stringTokenType {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, err
		}
		val = unquoted
	}

	return Lexeme{
		Type:  name,
		Value: val,
		Raw:   tok.Value,
		Pos:   tok.Pos,
	}, nil
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}

func mustTokenType(name string) lexer.TokenType {
	symbols := dslLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
