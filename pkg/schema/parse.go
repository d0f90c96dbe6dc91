package schema

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParseError is returned by Parse when the text is not a valid message
// declaration.
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Pos, e.Msg)
}

var (
	schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[{}();]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	schemaParser = participle.MustBuild[messageDecl](
		participle.Lexer(schemaLexer),
		participle.Elide("Comment", "Whitespace"),
	)
)

type messageDecl struct {
	Name   string       `"message" @Ident`
	Fields []*fieldDecl `"{" @@* "}"`
}

type fieldDecl struct {
	Pos        lexer.Position
	Repetition string         `@("required" | "optional" | "repeated")`
	Group      *groupDecl     `( @@`
	Primitive  *primitiveDecl `| @@ )`
}

type groupDecl struct {
	Name   string       `"group" @Ident`
	Fields []*fieldDecl `"{" @@* "}"`
}

type primitiveDecl struct {
	Type       string `@Ident`
	Name       string `@Ident`
	Annotation string `( "(" @Ident ")" )? ";"`
}

// Parse parses a message declaration such as
//
//	message m {
//	  optional group g {
//	    repeated int32 x;
//	  }
//	}
//
// Parse only checks syntax and type names; structural rules (unique sibling
// names, non-empty groups) are enforced when the column tree is built.
func Parse(text string) (*Message, error) {
	decl, err := schemaParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &ParseError{Pos: perr.Position(), Msg: perr.Message()}
		}
		return nil, &ParseError{Msg: err.Error()}
	}

	fields, err := convertFields(decl.Fields)
	if err != nil {
		return nil, err
	}
	return NewMessage(decl.Name, fields...), nil
}

func convertFields(decls []*fieldDecl) ([]*Field, error) {
	fields := make([]*Field, 0, len(decls))
	for _, d := range decls {
		f, err := convertField(d)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func convertField(d *fieldDecl) (*Field, error) {
	rep, err := ParseRepetition(d.Repetition)
	if err != nil {
		return nil, &ParseError{Pos: d.Pos, Msg: err.Error()}
	}

	if d.Group != nil {
		children, err := convertFields(d.Group.Fields)
		if err != nil {
			return nil, err
		}
		return Group(d.Group.Name, rep, children...), nil
	}

	typ, err := ParsePhysicalType(d.Primitive.Type)
	if err != nil {
		return nil, &ParseError{Pos: d.Pos, Msg: err.Error()}
	}
	ann, err := ParseAnnotation(d.Primitive.Annotation)
	if err != nil {
		return nil, &ParseError{Pos: d.Pos, Msg: err.Error()}
	}
	if ann == String && typ != ByteArray {
		return nil, &ParseError{Pos: d.Pos, Msg: fmt.Sprintf("%s annotation requires binary, got %s", ann, typ)}
	}

	f := Primitive(d.Primitive.Name, rep, typ)
	f.Annotation = ann
	return f, nil
}
