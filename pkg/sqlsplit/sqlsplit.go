// Package sqlsplit splits SQL scripts into individual statements.
//
// Some drivers (ClickHouse in particular) execute exactly one statement per
// call, so multi-statement migration scripts are split on semicolons before
// execution. The tokenizer understands quoted strings, quoted identifiers,
// line and block comments and PostgreSQL dollar quoting, so semicolons inside
// any of those do not end a statement.
//
// Example usage:
//
//	stmts, err := sqlsplit.Split("CREATE TABLE a (x String DEFAULT ';');\nDROP TABLE b;")
//	// stmts: ["CREATE TABLE a (x String DEFAULT ';')", "DROP TABLE b"]
package sqlsplit

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	sqlLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Comment", Pattern: `--[^\r\n]*`},
			{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
			{Name: "String", Pattern: `'([^'\\]|\\.|'')*'`},
			{Name: "QuotedIdent", Pattern: `"([^"]|"")*"`},
			{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
			{Name: "DollarQuote", Pattern: `\$([A-Za-z_][A-Za-z0-9_]*)?\$`, Action: lexer.Push("Dollar")},
			{Name: "Semicolon", Pattern: `;`},
			{Name: "Text", Pattern: "[^;'\"`$/\\-]+"},
			{Name: "Char", Pattern: `(?s:.)`},
		},
		"Dollar": {
			{Name: "DollarEnd", Pattern: `\$\1\$`, Action: lexer.Pop()},
			{Name: "DollarBody", Pattern: `[^$]+|\$`},
		},
	})

	symbols = sqlLexer.Symbols()
)

// Split returns the statements in script in order, trimmed and without their
// terminating semicolons. Fragments containing only comments or whitespace are
// dropped.
func Split(script string) ([]string, error) {
	lex, err := sqlLexer.LexString("", script)
	if err != nil {
		return nil, errors.Wrap(err, "failed to tokenize script")
	}

	var (
		stmts   []string
		buf     strings.Builder
		hasCode bool
	)

	flush := func() {
		if hasCode {
			stmts = append(stmts, strings.TrimSpace(buf.String()))
		}
		buf.Reset()
		hasCode = false
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to tokenize script")
		}

		if tok.EOF() {
			break
		}

		switch tok.Type {
		case symbols["Semicolon"]:
			flush()
			continue
		case symbols["Comment"], symbols["MultilineComment"]:
		default:
			if strings.TrimSpace(tok.Value) != "" {
				hasCode = true
			}
		}

		buf.WriteString(tok.Value)
	}

	flush()
	return stmts, nil
}
