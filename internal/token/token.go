package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	SYMBOL  = "SYMBOL"  // foo, core/map, +
	KEYWORD = "KEYWORD" // :foo, :ns/foo
	INTEGER = "INTEGER" // 42
	FLOAT   = "FLOAT"   // 3.14
	STRING  = "STRING"  // "foobar"

	// Delimiters
	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
	LBRACE   = "{"
	RBRACE   = "}"
	SETOPEN  = "#{"

	// Reader macros
	QUOTE   = "'"
	DEREF   = "@"
	META    = "^"
	VARREF  = "#'"
	DISCARD = "#_"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // byte offset into the source
}
