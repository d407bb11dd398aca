package lexer

import (
	"opal/internal/token"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startPosition := l.position

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Position: startPosition}
	case '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Position: startPosition}
	case ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Position: startPosition}
	case '[':
		l.readChar()
		return token.Token{Type: token.LBRACKET, Literal: "[", Position: startPosition}
	case ']':
		l.readChar()
		return token.Token{Type: token.RBRACKET, Literal: "]", Position: startPosition}
	case '{':
		l.readChar()
		return token.Token{Type: token.LBRACE, Literal: "{", Position: startPosition}
	case '}':
		l.readChar()
		return token.Token{Type: token.RBRACE, Literal: "}", Position: startPosition}
	case '\'':
		l.readChar()
		return token.Token{Type: token.QUOTE, Literal: "'", Position: startPosition}
	case '@':
		l.readChar()
		return token.Token{Type: token.DEREF, Literal: "@", Position: startPosition}
	case '^':
		l.readChar()
		return token.Token{Type: token.META, Literal: "^", Position: startPosition}
	case '#':
		switch l.peekChar() {
		case '{':
			l.readChar()
			l.readChar()
			return token.Token{Type: token.SETOPEN, Literal: "#{", Position: startPosition}
		case '\'':
			l.readChar()
			l.readChar()
			return token.Token{Type: token.VARREF, Literal: "#'", Position: startPosition}
		case '_':
			l.readChar()
			l.readChar()
			return token.Token{Type: token.DISCARD, Literal: "#_", Position: startPosition}
		default:
			l.readChar()
			return token.Token{Type: token.ILLEGAL, Literal: "#", Position: startPosition}
		}
	case '"':
		literal, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: literal, Position: startPosition}
		}
		return token.Token{Type: token.STRING, Literal: literal, Position: startPosition}
	case ':':
		l.readChar()
		name := l.readSymbolChars()
		return token.Token{Type: token.KEYWORD, Literal: name, Position: startPosition}
	case ';':
		l.skipComment()
		return l.NextToken()
	}

	if isDigit(l.ch) || ((l.ch == '-' || l.ch == '+') && isDigit(l.peekChar())) {
		return l.readNumber(startPosition)
	}

	if isSymbolChar(l.ch) {
		name := l.readSymbolChars()
		return token.Token{Type: token.SYMBOL, Literal: name, Position: startPosition}
	}

	ch := l.ch
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Literal: string(ch), Position: startPosition}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	// Commas are whitespace in opal source.
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == ',' {
		l.readChar()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readString() (string, bool) {
	var out []rune
	l.readChar() // consume the opening quote
	for {
		switch l.ch {
		case '"':
			l.readChar()
			return string(out), true
		case 0:
			return string(out), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, l.ch)
			}
			l.readChar()
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) readNumber(startPosition int) token.Token {
	start := l.position
	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	tokenType := token.TokenType(token.INTEGER)
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return token.Token{Type: tokenType, Literal: l.input[start:l.position], Position: startPosition}
}

func (l *Lexer) readSymbolChars() string {
	start := l.position
	for isSymbolChar(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isSymbolChar(ch rune) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', ',', '(', ')', '[', ']', '{', '}', '"', ';', '@', '^', '\'', '`', '~':
		return false
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch)
}
