package lang

import (
	"strings"

	"github.com/phobologic/scriptgraph/internal/model"
)

func init() {
	Languages["powershell"] = &Language{
		Name:               "powershell",
		Extensions:         []string{".ps1", ".psm1"},
		DefinitionKeywords: powershellDefinitions,
		IncludeOperators:   keywordSet("."),
		Tokenize:           powershellTokenize,
	}
}

var powershellDefinitions = keywordSet("function", "filter", "workflow")

var powershellKeywords = keywordSet(
	"begin", "break", "catch", "class", "clean", "configuration", "continue",
	"data", "do", "dynamicparam", "else", "elseif", "end", "enum", "exit",
	"filter", "finally", "for", "foreach", "function", "hidden", "if", "in",
	"param", "process", "return", "static", "switch", "throw", "trap", "try",
	"until", "using", "while", "workflow",
)

// scopeModifiers may prefix a function name at its definition site
// (function script:Foo) but are absent at call sites.
var scopeModifiers = []string{"global:", "script:", "local:", "private:"}

// psScanner walks PowerShell source one byte at a time. It only tracks as much
// context as needed to tell commands from arguments: whether the next bareword
// sits in command position, and whether the enclosing block is a hash literal
// whose barewords are keys.
type psScanner struct {
	src    string
	pos    int
	line   int
	tokens []model.Token

	cmdPos   bool // next bareword is a command name
	keyPos   bool // next bareword is a hash literal key
	nameNext bool // next bareword is a function definition name
	spaced   bool // whitespace precedes the current position
	blocks   []byte
}

func powershellTokenize(source []byte) ([]model.Token, error) {
	s := &psScanner{src: string(source), line: 1, cmdPos: true, spaced: true}
	s.run()
	return s.tokens, nil
}

func (s *psScanner) emit(kind model.TokenKind, text string, line int) {
	s.tokens = append(s.tokens, model.Token{Kind: kind, Text: text, Line: line})
	s.spaced = false
	s.keyPos = false
	s.nameNext = false
}

func (s *psScanner) peek(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *psScanner) inHash() bool {
	return len(s.blocks) > 0 && s.blocks[len(s.blocks)-1] == 'h'
}

func (s *psScanner) push(b byte) { s.blocks = append(s.blocks, b) }

func (s *psScanner) pop() {
	if len(s.blocks) > 0 {
		s.blocks = s.blocks[:len(s.blocks)-1]
	}
}

// statementStart marks the position after a statement separator.
func (s *psScanner) statementStart() {
	s.cmdPos = true
	s.keyPos = s.inHash()
}

func (s *psScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		line := s.line

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			s.pos++
			s.spaced = true

		case c == '\n':
			s.pos++
			s.emit(model.Other, "\n", line)
			s.line++
			s.spaced = true
			s.statementStart()

		case c == '`' && (s.peek(1) == '\n' || (s.peek(1) == '\r' && s.peek(2) == '\n')):
			// Line continuation.
			for s.src[s.pos] != '\n' {
				s.pos++
			}
			s.pos++
			s.line++
			s.spaced = true

		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}

		case c == '<' && s.peek(1) == '#':
			s.skipBlockComment()

		case c == '{':
			s.pos++
			s.push('s')
			s.emit(model.BlockOpen, "{", line)
			s.statementStart()

		case c == '}':
			s.pos++
			s.pop()
			s.emit(model.BlockClose, "}", line)
			s.cmdPos = true

		case c == '@' && s.peek(1) == '{':
			s.pos += 2
			s.push('h')
			s.emit(model.BlockOpen, "@{", line)
			s.statementStart()

		case c == '@' && (s.peek(1) == '"' || s.peek(1) == '\''):
			s.hereString()

		case c == '@' && s.peek(1) == '(':
			s.pos += 2
			s.push('p')
			s.emit(model.Operator, "@(", line)
			s.cmdPos = true

		case c == '$' && s.peek(1) == '(':
			s.pos += 2
			s.push('p')
			s.emit(model.Operator, "$(", line)
			s.cmdPos = true

		case c == '$' || c == '@':
			s.emit(model.Other, s.variable(), line)
			s.cmdPos = false

		case c == '\'' || c == '"':
			text := s.quoted()
			s.emit(model.Other, text, line)
			s.cmdPos = false

		case c == '(':
			s.pos++
			s.push('p')
			s.emit(model.Operator, "(", line)
			s.cmdPos = true

		case c == ')':
			s.pos++
			s.pop()
			s.emit(model.Operator, ")", line)
			s.cmdPos = false

		case c == '[':
			s.emit(model.Other, s.bracketed(), line)
			s.cmdPos = false

		case c == ';':
			s.pos++
			s.emit(model.Operator, ";", line)
			s.statementStart()

		case c == '|' || c == '&':
			op := string(c)
			if s.peek(1) == c {
				op += string(c)
			}
			s.pos += len(op)
			s.emit(model.Operator, op, line)
			s.cmdPos = true

		case c == ',':
			s.pos++
			s.emit(model.Operator, ",", line)
			s.cmdPos = false

		case c == '=':
			s.pos++
			s.emit(model.Operator, "=", line)
			s.cmdPos = true

		case c == '.':
			s.dot(line)

		case c == ':' && s.peek(1) == ':':
			start := s.pos
			s.pos += 2
			s.pos += identLen(s.src[s.pos:])
			s.emit(model.Other, s.src[start:s.pos], line)
			s.cmdPos = false

		case c == '-' && isIdentStart(s.peek(1)):
			// Parameter (-Name) or operator (-eq).
			start := s.pos
			s.pos++
			for s.pos < len(s.src) && (isIdentByte(s.src[s.pos]) || s.src[s.pos] == '-') {
				s.pos++
			}
			s.emit(model.Other, s.src[start:s.pos], line)
			s.cmdPos = false

		case strings.IndexByte("+-*/%!<>", c) >= 0 && !(c == '-' && isDigit(s.peek(1))):
			start := s.pos
			s.pos++
			if s.peek(0) == '=' || s.peek(0) == c {
				s.pos++
			}
			op := s.src[start:s.pos]
			s.emit(model.Operator, op, line)
			s.cmdPos = strings.HasSuffix(op, "=")

		default:
			s.bareword(line)
		}
	}
}

func (s *psScanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '#' && s.peek(1) == '>' {
			s.pos += 2
			return
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
}

// dot handles the three meanings of a leading '.': the dot-source operator,
// member access on the previous token, and the start of a relative path.
func (s *psScanner) dot(line int) {
	next := s.peek(1)
	switch {
	case s.cmdPos && s.dotsBlock():
		// Dot-invoking a script block or expression runs code in place and
		// loads no file.
		s.pos++
		s.emit(model.Other, ".", line)
	case s.cmdPos && (next == ' ' || next == '\t'):
		s.pos++
		s.emit(model.Operator, ".", line)
		s.includeTarget()
	case !s.spaced && len(s.tokens) > 0 && isIdentStart(next):
		start := s.pos
		s.pos++
		s.pos += identLen(s.src[s.pos:])
		s.emit(model.Other, s.src[start:s.pos], line)
		s.cmdPos = false
	default:
		s.bareword(line)
	}
}

// dotsBlock reports whether the '.' at the cursor is followed by a script
// block, a parenthesized expression or a subexpression.
func (s *psScanner) dotsBlock() bool {
	i := s.pos + 1
	for i < len(s.src) && (s.src[i] == ' ' || s.src[i] == '\t') {
		i++
	}
	rest := s.src[i:]
	return strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "$(")
}

// includeTarget reads the path following a dot-source operator as a single
// command token. Parenthesized or block targets are left to the main loop.
func (s *psScanner) includeTarget() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return
	}
	line := s.line
	c := s.src[s.pos]
	switch {
	case c == '\'' || c == '"':
		raw := s.quoted()
		s.emit(model.Identifier, unquote(raw), line)
	case strings.IndexByte("\n\r;|&(){}@#", c) >= 0:
		return
	default:
		start := s.pos
		if strings.HasPrefix(s.src[s.pos:], "${") {
			if end := strings.IndexByte(s.src[s.pos:], '}'); end > 0 {
				s.pos += end + 1
			}
		}
		for s.pos < len(s.src) && !isSpace(s.src[s.pos]) && strings.IndexByte(";|&(){}", s.src[s.pos]) < 0 {
			s.pos++
		}
		s.emit(model.Identifier, s.src[start:s.pos], line)
	}
	s.cmdPos = false
}

func (s *psScanner) bareword(line int) {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '`' && s.pos+1 < len(s.src) && s.src[s.pos+1] != '\n' {
			s.pos += 2
			continue
		}
		if isSpace(c) || strings.IndexByte("{}();,|&\"'`", c) >= 0 {
			break
		}
		if c == '=' && (s.keyPos || s.inHash()) {
			break
		}
		s.pos++
	}
	if s.pos == start {
		// Unclassifiable single byte; consume it so the scan always advances.
		s.pos++
		s.emit(model.Other, s.src[start:s.pos], line)
		return
	}
	word := s.src[start:s.pos]
	lower := strings.ToLower(word)

	switch {
	case s.nameNext:
		s.emit(model.Identifier, stripScopeModifier(word), line)
		s.cmdPos = false
	case s.keyPos:
		s.emit(model.Other, word, line)
		s.cmdPos = false
	case isNumeric(word):
		s.emit(model.Other, word, line)
		s.cmdPos = false
	case s.cmdPos && isKeyword(lower):
		s.emit(model.Keyword, word, line)
		if _, def := powershellDefinitions[lower]; def {
			s.nameNext = true
			s.cmdPos = false
		} else {
			s.cmdPos = true
		}
	case s.cmdPos:
		s.emit(model.Identifier, word, line)
		s.cmdPos = false
	default:
		s.emit(model.Argument, word, line)
	}
}

func (s *psScanner) variable() string {
	start := s.pos
	s.pos++
	if s.peek(0) == '{' {
		for s.pos < len(s.src) && s.src[s.pos] != '}' {
			s.pos++
		}
		if s.pos < len(s.src) {
			s.pos++
		}
		return s.src[start:s.pos]
	}
	for s.pos < len(s.src) && (isIdentByte(s.src[s.pos]) || strings.IndexByte(":?^$", s.src[s.pos]) >= 0) {
		if s.src[s.pos] == ':' && s.peek(1) == ':' {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

// quoted consumes a single- or double-quoted string starting at the current
// position and returns its raw text including quotes.
func (s *psScanner) quoted() string {
	start := s.pos
	q := s.src[s.pos]
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '`' && q == '"':
			if s.peek(1) == '\n' {
				s.line++
			}
			s.pos += 2
			continue
		case c == q && s.peek(1) == q:
			s.pos += 2
			continue
		case c == q:
			s.pos++
			return s.src[start:s.pos]
		case c == '\n':
			s.line++
		}
		s.pos++
	}
	return s.src[start:]
}

// hereString consumes @"..."@ or @'...'@; the terminator must start a line.
func (s *psScanner) hereString() {
	line := s.line
	start := s.pos
	q := s.src[s.pos+1]
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
			if s.peek(1) == q && s.peek(2) == '@' {
				s.pos += 3
				break
			}
		}
		s.pos++
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
	s.emit(model.Other, s.src[start:s.pos], line)
	s.cmdPos = false
}

// bracketed consumes a type literal or index expression up to its matching
// bracket on the same line.
func (s *psScanner) bracketed() string {
	start := s.pos
	depth := 0
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		switch s.src[s.pos] {
		case '[':
			depth++
		case ']':
			depth--
		}
		s.pos++
		if depth == 0 {
			break
		}
	}
	return s.src[start:s.pos]
}

func isKeyword(lower string) bool {
	_, ok := powershellKeywords[lower]
	return ok
}

func stripScopeModifier(name string) string {
	lower := strings.ToLower(name)
	for _, m := range scopeModifiers {
		if strings.HasPrefix(lower, m) {
			return name[len(m):]
		}
	}
	return name
}

func unquote(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return strings.Trim(raw, `"'`)
}

func identLen(s string) int {
	n := 0
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNumeric(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if !isDigit(c) && c != '.' && c != '-' && c != 'x' && c != 'X' {
			return false
		}
	}
	return isDigit(word[0]) || (len(word) > 1 && word[0] == '-' && isDigit(word[1]))
}
