package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/marks-tracker/constants"
)

// Kind classifies a token.
type Kind int

const (
	KindSpace      Kind = iota // run of whitespace, line breaks included
	KindWord                   // run of ASCII letters
	KindNumber                 // digits with an optional fractional part
	KindEnrollment             // alphanumeric run holding the enrollment prefix
	KindOther                  // anything else: punctuation, mixed runs, non-ASCII
)

func (k Kind) String() string {
	switch k {
	case KindSpace:
		return "space"
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindEnrollment:
		return "enrollment"
	default:
		return "other"
	}
}

// Token is a lexeme of the acquired text. Pos is its byte offset.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func isASCIILetter(r rune) bool { return r < utf8.RuneSelf && unicode.IsLetter(r) }
func isASCIIDigit(r rune) bool  { return '0' <= r && r <= '9' }
func isAlnum(r rune) bool       { return isASCIILetter(r) || isASCIIDigit(r) }

// Tokenize splits text into whitespace runs, alphanumeric runs and
// everything else. A '.' between two digits stays inside its run so decimal
// marks survive as one token.
func Tokenize(text string) []Token {
	var toks []Token
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		start := i
		switch {
		case unicode.IsSpace(r):
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}
			toks = append(toks, Token{Kind: KindSpace, Text: text[start:i], Pos: start})
		case isAlnum(r):
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if isAlnum(r) {
					i += size
					continue
				}
				if r == '.' && i > start && isASCIIDigit(rune(text[i-1])) && i+1 < len(text) && isASCIIDigit(rune(text[i+1])) {
					i += size
					continue
				}
				break
			}
			toks = append(toks, classifyRun(text[start:i], start))
		default:
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(r) || isAlnum(r) {
					break
				}
				i += size
			}
			toks = append(toks, Token{Kind: KindOther, Text: text[start:i], Pos: start})
		}
	}
	return toks
}

func classifyRun(run string, pos int) Token {
	if !strings.Contains(run, ".") {
		// the id may start mid-run when OCR glues a stray glyph onto it
		if idx := strings.Index(run, constants.EnrollmentPrefix); idx >= 0 {
			return Token{Kind: KindEnrollment, Text: run[idx:], Pos: pos + idx}
		}
	}
	if isNumber(run) {
		return Token{Kind: KindNumber, Text: run, Pos: pos}
	}
	if isWord(run) {
		return Token{Kind: KindWord, Text: run, Pos: pos}
	}
	return Token{Kind: KindOther, Text: run, Pos: pos}
}

func isWord(s string) bool {
	for _, r := range s {
		if !isASCIILetter(r) {
			return false
		}
	}
	return s != ""
}

// isNumber matches \d+(\.\d+)?
func isNumber(s string) bool {
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasDot || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIIDigit(rune(s[i])) {
			return false
		}
	}
	return true
}
