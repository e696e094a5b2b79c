package tmparser

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"
)

// decodeEntity attempts to decode an HTML entity reference starting at
// bytes[start] (which must be '&'), returning the decoded UTF-8 bytes and
// the index right after the reference, or ok=false if bytes[start:] is
// not a valid entity reference.
//
// Named entities are resolved via goldmark's generated HTML5 entity
// table (util.LookUpHTML5EntityByName) rather than a hand-rolled table, per
// DESIGN.md; numeric/hex entities are decoded directly, as CommonMark
// requires accepting any codepoint goldmark's named table doesn't cover.
func decodeEntity(s string, start int) (decoded []byte, next int, ok bool) {
	if start >= len(s) || s[start] != '&' {
		return nil, start, false
	}
	i := start + 1
	if i < len(s) && s[i] == '#' {
		i++
		var n int64
		var err error
		digitsStart := i
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			digitsStart = i
			for i < len(s) && isHexDigit(s[i]) {
				i++
			}
			if i == digitsStart {
				return nil, start, false
			}
			n, err = strconv.ParseInt(s[digitsStart:i], 16, 32)
		} else {
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			if i == digitsStart {
				return nil, start, false
			}
			n, err = strconv.ParseInt(s[digitsStart:i], 10, 32)
		}
		if err != nil || i >= len(s) || s[i] != ';' {
			return nil, start, false
		}
		i++
		return []byte(decodeCodepoint(rune(n))), i, true
	}
	nameStart := i
	for i < len(s) && isAsciiAlnum(s[i]) {
		i++
	}
	if i == nameStart || i >= len(s) || s[i] != ';' {
		return nil, start, false
	}
	name := s[nameStart:i]
	i++
	if entity, found := util.LookUpHTML5EntityByName(name + ";"); found {
		return entity.Characters, i, true
	}
	return nil, start, false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAsciiAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// decodeCodepoint mirrors CommonMark's numeric entity rules: codepoint 0
// and invalid/surrogate codepoints decode to U+FFFD.
func decodeCodepoint(n rune) string {
	if n == 0 || n > 0x10FFFF || (n >= 0xD800 && n <= 0xDFFF) {
		return "�"
	}
	return string(n)
}

// unescapeAndDecodeEntities processes backslash escapes and unescaped
// entity references, used for fence info strings and similar raw text
// that receives CommonMark's backslash+entity treatment but is never
// split into further inline structure.
//
// Grounded on original_source/typmark-core/src/parser.rs::unescape_and_decode.
func unescapeAndDecodeEntities(text string) string {
	var sb strings.Builder
	i := 0
	for i < len(text) {
		b := text[i]
		if b == '\\' && i+1 < len(text) && isASCIIPunctuation(text[i+1]) {
			sb.WriteByte(text[i+1])
			i += 2
			continue
		}
		if b == '&' {
			if decoded, next, ok := decodeEntity(text, i); ok {
				sb.Write(decoded)
				i = next
				continue
			}
		}
		sb.WriteByte(b)
		i++
	}
	return sb.String()
}

func isASCIIPunctuation(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') ||
		(b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}
