package engine

import "strings"

// kwPrefix marks keyword tokens once they have been rewritten into strings.
const kwPrefix = "__kw_"

// preprocessSource rewrites brush script into something zygomys reads.
//
// Keywords become tagged strings (:size -> "__kw_size"), so they never
// collide with user variables. Hyphenated identifiers become underscored
// (move-vertices -> move_vertices), since zygomys reads a bare hyphen as
// subtraction. Semicolon comments become // comments. String literals and
// comment bodies pass through untouched.
func preprocessSource(source string) string {
	r := rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"':
			r.quoted('"', true)
		case c == '`':
			r.quoted('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.peek(1) == '=':
			r.copy(2)
		case c == ':' && isLetter(r.peek(1)):
			r.keyword()
		case c == '-' && r.pos > 0 && isIdentChar(r.src[r.pos-1]) && isLetter(r.peek(1)):
			r.out.WriteByte('_')
			r.pos++
		default:
			r.copy(1)
		}
	}
	return r.out.String()
}

type rewriter struct {
	src string
	pos int
	out strings.Builder
}

// peek returns the byte off positions ahead, or 0 past the end.
func (r *rewriter) peek(off int) byte {
	if r.pos+off < len(r.src) {
		return r.src[r.pos+off]
	}
	return 0
}

func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// quoted copies a literal delimited by q, including both delimiters.
func (r *rewriter) quoted(q byte, escapes bool) {
	start := r.pos
	r.pos++
	for r.pos < len(r.src) && r.src[r.pos] != q {
		if escapes && r.src[r.pos] == '\\' {
			r.pos++
		}
		r.pos++
	}
	r.pos = min(r.pos+1, len(r.src))
	r.out.WriteString(r.src[start:r.pos])
}

func (r *rewriter) comment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.out.WriteString("//")
	r.copy(end)
}

func (r *rewriter) keyword() {
	end := r.pos + 1
	for end < len(r.src) && isKeywordChar(r.src[end]) {
		end++
	}
	r.out.WriteByte('"')
	r.out.WriteString(kwPrefix)
	r.out.WriteString(r.src[r.pos+1 : end])
	r.out.WriteByte('"')
	r.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
