package material

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrPreprocess is wrapped by every preprocessor failure.
var ErrPreprocess = errors.New("material: shader preprocess")

// Preprocessor rewrites shader source before compilation. defines maps
// names to replacement text; an empty value only marks the name defined.
type Preprocessor func(source string, defines map[string]string) (string, error)

// Preprocess is the default Preprocessor. It supports #define NAME [value],
// #undef, #ifdef, #ifndef, #else and #endif, and replaces whole-word uses
// of names that have a non-empty value.
func Preprocess(source string, defines map[string]string) (string, error) {
	defs := make(map[string]string, len(defines))
	for k, v := range defines {
		defs[k] = v
	}

	// stack of "is this branch emitting" flags; the base level always emits
	type frame struct {
		active   bool
		parent   bool
		sawElse  bool
		lineOpen int
	}
	var stack []frame
	emitting := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}

	var out strings.Builder
	sc := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if emitting() {
				out.WriteString(substitute(line, defs))
				out.WriteByte('\n')
			}
			continue
		}

		directive, arg, _ := strings.Cut(strings.TrimSpace(trimmed[1:]), " ")
		arg = strings.TrimSpace(arg)
		switch directive {
		case "ifdef", "ifndef":
			if arg == "" {
				return "", fmt.Errorf("%w: line %d: #%s needs a name", ErrPreprocess, lineNo, directive)
			}
			_, defined := defs[arg]
			cond := defined == (directive == "ifdef")
			parent := emitting()
			stack = append(stack, frame{active: parent && cond, parent: parent, lineOpen: lineNo})
		case "else":
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: line %d: #else without #if", ErrPreprocess, lineNo)
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return "", fmt.Errorf("%w: line %d: duplicate #else", ErrPreprocess, lineNo)
			}
			top.sawElse = true
			top.active = top.parent && !top.active
		case "endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: line %d: #endif without #if", ErrPreprocess, lineNo)
			}
			stack = stack[:len(stack)-1]
		case "define":
			if !emitting() {
				continue
			}
			name, value, _ := strings.Cut(arg, " ")
			if name == "" {
				return "", fmt.Errorf("%w: line %d: #define needs a name", ErrPreprocess, lineNo)
			}
			defs[name] = strings.TrimSpace(value)
		case "undef":
			if emitting() {
				delete(defs, arg)
			}
		default:
			return "", fmt.Errorf("%w: line %d: unknown directive #%s", ErrPreprocess, lineNo, directive)
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPreprocess, err)
	}
	if len(stack) > 0 {
		return "", fmt.Errorf("%w: unterminated #if opened at line %d", ErrPreprocess, stack[len(stack)-1].lineOpen)
	}
	return out.String(), nil
}

// substitute replaces whole identifiers that have a non-empty definition.
func substitute(line string, defs map[string]string) string {
	if len(defs) == 0 {
		return line
	}
	var b strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); {
		if !isIdentStart(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && isIdentPart(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if v, ok := defs[word]; ok && v != "" {
			b.WriteString(v)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
