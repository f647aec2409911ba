package tac

import "strings"

// stripComments removes everything after a ';' or '#'.
func stripComments(line string) string {
	if idx := strings.IndexAny(line, ";#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

// parseLine decodes a single line. ok is false for blank and comment-only
// lines.
func parseLine(raw string, lineNo int) (in Instr, ok bool, err error) {
	text := strings.TrimSpace(stripComments(raw))
	if text == "" {
		return Instr{}, false, nil
	}
	fail := func(msg string) (Instr, bool, error) {
		return Instr{}, false, &ParseError{Line: lineNo, Text: text, Msg: msg}
	}

	toks, err := tokenize(text)
	if err != nil {
		return fail(err.Error())
	}
	n := len(toks)
	first := toks[0]

	switch {
	case n == 2 && first.kind == tokName && toks[1].text == ":":
		return Instr{Op: OpLabel, Label: first.text}, true, nil

	case n >= 2 && first.kind == tokName && toks[1].text == ":=":
		value, err := parseExprTokens(toks[2:])
		if err != nil {
			return fail(err.Error())
		}
		return Instr{Op: OpAssign, Dest: first.text, Value: value}, true, nil

	case first.kind == tokName && first.text == "print":
		value, err := parseExprTokens(toks[1:])
		if err != nil {
			return fail(err.Error())
		}
		return Instr{Op: OpPrint, Value: value}, true, nil

	case first.kind == tokName && first.text == "goto":
		if n != 2 || toks[1].kind != tokName {
			return fail("goto expects a single label")
		}
		return Instr{Op: OpGoto, Label: toks[1].text}, true, nil

	case first.kind == tokName && first.text == "if":
		// if <expr> == 0 goto <label>
		if n < 6 || toks[n-4].text != "==" || toks[n-3].text != "0" ||
			toks[n-2].text != "goto" || toks[n-1].kind != tokName {
			return fail("conditional jump must have the form 'if <expr> == 0 goto <label>'")
		}
		value, err := parseExprTokens(toks[1 : n-4])
		if err != nil {
			return fail(err.Error())
		}
		return Instr{Op: OpIfFalse, Value: value, Label: toks[n-1].text}, true, nil
	}
	return fail("unrecognized instruction")
}

// parse decodes text and records the 1-based line number of each instruction.
func parse(text string) ([]Instr, []int, error) {
	var code []Instr
	var lines []int
	for i, raw := range strings.Split(text, "\n") {
		in, ok, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			code = append(code, in)
			lines = append(lines, i+1)
		}
	}
	return code, lines, nil
}

// Parse decodes TAC text into instructions. Blank lines and comments are
// skipped; any other line that is not a label, assignment, print, goto or
// conditional jump is an error.
func Parse(text string) ([]Instr, error) {
	code, _, err := parse(text)
	return code, err
}
