// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/id16/internal"
	ports "github.com/ezrec/id16/io"
)

const (
	// EQUATE_DEPTH is the maximum number of nested .equ substitutions.
	EQUATE_DEPTH = 16
)

var (
	reCharacter  = regexp.MustCompile(`'(\\.|[^'\\])'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// opMap maps mnemonics to operations.
var opMap = func() map[string]Op {
	ops := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		ops[name] = op
	}
	return ops
}()

// epMap maps endpoint names to endpoints.
var epMap = func() map[string]Endpoint {
	eps := make(map[string]Endpoint, len(endpointNames))
	for ep, name := range endpointNames {
		eps[name] = ep
	}
	return eps
}()

// Assembler is a two pass assembler for the id16 instruction set.
//
// Statements are placed from MEM_START, unless moved by .org; .org may
// not move below the end of a previously placed statement.
//
// The first pass assigns addresses to labels and statements, the second
// encodes the statements, so labels may be referenced before they are
// defined. Compile-time $(...) expressions are evaluated during the first
// pass, and may only reference equates and previously defined labels.
type Assembler struct {
	Log     logrus.FieldLogger // Diagnostics sink, may be nil.
	Verbose bool               // If set, verbosely logs the assembler actions.
	Opcode  []Opcode           // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to word addresses.
	Equate    map[string]string // Map of equates.
}

// statement is a line with content, placed by the first pass.
type statement struct {
	lineNo int
	line   string
	words  []string
	ip     int
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() logrus.FieldLogger {
	return internal.LoggerOr(asm.Log)
}

// toWord converts a value to a word, accepting both signed and unsigned
// 16-bit ranges.
func toWord(v64 int64) (value int16, err error) {
	if v64 < math.MinInt16 || v64 > math.MaxUint16 {
		err = ErrValueRange
		return
	}
	value = int16(uint16(v64))
	return
}

// charValue returns the value of the inside of a character quote.
func charValue(str string) (value int16, err error) {
	if str[0] != '\\' {
		r, _ := utf8.DecodeRuneInString(str)
		if r > 0xffff {
			err = ErrParseCharacter(str)
			return
		}
		value = int16(uint16(r))
		return
	}

	switch str[1] {
	case 'n':
		value = '\n'
	case 'r':
		value = '\r'
	case 't':
		value = '\t'
	case 'b':
		value = '\b'
	case 'e':
		value = 033
	case '0':
		value = 0
	case '\\', '\'':
		value = int16(str[1])
	default:
		err = ErrParseCharacter(str)
	}

	return
}

// expand substitutes equates in a word.
func (asm *Assembler) expand(word string) (string, error) {
	for range EQUATE_DEPTH {
		equate, ok := asm.Equate[word]
		if !ok {
			return word, nil
		}
		word = equate
	}

	return word, ErrEquateLoop
}

// valueOf returns the value of a number, label or equate.
func (asm *Assembler) valueOf(word string) (value int16, err error) {
	word, err = asm.expand(word)
	if err != nil {
		return
	}

	ip, ok := asm.Label[word]
	if ok {
		return toWord(int64(ip))
	}

	v64, perr := strconv.ParseInt(word, 0, 64)
	if perr != nil {
		if reLabel.MatchString(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseNumber(word)
		}
		return
	}

	return toWord(v64)
}

// operand decodes an instruction parameter.
func (asm *Assembler) operand(word string) (value int16, ad Addressing, err error) {
	word, err = asm.expand(word)
	if err != nil {
		return
	}

	bracketed := strings.HasPrefix(word, "[")
	if bracketed != strings.HasSuffix(word, "]") {
		err = ErrOperandInvalid
		return
	}

	switch {
	case strings.HasPrefix(word, "#"):
		ad.Immediate = true
		value, err = asm.valueOf(word[1:])
	case bracketed:
		var inner string
		inner, err = asm.expand(word[1 : len(word)-1])
		if err != nil {
			return
		}
		ep, ok := epMap[inner]
		if ok {
			ad.Pointer = true
			value = int16(ep)
			return
		}
		ad.Memory = true
		value, err = asm.valueOf(inner)
	default:
		ep, ok := epMap[word]
		if ok {
			value = int16(ep)
			return
		}
		value, err = asm.valueOf(word)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int16, err error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		equ, _err := asm.valueOf(key)
		if _err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(equ))
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrValueRange
		return
	}

	return toWord(st_int64)
}

// parseLine expands character quotes and expressions, drops comments, and
// splits a line into words.
func (asm *Assembler) parseLine(line string) (words []string, err error) {
	line = reCharacter.ReplaceAllStringFunc(line, func(quoted string) string {
		value, _err := charValue(quoted[1 : len(quoted)-1])
		if _err != nil {
			err = _err
			return quoted
		}
		return strconv.Itoa(int(value))
	})
	if err != nil {
		return
	}

	line, _, _ = strings.Cut(line, ";")

	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
			return str
		}
		return strconv.Itoa(int(value))
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Label = make(map[string]int, 16)
	asm.Equate = maps.Collect(internal.IterSeq2Concat(Defines(), ports.Defines()))
	maps.Copy(asm.Equate, asm.predefine)

	ip := MEM_START
	end := 0
	var stmts []statement

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().WithField("line", lineno).Debug(text)
		}

		line = strings.TrimSpace(text)

		var words []string
		words, err = asm.parseLine(line)
		if err != nil {
			return
		}

		for len(words) > 0 && strings.HasSuffix(words[0], ":") {
			label := strings.TrimSuffix(words[0], ":")
			if !reLabel.MatchString(label) {
				err = ErrLabelInvalid
				return
			}
			_, ok := asm.Label[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = ip
			words = words[1:]
		}

		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case ".equ":
			// .equ NAME VALUE
			if len(words) != 3 {
				err = ErrEquateSyntax
				return
			}
			_, ok := asm.Equate[words[1]]
			if ok {
				err = ErrEquateDuplicate
				return
			}
			asm.Equate[words[1]] = words[2]
			continue
		case ".org":
			// .org ADDRESS
			if len(words) != 2 {
				err = ErrOrgSyntax
				return
			}
			var org int16
			org, err = asm.valueOf(words[1])
			if err != nil {
				return
			}
			if int(uint16(org)) < end {
				err = ErrOrgBackwards
				return
			}
			ip = int(uint16(org))
			continue
		case ".word":
			// .word VALUE...
			if len(words) == 1 {
				err = ErrWordMissing
				return
			}
			stmts = append(stmts, statement{lineNo: lineno, line: line, words: words, ip: ip})
			ip += len(words) - 1
			end = ip
			continue
		}

		_, ok := opMap[words[0]]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		stmts = append(stmts, statement{lineNo: lineno, line: line, words: words, ip: ip})
		ip += CODE_WORDS
		end = ip
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	for _, stmt := range stmts {
		lineno = stmt.lineNo
		line = stmt.line

		var data []int16
		data, err = asm.assemble(stmt.words)
		if err != nil {
			return
		}

		if asm.Verbose {
			asm.logger().WithFields(logrus.Fields{
				"line": lineno,
				"ip":   fmt.Sprintf("%04x", stmt.ip),
			}).Debug(strings.Join(stmt.words, " "))
		}

		asm.Opcode = append(asm.Opcode, Opcode{
			LineNo: stmt.lineNo,
			Ip:     stmt.ip,
			Words:  stmt.words,
			Data:   data,
		})
	}

	prog = &Program{
		Opcodes: append([]Opcode(nil), asm.Opcode...),
	}

	return
}

// assemble encodes the words of a single statement.
func (asm *Assembler) assemble(words []string) (data []int16, err error) {
	if words[0] == ".word" {
		for _, word := range words[1:] {
			var value int16
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			data = append(data, value)
		}
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]

	wanted, required := 2, 2
	switch op {
	case OP_NOOP:
		required = 0
	case OP_INTERRUPT:
		wanted, required = 1, 1
	}

	if len(args) > wanted {
		err = ErrOpcodeExtraArgs
		return
	}
	if len(args) < required {
		err = ErrOpcodeValueMissing
		return
	}

	var mode Mode
	var params [2]int16
	for n, arg := range args {
		var ad Addressing
		params[n], ad, err = asm.operand(arg)
		if err != nil {
			return
		}
		if op == OP_MOVE && n == 1 && ad.Immediate {
			err = ErrTargetInvalid
			return
		}
		mode |= ad.Mode(n)
	}

	data = MakeCode(op, mode, params[0], params[1]).Words()

	return
}
