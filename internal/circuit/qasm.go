/*
PURPOSE:
  OpenQASM 2.0 bridge for circuits.
  Used to hand circuits to an external optimizer process and read its output back.

REQUIREMENTS:
  Implementation-discovered:
  - External tools emit angles as expressions ("pi/4", "-3*pi/2"), so parameters are evaluated.
  - Multiple qreg/creg declarations are flattened into one wire space in declaration order.
  - Register-wide arguments ("measure q -> c;") are broadcast.

ERROR HANDLING:
  - ParseQASM returns the offending line number on any syntax error.

RELATED FILES:
  - internal/transpile/command.go
*/

package circuit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrQASMSyntax wraps every parse failure.
var ErrQASMSyntax = errors.New("qasm: syntax error")

var (
	regRegex = regexp.MustCompile(`^(qreg|creg)\s+([A-Za-z_]\w*)\s*\[\s*(\d+)\s*\]$`)
	opRegex  = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\((.*)\))?\s+(.+)$`)
	argRegex = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\[\s*(\d+)\s*\])?$`)
)

// WriteQASM serializes c as OpenQASM 2.0 with a single qreg q and creg c.
func WriteQASM(w io.Writer, c *Circuit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OPENQASM 2.0;")
	fmt.Fprintln(bw, `include "qelib1.inc";`)
	if c.Count(GateUnitary) > 0 {
		names := make([]string, qvBlockParams)
		for i := range names {
			names[i] = fmt.Sprintf("p%d", i)
		}
		fmt.Fprintf(bw, "opaque %s(%s) a,b;\n", GateUnitary, strings.Join(names, ","))
	}
	fmt.Fprintf(bw, "qreg q[%d];\n", c.NumQubits)
	if c.NumClbits > 0 {
		fmt.Fprintf(bw, "creg c[%d];\n", c.NumClbits)
	}
	for _, op := range c.Ops {
		if op.Name == GateMeasure {
			fmt.Fprintf(bw, "measure q[%d] -> c[%d];\n", op.Qubits[0], op.Clbits[0])
			continue
		}
		bw.WriteString(op.Name)
		if len(op.Params) > 0 {
			ps := make([]string, len(op.Params))
			for i, p := range op.Params {
				ps[i] = strconv.FormatFloat(p, 'g', -1, 64)
			}
			fmt.Fprintf(bw, "(%s)", strings.Join(ps, ","))
		}
		qs := make([]string, len(op.Qubits))
		for i, q := range op.Qubits {
			qs[i] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(bw, " %s;\n", strings.Join(qs, ","))
	}
	return bw.Flush()
}

type register struct {
	offset, size int
}

type qasmParser struct {
	qregs, cregs map[string]register
	nq, nc       int
	ops          []Op
}

// ParseQASM reads an OpenQASM 2.0 program into a Circuit.
func ParseQASM(r io.Reader) (*Circuit, error) {
	p := &qasmParser{qregs: map[string]register{}, cregs: map[string]register{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrQASMSyntax, lineNo, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if p.nq == 0 {
		return nil, fmt.Errorf("%w: no qreg declared", ErrQASMSyntax)
	}
	c := &Circuit{NumQubits: p.nq, NumClbits: p.nc}
	for _, op := range p.ops {
		if err := c.Append(op); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (p *qasmParser) statement(stmt string) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), strings.HasPrefix(stmt, "include"),
		strings.HasPrefix(stmt, "opaque"):
		return nil
	case strings.HasPrefix(stmt, "gate "):
		// gate bodies span braces; qelib1 names are all we execute
		return fmt.Errorf("custom gate definitions are not supported")
	}
	if m := regRegex.FindStringSubmatch(stmt); m != nil {
		size, _ := strconv.Atoi(m[3])
		if m[1] == "qreg" {
			p.qregs[m[2]] = register{offset: p.nq, size: size}
			p.nq += size
		} else {
			p.cregs[m[2]] = register{offset: p.nc, size: size}
			p.nc += size
		}
		return nil
	}
	if strings.HasPrefix(stmt, GateMeasure) {
		return p.measure(strings.TrimSpace(strings.TrimPrefix(stmt, GateMeasure)))
	}
	m := opRegex.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("unrecognized statement %q", stmt)
	}
	var params []float64
	if strings.TrimSpace(m[2]) != "" {
		for _, expr := range strings.Split(m[2], ",") {
			v, err := evalExpr(expr)
			if err != nil {
				return err
			}
			params = append(params, v)
		}
	}
	args := strings.Split(m[3], ",")
	wires := make([][]int, len(args))
	width := 1
	for i, a := range args {
		ws, err := resolve(p.qregs, a)
		if err != nil {
			return err
		}
		wires[i] = ws
		if len(ws) > 1 {
			if width > 1 && len(ws) != width {
				return fmt.Errorf("mismatched register sizes in %q", stmt)
			}
			width = len(ws)
		}
	}
	if m[1] == GateBarrier {
		var qs []int
		for _, ws := range wires {
			qs = append(qs, ws...)
		}
		p.ops = append(p.ops, Op{Name: GateBarrier, Qubits: qs})
		return nil
	}
	for k := 0; k < width; k++ {
		qs := make([]int, len(wires))
		for i, ws := range wires {
			if len(ws) == 1 {
				qs[i] = ws[0]
			} else {
				qs[i] = ws[k]
			}
		}
		p.ops = append(p.ops, Op{Name: m[1], Qubits: qs, Params: params})
	}
	return nil
}

func (p *qasmParser) measure(rest string) error {
	parts := strings.Split(rest, "->")
	if len(parts) != 2 {
		return fmt.Errorf("malformed measure %q", rest)
	}
	qs, err := resolve(p.qregs, parts[0])
	if err != nil {
		return err
	}
	cs, err := resolve(p.cregs, parts[1])
	if err != nil {
		return err
	}
	if len(qs) != len(cs) {
		return fmt.Errorf("measure size mismatch %q", rest)
	}
	for i := range qs {
		p.ops = append(p.ops, Op{Name: GateMeasure, Qubits: []int{qs[i]}, Clbits: []int{cs[i]}})
	}
	return nil
}

func resolve(regs map[string]register, arg string) ([]int, error) {
	m := argRegex.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return nil, fmt.Errorf("bad argument %q", arg)
	}
	reg, ok := regs[m[1]]
	if !ok {
		return nil, fmt.Errorf("undeclared register %q", m[1])
	}
	if m[2] == "" {
		out := make([]int, reg.size)
		for i := range out {
			out[i] = reg.offset + i
		}
		return out, nil
	}
	idx, _ := strconv.Atoi(m[2])
	if idx >= reg.size {
		return nil, fmt.Errorf("index %d out of range for %s[%d]", idx, m[1], reg.size)
	}
	return []int{reg.offset + idx}, nil
}

// evalExpr evaluates the arithmetic subset QASM parameters use: numbers, pi, + - * / and
// parentheses.
func evalExpr(s string) (float64, error) {
	e := &exprParser{src: strings.ReplaceAll(s, " ", "")}
	v, err := e.sum()
	if err != nil {
		return 0, err
	}
	if e.pos != len(e.src) {
		return 0, fmt.Errorf("trailing input in expression %q", s)
	}
	return v, nil
}

type exprParser struct {
	src string
	pos int
}

func (e *exprParser) peek() byte {
	if e.pos < len(e.src) {
		return e.src[e.pos]
	}
	return 0
}

func (e *exprParser) sum() (float64, error) {
	v, err := e.product()
	if err != nil {
		return 0, err
	}
	for {
		switch e.peek() {
		case '+':
			e.pos++
			r, err := e.product()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			e.pos++
			r, err := e.product()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (e *exprParser) product() (float64, error) {
	v, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch e.peek() {
		case '*':
			e.pos++
			r, err := e.unary()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			e.pos++
			r, err := e.unary()
			if err != nil {
				return 0, err
			}
			v /= r
		default:
			return v, nil
		}
	}
}

func (e *exprParser) unary() (float64, error) {
	switch e.peek() {
	case '-':
		e.pos++
		v, err := e.unary()
		return -v, err
	case '+':
		e.pos++
		return e.unary()
	case '(':
		e.pos++
		v, err := e.sum()
		if err != nil {
			return 0, err
		}
		if e.peek() != ')' {
			return 0, fmt.Errorf("missing ')' in %q", e.src)
		}
		e.pos++
		return v, nil
	}
	if strings.HasPrefix(e.src[e.pos:], "pi") {
		e.pos += 2
		return math.Pi, nil
	}
	start := e.pos
	for e.pos < len(e.src) {
		ch := e.src[e.pos]
		isExp := (ch == '-' || ch == '+') && e.pos > start && (e.src[e.pos-1] == 'e' || e.src[e.pos-1] == 'E')
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == 'e' || ch == 'E' || isExp {
			e.pos++
			continue
		}
		break
	}
	if start == e.pos {
		return 0, fmt.Errorf("expected number at %d in %q", start, e.src)
	}
	return strconv.ParseFloat(e.src[start:e.pos], 64)
}
