package cmd

// Functions for parsing and evaluating the --filter expressions.  Syntax is
// close to sambamba's:
//  https://github.com/biod/sambamba/wiki/%5Bsambamba-view%5D-Filter-expression-syntax.
import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/grailbio/jnomics/reads"
)

const filterHelp = `Filter expression defines a boolean condition on a single read.
Templates left with no reads are dropped.

EXAMPLES:
   mapping_quality >= 60 && sequence_length < 150
   (paired && first_of_pair) || unmapped
   re(ref_name, "^chr[0-9]+$")
   gc_percent > 40

SYNTAX:

  Expressions are parsed using the Go parser. The operator precedence rules
  follow Go's.

  expr = intliteral | stringliteral
       re(expr, regexp) |  // Partial regex match.
       binary_op | equality_op
       logical_op
       (expr) |
       symbol

  # Args to a binary op can be integers, strings.
  # The two args must be of the same type.
  binary_op = expr > expr | expr >= expr | expr < expr | expr <= expr

  # Args to an equality op can be integers, strings, or bools.
  # The two args must be of the same type.
  equality_op = expr == expr |
        expr != expr

  logical_op = expr && expr |
        expr || expr |
        !expr

  // The following expressions extract a field value from a read.
  symbol = string_field | int_field | boolean_flag

  string_field = ref_name |  // reference name
       mate_ref_name |       // reference name of the next segment
       rec_name |            // read name
       cigar                 // CIGAR string, empty if unavailable

  int_field = position |  // 1-based first position, 0 if unmapped
       mate_position |    // 1-based position of the next segment
       sequence_length |  // number of bases
       mapping_quality |
       template_length |  // length of the template holding the read
       gc_percent         // GC content in percent, rounded down

  // The following expressions test the SAM flag of the read.
  boolean_flag = paired | proper_pair | unmapped | mate_is_unmapped |
       is_reverse_strand | mate_is_reverse_strand |
       first_of_pair | second_of_pair |  // R1 or R2
       secondary_alignment| failed_quality_control| duplicate |
       chimeric

  Note: flag 'chimeric' is shorthand for (paired && !unmapped && !mate_is_unmapped && (ref_name != mate_ref_name))

  intliteral is 0, 1, 0x10, etc.
  stringliteral is "foo", "文字", etc. It supports all golang string escape sequences.

`

// nodeType defines the type of filterExpr node.
type nodeType int

const (
	nodeInvalid  nodeType = iota
	nodeIntConst          // integer literal
	nodeStrConst          // string literal
	nodeNOT               // !
	nodeLAND              // &&
	nodeLOR               // ||
	nodeEQL               // ==
	nodeNEQ               // !=
	nodeGEQ               // >=
	nodeLEQ               // <=
	nodeLSS               // <
	nodeGTR               // >
	nodeRegex             // regex match

	// Field extractors.
	nodeRecName
	nodeRefName
	nodeCigar
	nodePos
	nodeSeqLength
	nodeMateRefName
	nodeMatePos
	nodeMapq
	nodeTempLen
	nodeGCPercent

	// Predicates on reads.Flags bits.
	nodePaired
	nodeProperPair
	nodeUnmapped
	nodeMateUnmapped
	nodeReverse
	nodeMateReverse
	nodeRead1
	nodeRead2
	nodeSecondary
	nodeQCFail
	nodeDuplicate
	nodeChimeric
)

type valueType int

const (
	valueTypeInt valueType = iota
	valueTypeStr
	valueTypeBool
)

// Result of evaluating a filterExpr.
type exprValue struct {
	vtype     valueType
	intValue  int64
	strValue  string
	boolValue bool
}

// AST node.
type filterExpr struct {
	ntype    nodeType
	vtype    valueType
	x, y     *filterExpr    // Used by unary or binary ops.
	intConst int64          // set if ntype==nodeIntConst
	strConst string         // set if ntype==nodeStrConst
	regexp   *regexp.Regexp // set if ntype==nodeRegex
}

type exprParser struct {
	err error
}

func doassert(cond bool, expr exprValue) {
	if !cond {
		log.Panicf("Broken expr: %+v", expr)
	}
}

func boolValue(v bool) exprValue {
	return exprValue{vtype: valueTypeBool, boolValue: v}
}

func intValue(v int64) exprValue {
	return exprValue{vtype: valueTypeInt, intValue: v}
}

func strValue(v string) exprValue {
	return exprValue{vtype: valueTypeStr, strValue: v}
}

// flagFields maps flag predicate names to their node type and flag bit.
var flagFields = map[string]struct {
	ntype nodeType
	flag  reads.Flags
}{
	"paired":                 {nodePaired, reads.MultipleFragments},
	"proper_pair":            {nodeProperPair, reads.ProperlyPaired},
	"unmapped":               {nodeUnmapped, reads.Unmapped},
	"mate_is_unmapped":       {nodeMateUnmapped, reads.NextUnmapped},
	"is_reverse_strand":      {nodeReverse, reads.ReverseComplemented},
	"mate_is_reverse_strand": {nodeMateReverse, reads.NextReverseComplemented},
	"first_of_pair":          {nodeRead1, reads.FirstSegment},
	"second_of_pair":         {nodeRead2, reads.LastSegment},
	"secondary_alignment":    {nodeSecondary, reads.SecondaryAlignment},
	"failed_quality_control": {nodeQCFail, reads.FailedQuality},
	"duplicate":              {nodeDuplicate, reads.Duplicate},
}

var flagBits = func() map[nodeType]reads.Flags {
	m := make(map[nodeType]reads.Flags, len(flagFields))
	for _, f := range flagFields {
		m[f.ntype] = f.flag
	}
	return m
}()

func (expr *filterExpr) evaluate(r *reads.SequencingRead) exprValue {
	switch expr.ntype {
	case nodeIntConst:
		return intValue(expr.intConst)
	case nodeStrConst:
		return strValue(expr.strConst)
	case nodeRegex:
		x := expr.x.evaluate(r)
		doassert(x.vtype == valueTypeStr, x)
		return boolValue(expr.regexp.MatchString(x.strValue))
	case nodeRecName:
		return strValue(r.Name)
	case nodeRefName:
		return strValue(r.ReferenceName())
	case nodeCigar:
		return strValue(r.Cigar)
	case nodePos:
		return intValue(int64(r.First()))
	case nodeSeqLength:
		return intValue(int64(r.Len()))
	case nodeMateRefName:
		return strValue(r.NextReferenceName)
	case nodeMatePos:
		return intValue(int64(r.NextPosition))
	case nodeMapq:
		return intValue(int64(r.MappingQuality))
	case nodeTempLen:
		if t := r.Template(); t != nil {
			return intValue(int64(t.Length()))
		}
		return intValue(0)
	case nodeGCPercent:
		return intValue(int64(r.GCContent() * 100))
	case nodePaired, nodeProperPair, nodeUnmapped, nodeMateUnmapped, nodeReverse, nodeMateReverse,
		nodeRead1, nodeRead2, nodeSecondary, nodeQCFail, nodeDuplicate:
		return boolValue(r.HasAll(flagBits[expr.ntype]))
	case nodeChimeric:
		return boolValue(r.IsTemplateMultiplySegmented() &&
			r.IsMapped() && r.IsNextMapped() &&
			r.ReferenceName() != r.NextReferenceName)
	case nodeNOT:
		x := expr.x.evaluate(r)
		doassert(x.vtype == valueTypeBool, x)
		return boolValue(!x.boolValue)
	case nodeLAND, nodeLOR:
		x := expr.x.evaluate(r)
		y := expr.y.evaluate(r)
		doassert(x.vtype == valueTypeBool, x)
		doassert(y.vtype == valueTypeBool, y)
		if expr.ntype == nodeLAND {
			return boolValue(x.boolValue && y.boolValue)
		}
		return boolValue(x.boolValue || y.boolValue)
	case nodeGEQ, nodeLEQ, nodeLSS, nodeGTR, nodeEQL, nodeNEQ:
		x := expr.x.evaluate(r)
		y := expr.y.evaluate(r)
		switch x.vtype {
		case valueTypeInt:
			return boolValue(compareOp(expr.ntype, compareInt(x.intValue, y.intValue)))
		case valueTypeStr:
			return boolValue(compareOp(expr.ntype, compareStr(x.strValue, y.strValue)))
		case valueTypeBool:
			doassert(expr.ntype == nodeEQL || expr.ntype == nodeNEQ, x)
			return boolValue((x.boolValue == y.boolValue) == (expr.ntype == nodeEQL))
		}
	}
	log.Panicf("Unknown expr: %+v", expr)
	return exprValue{}
}

func compareInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareStr(x, y string) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// compareOp applies a comparison node to the result of a three-way compare.
func compareOp(op nodeType, c int) bool {
	switch op {
	case nodeGEQ:
		return c >= 0
	case nodeLEQ:
		return c <= 0
	case nodeLSS:
		return c < 0
	case nodeGTR:
		return c > 0
	case nodeEQL:
		return c == 0
	case nodeNEQ:
		return c != 0
	}
	log.Panicf("not a comparison: %v", op)
	return false
}

func (p *exprParser) setError(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

func (p *exprParser) doassert(cond bool, message string, node interface{}) {
	if !cond {
		p.setError(errors.New(message + ":" + astDebugString(node)))
	}
}

func (p *exprParser) parse(node interface{}) *filterExpr {
	switch e := node.(type) {
	case *ast.ParenExpr:
		return p.parse(e.X)
	case *ast.CallExpr:
		fun, ok := e.Fun.(*ast.Ident)
		if !ok {
			p.setError(fmt.Errorf("expect ident, got %v", astDebugString(e.Fun)))
			return nil
		}
		if fun.Name == "re" {
			if len(e.Args) != 2 {
				p.setError(fmt.Errorf("expect two args for re(), but found %v",
					astDebugString(node)))
				return nil
			}
			x := p.parse(e.Args[0])
			y := p.parse(e.Args[1])
			if p.err != nil {
				return nil
			}
			p.doassert(x.vtype == valueTypeStr && y.ntype == nodeStrConst, "Operands for re() must be string", node)
			re, err := regexp.Compile(y.strConst)
			p.setError(err)
			return &filterExpr{
				ntype:  nodeRegex,
				vtype:  valueTypeBool,
				x:      x,
				regexp: re,
			}
		}
	case *ast.UnaryExpr:
		if e.Op == token.NOT {
			x := p.parse(e.X)
			if p.err != nil {
				return nil
			}
			p.doassert(x.vtype == valueTypeBool, "Operand for ! must be bool", node)
			return &filterExpr{
				ntype: nodeNOT,
				vtype: valueTypeBool,
				x:     x,
			}
		}
	case *ast.BinaryExpr:
		ntype := nodeInvalid
		x, y := p.parse(e.X), p.parse(e.Y)
		if p.err != nil {
			return nil
		}
		switch e.Op {
		case token.LAND:
			p.doassert(x.vtype == valueTypeBool && y.vtype == valueTypeBool, "Operands must be boolean", node)
			ntype = nodeLAND
		case token.LOR:
			p.doassert(x.vtype == valueTypeBool && y.vtype == valueTypeBool, "Operands must be boolean", node)
			ntype = nodeLOR
		case token.NEQ, token.EQL:
			p.doassert(x.vtype == y.vtype, "Operands must be of the same type", node)
			ntype = nodeEQL
			if e.Op == token.NEQ {
				ntype = nodeNEQ
			}
		case token.GEQ, token.LEQ, token.LSS, token.GTR:
			p.doassert(x.vtype == y.vtype &&
				(x.vtype == valueTypeInt || x.vtype == valueTypeStr),
				"Wrong operand type", node)
			switch e.Op {
			case token.GEQ:
				ntype = nodeGEQ
			case token.LEQ:
				ntype = nodeLEQ
			case token.LSS:
				ntype = nodeLSS
			default:
				ntype = nodeGTR
			}
		default:
			p.setError(fmt.Errorf("unknown binary op: %v", astDebugString(node)))
			return nil
		}
		return &filterExpr{
			ntype: ntype,
			vtype: valueTypeBool,
			x:     x,
			y:     y,
		}
	case *ast.BasicLit:
		switch e.Kind {
		case token.STRING:
			v, err := strconv.Unquote(e.Value)
			p.setError(err)
			return &filterExpr{
				ntype:    nodeStrConst,
				vtype:    valueTypeStr,
				strConst: v,
			}
		case token.INT:
			v, err := strconv.ParseInt(e.Value, 0, 64)
			p.setError(err)
			return &filterExpr{
				ntype:    nodeIntConst,
				vtype:    valueTypeInt,
				intConst: v,
			}
		}
	case *ast.Ident:
		switch e.Name {
		case "ref_name":
			return &filterExpr{ntype: nodeRefName, vtype: valueTypeStr}
		case "mate_ref_name":
			return &filterExpr{ntype: nodeMateRefName, vtype: valueTypeStr}
		case "rec_name":
			return &filterExpr{ntype: nodeRecName, vtype: valueTypeStr}
		case "cigar":
			return &filterExpr{ntype: nodeCigar, vtype: valueTypeStr}
		case "position":
			return &filterExpr{ntype: nodePos, vtype: valueTypeInt}
		case "mate_position":
			return &filterExpr{ntype: nodeMatePos, vtype: valueTypeInt}
		case "sequence_length":
			return &filterExpr{ntype: nodeSeqLength, vtype: valueTypeInt}
		case "mapping_quality":
			return &filterExpr{ntype: nodeMapq, vtype: valueTypeInt}
		case "template_length":
			return &filterExpr{ntype: nodeTempLen, vtype: valueTypeInt}
		case "gc_percent":
			return &filterExpr{ntype: nodeGCPercent, vtype: valueTypeInt}
		case "chimeric":
			return &filterExpr{ntype: nodeChimeric, vtype: valueTypeBool}
		}
		if f, ok := flagFields[e.Name]; ok {
			return &filterExpr{ntype: f.ntype, vtype: valueTypeBool}
		}
	}
	p.setError(fmt.Errorf("unknown expr type %v", astDebugString(node)))
	return nil
}

// Pretty-print a golang AST object.
func astDebugString(node interface{}) string {
	out := bytes.Buffer{}
	fset := token.NewFileSet()
	if err := ast.Fprint(&out, fset, node, nil); err != nil {
		panic(err)
	}
	return out.String()
}

// Parse a filter expression.
func parseFilterExpr(str string) (*filterExpr, error) {
	expr, err := parser.ParseExpr(str)
	if err != nil {
		return nil, err
	}
	p := exprParser{}
	node := p.parse(expr)
	if p.err != nil {
		return nil, p.err
	}
	if node.vtype != valueTypeBool {
		return nil, fmt.Errorf("not a boolean expression: %v", astDebugString(expr))
	}
	return node, nil
}

// Given a parsed filter expression and a read, check if the read matches the
// expression condition.
func evaluateFilterExpr(expr *filterExpr, r *reads.SequencingRead) bool {
	val := expr.evaluate(r)
	doassert(val.vtype == valueTypeBool, val)
	return val.boolValue
}

// filterTemplate copies the reads of src that match expr into dst.  It
// returns false if none match.
func filterTemplate(expr *filterExpr, dst, src *reads.QueryTemplate) bool {
	dst.CopyFrom(src)
	for i := dst.Len() - 1; i >= 0; i-- {
		if evaluateFilterExpr(expr, dst.Reads()[i]) {
			continue
		}
		if _, err := dst.Remove(i); err != nil {
			log.Panicf("remove read %d of %s: %v", i, dst.Name(), err)
		}
	}
	return dst.Len() > 0
}
