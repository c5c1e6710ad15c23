package types

type binaryKey struct{ left, op, right string }

type unaryKey struct{ op, operand string }

type castKey struct{ from, to string }

// Operator symbols understood by the tables.
var (
	ArithmeticOps = []string{"+", "-", "*", "/"}
	ComparisonOps = []string{"<", "<=", ">", ">=", "==", "!="}
	LogicalOps    = []string{"&&", "||"}
	PrefixOps     = []string{"+", "-", "!", "^"}
)

// The tables are keyed by exact type names. Sentinel names never appear as
// keys, so any lookup involving error or infer reports unsupported.
var (
	binaryOps = map[binaryKey]string{}
	unaryOps  = map[unaryKey]string{}
	casts     = map[castKey]string{}
)

func init() {
	for _, t := range []string{IntName, FloatName} {
		for _, op := range ArithmeticOps {
			binaryOps[binaryKey{t, op, t}] = t
		}
	}
	for _, t := range []string{IntName, FloatName, CharName} {
		for _, op := range ComparisonOps {
			binaryOps[binaryKey{t, op, t}] = BoolName
		}
	}
	for _, op := range []string{"&&", "||", "==", "!="} {
		binaryOps[binaryKey{BoolName, op, BoolName}] = BoolName
	}

	for _, op := range []string{"+", "-", "^"} {
		unaryOps[unaryKey{op, IntName}] = IntName
	}
	for _, op := range []string{"+", "-"} {
		unaryOps[unaryKey{op, FloatName}] = FloatName
	}
	unaryOps[unaryKey{"!", BoolName}] = BoolName

	for _, t := range []string{IntName, FloatName, BoolName, CharName} {
		casts[castKey{t, t}] = t
	}
	casts[castKey{IntName, FloatName}] = FloatName
	casts[castKey{FloatName, IntName}] = IntName
	casts[castKey{IntName, CharName}] = CharName
	casts[castKey{CharName, IntName}] = IntName
}
