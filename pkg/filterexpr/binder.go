// Package filterexpr binds CEL-style list filters and order_by strings
// to query parameter structs. A ResourceSchema whitelists the fields,
// operators and sort keys a list endpoint accepts; everything outside
// the schema is rejected before any SQL is built.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg is the request shape Bind consumes: anything exposing the raw
// filter and order_by inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind names the literal type a filter field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindBool      ValueKind = "bool"
	KindTimestamp ValueKind = "timestamp"
)

// Op is a comparison operator a schema can whitelist per field.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// SetterFunc overrides the default reflect assignment for one field,
// e.g. to fill driver-specific nullable types.
type SetterFunc func(field reflect.Value, value any) error

// FilterField whitelists one filter field: its literal kind and the
// operators it supports, each mapped to a params struct field name.
type FilterField struct {
	Expr   string
	Kind   ValueKind
	Ops    map[Op]string
	Setter SetterFunc
}

// OrderField ties an order key to the SQL expression it sorts by.
type OrderField struct {
	Expr  string
	Nulls string
}

// OrderSchema declares the sortable keys plus the defaults applied when
// order_by is empty.
type OrderSchema struct {
	DefaultPrimary     string
	DefaultPrimaryDesc bool
	FallbackKey        string
	FallbackDesc       bool
	Fields             map[string]OrderField
}

// ResourceSchema bundles the filter and order rules for one list
// endpoint.
type ResourceSchema struct {
	Filter map[string]FilterField
	Order  OrderSchema
}

var timeType = reflect.TypeOf(time.Time{})

// Bind validates the message's filter and order_by against the schema
// and writes the outcome onto the params struct: predicates land in the
// fields named by the schema Ops maps, ordering in PrimaryKey /
// PrimaryDesc / SecondaryKey / SecondaryDesc.
func Bind[M Msg, P any](msg M, binding *P, schema ResourceSchema) error {
	dest, err := structValue(binding)
	if err != nil {
		return err
	}

	if err := applyFilter(dest, msg.GetFilter(), schema.Filter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	ord, err := resolveOrder(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return writeOrder(dest, ord)
}

func structValue(binding any) (reflect.Value, error) {
	rv := reflect.ValueOf(binding)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, errors.New("binding must be a non-nil pointer")
	}
	dest := rv.Elem()
	if dest.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("binding must point to a struct")
	}
	return dest, nil
}

func applyFilter(dest reflect.Value, filter string, fields map[string]FilterField) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("filter schema has no fields defined")
	}

	preds, err := parseFilter(filter, fields)
	if err != nil {
		return err
	}

	for _, pred := range preds {
		rule, ok := fields[pred.field]
		if !ok {
			return fmt.Errorf("field %q is not allowed", pred.field)
		}
		target, ok := rule.Ops[pred.op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(pred.op), pred.field)
		}
		if err := checkLiteral(rule.Kind, pred.op, pred.value); err != nil {
			return fmt.Errorf("field %q: %w", pred.field, err)
		}
		if err := storeField(dest, target, rule.Setter, pred.value); err != nil {
			return err
		}
	}
	return nil
}

// predicate is one schema-checkable leaf of the filter expression.
type predicate struct {
	field string
	op    Op
	value any
}

func parseFilter(filter string, fields map[string]FilterField) ([]predicate, error) {
	env, err := filterEnv(fields)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to convert AST: %w", err)
	}

	var preds []predicate
	err = walkConjuncts(parsed.GetExpr(), func(expr *exprpb.Expr) error {
		pred, err := parsePredicate(expr)
		if err != nil {
			return err
		}
		preds = append(preds, pred)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

func filterEnv(fields map[string]FilterField) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		t, err := celType(rule.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, t))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celType(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindBool:
		return cel.BoolType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	}
	return nil, fmt.Errorf("unsupported field kind %s", kind)
}

// walkConjuncts flattens nested AND chains and hands every leaf to fn.
// Other logical operators are rejected: OR and negation cannot be
// decomposed into independent query parameters.
func walkConjuncts(expr *exprpb.Expr, fn func(*exprpb.Expr) error) error {
	if expr == nil {
		return errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return fn(expr)
	}
	switch call.Function {
	case "_&&_":
		if call.Target != nil || len(call.Args) < 2 {
			return errors.New("logical AND must have at least two operands")
		}
		for _, arg := range call.Args {
			if err := walkConjuncts(arg, fn); err != nil {
				return err
			}
		}
		return nil
	case "_||_", "_?_:_", "!":
		return fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return fn(expr)
	}
}

func parsePredicate(expr *exprpb.Expr) (predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("unsupported expression; expected comparison or function call")
	}
	switch call.Function {
	case "_==_":
		return comparison(call, OpEQ)
	case "_>=_":
		return comparison(call, OpGTE)
	case "_<=_":
		return comparison(call, OpLTE)
	case "_in_", "@in":
		return membership(call)
	case "startsWith":
		return prefixMatch(call)
	default:
		return predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}
}

func comparison(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	name, err := identName(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := literalValue(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{field: name, op: op, value: value}, nil
}

func membership(call *exprpb.Expr_Call) (predicate, error) {
	var fieldExpr, listExpr *exprpb.Expr
	switch {
	case call.Target != nil && len(call.Args) == 1:
		listExpr, fieldExpr = call.Target, call.Args[0]
	case call.Target == nil && len(call.Args) == 2:
		fieldExpr, listExpr = call.Args[0], call.Args[1]
	default:
		return predicate{}, errors.New("in operator expects a field and a list")
	}

	name, err := identName(fieldExpr)
	if err != nil {
		return predicate{}, err
	}
	value, err := literalValue(listExpr)
	if err != nil {
		return predicate{}, err
	}
	return predicate{field: name, op: OpIN, value: value}, nil
}

func prefixMatch(call *exprpb.Expr_Call) (predicate, error) {
	var fieldExpr, valueExpr *exprpb.Expr
	switch {
	case call.Target != nil && len(call.Args) == 1:
		fieldExpr, valueExpr = call.Target, call.Args[0]
	case call.Target == nil && len(call.Args) == 2:
		fieldExpr, valueExpr = call.Args[0], call.Args[1]
	default:
		return predicate{}, errors.New("startsWith expects a field and a string")
	}

	name, err := identName(fieldExpr)
	if err != nil {
		return predicate{}, err
	}
	value, err := literalValue(valueExpr)
	if err != nil {
		return predicate{}, err
	}
	str, ok := value.(string)
	if !ok {
		return predicate{}, errors.New("startsWith requires a string literal argument")
	}
	return predicate{field: name, op: OpSW, value: str}, nil
}

func identName(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("left-hand side must be an identifier")
	}
	return ident.GetName(), nil
}

func literalValue(expr *exprpb.Expr) (any, error) {
	switch {
	case expr.GetConstExpr() != nil:
		return constValue(expr.GetConstExpr())
	case expr.GetListExpr() != nil:
		return stringListValue(expr.GetListExpr())
	case expr.GetCallExpr() != nil && expr.GetCallExpr().Function == "timestamp":
		return timestampValue(expr.GetCallExpr())
	default:
		return nil, errors.New("right-hand side must be a literal, list literal, or timestamp() call")
	}
}

// constValue normalizes every numeric literal form to float64; struct
// assignment converts back with range checks.
func constValue(c *exprpb.Constant) (any, error) {
	switch c.ConstantKind.(type) {
	case *exprpb.Constant_StringValue:
		return c.GetStringValue(), nil
	case *exprpb.Constant_BoolValue:
		return c.GetBoolValue(), nil
	case *exprpb.Constant_Int64Value:
		return float64(c.GetInt64Value()), nil
	case *exprpb.Constant_Uint64Value:
		return float64(c.GetUint64Value()), nil
	case *exprpb.Constant_DoubleValue:
		return c.GetDoubleValue(), nil
	default:
		return nil, fmt.Errorf("literal type %T is not supported", c.ConstantKind)
	}
}

func stringListValue(list *exprpb.Expr_CreateList) ([]string, error) {
	elems := list.GetElements()
	out := make([]string, len(elems))
	for i, elem := range elems {
		v, err := literalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list literal element %d: %w", i, err)
		}
		s, ok := v.(string)
		if !ok {
			return nil, errors.New("list literal elements must be strings")
		}
		out[i] = s
	}
	return out, nil
}

func timestampValue(call *exprpb.Expr_Call) (any, error) {
	if call.Target != nil || len(call.Args) != 1 {
		return nil, errors.New("timestamp() expects a single string argument")
	}
	arg := call.Args[0].GetConstExpr()
	if arg == nil {
		return nil, errors.New("timestamp() argument must be a string literal")
	}
	raw := arg.GetStringValue()
	if raw == "" {
		return nil, errors.New("timestamp() argument must not be empty")
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("timestamp literal %q is not RFC3339", raw)
	}
	return t, nil
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if kind == KindString && op == OpIN {
		list, ok := value.([]string)
		if !ok {
			return fmt.Errorf("expected list of %s literals", kind)
		}
		if len(list) == 0 {
			return errors.New("list literal must not be empty")
		}
		for _, item := range list {
			if item == "" {
				return errors.New("list literal must not contain empty strings")
			}
		}
		return nil
	}

	ok := false
	switch kind {
	case KindString:
		_, ok = value.(string)
	case KindNumber:
		_, ok = value.(float64)
	case KindBool:
		_, ok = value.(bool)
	case KindTimestamp:
		_, ok = value.(time.Time)
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	if !ok {
		return fmt.Errorf("expected %s literal", kind)
	}
	return nil
}

func storeField(dest reflect.Value, name string, setter SetterFunc, value any) error {
	field := dest.FieldByName(name)
	if !field.IsValid() {
		return fmt.Errorf("params struct %s has no field named %q", dest.Type(), name)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field %q on params struct", name)
	}

	if setter != nil {
		if field.Kind() == reflect.Ptr && field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		if err := setter(field, value); err != nil {
			return fmt.Errorf("setter for field %q failed: %w", name, err)
		}
		return nil
	}

	if err := storeValue(field, value); err != nil {
		return fmt.Errorf("failed to assign field %q: %w", name, err)
	}
	return nil
}

func storeValue(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return storeValue(field.Elem(), value)
	}
	if field.Kind() == reflect.Interface {
		field.Set(reflect.ValueOf(value))
		return nil
	}

	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string-compatible destination, got %s", field.Kind())
		}
		field.SetString(v)
	case bool:
		if field.Kind() != reflect.Bool {
			return fmt.Errorf("expected bool destination, got %s", field.Kind())
		}
		field.SetBool(v)
	case float64:
		return storeNumeric(field, v)
	case []string:
		if field.Kind() != reflect.Slice || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("expected slice of strings destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(append([]string(nil), v...)))
	case time.Time:
		if field.Type() != timeType {
			return fmt.Errorf("expected time.Time destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(v))
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
	return nil
}

func storeNumeric(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return fmt.Errorf("cannot assign non-integer value %v to integer field", value)
		}
		if value < float64(math.MinInt64) || value >= float64(math.MaxInt64) || field.OverflowInt(int64(value)) {
			return fmt.Errorf("value %v overflows integer field", value)
		}
		field.SetInt(int64(value))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if math.Trunc(value) != value || value < 0 {
			return fmt.Errorf("cannot assign %v to unsigned integer field", value)
		}
		if value >= float64(math.MaxUint64) || field.OverflowUint(uint64(value)) {
			return fmt.Errorf("value %v overflows unsigned integer field", value)
		}
		field.SetUint(uint64(value))
	default:
		return fmt.Errorf("numeric assignment requires integer or float field, got %s", field.Kind())
	}
	return nil
}
