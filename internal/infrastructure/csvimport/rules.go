package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the expected type of a column value
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "integer"
	KindDecimal Kind = "decimal"
	KindBool    Kind = "boolean"
)

// Rule describes one column. Build it with Column and the chained setters.
type Rule struct {
	column   string
	kind     Kind
	required bool
	maxLen   int
	min      *decimal.Decimal
	max      *decimal.Decimal
	unique   bool
}

// Column starts a string rule for the named column
func Column(name string) *Rule {
	return &Rule{column: strings.ToLower(name), kind: KindString}
}

// Required rejects empty values
func (r *Rule) Required() *Rule {
	r.required = true
	return r
}

// Int expects a whole number
func (r *Rule) Int() *Rule {
	r.kind = KindInt
	return r
}

// Decimal expects a decimal number
func (r *Rule) Decimal() *Rule {
	r.kind = KindDecimal
	return r
}

// Bool expects a value ParseBool accepts
func (r *Rule) Bool() *Rule {
	r.kind = KindBool
	return r
}

// MaxLength limits the value length in characters
func (r *Rule) MaxLength(n int) *Rule {
	r.maxLen = n
	return r
}

// Unique rejects values repeated in the file, ignoring case
func (r *Rule) Unique() *Rule {
	r.unique = true
	return r
}

// Min sets an inclusive lower bound for numeric columns
func (r *Rule) Min(v int64) *Rule {
	d := decimal.NewFromInt(v)
	r.min = &d
	return r
}

// Max sets an inclusive upper bound for numeric columns
func (r *Rule) Max(v int64) *Rule {
	d := decimal.NewFromInt(v)
	r.max = &d
	return r
}

// Name returns the column the rule applies to
func (r *Rule) Name() string {
	return r.column
}

// Validator checks rows against a rule set and records failures in Errors
type Validator struct {
	rules []*Rule
	seen  map[string]map[string]int
	errs  *Errors
}

// NewValidator creates a validator writing into errs
func NewValidator(errs *Errors, rules ...*Rule) *Validator {
	return &Validator{
		rules: rules,
		seen:  make(map[string]map[string]int),
		errs:  errs,
	}
}

// RequiredColumns lists the columns the header must contain
func (v *Validator) RequiredColumns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.required {
			cols = append(cols, r.column)
		}
	}
	return cols
}

// Validate reports whether row passed every rule
func (v *Validator) Validate(row *Row) bool {
	ok := true
	for _, r := range v.rules {
		if !v.check(row, r) {
			ok = false
		}
	}
	return ok
}

func (v *Validator) check(row *Row, r *Rule) bool {
	value := row.Get(r.column)
	if value == "" {
		if r.required {
			v.errs.Addf(row.Line, r.column, CodeRequired, "%s is required", r.column)
			return false
		}
		return true
	}

	if r.maxLen > 0 && utf8.RuneCountInString(value) > r.maxLen {
		v.errs.Add(RowError{Row: row.Line, Column: r.column, Code: CodeInvalidLength,
			Message: fmt.Sprintf("must be at most %d characters", r.maxLen)})
		return false
	}

	switch r.kind {
	case KindInt:
		if _, err := strconv.Atoi(value); err != nil {
			v.typeError(row, r, value)
			return false
		}
	case KindDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			v.typeError(row, r, value)
			return false
		}
	case KindBool:
		if _, err := ParseBool(value); err != nil {
			v.typeError(row, r, value)
			return false
		}
	}

	if (r.kind == KindInt || r.kind == KindDecimal) && (r.min != nil || r.max != nil) {
		d, _ := decimal.NewFromString(value)
		if (r.min != nil && d.LessThan(*r.min)) || (r.max != nil && d.GreaterThan(*r.max)) {
			v.errs.Add(RowError{Row: row.Line, Column: r.column, Code: CodeOutOfRange,
				Message: rangeMessage(r.min, r.max), Value: value})
			return false
		}
	}

	if r.unique {
		key := strings.ToLower(value)
		if v.seen[r.column] == nil {
			v.seen[r.column] = make(map[string]int)
		}
		if first, dup := v.seen[r.column][key]; dup {
			v.errs.Add(RowError{Row: row.Line, Column: r.column, Code: CodeDuplicateInFile,
				Message: fmt.Sprintf("duplicate of row %d", first), Value: value})
			return false
		}
		v.seen[r.column][key] = row.Line
	}
	return true
}

func (v *Validator) typeError(row *Row, r *Rule, value string) {
	v.errs.Add(RowError{Row: row.Line, Column: r.column, Code: CodeInvalidType,
		Message: fmt.Sprintf("expected %s", r.kind), Value: value})
}

func rangeMessage(lo, hi *decimal.Decimal) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("must be between %s and %s", lo, hi)
	case lo != nil:
		return fmt.Sprintf("must be at least %s", lo)
	default:
		return fmt.Sprintf("must be at most %s", hi)
	}
}

// ParseBool accepts true/false, yes/no, y/n and 1/0 in any case
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}
