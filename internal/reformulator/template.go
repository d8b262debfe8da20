package reformulator

import (
	"math"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
)

// FieldWeight pairs a document field suffix with the weight applied to a
// term scored against that field.
type FieldWeight struct {
	Field  string
	Weight float64
}

// Template holds the ordered field/weight pairs used to expand a single
// term into a #WSUM group.
type Template struct {
	pairs []FieldWeight
	// prefixes[k] is "<weight_k> " rendered once up front.
	prefixes []string
}

// NewTemplate pairs weights with fields by position. The two slices must
// have the same non-zero length.
func NewTemplate(weights []float64, fields []string) (*Template, error) {
	if len(weights) != len(fields) {
		return nil, apperrors.Newf(apperrors.ErrFieldMismatch, apperrors.ExitUsage,
			"%d weights for %d fields", len(weights), len(fields))
	}
	if len(fields) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidConfig, apperrors.ExitUsage, "template needs at least one field")
	}
	t := &Template{
		pairs:    make([]FieldWeight, len(fields)),
		prefixes: make([]string, len(fields)),
	}
	for i := range fields {
		t.pairs[i] = FieldWeight{Field: fields[i], Weight: weights[i]}
		t.prefixes[i] = FormatWeight(weights[i]) + " "
	}
	return t, nil
}

// DefaultTemplate returns the url/keywords/title/body/inlink template with
// body weighted 0.9 and every other field 0.1.
func DefaultTemplate() *Template {
	t, err := NewTemplate(config.DefaultWeights, config.DefaultFields)
	if err != nil {
		panic(err)
	}
	return t
}

// Pairs returns a copy of the template's field/weight pairs.
func (t *Template) Pairs() []FieldWeight {
	out := make([]FieldWeight, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// WSum renders the weighted-sum group for a single term.
func (t *Template) WSum(term string) string {
	var b strings.Builder
	t.writeWSum(&b, term)
	return b.String()
}

func (t *Template) writeWSum(b *strings.Builder, term string) {
	b.WriteString("#WSUM(")
	for i, p := range t.pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.prefixes[i])
		b.WriteString(term)
		b.WriteString(p.Field)
	}
	b.WriteByte(')')
}

// FormatWeight renders w the way Python prints a float: the shortest
// round-trip digits, positional with a trailing ".0" for integral values,
// and exponent form ("1e-05", "1e+16") when the decimal exponent is below
// -4 or at least 16.
func FormatWeight(w float64) string {
	if math.IsInf(w, 0) || math.IsNaN(w) {
		return strconv.FormatFloat(w, 'f', -1, 64)
	}
	e := strconv.FormatFloat(w, 'e', -1, 64)
	if exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
