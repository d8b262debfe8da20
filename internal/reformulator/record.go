package reformulator

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
)

// Record is one parsed "<index>:<query>" input line.
type Record struct {
	Index string
	Query string
	Terms []string
}

// ParseLine splits line into a Record. Surrounding whitespace is stripped
// first; exactly one ':' must remain. lineNo is only used for error
// reporting. With collapse set, empty terms produced by repeated or
// leading spaces are dropped instead of kept.
func ParseLine(line string, lineNo int, collapse bool) (Record, error) {
	line = strings.TrimSpace(line)
	if n := strings.Count(line, ":"); n != 1 {
		return Record{}, &apperrors.LineError{Line: lineNo, Text: line, Seps: n}
	}
	index, query, _ := strings.Cut(line, ":")
	return Record{
		Index: index,
		Query: query,
		Terms: SplitTerms(query, collapse),
	}, nil
}

// SplitTerms splits query on single spaces. Unless collapse is set, empty
// strings between consecutive spaces are kept as terms.
func SplitTerms(query string, collapse bool) []string {
	terms := strings.Split(query, " ")
	if !collapse {
		return terms
	}
	kept := terms[:0]
	for _, t := range terms {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return kept
}
