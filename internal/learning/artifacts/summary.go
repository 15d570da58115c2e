package artifacts

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

type rawSummary struct {
	Short       string             `json:"short"`
	Medium      string             `json:"medium"`
	Detailed    string             `json:"detailed"`
	KeyInsights []string           `json:"keyInsights"`
	KeyTerms    []learning.KeyTerm `json:"keyTerms"`
	Examples    []string           `json:"examples"`
}

// ParseSummary decodes a summary response. Missing lengths borrow from the
// nearest non-empty one.
func ParseSummary(raw string, summaryType learning.SummaryType, level learning.LearnerLevel, now time.Time) (learning.Summary, error) {
	var rs rawSummary
	if err := decodeObject(raw, &rs); err != nil {
		return learning.Summary{}, err
	}
	short := strings.TrimSpace(rs.Short)
	medium := strings.TrimSpace(rs.Medium)
	detailed := strings.TrimSpace(rs.Detailed)
	if short == "" && medium == "" && detailed == "" {
		return learning.Summary{}, fmt.Errorf("%w: summary has no text", pkgerrors.ErrGenerationFailed)
	}
	short = firstNonEmpty(short, medium, detailed)
	medium = firstNonEmpty(medium, detailed, short)
	detailed = firstNonEmpty(detailed, medium, short)

	terms := make([]learning.KeyTerm, 0, len(rs.KeyTerms))
	for _, kt := range rs.KeyTerms {
		term := strings.TrimSpace(kt.Term)
		if term == "" {
			continue
		}
		terms = append(terms, learning.KeyTerm{Term: term, Definition: strings.TrimSpace(kt.Definition)})
	}

	return learning.Summary{
		Short:        short,
		Medium:       medium,
		Detailed:     detailed,
		KeyInsights:  cleanList(rs.KeyInsights),
		KeyTerms:     terms,
		Examples:     cleanList(rs.Examples),
		SummaryType:  summaryType,
		LearnerLevel: level,
		GeneratedAt:  now.UTC(),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
