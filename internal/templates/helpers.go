package templates

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

// percent formats a 0..1 share as "42%".
func percent(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// year renders a group year, 0 meaning the year could not be resolved.
func year(y int) string {
	if y == 0 {
		return "unresolved"
	}
	return strconv.Itoa(y)
}

// relative makes an artifact path usable from a page written into the same directory.
func relative(path string) string {
	return filepath.ToSlash(filepath.Base(path))
}

// rejectedReasons lists the reasons that rejected at least one row, in declaration order.
func rejectedReasons(s domain.Summary) []domain.Reason {
	var out []domain.Reason
	for _, reason := range domain.Reasons {
		if s.RejectedByReason[reason] > 0 {
			out = append(out, reason)
		}
	}
	return out
}

// projectSentence is empty when no modification is linked to a project.
func projectSentence(t *domain.Table) string {
	if t == nil {
		return ""
	}
	top, ok := aggregate.TopProject(t)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d modifications are related to projects. Project %s has the most, with %d modifications.",
		aggregate.LinkedModifications(t), top.Project, top.Modifications)
}
