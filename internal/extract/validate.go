package extract

import (
	"fmt"

	"jobradar/internal/model"
)

// Rejection reasons surfaced in run metadata.
const (
	rejectEmptyCompany   = "empty company name"
	rejectEmptyTitle     = "empty job title"
	rejectInvertedSalary = "salary minimum exceeds maximum"
)

// Validate promotes a normalized draft to a JobRecord. Drafts with an
// empty company or title, or an inverted salary range, are rejected;
// rejections are data, not faults. Accepted records carry an explicit
// "unknown" for every absent optional field so nothing downstream
// receives an empty string.
func Validate(d model.Draft) (model.JobRecord, string, bool) {
	if d.Company == "" {
		return model.JobRecord{}, rejectEmptyCompany, false
	}
	if d.Title == "" {
		return model.JobRecord{}, rejectEmptyTitle, false
	}
	if d.SalaryMin != nil && d.SalaryMax != nil && *d.SalaryMin > *d.SalaryMax {
		reason := fmt.Sprintf("%s (%v > %v)", rejectInvertedSalary, *d.SalaryMin, *d.SalaryMax)
		return model.JobRecord{}, reason, false
	}

	return model.JobRecord{
		Company:       d.Company,
		Title:         d.Title,
		Location:      orUnknown(d.Location),
		SalaryMin:     d.SalaryMin,
		SalaryMax:     d.SalaryMax,
		SalaryText:    orUnknown(d.SalaryText),
		Requirements:  orUnknown(d.Requirements),
		ContactPhone:  orUnknown(d.ContactPhone),
		ContactEmail:  orUnknown(d.ContactEmail),
		PublishedDate: orUnknown(d.PublishedDate),
		Source:        orUnknown(d.Source),
		Link:          orUnknown(d.Link),
	}, "", true
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}
