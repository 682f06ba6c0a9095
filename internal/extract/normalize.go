package extract

import (
	"regexp"
	"strconv"
	"strings"

	"jobradar/internal/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Chinese mobile, +86-prefixed mobile, and landline numbers.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`1[3-9]\d{9}`),
		regexp.MustCompile(`\+86\s?1[3-9]\d{9}`),
		regexp.MustCompile(`0\d{2,3}-?\d{7,8}`),
	}

	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// One salary amount: digits with optional decimal and a 千/k/万/w unit.
	salaryAmountRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([千kK万wW])?`)
)

// Normalize is stage C for one draft: trims and collapses whitespace,
// extracts canonical phone/email forms, and converts salary wording to
// numeric bounds where parseable. The raw salary text is preserved.
func Normalize(d model.Draft) model.Draft {
	d.Company = cleanText(d.Company)
	d.Title = cleanText(d.Title)
	d.Location = cleanText(d.Location)
	d.Requirements = cleanText(d.Requirements)
	d.SalaryText = cleanText(d.SalaryText)
	d.ContactPhone = normalizePhone(d.ContactPhone)
	d.ContactEmail = normalizeEmail(d.ContactEmail)

	if d.SalaryMin == nil && d.SalaryMax == nil {
		d.SalaryMin, d.SalaryMax = parseSalary(d.SalaryText)
	}
	return d
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// normalizePhone extracts the first recognizable phone number; when
// nothing matches, the cleaned input is kept as-is (it may still be a
// WeChat handle worth surfacing).
func normalizePhone(s string) string {
	s = cleanText(s)
	if s == "" {
		return ""
	}
	for _, re := range phoneRes {
		if m := re.FindString(s); m != "" {
			return m
		}
	}
	return s
}

func normalizeEmail(s string) string {
	s = cleanText(s)
	if s == "" {
		return ""
	}
	if m := emailRe.FindString(s); m != "" {
		return strings.ToLower(m)
	}
	return s
}

// parseSalary converts salary wording to numeric monthly bounds.
// Handles "8000-12000", "8k-12k", "1.5万", "10000以上", "8000以下".
// Anything else (面议, day rates, prose) yields no bounds.
func parseSalary(text string) (*float64, *float64) {
	if text == "" {
		return nil, nil
	}

	matches := salaryAmountRe.FindAllStringSubmatch(text, 3)
	var amounts []float64
	for _, m := range matches {
		if m[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "千", "k", "K":
			v *= 1000
		case "万", "w", "W":
			v *= 10000
		}
		amounts = append(amounts, v)
	}

	switch len(amounts) {
	case 0:
		return nil, nil
	case 1:
		v := amounts[0]
		if strings.ContainsAny(text, "+") || strings.Contains(text, "以上") || strings.Contains(text, "起") {
			return &v, nil
		}
		if strings.Contains(text, "以下") || strings.Contains(text, "以内") {
			return nil, &v
		}
		return &v, &v
	default:
		lo, hi := amounts[0], amounts[1]
		return &lo, &hi
	}
}
