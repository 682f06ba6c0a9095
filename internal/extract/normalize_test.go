package extract

import (
	"testing"

	"jobradar/internal/model"
)

func TestParseSalary(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		text string
		min  *float64
		max  *float64
	}{
		{"8000-12000", f(8000), f(12000)},
		{"8k-12k", f(8000), f(12000)},
		{"月薪1.5万", f(15000), f(15000)},
		{"1万-2万", f(10000), f(20000)},
		{"10000以上", f(10000), nil},
		{"8000以下", nil, f(8000)},
		{"15k+", f(15000), nil},
		{"面议", nil, nil},
		{"", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			min, max := parseSalary(tt.text)
			if !eqPtr(min, tt.min) {
				t.Errorf("min = %v, want %v", deref(min), deref(tt.min))
			}
			if !eqPtr(max, tt.max) {
				t.Errorf("max = %v, want %v", deref(max), deref(tt.max))
			}
		})
	}
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"联系电话 13800138000 王先生", "13800138000"},
		{"010-88886666", "010-88886666"},
		{"微信同号：filmcrew2026", "微信同号：filmcrew2026"}, // no number: keep cleaned text
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizePhone(tt.in); got != tt.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"简历发送至 HR@Example.COM 备注姓名", "hr@example.com"},
		{"未知", "未知"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeEmail(tt.in); got != tt.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_CollapsesWhitespaceAndParsesSalary(t *testing.T) {
	d := Normalize(model.Draft{
		Company:    "  光影\n传媒  ",
		Title:      "副 导 演",
		SalaryText: "月薪 8k-12k",
	})

	if d.Company != "光影 传媒" {
		t.Errorf("company = %q", d.Company)
	}
	if d.SalaryMin == nil || *d.SalaryMin != 8000 {
		t.Errorf("salary min = %v", deref(d.SalaryMin))
	}
	if d.SalaryMax == nil || *d.SalaryMax != 12000 {
		t.Errorf("salary max = %v", deref(d.SalaryMax))
	}
	if d.SalaryText != "月薪 8k-12k" {
		t.Errorf("raw salary text not preserved: %q", d.SalaryText)
	}
}
