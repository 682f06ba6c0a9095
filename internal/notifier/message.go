package notifier

import (
	"fmt"
	"strings"

	"jobradar/internal/model"
)

func subject(s model.Summary) string {
	return fmt.Sprintf("发现 %d 个新职位 (%s)", s.Total, s.StartedAt.Format("2006-01-02 15:04"))
}

// markdown renders the summary for channels that speak a markdown
// dialect (WeCom group robots, ServerChan).
func markdown(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## 发现 %d 个新职位\n\n", s.Total)

	for i, r := range s.Records {
		fmt.Fprintf(&b, "**%d. %s | %s**\n", i+1, r.Company, r.Title)
		fmt.Fprintf(&b, "> 地点: %s\n", r.Location)
		fmt.Fprintf(&b, "> 薪资: %s\n", salaryLine(r))
		if r.ContactPhone != model.Unknown || r.ContactEmail != model.Unknown {
			fmt.Fprintf(&b, "> 联系: %s\n", contactLine(r))
		}
		fmt.Fprintf(&b, "> 来源: %s\n\n", r.Source)
	}

	if rest := s.Total - len(s.Records); rest > 0 {
		fmt.Fprintf(&b, "另有 %d 条记录，详见报告。\n", rest)
	}
	if s.ReportPath != "" {
		fmt.Fprintf(&b, "\n报告: %s\n", s.ReportPath)
	}
	return b.String()
}

// plainText renders the summary for email bodies.
func plainText(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "本次运行发现 %d 个新职位。\n\n", s.Total)

	for i, r := range s.Records {
		fmt.Fprintf(&b, "%d. %s | %s\n", i+1, r.Company, r.Title)
		fmt.Fprintf(&b, "   地点: %s\n", r.Location)
		fmt.Fprintf(&b, "   薪资: %s\n", salaryLine(r))
		fmt.Fprintf(&b, "   要求: %s\n", r.Requirements)
		fmt.Fprintf(&b, "   联系: %s\n", contactLine(r))
		fmt.Fprintf(&b, "   来源: %s  发布: %s\n", r.Source, r.PublishedDate)
		if r.Link != model.Unknown {
			fmt.Fprintf(&b, "   链接: %s\n", r.Link)
		}
		b.WriteString("\n")
	}

	if rest := s.Total - len(s.Records); rest > 0 {
		fmt.Fprintf(&b, "另有 %d 条记录未在邮件中列出。\n", rest)
	}
	if s.ReportPath != "" {
		fmt.Fprintf(&b, "完整报告: %s\n", s.ReportPath)
	}
	fmt.Fprintf(&b, "\n统计: 抓取 %d, 新增 %d, 失败 %d, 有效 %d, 拒绝 %d\n",
		s.Meta.ItemsFetched, s.Meta.ItemsNew, s.Meta.ItemsFailed,
		s.Meta.RecordsValidated, s.Meta.RecordsRejected)
	return b.String()
}

func salaryLine(r model.JobRecord) string {
	if r.SalaryText != model.Unknown && r.SalaryText != "" {
		return r.SalaryText
	}
	switch {
	case r.SalaryMin != nil && r.SalaryMax != nil:
		return fmt.Sprintf("%.0f-%.0f", *r.SalaryMin, *r.SalaryMax)
	case r.SalaryMin != nil:
		return fmt.Sprintf("%.0f起", *r.SalaryMin)
	case r.SalaryMax != nil:
		return fmt.Sprintf("%.0f以下", *r.SalaryMax)
	}
	return model.Unknown
}

func contactLine(r model.JobRecord) string {
	parts := make([]string, 0, 2)
	if r.ContactPhone != model.Unknown && r.ContactPhone != "" {
		parts = append(parts, r.ContactPhone)
	}
	if r.ContactEmail != model.Unknown && r.ContactEmail != "" {
		parts = append(parts, r.ContactEmail)
	}
	if len(parts) == 0 {
		return model.Unknown
	}
	return strings.Join(parts, " / ")
}
