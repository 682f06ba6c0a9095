package notifier

import (
	"time"

	"jobradar/internal/model"
)

// SendTestMessage pushes a canned summary through a channel to verify
// its credentials and connectivity.
func SendTestMessage(n model.Notifier) error {
	salaryMin, salaryMax := 8000.0, 12000.0
	record := model.JobRecord{
		Company:       "测试公司",
		Title:         "测试职位",
		Location:      "北京",
		SalaryMin:     &salaryMin,
		SalaryMax:     &salaryMax,
		SalaryText:    "8000-12000",
		Requirements:  "本消息用于验证通知渠道配置",
		ContactPhone:  model.Unknown,
		ContactEmail:  model.Unknown,
		PublishedDate: time.Now().Format(time.DateOnly),
		Source:        "test",
		Link:          model.Unknown,
	}
	return n.Send(model.Summary{
		Records:   []model.JobRecord{record},
		Total:     1,
		StartedAt: time.Now(),
	})
}
