package board

import (
	"time"

	"taskflow/domain"
)

// SeedTasks is the sample board offered to a workspace with no stored tasks.
func SeedTasks() []domain.Task {
	due := func(d int) time.Time { return time.Date(2025, time.June, d, 0, 0, 0, 0, time.Local) }
	return []domain.Task{
		{
			ID:            "1",
			Title:         "تطوير واجهة المستخدم الرئيسية",
			Description:   "تصميم وتطوير صفحة الويب الرئيسية لمشروع إدارة المهام",
			Priority:      domain.PriorityHigh,
			DueDate:       due(20),
			Attachments:   2,
			Collaborators: 3,
			Status:        domain.StatusInProgress,
		},
		{
			ID:            "2",
			Title:         "إعداد قاعدة البيانات",
			Description:   "تحضير هيكل قاعدة البيانات وإعداد النماذج الأولية",
			Priority:      domain.PriorityMedium,
			DueDate:       due(25),
			Attachments:   1,
			Collaborators: 2,
			Status:        domain.StatusTodo,
		},
		{
			ID:            "3",
			Title:         "اختبار وظائف التسجيل",
			Description:   "إجراء اختبارات شاملة لعمليات تسجيل الدخول والتسجيل الجديد",
			Priority:      domain.PriorityLow,
			DueDate:       due(18),
			Attachments:   0,
			Collaborators: 1,
			Status:        domain.StatusDone,
		},
		{
			ID:            "4",
			Title:         "تحسين أداء التطبيق",
			Description:   "تحليل وتحسين أداء التطبيق لتقليل وقت التحميل وزيادة سرعة الاستجابة",
			Priority:      domain.PriorityMedium,
			DueDate:       due(30),
			Attachments:   3,
			Collaborators: 2,
			Status:        domain.StatusTodo,
		},
		{
			ID:            "5",
			Title:         "إصلاح أخطاء متعلقة بالواجهة",
			Description:   "معالجة مشكلات في واجهة المستخدم على الأجهزة المحمولة",
			Priority:      domain.PriorityHigh,
			DueDate:       due(19),
			Attachments:   1,
			Collaborators: 1,
			Status:        domain.StatusInProgress,
		},
	}
}
