package board

import (
	"context"
	"fmt"

	"taskflow/domain"
)

// Notifier turns task events into entries of a notification log, worded in
// the workspace's current language.
type Notifier struct {
	log      *Notifications
	language func() domain.Language
}

// NewNotifier writes into log. A nil language func means Arabic.
func NewNotifier(log *Notifications, language func() domain.Language) *Notifier {
	if language == nil {
		language = func() domain.Language { return domain.LanguageArabic }
	}
	return &Notifier{log: log, language: language}
}

func (n *Notifier) Publish(ctx context.Context, ev domain.Event) error {
	title, message, ok := describe(ev, n.language())
	if !ok {
		return fmt.Errorf("no notification text for event %q", ev.Type)
	}
	n.log.Record(ctx, title, message)
	return nil
}

type phrasing struct {
	created, updated, deleted, statusChanged string
	createdMsg, updatedMsg, deletedMsg       string
	movedMsg                                 string
	statuses                                 map[domain.Status]string
}

var phrases = map[domain.Language]phrasing{
	domain.LanguageArabic: {
		created:       "تم إنشاء المهمة",
		updated:       "تم تحديث المهمة",
		deleted:       "تم حذف المهمة",
		statusChanged: "تم تحديث حالة المهمة",
		createdMsg:    "تم إنشاء \"%s\" بنجاح",
		updatedMsg:    "تم تحديث \"%s\" بنجاح",
		deletedMsg:    "تم حذف \"%s\" بنجاح",
		movedMsg:      "تم تغيير حالة \"%s\" إلى %s",
		statuses: map[domain.Status]string{
			domain.StatusTodo:       "قيد الانتظار",
			domain.StatusInProgress: "قيد التنفيذ",
			domain.StatusDone:       "مكتمل",
		},
	},
	domain.LanguageEnglish: {
		created:       "Task created",
		updated:       "Task updated",
		deleted:       "Task deleted",
		statusChanged: "Task status updated",
		createdMsg:    "\"%s\" was created successfully",
		updatedMsg:    "\"%s\" was updated successfully",
		deletedMsg:    "\"%s\" was deleted successfully",
		movedMsg:      "\"%s\" moved to %s",
		statuses: map[domain.Status]string{
			domain.StatusTodo:       "To Do",
			domain.StatusInProgress: "In Progress",
			domain.StatusDone:       "Done",
		},
	},
}

func describe(ev domain.Event, lang domain.Language) (title, message string, ok bool) {
	p, found := phrases[lang]
	if !found {
		p = phrases[domain.LanguageArabic]
	}
	switch ev.Type {
	case domain.TaskCreated:
		return p.created, fmt.Sprintf(p.createdMsg, ev.TaskTitle), true
	case domain.TaskUpdated:
		return p.updated, fmt.Sprintf(p.updatedMsg, ev.TaskTitle), true
	case domain.TaskDeleted:
		return p.deleted, fmt.Sprintf(p.deletedMsg, ev.TaskTitle), true
	case domain.TaskStatusChanged:
		return p.statusChanged, fmt.Sprintf(p.movedMsg, ev.TaskTitle, p.statuses[ev.Status]), true
	}
	return "", "", false
}
