// Package i18n holds the user-facing text tables. Everything here is a
// pure lookup or format over the selected locale; nothing in this
// package reads or mutates application state.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Text is the full set of localized strings for one locale.
type Text struct {
	HelpTitle        string
	HelpCommands     string
	HelpUsage        string
	StartupMessage   string
	EnterName        string
	EnterQuantity    string
	EnterTimes       string
	MedicineAdded    string
	InvalidTime      string
	InvalidQuantity  string
	NoMedicines      string
	MedicinesList    string
	SelectDelete     string
	MedicineDeleted  string
	MedicineNotFound string
	SelectRefill     string
	EnterRefill      string
	Refilled         string
	NoPending        string
	PendingTitle     string
	ReminderTitle    string
	EscalationTitle  string
	TakenButton      string
	SnoozeButton     string
	SelectDose       string
	DoseConfirmed    string
	Insufficient     string
	ReminderMissing  string
	Snoozed          string
	LanguageChanged  string
	SelectLanguage   string
	EnglishButton    string
	ChineseButton    string
	CustomAmount     string
	EnterCustom      string
	MedicineLabel    string
	TimeLabel        string
	CountLabel       string
	DoseLabel        string
	RemainingLabel   string
	ConfirmHint      string
	ActionFailed     string
}

var english = Text{
	HelpTitle: "🏥 Medicine Reminder Assistant",
	HelpCommands: "📋 Available commands:\n" +
		"/add - Add new medicine\n" +
		"/list - View all medicines\n" +
		"/delete - Delete medicine\n" +
		"/refill - Refill medicine quantity\n" +
		"/pending - View pending reminders\n" +
		"/language - Switch language\n" +
		"/help - Show this help message",
	HelpUsage: "💡 Usage:\n" +
		"1. Use /add to set name, quantity and reminder times\n" +
		"2. The bot reminds you at the scheduled times\n" +
		"3. Tap the confirm button when you take the dose\n" +
		"4. Unconfirmed reminders are repeated until you do",
	StartupMessage:   "🤖 Medicine Reminder Bot started!\n\nUse /help to see available commands.",
	EnterName:        "Please enter the medicine name:",
	EnterQuantity:    "Please enter the medicine quantity:",
	EnterTimes:       "Please enter reminder times (HH:MM, comma separated):\nExample: 08:00,20:00",
	MedicineAdded:    "✅ Medicine added!",
	InvalidTime:      "❌ Invalid time format. Use HH:MM, comma separated, e.g. 08:00,20:00",
	InvalidQuantity:  "❌ Invalid quantity. Please enter a positive whole number.",
	NoMedicines:      "📭 No medicines yet. Use /add to add one.",
	MedicinesList:    "💊 Your medicines:",
	SelectDelete:     "Select the medicine to delete:",
	MedicineDeleted:  "✅ Medicine deleted",
	MedicineNotFound: "❌ Medicine not found",
	SelectRefill:     "Select the medicine to refill:",
	EnterRefill:      "Please enter the refill amount:",
	Refilled:         "✅ Added %d to stock",
	NoPending:        "✅ No pending reminders.",
	PendingTitle:     "⏰ Pending reminders:",
	ReminderTitle:    "🔔 Medicine reminder!",
	EscalationTitle:  "🔔 Medicine reminder, again!",
	TakenButton:      "✅ Taken",
	SnoozeButton:     "⏰ Snooze",
	SelectDose:       "How many did you take?",
	DoseConfirmed:    "✅ Dose confirmed",
	Insufficient:     "❌ Not enough stock, remaining: %d",
	ReminderMissing:  "❌ Reminder not found",
	Snoozed:          "⏰ Snoozed, you will be reminded again in 5 minutes",
	LanguageChanged:  "✅ Language switched",
	SelectLanguage:   "Please select a language:",
	EnglishButton:    "🇺🇸 English",
	ChineseButton:    "🇨🇳 中文",
	CustomAmount:     "Custom amount",
	EnterCustom:      "Please enter the amount:",
	MedicineLabel:    "Medicine",
	TimeLabel:        "Time",
	CountLabel:       "Reminder count",
	DoseLabel:        "Dose",
	RemainingLabel:   "Remaining",
	ConfirmHint:      "Please confirm with the buttons below",
	ActionFailed:     "❌ Something went wrong, please try again",
}

var chinese = Text{
	HelpTitle: "🏥 药品提醒助手",
	HelpCommands: "📋 可用命令：\n" +
		"/add - 添加新药品\n" +
		"/list - 查看所有药品\n" +
		"/delete - 删除药品\n" +
		"/refill - 补充药品数量\n" +
		"/pending - 查看待确认的提醒\n" +
		"/language - 切换语言\n" +
		"/help - 显示此帮助信息",
	HelpUsage: "💡 使用说明：\n" +
		"1. 使用 /add 添加药品，设置名称、数量和提醒时间\n" +
		"2. 系统会在设定时间自动提醒\n" +
		"3. 收到提醒后请点击确认按钮\n" +
		"4. 如果不确认，系统会持续提醒",
	StartupMessage:   "🤖 药品提醒机器人已启动！\n\n使用 /help 查看可用命令。",
	EnterName:        "请输入药品名称：",
	EnterQuantity:    "请输入药品数量：",
	EnterTimes:       "请输入提醒时间（格式：HH:MM，多个时间用逗号分隔）：\n例如：08:00,20:00",
	MedicineAdded:    "✅ 药品添加成功！",
	InvalidTime:      "❌ 时间格式错误！请使用 HH:MM 格式，例如：08:00,20:00",
	InvalidQuantity:  "❌ 数量格式错误！请输入正整数。",
	NoMedicines:      "📭 暂无药品记录。使用 /add 添加新药品。",
	MedicinesList:    "💊 您的药品列表：",
	SelectDelete:     "请选择要删除的药品：",
	MedicineDeleted:  "✅ 药品已删除",
	MedicineNotFound: "❌ 未找到该药品",
	SelectRefill:     "请选择要补充的药品：",
	EnterRefill:      "请输入补充数量：",
	Refilled:         "✅ 已补充%d个药品",
	NoPending:        "✅ 暂无待确认的提醒。",
	PendingTitle:     "⏰ 待确认的提醒：",
	ReminderTitle:    "🔔 吃药提醒！",
	EscalationTitle:  "🔔 再次提醒吃药！",
	TakenButton:      "✅ 已服药",
	SnoozeButton:     "⏰ 稍后提醒",
	SelectDose:       "请选择服用数量：",
	DoseConfirmed:    "✅ 已确认服药",
	Insufficient:     "❌ 药品数量不足，当前剩余：%d",
	ReminderMissing:  "❌ 提醒信息未找到",
	Snoozed:          "⏰ 已延迟提醒，5分钟后将再次提醒",
	LanguageChanged:  "✅ 语言已切换",
	SelectLanguage:   "请选择语言：",
	EnglishButton:    "🇺🇸 English",
	ChineseButton:    "🇨🇳 中文",
	CustomAmount:     "自定义数量",
	EnterCustom:      "请输入数量：",
	MedicineLabel:    "药品",
	TimeLabel:        "时间",
	CountLabel:       "提醒次数",
	DoseLabel:        "服用数量",
	RemainingLabel:   "剩余数量",
	ConfirmHint:      "请点击下面的按钮确认",
	ActionFailed:     "❌ 操作失败，请重试",
}

var (
	supported = []language.Tag{language.English, language.Chinese}
	matcher   = language.NewMatcher(supported)
)

// For returns the text table for the closest supported locale.
func For(tag language.Tag) *Text {
	_, i, _ := matcher.Match(tag)
	if supported[i] == language.Chinese {
		return &chinese
	}
	return &english
}

// FormatReminder builds the first delivery of a reminder.
func FormatReminder(tag language.Tag, medicineName, at string) string {
	t := For(tag)
	return fmt.Sprintf("%s\n\n💊 %s: %s\n⏰ %s: %s\n\n%s",
		t.ReminderTitle, t.MedicineLabel, medicineName, t.TimeLabel, at, t.ConfirmHint)
}

// FormatEscalation builds a redelivery, including how often the
// reminder has fired so far.
func FormatEscalation(tag language.Tag, medicineName, at string, count int) string {
	t := For(tag)
	return fmt.Sprintf("%s\n\n💊 %s: %s\n⏰ %s: %s\n📊 %s: %d\n\n%s",
		t.EscalationTitle, t.MedicineLabel, medicineName, t.TimeLabel, at,
		t.CountLabel, count, t.ConfirmHint)
}

// FormatDoseConfirmed reports a successful confirmation with the dose
// taken and the stock left.
func FormatDoseConfirmed(tag language.Tag, medicineName string, amount, remaining int) string {
	t := For(tag)
	return fmt.Sprintf("%s: %s\n💊 %s: %d\n📦 %s: %d",
		t.DoseConfirmed, medicineName, t.DoseLabel, amount, t.RemainingLabel, remaining)
}

// MedicineLine renders one /list entry.
func MedicineLine(tag language.Tag, idx int, name string, quantity int, active bool, times []string) string {
	t := For(tag)
	status := "🟢"
	if !active {
		status = "🔴"
	}
	return fmt.Sprintf("%d. %s %s\n📦 %s: %d\n⏰ %s: %s",
		idx, status, name, t.RemainingLabel, quantity, t.TimeLabel, strings.Join(times, ", "))
}

// PendingLine renders one /pending entry.
func PendingLine(tag language.Tag, idx int, name, at string, count int) string {
	t := For(tag)
	return fmt.Sprintf("%d. 💊 %s\n⏰ %s: %s\n📊 %s: %d",
		idx, name, t.TimeLabel, at, t.CountLabel, count)
}

// HelpMessage assembles the /help reply.
func HelpMessage(tag language.Tag) string {
	t := For(tag)
	return fmt.Sprintf("%s\n\n%s\n\n%s", t.HelpTitle, t.HelpCommands, t.HelpUsage)
}
