// Package activity — detector.go распознаёт пассивные активности в сообщениях:
// «спасибо» в ответе и содержательные сообщения для форумных начислений.
package activity

import "strings"

// IsThankYou проверяет, является ли текст «спасибо».
// Регистр не важен. Пунктуация в конце допускается.
func IsThankYou(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.TrimRight(cleaned, "!.,;:)")
	return cleaned == "спасибо" || cleaned == "благодарю"
}

// CountWords подсчитывает количество слов в тексте.
// Слова разделяются пробельными символами, лишние пробелы игнорируются.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// IsValidForumMessage проверяет, засчитывается ли сообщение как форумная
// активность. Условия:
//   - Минимум 3 слова
//   - Не является командой (не начинается с !, . или /)
func IsValidForumMessage(text string) bool {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "!") || strings.HasPrefix(text, ".") || strings.HasPrefix(text, "/") {
		return false
	}

	return CountWords(text) >= 3
}
