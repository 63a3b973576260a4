// Package engine — catalogue.go содержит каталог гражданских активностей:
// базовые баллы и дневные лимиты для каждого вида действий.
// Каталог загружается один раз при старте и не меняется на лету.
package engine

import (
	"fmt"
	"sort"
)

// ActivityKind — вид активности. Закрытый набор: новые виды добавляются
// только новыми записями каталога.
type ActivityKind string

const (
	KindReportIssue   ActivityKind = "report_issue"   // Сигнал о городской проблеме
	KindRecycleLog    ActivityKind = "recycle_log"    // Сдача вторсырья
	KindForumPost     ActivityKind = "forum_post"     // Тема на форуме
	KindForumReply    ActivityKind = "forum_reply"    // Ответ в обсуждении
	KindEventCheckin  ActivityKind = "event_checkin"  // Участие в мероприятии
	KindMicroAction   ActivityKind = "micro_action"   // Микро-доброе дело
	KindSupplyPickup  ActivityKind = "supply_pickup"  // Получение и раздача гуманитарки
	KindThankReceived ActivityKind = "thank_received" // Получено «спасибо» от соседа
	KindFalseReport   ActivityKind = "false_report"   // Штраф: ложный сигнал
	KindSpamFlag      ActivityKind = "spam_flag"      // Штраф: спам
)

// KindStreakBonus — служебный вид для бонусных транзакций за серию.
// В каталоге отсутствует, используется только как метка в журнале.
const KindStreakBonus ActivityKind = "streak_bonus"

// CatalogueEntry — запись каталога: сколько баллов стоит активность
// и сколько раз в день она засчитывается.
type CatalogueEntry struct {
	Kind       ActivityKind
	BasePoints int64 // Отрицательное значение — штраф
	DailyCap   int   // 0 — без дневного лимита
	Streakable bool  // Участвует ли в подсчёте серии дней
}

// IsPenalty сообщает, является ли запись штрафом.
// Штрафы не подчиняются дневным лимитам — они применяются всегда и целиком.
func (e CatalogueEntry) IsPenalty() bool {
	return e.BasePoints < 0
}

// Catalogue — неизменяемый справочник активностей.
type Catalogue struct {
	entries map[ActivityKind]CatalogueEntry
}

// NewCatalogue собирает каталог из списка записей.
func NewCatalogue(entries []CatalogueEntry) *Catalogue {
	m := make(map[ActivityKind]CatalogueEntry, len(entries))
	for _, e := range entries {
		m[e.Kind] = e
	}
	return &Catalogue{entries: m}
}

// Lookup возвращает запись каталога по виду активности.
func (c *Catalogue) Lookup(kind ActivityKind) (CatalogueEntry, error) {
	e, ok := c.entries[kind]
	if !ok {
		return CatalogueEntry{}, fmt.Errorf("%w: %q", ErrUnknownActivityKind, kind)
	}
	return e, nil
}

// Kinds возвращает все виды активностей в детерминированном порядке.
func (c *Catalogue) Kinds() []ActivityKind {
	kinds := make([]ActivityKind, 0, len(c.entries))
	for k := range c.entries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DefaultCatalogue возвращает штатный каталог «Городка».
func DefaultCatalogue() *Catalogue {
	return NewCatalogue([]CatalogueEntry{
		{Kind: KindReportIssue, BasePoints: 10, DailyCap: 5, Streakable: true},
		{Kind: KindRecycleLog, BasePoints: 5, DailyCap: 3, Streakable: true},
		{Kind: KindForumPost, BasePoints: 3, DailyCap: 10, Streakable: true},
		{Kind: KindForumReply, BasePoints: 1, DailyCap: 20, Streakable: true},
		{Kind: KindEventCheckin, BasePoints: 20, DailyCap: 2, Streakable: true},
		{Kind: KindMicroAction, BasePoints: 5, DailyCap: 5, Streakable: true},
		{Kind: KindSupplyPickup, BasePoints: 15, DailyCap: 2, Streakable: true},
		{Kind: KindThankReceived, BasePoints: 2, DailyCap: 10, Streakable: false},
		{Kind: KindFalseReport, BasePoints: -15},
		{Kind: KindSpamFlag, BasePoints: -5},
	})
}
