// Package engine — badges.go содержит реестр значков и их предикаты.
// Предикаты — чистые функции над статистикой; оценщик сравнивает
// «до» и «после» и возвращает только новые значки, поэтому повторных
// уведомлений не бывает. Полученный значок не отбирается: за уже
// заработанный набор отвечает вызывающий код.
package engine

// BadgeTier — уровень значка.
type BadgeTier string

const (
	TierBronze   BadgeTier = "bronze"
	TierSilver   BadgeTier = "silver"
	TierGold     BadgeTier = "gold"
	TierPlatinum BadgeTier = "platinum"
)

// Badge — один значок: идентификатор, подпись и условие получения.
type Badge struct {
	ID          string
	Name        string
	Description string
	Tier        BadgeTier
	Predicate   func(Stats) bool
}

// BadgeSet — полный реестр значков.
type BadgeSet struct {
	registry []Badge
}

// NewBadgeSet создаёт реестр со штатным набором значков.
func NewBadgeSet() *BadgeSet {
	return &BadgeSet{registry: buildBadges()}
}

// Registry возвращает копию реестра.
func (s *BadgeSet) Registry() []Badge {
	out := make([]Badge, len(s.registry))
	copy(out, s.registry)
	return out
}

// ByID возвращает значок по идентификатору.
func (s *BadgeSet) ByID(id string) (Badge, bool) {
	for _, b := range s.registry {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// NewlyEarned возвращает идентификаторы значков, условие которых стало
// истинным между before и after. Порядок — порядок реестра; предикаты
// независимы друг от друга.
func (s *BadgeSet) NewlyEarned(before, after Stats) []string {
	var ids []string
	for _, b := range s.registry {
		if !b.Predicate(before) && b.Predicate(after) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func buildBadges() []Badge {
	return []Badge{

		// --- Сигналы о проблемах ---

		{
			ID: "first_report", Name: "Первый сигнал",
			Description: "Сообщить о первой городской проблеме",
			Tier:        TierBronze,
			Predicate:   func(s Stats) bool { return s.ReportsMade >= 1 },
		},
		{
			ID: "reporter_10", Name: "Дозорный",
			Description: "10 сигналов о проблемах",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.ReportsMade >= 10 },
		},
		{
			ID: "reporter_50", Name: "Глаза города",
			Description: "50 сигналов о проблемах",
			Tier:        TierGold,
			Predicate:   func(s Stats) bool { return s.ReportsMade >= 50 },
		},

		// --- Экология и добрые дела ---

		{
			ID: "recycler_25", Name: "Сортировщик",
			Description: "25 сдач вторсырья",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.RecyclesLogged >= 25 },
		},
		{
			ID: "helper_25", Name: "Добрые руки",
			Description: "25 микро-добрых дел",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.MicroActions >= 25 },
		},
		{
			ID: "supplier_10", Name: "Снабженец",
			Description: "10 раздач гуманитарки",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.SuppliesPickedUp >= 10 },
		},

		// --- Форум и сообщество ---

		{
			ID: "forum_voice_100", Name: "Голос района",
			Description: "100 сообщений и тем на форуме",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.ForumPosts+s.ForumReplies >= 100 },
		},
		{
			ID: "event_goer_5", Name: "Завсегдатай",
			Description: "Участие в 5 мероприятиях",
			Tier:        TierBronze,
			Predicate:   func(s Stats) bool { return s.EventsAttended >= 5 },
		},
		{
			ID: "gratitude_10", Name: "Любимец соседей",
			Description: "Получить 10 «спасибо»",
			Tier:        TierBronze,
			Predicate:   func(s Stats) bool { return s.ThanksReceived >= 10 },
		},

		// --- Серии ---

		{
			ID: "streak_7", Name: "Неделя в строю",
			Description: "Серия 7 дней подряд",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.BestStreak >= 7 },
		},
		{
			ID: "streak_30", Name: "Железная привычка",
			Description: "Серия 30 дней подряд",
			Tier:        TierGold,
			Predicate:   func(s Stats) bool { return s.BestStreak >= 30 },
		},

		// --- Накопленная карма ---

		{
			ID: "karma_500", Name: "Полтысячи",
			Description: "Заработать 500 баллов кармы",
			Tier:        TierSilver,
			Predicate:   func(s Stats) bool { return s.TotalEarned >= 500 },
		},
		{
			ID: "karma_1000", Name: "Клуб тысячи",
			Description: "Заработать 1000 баллов кармы",
			Tier:        TierGold,
			Predicate:   func(s Stats) bool { return s.TotalEarned >= 1000 },
		},
		{
			ID: "karma_5000", Name: "Легенда Городка",
			Description: "Заработать 5000 баллов кармы",
			Tier:        TierPlatinum,
			Predicate:   func(s Stats) bool { return s.TotalEarned >= 5000 },
		},
	}
}
