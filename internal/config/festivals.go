package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Festival — одна запись календаря городских праздников.
// Даты задаются локальными календарными днями, включительно с обеих сторон.
type Festival struct {
	Name string `yaml:"name"`
	From string `yaml:"from"` // ГГГГ-ММ-ДД
	To   string `yaml:"to"`   // ГГГГ-ММ-ДД; пусто — однодневный праздник
}

type festivalFile struct {
	Festivals []Festival `yaml:"festivals"`
}

// FestivalCalendar отвечает на вопрос «сегодня праздник?».
type FestivalCalendar struct {
	periods []festivalPeriod
}

type festivalPeriod struct {
	name string
	from time.Time
	to   time.Time
}

// LoadFestivalCalendar читает YAML-календарь праздников.
// Пустой путь — валидный пустой календарь.
func LoadFestivalCalendar(path string, loc *time.Location) (*FestivalCalendar, error) {
	if path == "" {
		return &FestivalCalendar{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать календарь праздников: %w", err)
	}

	var file festivalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("не удалось разобрать календарь праздников: %w", err)
	}

	cal := &FestivalCalendar{periods: make([]festivalPeriod, 0, len(file.Festivals))}
	for _, f := range file.Festivals {
		from, err := time.ParseInLocation("2006-01-02", f.From, loc)
		if err != nil {
			return nil, fmt.Errorf("праздник %q: некорректная дата from %q: %w", f.Name, f.From, err)
		}
		to := from
		if f.To != "" {
			to, err = time.ParseInLocation("2006-01-02", f.To, loc)
			if err != nil {
				return nil, fmt.Errorf("праздник %q: некорректная дата to %q: %w", f.Name, f.To, err)
			}
		}
		if to.Before(from) {
			return nil, fmt.Errorf("праздник %q: to раньше from", f.Name)
		}
		cal.periods = append(cal.periods, festivalPeriod{name: f.Name, from: from, to: to})
	}
	return cal, nil
}

// IsFestival сообщает, попадает ли локальный день t в какой-нибудь праздник.
func (c *FestivalCalendar) IsFestival(t time.Time) bool {
	_, ok := c.FestivalName(t)
	return ok
}

// FestivalName возвращает название праздника, идущего в день t.
func (c *FestivalCalendar) FestivalName(t time.Time) (string, bool) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for _, p := range c.periods {
		if !day.Before(p.from) && !day.After(p.to) {
			return p.name, true
		}
	}
	return "", false
}
