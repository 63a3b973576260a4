// Package engine — multiplier.go вычисляет множители начисления.
// Флаги контекста (выходной, праздник, ЧС, время суток) приходят от
// вызывающего кода; движок только переводит их в упорядоченный список
// коэффициентов.
package engine

// Context — флаги обстоятельств события. Несколько флагов могут быть
// истинны одновременно (например праздник в выходной).
type Context struct {
	Weekend   bool // Суббота или воскресенье
	Festival  bool // Городской праздник (календарь праздников)
	Emergency bool // Режим ЧС, объявленный администратором
	EarlyBird bool // Раннее утро
	NightOwl  bool // Поздний вечер
}

// Factor — именованный множитель.
type Factor struct {
	Name  string
	Value float64
}

// Multipliers — коэффициенты для каждого флага контекста.
// Значения фиксируются при старте процесса.
type Multipliers struct {
	Weekend   float64
	Festival  float64
	Emergency float64
	EarlyBird float64
	NightOwl  float64
}

// DefaultMultipliers возвращает штатные коэффициенты.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		Weekend:   1.5,
		Festival:  2.0,
		Emergency: 2.0,
		EarlyBird: 1.25,
		NightOwl:  1.25,
	}
}

// Resolve возвращает применимые множители в фиксированном порядке:
// выходной → праздник → ЧС → раннее утро → поздний вечер.
// Неактивные флаги опускаются, коэффициенты перемножаются вызывающим кодом
// именно в этом порядке.
func (m Multipliers) Resolve(ctx Context) []Factor {
	var factors []Factor
	if ctx.Weekend {
		factors = append(factors, Factor{Name: "weekend", Value: m.Weekend})
	}
	if ctx.Festival {
		factors = append(factors, Factor{Name: "festival", Value: m.Festival})
	}
	if ctx.Emergency {
		factors = append(factors, Factor{Name: "emergency", Value: m.Emergency})
	}
	if ctx.EarlyBird {
		factors = append(factors, Factor{Name: "early_bird", Value: m.EarlyBird})
	}
	if ctx.NightOwl {
		factors = append(factors, Factor{Name: "night_owl", Value: m.NightOwl})
	}
	return factors
}
