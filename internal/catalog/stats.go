package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/udistrital/gestion_ofertas_mid/models"
)

// ComputeStats calcula los contadores agregados del esquema sobre los registros de un dueño.
func (s *Schema) ComputeStats(records []models.Record, now time.Time) models.Stats {
	stats := models.Stats{
		Counters: make(map[string]int, len(s.Counters)),
		ByStatus: make(map[string]int, len(s.Statuses)),
	}
	for _, st := range s.Statuses {
		stats.ByStatus[st.Value] = 0
	}
	for _, c := range s.Counters {
		stats.Counters[c.Name] = 0
	}

	today := truncateDay(now)
	for _, rec := range records {
		status := rec.Status()
		if _, ok := stats.ByStatus[status]; ok {
			stats.ByStatus[status]++
		}
		for _, c := range s.Counters {
			switch c.Kind {
			case CounterAll:
				stats.Counters[c.Name]++
			case CounterStatus:
				if status == c.Status {
					stats.Counters[c.Name]++
				}
			case CounterSum:
				stats.Counters[c.Name] += rec.Int(c.Field)
			case CounterDeadline:
				if c.Status != "" && status != c.Status {
					continue
				}
				deadline, ok := rec.Time(c.Field)
				if !ok {
					continue
				}
				days := int(truncateDay(deadline).Sub(today).Hours() / 24)
				if days >= 0 && days <= c.Days {
					stats.Counters[c.Name]++
				}
			case CounterStartAhead:
				start, ok := rec.Time(c.Field)
				if ok && truncateDay(start).After(today) {
					stats.Counters[c.Name]++
				}
			}
		}
	}
	return stats
}

// Matches aplica la búsqueda libre y los filtros categóricos sobre un registro.
func (s *Schema) Matches(rec models.Record, search string, filters map[string]string) bool {
	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		if !strings.Contains(strings.ToLower(rec.String(s.TitleField)), q) {
			return false
		}
	}
	for dim, value := range filters {
		if value == "" || value == models.FiltroTodos {
			continue
		}
		if rec.String(dim) != value {
			return false
		}
	}
	return true
}

// IsNumeric indica si la clave se ordena como número: campos int o decimal y contadores
// de solo lectura.
func (s *Schema) IsNumeric(key string) bool {
	if s.IsReadOnly(key) {
		return true
	}
	f, ok := s.Field(key)
	return ok && (f.Kind == FieldInt || f.Kind == FieldDecimal)
}

// SortRecords ordena por el campo indicado; por defecto los más recientes primero.
func (s *Schema) SortRecords(records []models.Record, field, order string) {
	if strings.TrimSpace(field) == "" {
		field = models.KeyCreatedAt
		if order == "" {
			order = "desc"
		}
	}
	desc := strings.EqualFold(order, "desc")
	numeric := s.IsNumeric(field)
	sort.SliceStable(records, func(i, j int) bool {
		var cmp int
		if numeric {
			cmp = numberOf(records[i], field).Cmp(numberOf(records[j], field))
		} else {
			cmp = strings.Compare(records[i].String(field), records[j].String(field))
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// numberOf lee el valor como decimal; vacío o inválido cuenta como cero.
func numberOf(rec models.Record, key string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(models.ToString(rec[key])))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PageSlice recorta los registros a la página solicitada. Una página más allá del final
// retorna un slice vacío.
func PageSlice(records []models.Record, page, size int) []models.Record {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		return records
	}
	if page-1 > len(records)/size {
		return []models.Record{}
	}
	start := (page - 1) * size
	if start > len(records) {
		start = len(records)
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
