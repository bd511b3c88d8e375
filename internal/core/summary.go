package core

import "sort"

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Name  string
	Total Amount
}

// GroupByCategory folds transactions into per-category totals, ordered
// by descending total with name as a tie-breaker so renders are stable.
func GroupByCategory(records []Transaction) []CategoryTotal {
	totals := make(map[string]Amount)
	for _, r := range records {
		totals[r.CategoryName] = totals[r.CategoryName].Add(r.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, CategoryTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total.Decimal) {
			return out[i].Total.GreaterThan(out[j].Total.Decimal)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SumAmounts totals the amounts of a transaction slice.
func SumAmounts(records []Transaction) Amount {
	var total Amount
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// SortByDateDesc orders transactions newest first. Ordering is stable
// so records sharing a date keep their fetch order.
func SortByDateDesc(records []Transaction) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date.Time)
	})
}
