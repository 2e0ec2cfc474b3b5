// Package pattern infers candidate recurring templates by mining historical
// ledger transactions for repeating amount/interval signatures.
package pattern

import (
	"math"
	"sort"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// minGroupSize is the minimum evidence required to estimate both an
// interval and its consistency.
const minGroupSize = 3

// amountVariationCeiling is the coefficient of variation at which the
// amount-stability score bottoms out.
const amountVariationCeiling = 0.25

type groupKey struct {
	propertyID string
	category   string
}

// DetectPatterns groups transactions by property and category, estimates a
// recurrence interval for each group, and emits one candidate pattern per
// group whose day-gaps consistently fit a known frequency. Transactions
// without a property never contribute; insufficient or inconsistent
// evidence yields fewer patterns, never an error. Output order is
// deterministic (property, then category).
func DetectPatterns(transactions []model.Transaction) []model.DetectedPattern {
	groups := make(map[groupKey][]model.Transaction)
	for _, txn := range transactions {
		if txn.PropertyID == nil || txn.Category == "" {
			continue
		}
		key := groupKey{propertyID: *txn.PropertyID, category: txn.Category}
		groups[key] = append(groups[key], txn)
	}

	var patterns []model.DetectedPattern
	for key, members := range groups {
		if len(members) < minGroupSize {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			if !members[i].Date.Equal(members[j].Date) {
				return members[i].Date.Before(members[j].Date)
			}
			return members[i].ID < members[j].ID
		})

		gaps := dayGaps(members)
		freq, ok := classifyInterval(gaps)
		if !ok {
			continue
		}

		patterns = append(patterns, model.DetectedPattern{
			PropertyID:     key.propertyID,
			Category:       key.category,
			Description:    dominantDescription(members),
			Frequency:      freq,
			Amount:         meanAmount(members),
			Confidence:     confidence(gaps, members, freq),
			TransactionIDs: transactionIDs(members),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].PropertyID != patterns[j].PropertyID {
			return patterns[i].PropertyID < patterns[j].PropertyID
		}
		return patterns[i].Category < patterns[j].Category
	})

	return patterns
}

// dayGaps returns the consecutive day differences of date-sorted members.
func dayGaps(members []model.Transaction) []int {
	gaps := make([]int, 0, len(members)-1)
	for i := 1; i < len(members); i++ {
		gaps = append(gaps, daysBetween(members[i-1].Date, members[i].Date))
	}
	return gaps
}

// classifyInterval matches the mean gap to the nearest reference interval.
// Every individual gap must also sit inside the frequency's tolerance band,
// otherwise the cadence is too noisy to call.
func classifyInterval(gaps []int) (model.Frequency, bool) {
	mean := meanInt(gaps)

	var best model.Frequency
	bestDistance := math.MaxFloat64
	for _, freq := range model.Frequencies() {
		distance := math.Abs(mean - float64(freq.Days()))
		if distance <= float64(freq.ToleranceDays()) && distance < bestDistance {
			best = freq
			bestDistance = distance
		}
	}
	if best == "" {
		return "", false
	}

	for _, gap := range gaps {
		if math.Abs(float64(gap-best.Days())) > float64(best.ToleranceDays()) {
			return "", false
		}
	}
	return best, true
}

// confidence blends interval regularity with amount stability. Tighter
// clustering on either axis never lowers the result; a group of equal
// amounts spaced exactly at the reference interval scores 1.0.
func confidence(gaps []int, members []model.Transaction, freq model.Frequency) float64 {
	intervalScore := 1.0 - clamp01(meanAbsDeviation(gaps, freq.Days())/float64(freq.ToleranceDays()))

	mean := meanAmount(members)
	amountScore := 0.0
	if mean > 0 {
		cv := amountStdDev(members, mean) / mean
		amountScore = 1.0 - clamp01(cv/amountVariationCeiling)
	}

	return (intervalScore + amountScore) / 2
}

func meanAbsDeviation(gaps []int, ref int) float64 {
	if len(gaps) == 0 {
		return 0
	}
	total := 0.0
	for _, gap := range gaps {
		total += math.Abs(float64(gap - ref))
	}
	return total / float64(len(gaps))
}

func amountStdDev(members []model.Transaction, mean float64) float64 {
	if len(members) == 0 {
		return 0
	}
	variance := 0.0
	for _, txn := range members {
		diff := txn.AbsAmount() - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(members)))
}

func meanAmount(members []model.Transaction) float64 {
	if len(members) == 0 {
		return 0
	}
	total := 0.0
	for _, txn := range members {
		total += txn.AbsAmount()
	}
	return total / float64(len(members))
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += v
	}
	return float64(total) / float64(len(values))
}

// dominantDescription picks the most frequent description in the group,
// breaking ties lexicographically for determinism.
func dominantDescription(members []model.Transaction) string {
	counts := make(map[string]int)
	for _, txn := range members {
		counts[txn.Description]++
	}
	best := ""
	bestCount := 0
	for desc, count := range counts {
		if count > bestCount || (count == bestCount && desc < best) {
			best = desc
			bestCount = count
		}
	}
	return best
}

func transactionIDs(members []model.Transaction) []string {
	ids := make([]string, len(members))
	for i, txn := range members {
		ids[i] = txn.ID
	}
	return ids
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
