package model

// Bundle discount tiers by member event count. Counts outside the sellable
// range carry no discount; the [2,5] size rule itself is validated where
// bundles are created, not here.
func BundleDiscountPercentage(eventCount int) float64 {
	switch eventCount {
	case 2:
		return 10
	case 3:
		return 15
	case 4:
		return 20
	case 5:
		return 25
	default:
		return 0
	}
}

// PriceBreakdown is the derived pricing for a set of events sold together
type PriceBreakdown struct {
	OriginalTotal      float64 `json:"original_total"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountedTotal    float64 `json:"discounted_total"`
}

// ComputeBundlePrice sums the event prices and applies the tiered discount.
// Pure calculation, no validation: callers gate on bundle size and event
// status before pricing.
func ComputeBundlePrice(events []Event) PriceBreakdown {
	var total float64
	for i := range events {
		total += events[i].Price
	}

	discount := BundleDiscountPercentage(len(events))

	return PriceBreakdown{
		OriginalTotal:      total,
		DiscountPercentage: discount,
		DiscountedTotal:    total * (1 - discount/100),
	}
}
