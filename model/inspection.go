package model

import (
	"strconv"
	"strings"
)

// InspectionItemCount is the number of sections on the EIC schedule of inspections.
const InspectionItemCount = 14

// InspectionItem is one checklist entry of the schedule of inspections.
// ItemNumber is canonical ("1".."14") once the draft has been normalized.
type InspectionItem struct {
	ID          FlexString `json:"id,omitempty"`
	ItemNumber  FlexString `json:"itemNumber,omitempty"`
	Description string     `json:"description,omitempty"`
	Outcome     string     `json:"outcome,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

var inspectionDescriptions = [InspectionItemCount]string{
	"Condition of consumer's intake equipment (visual inspection only)",
	"Parallel or switched alternative sources of supply",
	"Protective measure: automatic disconnection of supply",
	"Basic protection",
	"Protective measures other than ADS",
	"Additional protection",
	"Distribution equipment",
	"Circuits (distribution and final)",
	"Isolation and switching",
	"Current-using equipment (permanently connected)",
	"Identification and notices",
	"Location(s) containing a bath or shower",
	"Other special installations or locations",
	"Prosumer's low voltage electrical installation(s)",
}

// InspectionItemNumbers returns the canonical item numbers in schedule order.
func InspectionItemNumbers() []string {
	numbers := make([]string, InspectionItemCount)
	for i := range numbers {
		numbers[i] = strconv.Itoa(i + 1)
	}
	return numbers
}

// InspectionDescription returns the schedule wording for a canonical item number.
func InspectionDescription(itemNumber string) string {
	n, err := strconv.Atoi(itemNumber)
	if err != nil || n < 1 || n > InspectionItemCount {
		return ""
	}
	return inspectionDescriptions[n-1]
}

// InspectionTemplate is the blank schedule a new draft starts from.
func InspectionTemplate() []InspectionItem {
	items := make([]InspectionItem, InspectionItemCount)
	for i, number := range InspectionItemNumbers() {
		items[i] = InspectionItem{
			ID:          FlexString("item-" + number),
			ItemNumber:  FlexString(number),
			Description: inspectionDescriptions[i],
		}
	}
	return items
}

// Canonical outcome values as printed on the certificate.
const (
	OutcomeAcceptable    = "Acceptable"
	OutcomeNotApplicable = "N/A"
	OutcomeLimitation    = "LIM"
)

// CanonicalOutcome maps the outcome spellings used by the editor over time
// onto the value printed on the certificate. Unknown values print blank.
func CanonicalOutcome(outcome string) string {
	switch strings.TrimSpace(outcome) {
	case "satisfactory", "acceptable", "Acceptable":
		return OutcomeAcceptable
	case "na", "not-applicable", "N/A":
		return OutcomeNotApplicable
	case "limitation", "LIM":
		return OutcomeLimitation
	default:
		return ""
	}
}

// CanonicalItemNumber resolves an item's identity. Sources are tried in a
// fixed order: itemNumber, then an "item-N" id, then a bare numeric id.
func (it InspectionItem) CanonicalItemNumber() (string, bool) {
	if n, ok := parseItemNumber(string(it.ItemNumber)); ok {
		return n, true
	}
	id := strings.TrimSpace(string(it.ID))
	if rest, found := strings.CutPrefix(id, "item-"); found {
		if n, ok := parseItemNumber(rest); ok {
			return n, true
		}
	}
	return parseItemNumber(id)
}

// parseItemNumber accepts "3" and the older "3.0" form.
func parseItemNumber(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ".0")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > InspectionItemCount {
		return "", false
	}
	return strconv.Itoa(n), true
}

// normalizeInspectionItems rewrites every resolvable item onto its canonical
// number. Items that cannot be resolved are kept as they are and never
// matched at export.
func normalizeInspectionItems(items []InspectionItem) []InspectionItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]InspectionItem, len(items))
	for i, it := range items {
		if number, ok := it.CanonicalItemNumber(); ok {
			it.ItemNumber = FlexString(number)
			it.ID = FlexString("item-" + number)
			if it.Description == "" {
				it.Description = InspectionDescription(number)
			}
		}
		out[i] = it
	}
	return out
}
