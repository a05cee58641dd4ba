package service

import (
	"encoding/json"
	"strconv"
	"strings"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// lookupPath is a sequence of keys into nested string-keyed mappings.
type lookupPath []string

// Resolution order per field: the first path yielding a non-empty value wins.
var (
	raceNamePaths   = []lookupPath{{"metadata", "race_name"}}
	raceSlugPaths   = []lookupPath{{"metadata", "race_slug"}}
	userNamePaths   = []lookupPath{{"metadata", "user_name"}, {"metadata", "name"}}
	goalTimePaths   = []lookupPath{{"metadata", "goal_time"}}
	cityPaths       = []lookupPath{{"metadata", "city"}}
	statePaths      = []lookupPath{{"metadata", "state"}}
	purchaseIDPaths = []lookupPath{{"metadata", "purchase_id"}, {"payment_intent"}, {"id"}}
	userEmailPaths  = []lookupPath{
		{"metadata", "user_email"},
		{"metadata", "email"},
		{"metadata", "name"},
		{"customer_email"},
		{"customer_details", "email"},
		{"receipt_email"},
	}
)

// ExtractPurchase builds a best-effort PurchaseRecord from an event subject.
// Fields that cannot be resolved are left empty; validation happens separately.
func ExtractPurchase(object map[string]any) webhookDomain.PurchaseRecord {
	return webhookDomain.PurchaseRecord{
		RaceName:   resolve(object, raceNamePaths),
		RaceSlug:   resolve(object, raceSlugPaths),
		UserName:   resolve(object, userNamePaths),
		UserEmail:  resolve(object, userEmailPaths),
		GoalTime:   resolve(object, goalTimePaths),
		City:       resolve(object, cityPaths),
		State:      resolve(object, statePaths),
		PurchaseID: resolve(object, purchaseIDPaths),
	}
}

// resolve returns the first non-empty value among paths, or "".
func resolve(object map[string]any, paths []lookupPath) string {
	for _, path := range paths {
		if value, ok := lookupString(object, path); ok {
			return value
		}
	}
	return ""
}

// lookupString follows path and renders the leaf as a trimmed string.
// ok is false when the leaf is missing, empty or not a scalar.
func lookupString(object map[string]any, path lookupPath) (string, bool) {
	var value string

	switch v := lookup(object, path).(type) {
	case string:
		value = v
	case json.Number:
		value = v.String()
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		value = strconv.FormatBool(v)
	default:
		return "", false
	}

	value = strings.TrimSpace(value)
	return value, value != ""
}

// lookup walks nested maps and returns the leaf value or nil.
func lookup(object map[string]any, path lookupPath) any {
	var current any = object
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[key]
	}
	return current
}
