package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// OutboundMessage is the instruction delivered to the gateway.
type OutboundMessage struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// LookupURL builds the storefront purchase lookup link for a record.
// Email and race slug are query-escaped; parameter order is fixed.
func LookupURL(storefrontURL string, r PurchaseRecord) string {
	return fmt.Sprintf(
		"%s/api/purchase-lookup?email=%s&race_slug=%s",
		strings.TrimRight(storefrontURL, "/"),
		url.QueryEscape(r.UserEmail),
		url.QueryEscape(r.RaceSlug),
	)
}

// BuildMessage renders the instruction for the report-generation agent.
// The output depends only on its arguments, so equal inputs give byte-identical messages.
func BuildMessage(r PurchaseRecord, storefrontURL, channel string) OutboundMessage {
	var b strings.Builder

	b.WriteString("New race report purchase received.\n\n")
	fmt.Fprintf(&b, "Race: %s\n", r.RaceName)
	fmt.Fprintf(&b, "Race slug: %s\n", r.RaceSlug)
	fmt.Fprintf(&b, "Runner: %s\n", r.UserName)
	fmt.Fprintf(&b, "Email: %s\n", r.UserEmail)
	fmt.Fprintf(&b, "Goal time: %s\n", r.GoalTime)
	fmt.Fprintf(&b, "Location: %s, %s\n", r.City, r.State)
	fmt.Fprintf(&b, "Purchase ID: %s\n\n", r.PurchaseID)

	fmt.Fprintf(&b, "Purchase lookup: %s\n\n", LookupURL(storefrontURL, r))

	b.WriteString("Steps:\n")
	b.WriteString("1. Look up the purchase with a GET request to the purchase lookup URL above.\n")
	fmt.Fprintf(&b,
		"2. Research %s (%s): course profile, elevation, aid stations, cutoffs and typical conditions.\n",
		r.RaceName, r.RaceSlug,
	)
	fmt.Fprintf(&b,
		"3. Compute a pacing plan for a goal time of %s, with training segments near %s, %s.\n",
		r.GoalTime, r.City, r.State,
	)
	fmt.Fprintf(&b,
		"4. Publish the finished report for purchase %s so %s can access it.\n",
		r.PurchaseID, r.UserEmail,
	)

	return OutboundMessage{
		Channel: channel,
		Message: b.String(),
	}
}
