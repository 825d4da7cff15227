package policy

import "fmt"

// Scenario identifiers the selection model can choose from. "D" means no
// section of the policy applies.
const (
	SectionTripCancellation = "A"
	SectionPersonalEffects  = "B"
	SectionMissedDeparture  = "C"
	SectionNotCovered       = "D"
)

const tripCancellationSection = `If your trip is cancelled or rescheduled for a covered reason, you may be eligible for compensation.
Examples of covered reasons:
- Jury duty
- Medical emergency (must be supported by a medical report)
- Theft or criminal incident (must be supported by a police report)
- Other specified personal emergencies

What's required:
- Valid supporting documentation (e.g., medical certificate, police report, jury summon letter)
- Proof of booking and amount paid`

const personalEffectsSection = `If your personal belongings (luggage, electronics, clothing, or jewelry) are lost, stolen, or damaged during the trip, you may be eligible for compensation.
Examples of covered reasons:
- Theft or criminal incident (must be supported by a police report)
- Loss or damage in transit

What's required:
- Valid supporting documentation (e.g., police report for theft)
- Proof of purchase or ownership where available`

const missedDepartureSection = `If you miss a scheduled departure or connection due to a covered reason, you may be compensated.

Examples of covered reasons:
- Traffic accident en route

What's required:
- Incident report or documentation explaining the cause of delay
- Proof of booking`

const exclusionsSection = `Your claim may be **rejected** in the following cases:

- Not a covered reason (e.g., voluntary changes to your travel)
- Prior knowledge of the incident or reason before purchase
- Outside policy period - e.g., incident occurred before coverage began or after it ended
- Late reporting - claim submitted more than 30 days after policy expired (usually the day after you return from your trip)
- Incomplete documentation - failure to provide necessary proof`

// sectionTexts is the static identifier -> policy text table. Only the
// identifier choice is model-driven; this mapping never is.
var sectionTexts = map[string]string{
	SectionTripCancellation: tripCancellationSection,
	SectionPersonalEffects:  personalEffectsSection,
	SectionMissedDeparture:  missedDepartureSection,
}

// SectionText returns the full policy text for a covered-scenario identifier:
// the section body concatenated with the fixed exclusions block. ok is false
// for SectionNotCovered and unrecognized identifiers.
func SectionText(identifier string) (string, bool) {
	section, ok := sectionTexts[identifier]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s\n\n%s", section, exclusionsSection), true
}

const selectorSystemPrompt = "You are a helpful travel insurance claim assistant. Always respond with valid JSON."

const selectorPromptTemplate = `Given a claim description, identify which cost the client is asking reimbursement for:

- A: Pre-booked Trip Expenses (Cancellations/Rescheduling): Costs of transportation (flights, train tickets) or accommodation lost because the traveler could no longer attend the trip as planned (e.g., due to illness, emergency, or change of plans).
- B: Personal Property: Costs for physical belongings (luggage, electronics, clothing, or jewelry) that are lost, stolen, or damaged during the trip.
- C: Missed Departure/Connection Fare: Costs of the transportation ticket itself (the fare) when the client failed to arrive on time for a departure or a connection.

When asking for reimbursement of other costs, choose "D".

Claim: %s

You must return the relevant identifier ("A", "B", "C" or "D") and justify.`
