package service

import "strings"

// Assistant answers common donor and patient questions. Responses are
// canned and keyword driven so the endpoint works without any external
// model; the same input always yields the same answer.
type Assistant struct{}

func NewAssistant() *Assistant { return &Assistant{} }

var fallbackReplies = []string{
	"I can help with questions about blood donation, thalassemia care, donor tokens and scheduling. What would you like to know?",
	"Could you tell me a bit more? I can explain donation eligibility, token rewards, or how matching works.",
	"I'm here to help with anything about donating blood or managing transfusion care. Try asking about donations, tokens or appointments.",
}

// Reply returns the assistant's answer for a message. Keyword buckets
// are checked in order of specificity; anything unmatched rotates
// through general prompts keyed off the message length so repeated
// identical questions get the same nudge.
func (a *Assistant) Reply(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "thalassemia"):
		return "Thalassemia patients typically need transfusions every 2-4 weeks. Keeping your hemoglobin above 9-10 g/dL between transfusions is the usual goal. Your care team sets the exact schedule, and the app tracks your next required date so matched donors can plan ahead."
	case strings.Contains(m, "eligib") || strings.Contains(m, "who can donate"):
		return "Most healthy adults aged 18-65 weighing at least 50 kg can donate whole blood. You must wait 56 days between donations, and hemoglobin should be at least 12.5 g/dL. The pre-donation screening checks all of this on the day."
	case strings.Contains(m, "donat") || strings.Contains(m, "blood"):
		return "A whole blood donation takes about 450 ml and under an hour door to door. After you donate, the drive is logged to your history, your donor counters update, and you earn 10 tokens. You can donate again after 56 days."
	case strings.Contains(m, "token") || strings.Contains(m, "blockchain") || strings.Contains(m, "reward"):
		return "You earn 10 tokens for every completed donation, recorded on the token ledger with a transaction reference. Tokens can be spent on rewards like health checkups and consultation vouchers from the rewards page. Spending never affects your lifetime earned total or badge progress."
	case strings.Contains(m, "badge") || strings.Contains(m, "level"):
		return "Badges track lifetime donations: Lifesaver at 5, Hero at 8, Champion at 15 and Legend at 25. Everyone starts as Novice. Badges are permanent once earned."
	case strings.Contains(m, "schedule") || strings.Contains(m, "appointment"):
		return "Once a match is created you can confirm it with a scheduled date from the match page. Confirmed matches show on both dashboards, and completing the donation marks the match done automatically once it's recorded."
	case strings.Contains(m, "match"):
		return "Matches pair donors and patients by blood group compatibility, distance, urgency and donor activity, scored 0-100. Exact group matches score highest; incompatible groups are never matched."
	}
	return fallbackReplies[len(message)%len(fallbackReplies)]
}
