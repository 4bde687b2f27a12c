// Package users holds the provider agent directory imported from the
// telephony API and the local CRM user directory used to match agents to
// CRM accounts.
package users

import (
	"strings"
	"time"
)

// Provider user statuses as the CRM stores them.
const (
	StatusEnabled  = "Enabled"
	StatusBlocked  = "Blocked"
	StatusDisabled = "Disabled"
)

// StatusFromCode maps the provider's numeric agent status onto the stored
// label. Unknown codes map to Disabled.
func StatusFromCode(code int) string {
	switch code {
	case 0:
		return StatusEnabled
	case 1:
		return StatusBlocked
	default:
		return StatusDisabled
	}
}

// ProviderUser is one telephony agent imported from the provider user list.
type ProviderUser struct {
	ID                    string    `json:"id"`
	ProviderID            int       `json:"provider_id"`
	LoginID               string    `json:"login_id"`
	AgentID               string    `json:"agent_id"`
	AgentName             string    `json:"agent_name"`
	Status                string    `json:"status"`
	Phone                 string    `json:"phone"`
	Role                  string    `json:"role"`
	LoginBasedCalling     bool      `json:"login_based_calling"`
	InternationalOutbound bool      `json:"international_outbound"`
	LocalUserID           string    `json:"local_user_id,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// User is a local CRM account. The mobile number is kept as the trailing
// ten digits so it lines up with cleaned provider phones.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MobileNo string `json:"mobile_no"`
}

// CleanPhone reduces a provider phone to its trailing ten digits: strips
// every non-digit and, when more than ten digits remain, keeps the last ten.
// Numbers with ten digits or fewer are returned as their digits.
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// ImportSummary reports the outcome of one provider user import run.
type ImportSummary struct {
	Saved       int  `json:"saved"`
	Skipped     int  `json:"skipped"`
	Failed      int  `json:"failed"`
	AllExisting bool `json:"all_existing"`
}
