package model

import "time"

// Consents are the acknowledgments every candidate and interviewer must give
// before their record may be stored or processed.
type Consents struct {
	PrivacyPolicy bool       `gorm:"not null;default:false" json:"consent_privacy_policy"`
	Terms         bool       `gorm:"not null;default:false" json:"consent_terms"`
	StoreData     bool       `gorm:"not null;default:false" json:"consent_store_data"`
	AIProcessing  bool       `gorm:"not null;default:false" json:"consent_ai_processing"`
	ConsentedAt   *time.Time `json:"consented_at,omitempty"`
}

// Missing returns the json names of consents that were not given, in a stable order.
func (c Consents) Missing() []string {
	var missing []string
	if !c.PrivacyPolicy {
		missing = append(missing, "consent_privacy_policy")
	}
	if !c.Terms {
		missing = append(missing, "consent_terms")
	}
	if !c.StoreData {
		missing = append(missing, "consent_store_data")
	}
	if !c.AIProcessing {
		missing = append(missing, "consent_ai_processing")
	}
	return missing
}

func (c Consents) Complete() bool {
	return len(c.Missing()) == 0
}
