package models

// Venue is the exchange a security is listed on.
type Venue string

const (
	VenueKOSPI    Venue = "KOSPI"
	VenueKOSDAQ   Venue = "KOSDAQ"
	VenueNASDAQ   Venue = "NASDAQ"
	VenueNYSE     Venue = "NYSE"
	VenueNYSEArca Venue = "NYSEARCA"
)

// Foreign reports whether names for the venue carry a " - " share-class suffix.
func (v Venue) Foreign() bool {
	switch v {
	case VenueNASDAQ, VenueNYSE, VenueNYSEArca:
		return true
	}
	return false
}

// SecurityIdentity is the resolved view of one ticker.
type SecurityIdentity struct {
	Ticker               string `json:"ticker"`
	DisplayName          string `json:"displayName"`
	Venue                Venue  `json:"venue"`
	DisclosureRegistryID string `json:"disclosureRegistryId,omitempty"`
}
