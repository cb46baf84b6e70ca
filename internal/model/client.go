package model

// Client is a studio client keyed by their WhatsApp number.  The
// messaging layer always addresses clients by WaNumber; everything in
// the core works with the numeric ID.
//
// Fields:
//  ID            – primary key identifier.
//  WaNumber      – normalized WhatsApp number, unique.
//  Name          – display name, may be empty for self-registered clients.
//  Plan          – subscription plan label ("1x", "2x", ...).
//  Credits       – prepaid session credits.
//  BirthdayDay   – day of month of the client's birthday (nullable).
//  BirthdayMonth – month of the client's birthday (nullable).
//  MedicalNotes  – free-text notes relevant to training (nullable).
//  Notes         – admin notes (nullable).
//  HouseholdID   – groups clients billed together, e.g. duo partners (nullable).
type Client struct {
	ID            uint64  `json:"id"`
	WaNumber      string  `json:"wa_number"`
	Name          string  `json:"name"`
	Plan          string  `json:"plan"`
	Credits       int     `json:"credits"`
	BirthdayDay   *int    `json:"birthday_day,omitempty"`
	BirthdayMonth *int    `json:"birthday_month,omitempty"`
	MedicalNotes  *string `json:"medical_notes,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	HouseholdID   *uint64 `json:"household_id,omitempty"`
}
