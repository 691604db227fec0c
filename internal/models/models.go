package models

import (
	"regexp"
	"strings"
	"time"
)

// BloodGroup is a clinical ABO/Rh blood type
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupOther BloodGroup = "Other"
)

// BloodGroups lists every accepted blood group, "Other" last
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
	BloodGroupOther,
}

// Valid reports whether g is one of the eight clinical types or "Other"
func (g BloodGroup) Valid() bool {
	for _, bg := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

// Gender of a donor
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// AccountType distinguishes individuals from organisations
type AccountType string

const (
	AccountTypeIndividual AccountType = "individual"
	AccountTypeHospital   AccountType = "hospital"
	AccountTypeNGO        AccountType = "ngo"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeIndividual, AccountTypeHospital, AccountTypeNGO:
		return true
	}
	return false
}

// Donor represents a registered blood donor
type Donor struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Age        int         `json:"age"`
	Gender     Gender      `json:"gender"`
	BloodGroup BloodGroup  `json:"bloodGroup"`
	City       string      `json:"city"`
	Pincode    string      `json:"pincode"`
	Mobile     string      `json:"mobile"`
	Email      string      `json:"email,omitempty"`
	CreatedAt  EpochMillis `json:"createdAt"`
	AccountID  string      `json:"accountId,omitempty"`
}

// BloodNeedRequest represents a posted request for blood
type BloodNeedRequest struct {
	ID                 string      `json:"id"`
	BloodGroup         BloodGroup  `json:"bloodGroup"`
	City               string      `json:"city"`
	Pincode            string      `json:"pincode"`
	NeededAtISO        string      `json:"neededAtISO"`
	TimeOption         TimeOption  `json:"timeOption,omitempty"`
	Notes              string      `json:"notes,omitempty"`
	RequesterAccountID string      `json:"requesterAccountId,omitempty"`
	RequesterName      string      `json:"requesterName,omitempty"`
	CreatedAt          EpochMillis `json:"createdAt"`
}

// Account represents a verified individual, hospital or NGO
type Account struct {
	ID           string       `json:"id"`
	Type         AccountType  `json:"type"`
	Name         string       `json:"name"`
	Mobile       string       `json:"mobile,omitempty"`
	Email        string       `json:"email,omitempty"`
	CreatedAt    EpochMillis  `json:"createdAt"`
	VerifiedAt   *EpochMillis `json:"verifiedAt,omitempty"`
	AvatarBase64 string       `json:"avatarBase64,omitempty"`
}

// OtpRecord is a pending one-time code filed under a recipient identifier
type OtpRecord struct {
	Code        string
	ExpiresAt   time.Time
	RequestID   string
	Attempts    int
	Identifiers []string // every key the code was filed under
}

// Notification is an ad-hoc message recorded for a donor
type Notification struct {
	ID        string      `json:"id"`
	Mobile    string      `json:"mobile"`
	DonorID   string      `json:"donorId,omitempty"`
	Message   string      `json:"message"`
	CreatedAt EpochMillis `json:"createdAt"`
}

// NeedResponse records a donor's intent to donate against a need
type NeedResponse struct {
	ID        string      `json:"id"`
	NeedID    string      `json:"needId"`
	Contact   string      `json:"contact,omitempty"`
	Message   string      `json:"message,omitempty"`
	DonorName string      `json:"donorName,omitempty"`
	CreatedAt EpochMillis `json:"createdAt"`
}

// Profile is the signup payload forwarded to the profile sink
type Profile struct {
	Name       string     `json:"name,omitempty"`
	Mobile     string     `json:"mobile,omitempty"`
	Email      string     `json:"email,omitempty"`
	BloodGroup BloodGroup `json:"bloodGroup,omitempty"`
	Gender     Gender     `json:"gender,omitempty"`
	DOB        string     `json:"dob,omitempty"`
	City       string     `json:"city,omitempty"`
	Pincode    string     `json:"pincode,omitempty"`
}

// Stats is a snapshot of table sizes
type Stats struct {
	Donors        int `json:"donors"`
	Requests      int `json:"requests"`
	RequestsToday int `json:"requestsToday"`
	Accounts      int `json:"accounts"`
}

// Delivery channel kinds
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelOther = "other"
)

var tenDigits = regexp.MustCompile(`^[0-9]{10}$`)

// ChannelFor classifies a recipient identifier
func ChannelFor(identifier string) string {
	switch {
	case tenDigits.MatchString(identifier):
		return ChannelSMS
	case strings.Contains(identifier, "@"):
		return ChannelEmail
	default:
		return ChannelOther
	}
}
