// Package schema holds the fixed vocabularies shared by every entity and the
// validator that enforces them on both the server and the client.
package schema

// Stage is a student's position in the recruitment pipeline.
type Stage string

const (
	StageInquiry     Stage = "inquiry"
	StageApplication Stage = "application"
	StageOffer       Stage = "offer"
	StageVisa        Stage = "visa"
	StageEnrollment  Stage = "enrollment"
	StageAlumni      Stage = "alumni"
)

// Stages lists the pipeline in order.
func Stages() []Stage {
	return []Stage{StageInquiry, StageApplication, StageOffer, StageVisa, StageEnrollment, StageAlumni}
}

// Index returns the position of s in the pipeline, -1 when unknown.
func (s Stage) Index() int {
	for i, st := range Stages() {
		if st == s {
			return i
		}
	}
	return -1
}

type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentPending   StudentStatus = "pending"
	StudentRejected  StudentStatus = "rejected"
	StudentGraduated StudentStatus = "graduated"
)

type UniversityTier string

const (
	Tier1 UniversityTier = "tier1"
	Tier2 UniversityTier = "tier2"
	Tier3 UniversityTier = "tier3"
)

// PartnerStatus is shared by universities and agents.
type PartnerStatus string

const (
	PartnerActive   PartnerStatus = "active"
	PartnerPending  PartnerStatus = "pending"
	PartnerInactive PartnerStatus = "inactive"
)

type ApplicationStage string

const (
	AppDraft       ApplicationStage = "draft"
	AppSubmitted   ApplicationStage = "submitted"
	AppUnderReview ApplicationStage = "under_review"
	AppOffer       ApplicationStage = "offer"
	AppAccepted    ApplicationStage = "accepted"
	AppVisa        ApplicationStage = "visa"
	AppEnrolled    ApplicationStage = "enrolled"
)

func ApplicationStages() []ApplicationStage {
	return []ApplicationStage{AppDraft, AppSubmitted, AppUnderReview, AppOffer, AppAccepted, AppVisa, AppEnrolled}
}

type ApplicationStatus string

const (
	AppPending   ApplicationStatus = "pending"
	AppApproved  ApplicationStatus = "approved"
	AppRejected  ApplicationStatus = "rejected"
	AppWithdrawn ApplicationStatus = "withdrawn"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
	RoleAgent     Role = "agent"
)

type CardStatus string

const (
	CardActive  CardStatus = "active"
	CardRevoked CardStatus = "revoked"
	CardExpired CardStatus = "expired"
)

type EventType string

const (
	EventFair     EventType = "fair"
	EventWebinar  EventType = "webinar"
	EventMeeting  EventType = "meeting"
	EventDeadline EventType = "deadline"
)

func toStrings[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// enumTags maps a validator tag to its allowed values.
var enumTags = map[string][]string{
	"stage":              toStrings(Stages()...),
	"student_status":     toStrings(StudentActive, StudentInactive, StudentPending, StudentRejected, StudentGraduated),
	"university_tier":    toStrings(Tier1, Tier2, Tier3),
	"partner_status":     toStrings(PartnerActive, PartnerPending, PartnerInactive),
	"application_stage":  toStrings(ApplicationStages()...),
	"application_status": toStrings(AppPending, AppApproved, AppRejected, AppWithdrawn),
	"role":               toStrings(RoleAdmin, RoleCounselor, RoleAgent),
	"card_status":        toStrings(CardActive, CardRevoked, CardExpired),
	"event_type":         toStrings(EventFair, EventWebinar, EventMeeting, EventDeadline),
}
