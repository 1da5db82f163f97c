package models

// BillParticipant marks a user as associated with a bill, independent of
// whether they appear in any expense. Participants are enrolled lazily
// on first qualifying access; the (bill, user) pair is unique.
type BillParticipant struct {
	BillID   string
	UserID   string
	JoinedAt int64
}
