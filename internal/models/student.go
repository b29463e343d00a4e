package models

// Student is the roster view consumed by ranking and term computation.
// Roster management itself lives in the students module; this service only
// reads active rows.
type Student struct {
	ID          string `db:"id" json:"id"`
	RollNumber  string `db:"roll_number" json:"roll_number"`
	AdmissionNo string `db:"admission_no" json:"admission_no"`
	FullName    string `db:"full_name" json:"full_name"`
	ClassID     string `db:"class_id" json:"class_id"`
}
