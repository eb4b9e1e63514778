package models

const (
	FieldFirstName = "firstname"
	FieldPhone     = "phone"
	FieldNotes     = "notes"
)

// RequiredFields lists the columns every uploaded row must carry, in
// the order they are reported when missing.
var RequiredFields = []string{FieldFirstName, FieldPhone}

// Record is one uploaded spreadsheet row keyed by normalized column name.
// Column sets vary per file, so the shape stays dynamic until validation.
type Record map[string]string

// FirstName returns the firstname column.
func (r Record) FirstName() string { return r[FieldFirstName] }

// Phone returns the phone column.
func (r Record) Phone() string { return r[FieldPhone] }

// Notes returns the notes column, empty when absent.
func (r Record) Notes() string { return r[FieldNotes] }
