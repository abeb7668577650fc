package birthdays

import "time"

// DateLayout es el formato de bdate (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Birthday representa una persona cuyo cumpleaños sigue un usuario.
type Birthday struct {
	ID          string
	OwnerUserID string

	Name         string
	Relationship string
	BirthDate    string // YYYY-MM-DD, tal cual se guardó

	ImageURL string
	Memo     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Upcoming es un Birthday anotado por el motor de ranking.
type Upcoming struct {
	Birthday

	DaysUntil int
	Age       *int // nil si bdate no parsea
}
