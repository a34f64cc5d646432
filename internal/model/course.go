package model

// Course is a single offering in the course catalogue.
type Course struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Grade      string  `json:"grade"`
	Class      string  `json:"class"`
	Credits    float64 `json:"credits"`
	Hours      float64 `json:"hours"`
}

// Totals is the aggregate credit/hour load of a set of courses.
type Totals struct {
	TotalCredits float64 `json:"total_credits"`
	TotalHours   float64 `json:"total_hours"`
}
