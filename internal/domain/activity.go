package domain

// ActivityType distinguishes rubric-scored activities from single-value
// direct awards.
type ActivityType string

const (
	ActivityJudged ActivityType = "judged"
	ActivityDirect ActivityType = "direct"
)

// Criterion is one rubric line item within a judged activity.
type Criterion struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MaxPoints int    `json:"max_points"`
}

// Activity is a scored competition category. Judged activities carry an
// ordered criteria set; direct activities carry a single point ceiling.
type Activity struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      ActivityType `json:"type"`
	Criteria  []Criterion  `json:"criteria,omitempty"`
	MaxPoints int          `json:"max_points,omitempty"`
	CreatedBy string       `json:"created_by"`
}

// MaxTotal returns the activity's point ceiling: the sum of criteria
// maxima for judged activities, MaxPoints for direct ones.
func (a *Activity) MaxTotal() int {
	if a.Type == ActivityJudged {
		total := 0
		for _, c := range a.Criteria {
			total += c.MaxPoints
		}
		return total
	}
	return a.MaxPoints
}

// CriterionByID looks up a criterion on a judged activity.
func (a *Activity) CriterionByID(id string) (Criterion, bool) {
	for _, c := range a.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}
