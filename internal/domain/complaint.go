package domain

import "time"

// ComplaintStatus is the department-driven lifecycle of a complaint.
type ComplaintStatus string

const (
	ComplaintPending ComplaintStatus = "Pending"
	ComplaintSolving ComplaintStatus = "Solving"
	ComplaintSolved  ComplaintStatus = "Solved"
)

// ComplaintStatuses lists statuses in lifecycle order.
var ComplaintStatuses = []ComplaintStatus{ComplaintPending, ComplaintSolving, ComplaintSolved}

// Valid reports whether s is one of the three known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintSolving, ComplaintSolved:
		return true
	}
	return false
}

// RoutingState records whether a complaint reached a department.
type RoutingState string

const (
	RoutingRouted                RoutingState = "ROUTED"
	RoutingUnrouted              RoutingState = "UNROUTED"
	RoutingClassificationPending RoutingState = "CLASSIFICATION_PENDING"
)

// AlternativeCategory is a lower-ranked classifier guess.
type AlternativeCategory struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Explanation is the classifier's reasoning text.
type Explanation struct {
	Category   string `json:"category"`
	Department string `json:"department"`
}

// Classification is what the classifier returns for a complaint text.
type Classification struct {
	Category              string
	CategoryConfidence    float64
	AlternativeCategories []AlternativeCategory
	RecommendedDepartment string
	KeywordsFound         []string
	Explanation           Explanation
}

// Complaint is a grievance filed by a migrant.
type Complaint struct {
	ID                    string
	UserID                string
	Text                  string
	Category              string
	CategoryConfidence    float64
	AlternativeCategories []AlternativeCategory
	RecommendedDepartment string
	KeywordsFound         []string
	Explanation           Explanation
	Status                ComplaintStatus
	RoutingState          RoutingState
	DepartmentID          *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ApplyClassification copies classifier output onto the complaint.
func (c *Complaint) ApplyClassification(cl *Classification) {
	c.Category = cl.Category
	c.CategoryConfidence = cl.CategoryConfidence
	c.AlternativeCategories = cl.AlternativeCategories
	c.RecommendedDepartment = cl.RecommendedDepartment
	c.KeywordsFound = cl.KeywordsFound
	c.Explanation = cl.Explanation
}

// ComplaintChangeType captures what changed in a history entry.
type ComplaintChangeType string

const (
	ChangeTypeCreated        ComplaintChangeType = "CREATED"
	ChangeTypeClassification ComplaintChangeType = "CLASSIFICATION"
	ChangeTypeStatus         ComplaintChangeType = "STATUS_CHANGE"
	ChangeTypeRouting        ComplaintChangeType = "ROUTING_CHANGE"
)

// ComplaintHistory is an immutable audit trail entry.
type ComplaintHistory struct {
	ID            string
	ComplaintID   string
	ChangedByKind IdentityKind
	ChangedByID   *string
	ChangeType    ComplaintChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
