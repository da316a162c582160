package employee

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Employee is the directory view attendance needs: who, and where to notify.
type Employee struct {
	ID               string
	FullName         string
	Email            string
	EmploymentStatus EmploymentStatus
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
