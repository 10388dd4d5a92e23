package entity

import "github.com/google/uuid"

const DefaultTreasury = 1_000_000

type Company struct {
	ID        int64       `json:"id"`
	PlayerID  int64       `json:"player_id"`
	Name      string      `json:"name"`
	Treasury  int         `json:"treasury"`
	Employees []*Employee `json:"employees"`
}

func NewCompany(name string, playerID int64) *Company {
	return &Company{
		PlayerID:  playerID,
		Name:      name,
		Treasury:  DefaultTreasury,
		Employees: []*Employee{},
	}
}

// Hire turns the consultant into an employee of the company.
func (that *Company) Hire(consultant *Consultant) *Employee {
	employee := &Employee{
		Consultant: *consultant,
		CompanyID:  that.ID,
		Skills:     []string{},
	}
	that.Employees = append(that.Employees, employee)

	return employee
}

// Fire removes the employee and returns it.
func (that *Company) Fire(employeeID string) (*Employee, bool) {
	for i, employee := range that.Employees {
		if employee.ID == employeeID {
			that.Employees = append(that.Employees[:i], that.Employees[i+1:]...)
			return employee, true
		}
	}

	return nil, false
}

// Consultant is a candidate nobody has hired yet.
type Consultant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Salary int    `json:"salary"`
}

func NewConsultant(name string, salary int) *Consultant {
	return &Consultant{
		ID:     uuid.NewString(),
		Name:   name,
		Salary: salary,
	}
}

// Employee is a consultant hired into a company.
type Employee struct {
	Consultant
	CompanyID int64    `json:"company_id"`
	Skills    []string `json:"skills"`
}

// Release turns the employee back into an unaffiliated consultant.
func (that *Employee) Release() *Consultant {
	consultant := that.Consultant
	return &consultant
}
