package finance

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

const DaysPerYear = 365

// DailySalary is the share of a yearly salary paid each round, truncated toward zero.
func DailySalary(salary int) int {
	return salary / DaysPerYear
}

type Deduction struct {
	EmployeeID string
	Name       string
	Amount     int
}

// Report describes one payroll run of a company.
type Report struct {
	CompanyID  int64
	Before     int
	After      int
	Paid       []Deduction
	Shortfalls []Deduction
}

func (that Report) TotalPaid() int {
	total := 0
	for _, deduction := range that.Paid {
		total += deduction.Amount
	}

	return total
}

// Err returns one ErrInsufficientFunds per skipped employee, or nil.
func (that Report) Err() error {
	if len(that.Shortfalls) == 0 {
		return nil
	}

	shortfall := that.Shortfalls[0]

	return fmt.Errorf("%w: company %d could not pay %d employee(s), first %s (%d)",
		apperror.ErrInsufficientFunds, that.CompanyID, len(that.Shortfalls), shortfall.Name, shortfall.Amount)
}

type Payroll struct {
	logger *slog.Logger
}

func NewPayroll(logger *slog.Logger) *Payroll {
	return &Payroll{
		logger: logger.With("component", "payroll"),
	}
}

// DeductSalaries pays every employee's daily salary from the treasury, in employee order.
// An employee the treasury cannot cover is skipped and reported, the run continues.
func (that *Payroll) DeductSalaries(company *entity.Company) Report {
	log := that.logger.With("method", "DeductSalaries", "companyID", company.ID)

	report := Report{
		CompanyID: company.ID,
		Before:    company.Treasury,
	}

	for _, employee := range company.Employees {
		deduction := Deduction{
			EmployeeID: employee.ID,
			Name:       employee.Name,
			Amount:     DailySalary(employee.Salary),
		}

		if company.Treasury < deduction.Amount {
			report.Shortfalls = append(report.Shortfalls, deduction)
			log.Warn("not enough funds to pay employee",
				"employee", employee.Name, "salary", deduction.Amount, "treasury", company.Treasury,
				"error", apperror.ErrInsufficientFunds)
			continue
		}

		company.Treasury -= deduction.Amount
		report.Paid = append(report.Paid, deduction)
		log.Debug("salary deducted", "employee", employee.Name, "amount", deduction.Amount, "treasury", company.Treasury)
	}

	report.After = company.Treasury

	return report
}
