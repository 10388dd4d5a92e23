package service

import "github.com/rocketscienceinc/tycoon-backend/internal/entity"

const (
	minConsultantSalary   = 36_500
	consultantSalaryStep  = 3_650
	consultantSalarySteps = 16
)

var consultantNames = []string{
	"Ada Moreau",
	"Basile Fontaine",
	"Chloe Garnier",
	"Dorian Lefevre",
	"Elise Marchand",
	"Felix Rousseau",
	"Gaelle Perrin",
	"Hugo Bernard",
	"Ines Laurent",
	"Jules Mercier",
}

// ConsultantFactory creates fresh candidates for a game's pool.
type ConsultantFactory struct {
	random Random
}

func NewConsultantFactory(random Random) *ConsultantFactory {
	return &ConsultantFactory{
		random: random,
	}
}

func (that *ConsultantFactory) New() *entity.Consultant {
	name := consultantNames[that.random.IntN(len(consultantNames))]
	salary := minConsultantSalary + that.random.IntN(consultantSalarySteps)*consultantSalaryStep

	return entity.NewConsultant(name, salary)
}
