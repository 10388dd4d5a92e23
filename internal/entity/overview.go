package entity

// GameOverview is the snapshot pushed to observers and returned by the API.
type GameOverview struct {
	ID                  int64                `json:"id"`
	Name                string               `json:"name"`
	Players             []PlayerOverview     `json:"players"`
	PlayersCount        int                  `json:"players_count"`
	MaximumPlayersCount int                  `json:"maximum_players_count"`
	RoundLimit          int                  `json:"round_limit"`
	CurrentRoundCount   int                  `json:"current_round_count"`
	Status              string               `json:"status"`
	Rounds              []RoundOverview      `json:"rounds"`
	Consultants         []ConsultantOverview `json:"consultants"`
}

type PlayerOverview struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Company *CompanyOverview `json:"company,omitempty"`
}

type CompanyOverview struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Treasury  int                  `json:"treasury"`
	Employees []ConsultantOverview `json:"employees"`
}

type RoundOverview struct {
	ID           int64  `json:"id"`
	Order        int    `json:"order"`
	Status       string `json:"status"`
	ActionsCount int    `json:"actions_count"`
}

type ConsultantOverview struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Salary int    `json:"salary"`
}

// JoinableGame is the lobby listing entry of a game.
type JoinableGame struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	PlayersCount        int    `json:"players_count"`
	MaximumPlayersCount int    `json:"maximum_players_count"`
}

// NewGameOverview builds the snapshot. companies is keyed by company ID; players without a
// loaded company are listed without one.
func NewGameOverview(game *Game, companies map[int64]*Company) *GameOverview {
	overview := &GameOverview{
		ID:                  game.ID,
		Name:                game.Name,
		Players:             make([]PlayerOverview, 0, len(game.Players)),
		PlayersCount:        len(game.Players),
		MaximumPlayersCount: MaxPlayers,
		RoundLimit:          game.RoundLimit,
		CurrentRoundCount:   len(game.Rounds),
		Status:              game.Status,
		Rounds:              make([]RoundOverview, 0, len(game.Rounds)),
		Consultants:         make([]ConsultantOverview, 0, len(game.Consultants)),
	}

	for _, player := range game.Players {
		playerOverview := PlayerOverview{ID: player.ID, Name: player.Name}
		if company, ok := companies[player.CompanyID]; ok && player.HasCompany() {
			playerOverview.Company = newCompanyOverview(company)
		}
		overview.Players = append(overview.Players, playerOverview)
	}

	for _, round := range game.Rounds {
		overview.Rounds = append(overview.Rounds, RoundOverview{
			ID:           round.ID,
			Order:        round.Order,
			Status:       round.Status,
			ActionsCount: len(round.Actions),
		})
	}

	for _, consultant := range game.Consultants {
		overview.Consultants = append(overview.Consultants, newConsultantOverview(consultant))
	}

	return overview
}

func (that *Game) ToJoinable() JoinableGame {
	return JoinableGame{
		ID:                  that.ID,
		Name:                that.Name,
		PlayersCount:        len(that.Players),
		MaximumPlayersCount: MaxPlayers,
	}
}

func newCompanyOverview(company *Company) *CompanyOverview {
	overview := &CompanyOverview{
		ID:        company.ID,
		Name:      company.Name,
		Treasury:  company.Treasury,
		Employees: make([]ConsultantOverview, 0, len(company.Employees)),
	}

	for _, employee := range company.Employees {
		overview.Employees = append(overview.Employees, newConsultantOverview(&employee.Consultant))
	}

	return overview
}

func newConsultantOverview(consultant *Consultant) ConsultantOverview {
	return ConsultantOverview{
		ID:     consultant.ID,
		Name:   consultant.Name,
		Salary: consultant.Salary,
	}
}
