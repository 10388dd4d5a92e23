package entity

type Player struct {
	ID        int64  `json:"id"`
	GameID    int64  `json:"game_id"`
	Name      string `json:"name"`
	CompanyID int64  `json:"company_id,omitempty"`
}

func NewPlayer(gameID int64, name string) *Player {
	return &Player{
		GameID: gameID,
		Name:   name,
	}
}

func (that *Player) HasCompany() bool {
	return that.CompanyID != 0
}
