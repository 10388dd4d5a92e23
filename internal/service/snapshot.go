package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type snapshotCompanyRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
}

// Snapshotter builds the overview observers see.
type Snapshotter struct {
	gameRepo    gameRepo
	companyRepo snapshotCompanyRepo
}

func NewSnapshotter(gameRepo gameRepo, companyRepo snapshotCompanyRepo) *Snapshotter {
	return &Snapshotter{
		gameRepo:    gameRepo,
		companyRepo: companyRepo,
	}
}

func (that *Snapshotter) Snapshot(ctx context.Context, gameID int64) (*entity.GameOverview, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	companies := make(map[int64]*entity.Company, len(game.Players))
	for _, player := range game.Players {
		if !player.HasCompany() {
			continue
		}

		company, err := that.companyRepo.GetByID(ctx, player.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get company of player %d: %w", player.ID, err)
		}
		companies[company.ID] = company
	}

	return entity.NewGameOverview(game, companies), nil
}
