package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	Save(ctx context.Context, company *entity.Company) error
}

type dbCompany struct {
	client *redis.Client
}

func NewCompanyRepository(client *redis.Client) CompanyRepository {
	return &dbCompany{
		client: client,
	}
}

func (that *dbCompany) Save(ctx context.Context, company *entity.Company) error {
	if company.ID == 0 {
		id, err := nextID(ctx, that.client, "company")
		if err != nil {
			return err
		}
		company.ID = id

		for _, employee := range company.Employees {
			employee.CompanyID = id
		}
	}

	companyJSON, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("failed to marshal company: %w", err)
	}

	if err = that.client.Set(ctx, companyKey(company.ID), companyJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set company: %w", err)
	}

	return nil
}

func (that *dbCompany) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	var company entity.Company
	if err := getJSON(ctx, that.client, companyKey(id), &company, ErrCompanyNotFound); err != nil {
		return nil, err
	}

	return &company, nil
}
