package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"confbook/infras/otel"
	"confbook/infras/postgres"
	"confbook/internal/domains/conference/model"
	gDto "confbook/shared/dto"
	gRepo "confbook/shared/repository"
	"context"
)

type Conference interface {
	Insert(ctx context.Context, model model.Conference) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Conference, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Conference, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Conference]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Conference {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Conference](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
