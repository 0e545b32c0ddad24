package foodRepository

import (
	"context"

	"CalorAI/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Scan:     &scanRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Scan interface {
		CreateScan(c context.Context, report entity.AnalysisReport) error
		GetScanByID(c context.Context, id string) (entity.AnalysisReport, error)
		GetScans(c context.Context, limit int) ([]entity.ScanSummary, error)
		ScanExists(c context.Context, id string) (bool, error)
		CreateFeedback(c context.Context, feedback entity.ScanFeedback) error
	}

	Commit   func() error
	Rollback func() error
}

type scanRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
