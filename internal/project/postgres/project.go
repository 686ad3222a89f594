package postgres

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	projectDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/project"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.RepositoryAPI {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *projectDatamodel.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context, status *string) ([]*projectDatamodel.Project, error) {
	q := r.db.WithContext(ctx)
	if status != nil {
		q = q.Where("project_status = ?", *status)
	}
	var projects []*projectDatamodel.Project
	if err := q.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"project_status": status,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update project %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrProjectNotFound
	}
	return nil
}
