package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/query"
)

const notebookResource = "Notebook"

var notebookColumns = []string{
	"asset_tag", "brand_model", "serial_number", "custodian", "status", "notes", "updated_date",
}

func notebookUniques(n *model.Notebook) []uniqueField {
	return []uniqueField{
		{column: "asset_tag", value: n.AssetTag},
		{column: "serial_number", value: n.SerialNumber},
	}
}

func (s *gormStore) ListNotebooks(ctx context.Context, q query.Query) ([]model.Notebook, int64, error) {
	return list[model.Notebook](ctx, s.db, NotebookFields, q)
}

func (s *gormStore) GetNotebook(ctx context.Context, id int64) (*model.Notebook, error) {
	var n model.Notebook
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err, notebookResource, id)
	}
	return &n, nil
}

// CreateNotebook assigns the id and both timestamps.
func (s *gormStore) CreateNotebook(ctx context.Context, n *model.Notebook) error {
	n.ID = 0
	n.OnCreate(s.timestamp())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &model.Notebook{}, notebookResource, 0, notebookUniques(n)...); err != nil {
			return err
		}
		if err := tx.Create(n).Error; err != nil {
			return conflictFrom(fmt.Errorf("create notebook: %w", err), notebookResource, notebookUniques(n)...)
		}
		return nil
	})
}

// UpdateNotebook writes every writable column of n and refreshes updated_date.
func (s *gormStore) UpdateNotebook(ctx context.Context, n *model.Notebook) error {
	n.OnUpdate(s.timestamp())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &model.Notebook{}, notebookResource, n.ID, notebookUniques(n)...); err != nil {
			return err
		}
		res := tx.Model(n).Select(notebookColumns).Updates(n)
		if res.Error != nil {
			return conflictFrom(fmt.Errorf("update notebook %d: %w", n.ID, res.Error), notebookResource, notebookUniques(n)...)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, notebookResource, n.ID)
		}
		return nil
	})
}

// DeleteNotebook removes the notebook and detaches it from every loan.
func (s *gormStore) DeleteNotebook(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notebook_id = ?", id).Delete(&model.LoanNotebook{}).Error; err != nil {
			return fmt.Errorf("detach notebook %d: %w", id, err)
		}
		res := tx.Delete(&model.Notebook{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete notebook %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, notebookResource, id)
		}
		return nil
	})
}

func (s *gormStore) ListNotebooksByStatus(ctx context.Context, status model.NotebookStatus) ([]model.Notebook, error) {
	var ns []model.Notebook
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("asset_tag ASC").Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("list notebooks by status: %w", err)
	}
	return ns, nil
}

// NotebookAssetTags maps each existing id to its asset tag.
func (s *gormStore) NotebookAssetTags(ctx context.Context, ids []int64) (map[int64]string, error) {
	tags := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	var ns []model.Notebook
	if err := s.db.WithContext(ctx).Select("id", "asset_tag").Where("id IN ?", ids).Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("load asset tags: %w", err)
	}
	for _, n := range ns {
		tags[n.ID] = n.AssetTag
	}
	return tags, nil
}

// NotebookStatusCounts returns a count for every status, zero included.
func (s *gormStore) NotebookStatusCounts(ctx context.Context) (map[model.NotebookStatus]int64, error) {
	var rows []struct {
		Status model.NotebookStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Notebook{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count notebooks by status: %w", err)
	}

	counts := make(map[model.NotebookStatus]int64, len(model.NotebookStatuses))
	for _, st := range model.NotebookStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
