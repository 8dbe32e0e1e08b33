package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// BaseRepository holds the gorm plumbing shared by the portal repos.
type BaseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// Find returns []*T without a type conversion at the call site.
func (r *BaseRepository[T]) Find(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]*T, error) {
	var results []*T
	err := r.db.WithContext(ctx).Scopes(scopes...).Find(&results).Error
	return results, err
}

// First returns a single object, nil when no row matches.
func (r *BaseRepository[T]) First(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	var result T
	err := r.db.WithContext(ctx).Scopes(scopes...).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	var model T
	err := r.db.WithContext(ctx).Model(&model).Scopes(scopes...).Count(&total).Error
	return total, err
}

// WithTransaction runs fn against a repository bound to one transaction.
func (r *BaseRepository[T]) WithTransaction(fn func(txRepo *BaseRepository[T]) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&BaseRepository[T]{db: tx})
	})
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *BaseRepository[T]) GetByID(ctx context.Context, id interface{}, preloads ...string) (*T, error) {
	var result T
	db := r.db.WithContext(ctx)
	for _, p := range preloads {
		db = db.Preload(p)
	}
	if err := db.Where("id = ?", id).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *BaseRepository[T]) Delete(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) error {
	var model T
	return r.db.WithContext(ctx).Scopes(scopes...).Delete(&model).Error
}
