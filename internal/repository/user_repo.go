package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

type PendingSignupRepo interface {
	Upsert(ctx context.Context, p *models.PendingSignup) error
	GetByToken(ctx context.Context, token uuid.UUID) (*models.PendingSignup, error)
	Delete(ctx context.Context, token uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type pendingSignupRepo struct{ db *gorm.DB }

func NewPendingSignupRepo(db *gorm.DB) PendingSignupRepo { return &pendingSignupRepo{db: db} }

func (r *pendingSignupRepo) Upsert(ctx context.Context, p *models.PendingSignup) error {
	// A re-registration for the same email replaces the previous pending row.
	if err := r.db.WithContext(ctx).Where("email = ?", p.Email).Delete(&models.PendingSignup{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pendingSignupRepo) GetByToken(ctx context.Context, token uuid.UUID) (*models.PendingSignup, error) {
	var p models.PendingSignup
	err := r.db.WithContext(ctx).First(&p, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *pendingSignupRepo) Delete(ctx context.Context, token uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PendingSignup{}, "token = ?", token).Error
}

func (r *pendingSignupRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.PendingSignup{})
	return tx.RowsAffected, tx.Error
}
