package repository

import "gorm.io/gorm"

type Repository struct {
	DB       *gorm.DB
	Users    UserRepo
	Signups  PendingSignupRepo
	Products ProductRepo
	Variants VariantRepo
	Carts    CartRepo
	Orders   OrderRepo
	Returns  ReturnRepo
	Specials SpecialOrderRepo
	Webhooks WebhookEventRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:       db,
		Users:    NewUserRepo(db),
		Signups:  NewPendingSignupRepo(db),
		Products: NewProductRepo(db),
		Variants: NewVariantRepo(db),
		Carts:    NewCartRepo(db),
		Orders:   NewOrderRepo(db),
		Returns:  NewReturnRepo(db),
		Specials: NewSpecialOrderRepo(db),
		Webhooks: NewWebhookEventRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// TxManager runs fn with every repo rebound to one database transaction.
type TxManager interface {
	WithTx(fn func(tx *Repository) error) error
}

type gormTxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) WithTx(fn func(tx *Repository) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
