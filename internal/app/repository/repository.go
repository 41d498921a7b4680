package repository

import (
	"errors"
	"fmt"

	"poctracker/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Ошибки уровня хранилища. Все остальное - generic ошибка БД,
// наружу уходит как 500 без деталей.
var (
	ErrNotFound           = errors.New("заявка не найдена")
	ErrDuplicateReference = errors.New("reference code уже существует")
	ErrInvalidTransition  = errors.New("недопустимый переход статуса")
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	// TranslateError нужен, чтобы нарушение уникальности reference code
	// приходило как gorm.ErrDuplicatedKey, а не как сырая ошибка драйвера
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Автоматическая миграция всех таблиц
	err = db.AutoMigrate(
		&ds.POCRequest{},
		&ds.AuditLogEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

// NewWithDB оборачивает уже открытое соединение. Миграцию не выполняет,
// используется там, где соединением управляет вызывающий (тесты).
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Фильтры листинга. Все поля независимо опциональны.
type Filters struct {
	Status   string
	Region   string
	DealSize string
	Search   string // подстрока по reference code / заказчику / имени / email / opportunity id
}

// Агрегаты по неудаленным заявкам
type Stats struct {
	Total        int64
	Pending      int64
	Approved     int64
	Active       int64
	Completed    int64
	Rejected     int64
	Expired      int64
	TotalSockets int64
}
