package uow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"releasegate/internal/infrastructure/persistence/sqlite/model"
	"releasegate/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "uow.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func insertItem(ctx context.Context, t *testing.T, slug string) error {
	t.Helper()
	tx, ok := ports.TxFromContext(ctx).(*gorm.DB)
	if !ok {
		t.Fatalf("tx missing from context")
	}
	return tx.Create(&model.ChecklistItem{
		PublicID:  slug + "-id",
		Slug:      slug,
		Category:  "general",
		Title:     slug,
		Weight:    1,
		CreatedAt: "2026-01-01T00:00:00Z",
		UpdatedAt: "2026-01-01T00:00:00Z",
	}).Error
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := u.WithTx(ctx, func(ctx context.Context) error {
		if err := insertItem(ctx, t, "tests"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var count int64
	if err := db.Model(&model.ChecklistItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rows after rollback = %d, want 0", count)
	}
}

func TestWithTxNestedJoinsOuterTransaction(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)
	ctx := context.Background()

	boom := errors.New("outer failure")
	err := u.WithTx(ctx, func(outer context.Context) error {
		if err := u.WithTx(outer, func(inner context.Context) error {
			if ports.TxFromContext(inner) != ports.TxFromContext(outer) {
				t.Fatalf("nested WithTx opened a new transaction")
			}
			return insertItem(inner, t, "lint")
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want outer failure", err)
	}

	var count int64
	if err := db.Model(&model.ChecklistItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rows after outer rollback = %d, want 0", count)
	}
}
