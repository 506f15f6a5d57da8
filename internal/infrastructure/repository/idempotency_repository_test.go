package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
)

const reserveInsert = `INSERT INTO "idempotency_keys" .* ON CONFLICT \("key","user_id"\) DO UPDATE SET .* WHERE idempotency_keys\.expires_at <= \$\d+ RETURNING "id"`

func TestReserveOnlyTakesOverExpiredKeys(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want bool
	}{
		{"free key", sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()), true},
		{"live key", sqlmock.NewRows([]string{"id"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewIdempotencyRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(reserveInsert).WillReturnRows(tt.rows)
			mock.ExpectCommit()

			reserved, err := repo.Reserve(context.Background(), &entity.IdempotencyKey{
				Key:         "checkout-1",
				UserID:      uuid.New(),
				Endpoint:    "POST /api/v1/sales",
				RequestHash: "abc",
				ExpiresAt:   time.Now().Add(time.Minute),
			})
			if err != nil {
				t.Fatalf("reserve: %v", err)
			}
			if reserved != tt.want {
				t.Errorf("reserved: got %v, want %v", reserved, tt.want)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestReleaseOnlyDropsInFlightRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdempotencyRepository(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "idempotency_keys" WHERE key = \$1 AND user_id = \$2 AND response_code = 0`).
		WithArgs("checkout-1", userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Release(context.Background(), "checkout-1", userID); err != nil {
		t.Fatalf("release: %v", err)
	}
	expectationsMet(t, mock)
}
