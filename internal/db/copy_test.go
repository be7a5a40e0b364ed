package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromSchema_EmptyRows(t *testing.T) {
	n, err := CopyFromSchema(context.TODO(), nil, "dwh", "fact_amp_purchase_data", []string{"amp_customer_id"}, [][]any{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSchema_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"dwh", "fact_amp_purchase_data"}, []string{"amp_customer_id", "sku"}).WillReturnResult(3)

	rows := [][]any{{int64(100), "A"}, {int64(200), "B"}, {int64(300), "C"}}
	n, err := CopyFromSchema(context.Background(), mock, "dwh", "fact_amp_purchase_data", []string{"amp_customer_id", "sku"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"dwh", "account_history"}, []string{"account_uuid"}).WillReturnError(fmt.Errorf("permission denied"))

	rows := [][]any{{"u1"}}
	_, err = CopyFromSchema(context.Background(), mock, "dwh", "account_history", []string{"account_uuid"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO dwh.account_history")
	assert.NoError(t, mock.ExpectationsWereMet())
}
