package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error { return r.err }

// fakeTx records commit and rollback calls. Statements route by SQL text so
// the message insert can be made to fail independently of the lead insert.
type fakeTx struct {
	pgx.Tx
	messageErr error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "INSERT INTO messages") {
		return fakeRow{err: t.messageErr}
	}
	return fakeRow{}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

func newTxRepo(tx *fakeTx) *Repo {
	return &Repo{
		begin: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}
}

func createParams() CreateParams {
	return CreateParams{
		ServiceID:      uuid.New(),
		ProviderID:     uuid.New(),
		CustomerName:   "Casey",
		IsAnonymous:    true,
		ExpiresAt:      time.Now().Add(time.Hour),
		MessageContent: "Can you fix my sink?",
	}
}

func TestCreateWithMessageRollsBackOnMessageFailure(t *testing.T) {
	tx := &fakeTx{messageErr: errors.New("message insert failed")}
	repo := newTxRepo(tx)

	_, _, err := repo.CreateWithMessage(context.Background(), createParams())
	if err == nil {
		t.Fatal("expected the failing message insert to surface")
	}
	if tx.committed {
		t.Error("transaction committed despite the failed message insert")
	}
	if !tx.rolledBack {
		t.Error("transaction not rolled back; the lead row would survive without its message")
	}
}

func TestCreateWithMessageCommitsBothInserts(t *testing.T) {
	tx := &fakeTx{}
	repo := newTxRepo(tx)

	_, _, err := repo.CreateWithMessage(context.Background(), createParams())
	if err != nil {
		t.Fatalf("CreateWithMessage: %v", err)
	}
	if !tx.committed {
		t.Error("transaction should commit when both inserts succeed")
	}
	if tx.rolledBack {
		t.Error("successful creation must not roll back")
	}
}
