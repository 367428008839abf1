package deposit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const depositColumns = `id, user_id, amount::text, proof_ref, status, submitted_at, decided_at, approved_at, decided_by`

// PostgresStore persists deposits and transactions in PostgreSQL. The
// one-active-deposit invariant is additionally enforced by a partial
// unique index, so it holds even across independent processes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWithTransaction inserts the pending deposit and its transaction
// atomically.
func (s *PostgresStore) CreateWithTransaction(ctx context.Context, dep Deposit, txn Transaction) error {
	depositID, err := uuid.Parse(dep.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(dep.UserID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO deposits (id, user_id, amount, proof_ref, status, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		depositID, userID, dep.Amount.String(), dep.ProofRef, string(dep.Status), dep.SubmittedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrActiveDepositExists
		}
		return err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ByID fetches a deposit by identifier.
func (s *PostgresStore) ByID(ctx context.Context, id string) (Deposit, error) {
	depositID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1`, depositID)
	return scanDeposit(row)
}

// ActiveByUser returns the user's pending or approved deposit.
func (s *PostgresStore) ActiveByUser(ctx context.Context, userID string) (Deposit, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits
        WHERE user_id = $1 AND status IN ('pending', 'approved')`, uid)
	return scanDeposit(row)
}

// ApprovedByUser returns the user's approved deposit.
func (s *PostgresStore) ApprovedByUser(ctx context.Context, userID string) (Deposit, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits
        WHERE user_id = $1 AND status = 'approved'`, uid)
	return scanDeposit(row)
}

// ListPending returns pending deposits, oldest submission first.
func (s *PostgresStore) ListPending(ctx context.Context) ([]Deposit, error) {
	rows, err := s.db.Query(ctx, `SELECT `+depositColumns+` FROM deposits
        WHERE status = 'pending' ORDER BY submitted_at, id`)
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

// ListAll returns every deposit, newest submission first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Deposit, error) {
	rows, err := s.db.Query(ctx, `SELECT `+depositColumns+` FROM deposits
        ORDER BY submitted_at DESC, id`)
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

// Decide moves a pending deposit to approved or rejected with a single
// conditional update, so concurrent decisions have at-most-once effect.
func (s *PostgresStore) Decide(ctx context.Context, id string, to Status, by string, at time.Time) (Deposit, error) {
	if to != StatusApproved && to != StatusRejected {
		return Deposit{}, ErrDepositNotFound
	}
	depositID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	adminID, err := uuid.Parse(by)
	if err != nil {
		return Deposit{}, err
	}
	row := s.db.QueryRow(ctx, `UPDATE deposits
        SET status = $2,
            decided_at = $3,
            decided_by = $4,
            approved_at = CASE WHEN $2 = 'approved' THEN $3 ELSE approved_at END
        WHERE id = $1 AND status = 'pending'
        RETURNING `+depositColumns,
		depositID, string(to), at.UTC(), adminID)
	return scanDeposit(row)
}

// CloseWithTransaction closes an approved deposit and appends the
// withdrawal transaction atomically.
func (s *PostgresStore) CloseWithTransaction(ctx context.Context, id string, txn Transaction) (Deposit, error) {
	depositID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Deposit{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `UPDATE deposits SET status = 'closed'
        WHERE id = $1 AND status = 'approved'
        RETURNING `+depositColumns, depositID)
	dep, err := scanDeposit(row)
	if err != nil {
		return Deposit{}, err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return Deposit{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Deposit{}, err
	}
	return dep, nil
}

// RenewWithTransaction resets the accrual baseline of an approved deposit
// and appends the interest-withdrawal transaction atomically.
func (s *PostgresStore) RenewWithTransaction(ctx context.Context, id string, approvedAt time.Time, txn Transaction) (Deposit, error) {
	depositID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Deposit{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `UPDATE deposits SET approved_at = $2
        WHERE id = $1 AND status = 'approved'
        RETURNING `+depositColumns, depositID, approvedAt.UTC())
	dep, err := scanDeposit(row)
	if err != nil {
		return Deposit{}, err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return Deposit{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Deposit{}, err
	}
	return dep, nil
}

// Transactions returns the user's log entries ordered by timestamp
// ascending, insertion sequence on ties.
func (s *PostgresStore) Transactions(ctx context.Context, userID string) ([]Transaction, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT seq, id, user_id, deposit_id, type, amount::text, description, ts
        FROM transactions WHERE user_id = $1 ORDER BY ts, seq`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var (
			txn       Transaction
			id        uuid.UUID
			owner     uuid.UUID
			depID     uuid.UUID
			txnType   string
			amountStr string
			ts        time.Time
		)
		if err := rows.Scan(&txn.Seq, &id, &owner, &depID, &txnType, &amountStr, &txn.Description, &ts); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, err
		}
		txn.ID = id.String()
		txn.UserID = owner.String()
		txn.DepositID = depID.String()
		txn.Type = TransactionType(txnType)
		txn.Amount = amount
		txn.Timestamp = ts.UTC()
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn Transaction) error {
	txnID, err := uuid.Parse(txn.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(txn.UserID)
	if err != nil {
		return err
	}
	depositID, err := uuid.Parse(txn.DepositID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO transactions (id, user_id, deposit_id, type, amount, description, ts)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txnID, userID, depositID, string(txn.Type), txn.Amount.String(), txn.Description, txn.Timestamp.UTC())
	return err
}

func scanDeposit(row pgx.Row) (Deposit, error) {
	var (
		dep       Deposit
		id        uuid.UUID
		userID    uuid.UUID
		amountStr string
		status    string
		submitted time.Time
		decidedAt *time.Time
		approved  *time.Time
		decidedBy *uuid.UUID
	)
	if err := row.Scan(&id, &userID, &amountStr, &dep.ProofRef, &status, &submitted, &decidedAt, &approved, &decidedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deposit{}, ErrDepositNotFound
		}
		return Deposit{}, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return Deposit{}, err
	}
	dep.ID = id.String()
	dep.UserID = userID.String()
	dep.Amount = amount
	dep.Status = Status(status)
	dep.SubmittedAt = submitted.UTC()
	if decidedAt != nil {
		t := decidedAt.UTC()
		dep.DecidedAt = &t
	}
	if approved != nil {
		t := approved.UTC()
		dep.ApprovedAt = &t
	}
	if decidedBy != nil {
		dep.DecidedBy = decidedBy.String()
	}
	return dep, nil
}

func collectDeposits(rows pgx.Rows) ([]Deposit, error) {
	defer rows.Close()
	var deposits []Deposit
	for rows.Next() {
		dep, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, dep)
	}
	return deposits, rows.Err()
}
