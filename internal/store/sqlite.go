// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/models"
	"fxjournal/internal/normalize"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_name TEXT NOT NULL,
		account_plan TEXT NOT NULL DEFAULT 'Normal',
		account_type TEXT NOT NULL DEFAULT 'Standard',
		capital REAL NOT NULL DEFAULT 0,
		drawdown REAL,
		deposit_enabled INTEGER DEFAULT 1,
		withdrawal_enabled INTEGER DEFAULT 1,
		target REAL,
		duration INTEGER,
		weekly_target INTEGER DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Trades, scoped by (user_id, account_id)
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		pair TEXT NOT NULL,
		type TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		trade_time TEXT,
		entry_price REAL NOT NULL,
		sl REAL NOT NULL,
		tp REAL NOT NULL,
		risk REAL NOT NULL,
		lot_size REAL NOT NULL,
		value_per_pip REAL NOT NULL,
		status TEXT NOT NULL,
		close_reason TEXT,
		ratio REAL NOT NULL DEFAULT 0,
		beforeimage TEXT,
		afterimage TEXT,
		exit_date TEXT,
		exit_price REAL,
		points INTEGER NOT NULL DEFAULT 0,
		pnl_currency REAL NOT NULL DEFAULT 0,
		pnl_percent REAL NOT NULL DEFAULT 0,
		pnl_manual INTEGER NOT NULL DEFAULT 0,
		session TEXT,
		strategy TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_scope ON trades(user_id, account_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_trades_entry ON trades(account_id, entry_date);

	-- Stored money movements (deposits/withdrawals)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		amount REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tx_scope ON transactions(user_id, account_id, date);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// storeErr wraps a database error with a retryability kind. SQLite reports
// contention as "database is locked" / "database is busy".
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	kind := apperrors.StoreFatal
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") {
		kind = apperrors.StoreTransient
	} else if strings.Contains(msg, "UNIQUE constraint") {
		kind = apperrors.StoreConflict
	}
	return apperrors.NewStoreError(kind, op, err)
}

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, acct *models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts
		(id, user_id, account_name, account_plan, account_type, capital, drawdown,
		 deposit_enabled, withdrawal_enabled, target, duration, weekly_target,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.UserID, acct.Name, string(acct.Plan), string(acct.Tier),
		acct.Capital, acct.Drawdown,
		boolToInt(acct.DepositEnabled), boolToInt(acct.WithdrawEnabled),
		acct.TargetEquity, acct.DurationWeeks, boolToInt(acct.WeeklyTargetEnabled),
		normalize.FormatTimestamp(acct.CreatedAt), normalize.FormatTimestamp(acct.UpdatedAt),
	)
	return storeErr("create account", err)
}

// GetAccount returns a single account scoped by owner.
func (s *SQLiteStore) GetAccount(ctx context.Context, id, userID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_name, account_plan, account_type, capital,
		       COALESCE(drawdown, 0), deposit_enabled, withdrawal_enabled,
		       COALESCE(target, 0), COALESCE(duration, 0), weekly_target,
		       created_at, updated_at
		FROM accounts
		WHERE id = ? AND user_id = ?`, id, userID)

	acct, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, storeErr("get account", err)
	}
	return acct, nil
}

// ListAccounts returns all accounts of a user, oldest first.
func (s *SQLiteStore) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_name, account_plan, account_type, capital,
		       COALESCE(drawdown, 0), deposit_enabled, withdrawal_enabled,
		       COALESCE(target, 0), COALESCE(duration, 0), weekly_target,
		       created_at, updated_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr("list accounts", err)
		}
		out = append(out, *acct)
	}
	return out, storeErr("list accounts", rows.Err())
}

// UpdateAccount applies a partial metadata update. updated_at is stamped
// here; all other columns only change when the patch names them.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, id, userID string, patch models.AccountPatch) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{normalize.FormatTimestamp(time.Now())}

	if patch.Name != nil {
		sets = append(sets, "account_name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Capital != nil {
		sets = append(sets, "capital = ?")
		args = append(args, *patch.Capital)
	}
	if patch.Drawdown != nil {
		sets = append(sets, "drawdown = ?")
		args = append(args, *patch.Drawdown)
	}
	if patch.DepositEnabled != nil {
		sets = append(sets, "deposit_enabled = ?")
		args = append(args, boolToInt(*patch.DepositEnabled))
	}
	if patch.WithdrawEnabled != nil {
		sets = append(sets, "withdrawal_enabled = ?")
		args = append(args, boolToInt(*patch.WithdrawEnabled))
	}
	if patch.TargetEquity != nil {
		sets = append(sets, "target = ?")
		args = append(args, *patch.TargetEquity)
	}
	if patch.DurationWeeks != nil {
		sets = append(sets, "duration = ?")
		args = append(args, *patch.DurationWeeks)
	}
	if patch.WeeklyTargetEnabled != nil {
		sets = append(sets, "weekly_target = ?")
		args = append(args, boolToInt(*patch.WeeklyTargetEnabled))
	}

	args = append(args, id, userID)
	query := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr("update account", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

const tradeColumns = `id, user_id, account_id, pair, type, entry_date, COALESCE(trade_time, ''),
	entry_price, sl, tp, risk, lot_size, value_per_pip, status, COALESCE(close_reason, ''),
	ratio, COALESCE(beforeimage, ''), COALESCE(afterimage, ''), COALESCE(exit_date, ''),
	COALESCE(exit_price, 0), points, pnl_currency, pnl_percent, pnl_manual,
	COALESCE(session, ''), COALESCE(strategy, ''), COALESCE(note, ''), created_at, updated_at`

// LoadJournal reads every trade in the scope ordered by creation and splits
// the result into open and history by canonicalized status.
func (s *SQLiteStore) LoadJournal(ctx context.Context, scope Scope) (*Journal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE user_id = ? AND account_id = ?
		ORDER BY created_at ASC, id ASC`, scope.UserID, scope.AccountID)
	if err != nil {
		return nil, storeErr("load journal", err)
	}
	defer rows.Close()

	journal := &Journal{}
	for rows.Next() {
		r, err := scanTradeRow(rows)
		if err != nil {
			return nil, storeErr("load journal", err)
		}
		trade := normalize.FromRow(r)
		if trade.Status == models.StatusOpen {
			journal.Open = append(journal.Open, trade)
		} else {
			journal.History = append(journal.History, trade)
		}
	}
	return journal, storeErr("load journal", rows.Err())
}

const upsertTradeSQL = `
	INSERT INTO trades
	(id, user_id, account_id, pair, type, entry_date, trade_time, entry_price,
	 sl, tp, risk, lot_size, value_per_pip, status, close_reason, ratio,
	 beforeimage, afterimage, exit_date, exit_price, points, pnl_currency,
	 pnl_percent, pnl_manual, session, strategy, note, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		pair = excluded.pair,
		type = excluded.type,
		entry_date = excluded.entry_date,
		trade_time = excluded.trade_time,
		entry_price = excluded.entry_price,
		sl = excluded.sl,
		tp = excluded.tp,
		risk = excluded.risk,
		lot_size = excluded.lot_size,
		value_per_pip = excluded.value_per_pip,
		status = excluded.status,
		close_reason = excluded.close_reason,
		ratio = excluded.ratio,
		beforeimage = excluded.beforeimage,
		afterimage = excluded.afterimage,
		exit_date = excluded.exit_date,
		exit_price = excluded.exit_price,
		points = excluded.points,
		pnl_currency = excluded.pnl_currency,
		pnl_percent = excluded.pnl_percent,
		pnl_manual = excluded.pnl_manual,
		session = excluded.session,
		strategy = excluded.strategy,
		note = excluded.note,
		updated_at = excluded.updated_at
	WHERE excluded.updated_at >= trades.updated_at`

// UpsertTrades writes the rows idempotently by id. Rows already present
// but absent from the payload are left alone. Last writer wins on
// updated_at.
func (s *SQLiteStore) UpsertTrades(ctx context.Context, rows []normalize.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("upsert trades", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertTradeSQL)
	if err != nil {
		return storeErr("upsert trades", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, upsertArgs(r)...); err != nil {
			return storeErr("upsert trades", err)
		}
	}
	return storeErr("upsert trades", tx.Commit())
}

// UpdateTrade writes a single row, the hot path for closes and edits.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, row normalize.Row) error {
	_, err := s.db.ExecContext(ctx, upsertTradeSQL, upsertArgs(row)...)
	return storeErr("update trade", err)
}

// DeleteTrade hard-deletes a trade scoped by owner.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storeErr("delete trade", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// ResetJournal deletes every trade and transaction in the scope.
func (s *SQLiteStore) ResetJournal(ctx context.Context, scope Scope) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("reset journal", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM trades WHERE user_id = ? AND account_id = ?`,
		scope.UserID, scope.AccountID); err != nil {
		return storeErr("reset journal", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND account_id = ?`,
		scope.UserID, scope.AccountID); err != nil {
		return storeErr("reset journal", err)
	}
	return storeErr("reset journal", tx.Commit())
}

// AddTransaction records a deposit or withdrawal.
func (s *SQLiteStore) AddTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, date, type, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, normalize.FormatTimestamp(t.Date), string(t.Type), t.Amount,
	)
	return storeErr("add transaction", err)
}

// ListTransactions returns stored money movements in the scope, oldest
// first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, scope Scope) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, date, type, amount
		FROM transactions
		WHERE user_id = ? AND account_id = ?
		ORDER BY date ASC, id ASC`, scope.UserID, scope.AccountID)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var date, txType string
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &date, &txType, &t.Amount); err != nil {
			return nil, storeErr("list transactions", err)
		}
		t.Date = normalize.ParseTimestamp(date)
		t.Type = models.TransactionType(txType)
		out = append(out, t)
	}
	return out, storeErr("list transactions", rows.Err())
}

func upsertArgs(r normalize.Row) []interface{} {
	return []interface{}{
		r.ID, r.UserID, r.AccountID, r.Pair, r.Type, r.EntryDate, r.TradeTime,
		r.EntryPrice, r.SL, r.TP, r.Risk, r.LotSize, r.ValuePerPip, r.Status,
		r.CloseReason, r.Ratio, r.BeforeImage, r.AfterImage, r.ExitDate,
		r.ExitPrice, r.Points, r.PnLCurrency, r.PnLPercent, boolToInt(r.PnLManual),
		r.Session, r.Strategy, r.Note, r.CreatedAt, r.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTradeRow(sc rowScanner) (normalize.Row, error) {
	var r normalize.Row
	var manual int
	err := sc.Scan(
		&r.ID, &r.UserID, &r.AccountID, &r.Pair, &r.Type, &r.EntryDate, &r.TradeTime,
		&r.EntryPrice, &r.SL, &r.TP, &r.Risk, &r.LotSize, &r.ValuePerPip, &r.Status,
		&r.CloseReason, &r.Ratio, &r.BeforeImage, &r.AfterImage, &r.ExitDate,
		&r.ExitPrice, &r.Points, &r.PnLCurrency, &r.PnLPercent, &manual,
		&r.Session, &r.Strategy, &r.Note, &r.CreatedAt, &r.UpdatedAt,
	)
	r.PnLManual = manual != 0
	return r, err
}

func scanAccount(sc rowScanner) (*models.Account, error) {
	var a models.Account
	var plan, tier, created, updated string
	var deposit, withdraw, weekly int
	err := sc.Scan(
		&a.ID, &a.UserID, &a.Name, &plan, &tier, &a.Capital, &a.Drawdown,
		&deposit, &withdraw, &a.TargetEquity, &a.DurationWeeks, &weekly,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	a.Plan = models.AccountPlan(plan)
	a.Tier = models.AccountTier(tier)
	a.DepositEnabled = deposit != 0
	a.WithdrawEnabled = withdraw != 0
	a.WeeklyTargetEnabled = weekly != 0
	a.CreatedAt = normalize.ParseTimestamp(created)
	a.UpdatedAt = normalize.ParseTimestamp(updated)
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
