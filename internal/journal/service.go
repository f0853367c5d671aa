package journal

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/logging"
	"fxjournal/internal/models"
	"fxjournal/internal/normalize"
	"fxjournal/internal/policy"
	"fxjournal/internal/store"
	"fxjournal/pkg/id"
	"fxjournal/pkg/utils"
)

// Service is the stateful front of the journal: it owns the in-memory open
// and history lists of the active account and writes through to the store.
//
// Mutations update memory first and persist after; a store failure leaves
// the row in place flagged pending and surfaces the error, so the caller
// can prompt a retry without losing the entry. Reconciliation happens on
// the next successful load.
type Service struct {
	store  store.DataStore
	engine *Engine
	logger zerolog.Logger
	retry  utils.RetryConfig

	mu      sync.Mutex
	scope   store.Scope
	account *models.Account
	open    []models.Trade
	history []models.Trade

	cancelLoad context.CancelFunc
}

// NewService creates a journal service over the given store.
func NewService(st store.DataStore, pol policy.Policy, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		engine: NewEngine(pol),
		logger: logger.With().Str("component", "journal").Logger(),
		retry:  utils.DefaultRetryConfig(),
	}
}

// Engine exposes the lifecycle engine, for sizing previews.
func (s *Service) Engine() *Engine { return s.engine }

// Scope returns the active (user, account) scope.
func (s *Service) Scope() store.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Account returns a copy of the active account.
func (s *Service) Account() (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, apperrors.ErrNoActiveAccount
	}
	acct := *s.account
	return &acct, nil
}

// Snapshot returns copies of the open and history lists.
func (s *Service) Snapshot() (open, history []models.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open = append([]models.Trade(nil), s.open...)
	history = append([]models.Trade(nil), s.history...)
	return open, history
}

// SwitchAccount makes (userID, accountID) the active scope and loads its
// journal. A switch cancels any in-flight load for the previous account;
// results arriving for a stale scope are dropped.
func (s *Service) SwitchAccount(ctx context.Context, userID, accountID string) error {
	acct, err := s.store.GetAccount(ctx, accountID, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	scope := store.Scope{UserID: userID, AccountID: accountID}
	s.scope = scope
	s.account = acct
	s.open, s.history = nil, nil
	s.mu.Unlock()

	journal, err := s.store.LoadJournal(loadCtx, scope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != scope {
		// Another switch won the race; discard this load.
		return apperrors.ErrStaleLoad
	}
	s.open = journal.Open
	s.history = journal.History
	accountLogger := logging.WithAccount(s.logger, accountID)
	accountLogger.Debug().
		Int("open", len(s.open)).
		Int("history", len(s.history)).
		Msg("journal loaded")
	return nil
}

// AddTrade admits a draft against the active account and persists it.
func (s *Service) AddTrade(ctx context.Context, draft models.TradeDraft) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, apperrors.ErrNoActiveAccount
	}

	all := append(append([]models.Trade(nil), s.open...), s.history...)
	trade, err := s.engine.Admit(draft, s.account, all)
	if err != nil {
		return nil, err
	}

	s.open = append(s.open, *trade)
	if err := s.persistTrade(ctx, trade); err != nil {
		s.markPending(trade.ID)
		return trade, err
	}
	return trade, nil
}

// CloseTrade closes an open trade and migrates it to history.
func (s *Service) CloseTrade(ctx context.Context, tradeID string, cl models.TradeClose) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, apperrors.ErrNoActiveAccount
	}

	idx := indexOf(s.open, tradeID)
	if idx < 0 {
		if indexOf(s.history, tradeID) >= 0 {
			t := s.history[indexOf(s.history, tradeID)]
			return nil, apperrors.NewStateError(tradeID, string(t.Status), "close", apperrors.ErrTradeNotOpen)
		}
		return nil, apperrors.ErrTradeNotFound
	}

	closed, err := s.engine.Close(&s.open[idx], cl, s.account)
	if err != nil {
		return nil, err
	}

	s.open = append(s.open[:idx], s.open[idx+1:]...)
	s.history = append(s.history, *closed)
	if err := s.persistTrade(ctx, closed); err != nil {
		s.markPending(closed.ID)
		return closed, err
	}
	return closed, nil
}

// EditTrade applies a partial update to an open or closed trade.
func (s *Service) EditTrade(ctx context.Context, tradeID string, patch models.TradePatch) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, apperrors.ErrNoActiveAccount
	}

	list, idx := s.locate(tradeID)
	if idx < 0 {
		return nil, apperrors.ErrTradeNotFound
	}

	all := append(append([]models.Trade(nil), s.open...), s.history...)
	edited, err := s.engine.Edit(&(*list)[idx], patch, s.account, all)
	if err != nil {
		return nil, err
	}

	(*list)[idx] = *edited
	if err := s.persistTrade(ctx, edited); err != nil {
		s.markPending(edited.ID)
		return edited, err
	}
	return edited, nil
}

// DeleteTrade removes a trade from memory and the store and returns the new
// open/history snapshot.
func (s *Service) DeleteTrade(ctx context.Context, tradeID string) (open, history []models.Trade, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, idx := s.locate(tradeID)
	if idx < 0 {
		return nil, nil, apperrors.ErrTradeNotFound
	}
	*list = append((*list)[:idx], (*list)[idx+1:]...)

	err = s.store.DeleteTrade(ctx, tradeID, s.scope.UserID)
	open = append([]models.Trade(nil), s.open...)
	history = append([]models.Trade(nil), s.history...)
	return open, history, err
}

// ReplaceAll swaps in imported open and history lists wholesale and upserts
// everything.
func (s *Service) ReplaceAll(ctx context.Context, open, history []models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return apperrors.ErrNoActiveAccount
	}

	now := time.Now().UTC()
	rows := make([]normalize.Row, 0, len(open)+len(history))
	for i := range open {
		s.adopt(&open[i], now)
		open[i].Status = models.StatusOpen
		rows = append(rows, normalize.ToRow(&open[i]))
	}
	for i := range history {
		s.adopt(&history[i], now)
		rows = append(rows, normalize.ToRow(&history[i]))
	}

	s.open = open
	s.history = history
	return s.upsertAll(ctx, rows)
}

// adopt rebinds an imported trade to the active scope and fills the fields
// a foreign export may lack.
func (s *Service) adopt(t *models.Trade, now time.Time) {
	if t.ID == "" {
		t.ID = id.New()
	}
	t.UserID = s.scope.UserID
	t.AccountID = s.scope.AccountID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Deposit adds funds to the active account and records the transaction.
func (s *Service) Deposit(ctx context.Context, amount float64) error {
	return s.adjustCapital(ctx, amount, models.TxDeposit)
}

// Withdraw removes funds from the active account and records the
// transaction.
func (s *Service) Withdraw(ctx context.Context, amount float64) error {
	return s.adjustCapital(ctx, -amount, models.TxWithdrawal)
}

func (s *Service) adjustCapital(ctx context.Context, delta float64, txType models.TransactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return apperrors.ErrNoActiveAccount
	}
	if txType == models.TxDeposit && !s.account.DepositEnabled {
		return apperrors.ErrDepositDisabled
	}
	if txType == models.TxWithdrawal && !s.account.WithdrawEnabled {
		return apperrors.ErrWithdrawDisabled
	}
	if delta == 0 {
		return apperrors.NewValidationError("amount", delta, "must be non-zero")
	}
	capital := s.account.Capital + delta
	if capital < 0 {
		return apperrors.NewValidationError("amount", -delta, "exceeds account capital")
	}

	s.account.Capital = capital
	if err := s.store.UpdateAccount(ctx, s.account.ID, s.scope.UserID,
		models.AccountPatch{Capital: &capital}); err != nil {
		return err
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	return s.store.AddTransaction(ctx, &models.Transaction{
		ID:        id.New(),
		UserID:    s.scope.UserID,
		AccountID: s.scope.AccountID,
		Date:      time.Now().UTC(),
		Type:      txType,
		Amount:    amount,
	})
}

// Reset clears both trade lists and zeroes the account capital.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return apperrors.ErrNoActiveAccount
	}

	s.open, s.history = nil, nil
	if err := s.store.ResetJournal(ctx, s.scope); err != nil {
		return err
	}
	zero := 0.0
	s.account.Capital = 0
	return s.store.UpdateAccount(ctx, s.account.ID, s.scope.UserID, models.AccountPatch{Capital: &zero})
}

// Transactions returns the stored money movements of the active scope.
func (s *Service) Transactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()
	return s.store.ListTransactions(ctx, scope)
}

// persistTrade writes one row through the store, retrying transient
// failures. Callers hold the lock.
func (s *Service) persistTrade(ctx context.Context, t *models.Trade) error {
	row := normalize.ToRow(t)
	err := utils.Retry(ctx, s.retry, func() error {
		err := s.store.UpdateTrade(ctx, row)
		var serr *apperrors.StoreError
		if err != nil && !(apperrors.As(err, &serr) && serr.Retryable()) {
			return utils.Permanent(err)
		}
		return err
	})
	if err != nil {
		tradeLogger := logging.WithTrade(s.logger, t.ID)
		tradeLogger.Warn().Err(err).Msg("trade write not durable")
	}
	return err
}

func (s *Service) upsertAll(ctx context.Context, rows []normalize.Row) error {
	return utils.Retry(ctx, s.retry, func() error {
		return s.store.UpsertTrades(ctx, rows)
	})
}

// markPending flags a row whose write failed; it stays visible and is never
// silently reverted.
func (s *Service) markPending(tradeID string) {
	if list, idx := s.locate(tradeID); idx >= 0 {
		(*list)[idx].Pending = true
	}
}

func (s *Service) locate(tradeID string) (*[]models.Trade, int) {
	if idx := indexOf(s.open, tradeID); idx >= 0 {
		return &s.open, idx
	}
	if idx := indexOf(s.history, tradeID); idx >= 0 {
		return &s.history, idx
	}
	return nil, -1
}

func indexOf(list []models.Trade, tradeID string) int {
	for i := range list {
		if list[i].ID == tradeID {
			return i
		}
	}
	return -1
}
