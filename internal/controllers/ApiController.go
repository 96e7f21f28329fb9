package controllers

import (
	"errors"
	"net/http"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/staking"
	"rld/internal/structures"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger   providers.Logger
	conf     *structures.Config
	store    *models.Store
	ledger   services.LedgerServiceInterface
	tiers    services.TierServiceInterface
	exchange services.ExchangeServiceInterface
	recorder *staking.SnapshotRecorder
	rewards  *staking.RewardCalculator
	limiter  providers.RateLimiterInterface
	metrics  providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, conf *structures.Config, store *models.Store, ledger services.LedgerServiceInterface, tiers services.TierServiceInterface, exchange services.ExchangeServiceInterface, recorder *staking.SnapshotRecorder, rewards *staking.RewardCalculator, limiter providers.RateLimiterInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		conf:     conf,
		store:    store,
		ledger:   ledger,
		tiers:    tiers,
		exchange: exchange,
		recorder: recorder,
		rewards:  rewards,
		limiter:  limiter,
		metrics:  metrics,
	}
}

func getAccount(r *http.Request) string {
	return r.URL.Query().Get("a")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

type errorBody struct {
	Error       string `json:"error"`
	Minimum     *int64 `json:"minimum_required,omitempty"`
	DailyLimit  *int64 `json:"daily_limit,omitempty"`
	AlreadyUsed *int64 `json:"already_used,omitempty"`
	Available   *int64 `json:"available,omitempty"`
}

// writeError maps the error taxonomy to HTTP. Business rejections carry
// their limits for direct display; transient and internal failures stay
// generic, details go to the log only.
func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	var (
		vErr *models.ValidationError
		iErr *models.InsufficientBalanceError
		bErr *models.BelowMinimumError
		dErr *models.DailyLimitError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: vErr.Error()})
	case errors.As(err, &iErr):
		writeJSON(w, http.StatusConflict, errorBody{Error: iErr.Error(), Available: &iErr.Available})
	case errors.As(err, &bErr):
		writeJSON(w, http.StatusConflict, errorBody{Error: bErr.Error(), Minimum: &bErr.Minimum})
	case errors.As(err, &dErr):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:       dErr.Error(),
			DailyLimit:  &dErr.Limit,
			AlreadyUsed: &dErr.AlreadyUsed,
		})
	case errors.Is(err, models.ErrConcurrencyConflict):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "account busy, try again"})
	default:
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// requireAdmin guards the privileged surface. It stays closed when no
// token is configured.
func (ac *ApiController) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	token := ac.conf.Admin.Token
	if token == "" || r.Header.Get("X-Admin-Token") != token {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
		return false
	}
	return true
}

func (ac *ApiController) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	if account == "" {
		ac.writeError(w, &models.ValidationError{Field: "a", Reason: "account is required"})
		return
	}
	writeJSON(w, http.StatusOK, ac.ledger.GetBalance(account))
}

func (ac *ApiController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	if account == "" {
		ac.writeError(w, &models.ValidationError{Field: "a", Reason: "account is required"})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	txType := models.TxType(r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, ac.ledger.ListTransactions(account, txType, limit))
}

type tierInfoResponse struct {
	Tier           *models.Tier           `json:"tier"`
	ExchangeConfig *models.ExchangeConfig `json:"exchange_config"`
}

func (ac *ApiController) GetTierInfo(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	tier, err := ac.tiers.GetTier(account)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	cfg, err := ac.tiers.GetExchangeConfig(account)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tierInfoResponse{Tier: tier, ExchangeConfig: cfg})
}

func (ac *ApiController) GetExchangeEstimate(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		ac.writeError(w, &models.ValidationError{Field: "amount", Reason: "must be an integer"})
		return
	}
	result, err := ac.exchange.Estimate(account, amount)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type exchangeRequest struct {
	Account     string `json:"account"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (ac *ApiController) ExecuteExchange(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.writeError(w, &models.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if req.Account == "" {
		ac.writeError(w, &models.ValidationError{Field: "account", Reason: "must not be empty"})
		return
	}

	rl := ac.limiter.Check("exchange:" + req.Account)
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	if !rl.Allowed {
		ac.metrics.IncRateLimited()
		w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(rl.ResetTime).Seconds())+1))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		return
	}

	result, err := ac.exchange.Exchange(r.Context(), req.Account, req.Amount, req.Description)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) GetRewards(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	if account == "" {
		ac.writeError(w, &models.ValidationError{Field: "a", Reason: "account is required"})
		return
	}
	writeJSON(w, http.StatusOK, ac.store.RewardsFor(account))
}

func (ac *ApiController) GetStakingSessions(w http.ResponseWriter, r *http.Request) {
	account := getAccount(r)
	if account == "" {
		ac.writeError(w, &models.ValidationError{Field: "a", Reason: "account is required"})
		return
	}
	writeJSON(w, http.StatusOK, staking.BuildSessions(ac.store.SnapshotsFor(account)))
}

type upgradeTierRequest struct {
	Account string `json:"account"`
	Level   string `json:"level"`
	Reason  string `json:"reason"`
	Force   bool   `json:"force"`
}

func (ac *ApiController) UpgradeTier(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req upgradeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.writeError(w, &models.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	tier, err := ac.tiers.UpgradeTier(req.Account, models.TierLevel(req.Level), req.Reason, req.Force)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

type verificationEventRequest struct {
	Account       string `json:"account"`
	Points        int64  `json:"points"`
	Verifications int    `json:"verifications"`
	KYCStatus     string `json:"kycStatus"`
}

func (ac *ApiController) ApplyVerificationEvent(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req verificationEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.writeError(w, &models.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	tier, err := ac.tiers.ApplyVerificationEvent(req.Account, req.Points, req.Verifications, req.KYCStatus)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

type recordSnapshotRequest struct {
	Account string `json:"account"`
}

// RecordSnapshot is the scheduler-invoked single-account sample, exposed
// for external tick sources.
func (ac *ApiController) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req recordSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.writeError(w, &models.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if req.Account == "" {
		ac.writeError(w, &models.ValidationError{Field: "account", Reason: "must not be empty"})
		return
	}
	writeJSON(w, http.StatusOK, ac.recorder.RecordAccount(req.Account))
}

type runRewardBatchRequest struct {
	Date string `json:"date"`
}

func (ac *ApiController) RunRewardBatch(w http.ResponseWriter, r *http.Request) {
	if !ac.requireAdmin(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req runRewardBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.writeError(w, &models.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		ac.writeError(w, &models.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"})
		return
	}
	if err := ac.rewards.RunForDate(date); err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed", "date": req.Date})
}
