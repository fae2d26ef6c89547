package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
	"github.com/skillpath/skillpath-backend/internal/utils"
)

const (
	appleProductionVerifyURL = "https://buy.itunes.apple.com/verifyReceipt"
	appleSandboxVerifyURL    = "https://sandbox.itunes.apple.com/verifyReceipt"

	// Apple status meaning "sandbox receipt sent to production".
	appleStatusSandboxReceipt = 21007

	// Every new account gets a short full-access trial starting at signup.
	trialDuration = 3 * 24 * time.Hour
)

type SubscriptionStatus struct {
	SubscriptionType string     `json:"subscription_type"`
	IsPremium        bool       `json:"is_premium"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ProductID        string     `json:"product_id,omitempty"`
	IsTrial          bool       `json:"is_trial"`
}

type TrialStatus struct {
	IsTrialActive bool      `json:"is_trial_active"`
	DaysLeft      int       `json:"days_left"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

type RestoreResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Status  *SubscriptionStatus `json:"status,omitempty"`
}

type PremiumService interface {
	Status(ctx context.Context, user *types.User) *SubscriptionStatus
	Purchase(ctx context.Context, user *types.User, receiptData string) (*SubscriptionStatus, error)
	TrialStatus(ctx context.Context, user *types.User) *TrialStatus
	Restore(ctx context.Context, user *types.User, receiptData string) (*RestoreResult, error)
}

type premiumService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	httpClient    *http.Client
	sharedSecret  string
	productionURL string
	sandboxURL    string
	now           func() time.Time
}

func NewPremiumService(log *logger.Logger, userRepo repos.UserRepo) PremiumService {
	timeout := time.Duration(utils.GetEnvAsInt("APPLE_VERIFY_TIMEOUT_SECONDS", 15, nil)) * time.Second
	return &premiumService{
		log:           log.With("service", "PremiumService"),
		userRepo:      userRepo,
		httpClient:    &http.Client{Timeout: timeout},
		sharedSecret:  utils.GetEnv("APPLE_SHARED_SECRET", "", nil),
		productionURL: utils.GetEnv("APPLE_VERIFY_URL", appleProductionVerifyURL, nil),
		sandboxURL:    utils.GetEnv("APPLE_SANDBOX_VERIFY_URL", appleSandboxVerifyURL, nil),
		now:           time.Now,
	}
}

func (ps *premiumService) Status(ctx context.Context, user *types.User) *SubscriptionStatus {
	now := ps.now()
	status := &SubscriptionStatus{
		SubscriptionType: user.SubscriptionType,
		IsPremium:        user.IsPremium(now),
		ExpiresAt:        user.SubscriptionExpires,
	}
	if !status.IsPremium {
		status.SubscriptionType = types.SubscriptionFree
	}
	return status
}

// TrialStatus reports how much of the signup trial remains. Days are
// rounded up so a trial that expires later today still counts as one day.
func (ps *premiumService) TrialStatus(ctx context.Context, user *types.User) *TrialStatus {
	expiry := user.CreatedAt.Add(trialDuration)
	remaining := expiry.Sub(ps.now())

	daysLeft := 0
	if remaining > 0 {
		daysLeft = int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	}
	return &TrialStatus{
		IsTrialActive: daysLeft > 0,
		DaysLeft:      daysLeft,
		ExpiryDate:    expiry,
	}
}

// Restore re-validates a receipt when the client supplies one, otherwise
// it reports the subscription currently on record.
func (ps *premiumService) Restore(ctx context.Context, user *types.User, receiptData string) (*RestoreResult, error) {
	var status *SubscriptionStatus
	if strings.TrimSpace(receiptData) != "" {
		var err error
		status, err = ps.Purchase(ctx, user, receiptData)
		if err != nil {
			return nil, err
		}
	} else {
		status = ps.Status(ctx, user)
	}

	if !status.IsPremium {
		return &RestoreResult{Success: false, Message: "No active subscription to restore."}, nil
	}
	return &RestoreResult{Success: true, Message: "Subscription restored.", Status: status}, nil
}

// Purchase validates an App Store receipt and updates the user's
// subscription. Production endpoint first; Apple status 21007 means the
// receipt is from the sandbox environment, so retry there.
func (ps *premiumService) Purchase(ctx context.Context, user *types.User, receiptData string) (*SubscriptionStatus, error) {
	receiptData = strings.TrimSpace(receiptData)
	if receiptData == "" {
		return nil, fmt.Errorf("%w: receipt data is required", ErrInvalidInput)
	}

	resp, err := ps.verify(ctx, ps.productionURL, receiptData)
	if err != nil {
		return nil, err
	}
	if resp.Status == appleStatusSandboxReceipt {
		ps.log.Info("Sandbox receipt detected, retrying against sandbox", "user_id", user.ID.String())
		resp, err = ps.verify(ctx, ps.sandboxURL, receiptData)
		if err != nil {
			return nil, err
		}
	}
	if resp.Status != 0 {
		return nil, fmt.Errorf("%w: receipt validation failed with status %d", ErrInvalidInput, resp.Status)
	}

	expiry, trial, productID, ok := latestSubscription(resp.LatestReceiptInfo)
	if !ok {
		return nil, fmt.Errorf("%w: receipt contains no subscription entries", ErrInvalidInput)
	}

	now := ps.now()
	if expiry.After(now) {
		user.SubscriptionType = types.SubscriptionPremium
	} else {
		user.SubscriptionType = types.SubscriptionFree
	}
	user.SubscriptionExpires = &expiry
	if err := ps.userRepo.Save(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	ps.log.Info("Subscription updated",
		"user_id", user.ID.String(),
		"product_id", productID,
		"premium", user.SubscriptionType == types.SubscriptionPremium)

	return &SubscriptionStatus{
		SubscriptionType: user.SubscriptionType,
		IsPremium:        user.IsPremium(now),
		ExpiresAt:        &expiry,
		ProductID:        productID,
		IsTrial:          trial,
	}, nil
}

type appleVerifyResponse struct {
	Status            int                 `json:"status"`
	LatestReceiptInfo []appleReceiptEntry `json:"latest_receipt_info"`
}

type appleReceiptEntry struct {
	ProductID     string `json:"product_id"`
	ExpiresDateMS string `json:"expires_date_ms"`
	IsTrialPeriod string `json:"is_trial_period"`
}

func (ps *premiumService) verify(ctx context.Context, url, receiptData string) (*appleVerifyResponse, error) {
	payload, err := json.Marshal(map[string]any{
		"receipt-data":             receiptData,
		"password":                 ps.sharedSecret,
		"exclude-old-transactions": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ps.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("receipt verification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read verify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("verify endpoint returned status %d", resp.StatusCode)
	}

	var parsed appleVerifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}
	return &parsed, nil
}

// latestSubscription picks the entry with the greatest expiry from
// latest_receipt_info. Entries without a parseable expiry are skipped.
func latestSubscription(entries []appleReceiptEntry) (expiry time.Time, trial bool, productID string, ok bool) {
	for _, e := range entries {
		ms, err := strconv.ParseInt(e.ExpiresDateMS, 10, 64)
		if err != nil {
			continue
		}
		t := time.UnixMilli(ms).UTC()
		if !ok || t.After(expiry) {
			expiry = t
			trial = e.IsTrialPeriod == "true"
			productID = e.ProductID
			ok = true
		}
	}
	return expiry, trial, productID, ok
}
