package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/types"
)

type fakeUserRepo struct {
	saved *types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	return user, nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
	f.saved = user
	return nil
}
func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return nil
}

func newTestPremium(t *testing.T, productionURL, sandboxURL string, now time.Time) (*premiumService, *fakeUserRepo) {
	t.Helper()
	ur := &fakeUserRepo{}
	return &premiumService{
		log:           testLogger(t).With("service", "PremiumService"),
		userRepo:      ur,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		sharedSecret:  "secret",
		productionURL: productionURL,
		sandboxURL:    sandboxURL,
		now:           func() time.Time { return now },
	}, ur
}

func verifyHandler(t *testing.T, status int, entries []appleReceiptEntry) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode verify request: %v", err)
		}
		if req["receipt-data"] == "" {
			t.Fatalf("missing receipt-data in request")
		}
		_ = json.NewEncoder(w).Encode(appleVerifyResponse{
			Status:            status,
			LatestReceiptInfo: entries,
		})
	}
}

func TestPurchaseActivatesPremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)

	prod := httptest.NewServer(verifyHandler(t, 0, []appleReceiptEntry{
		{ProductID: "premium_monthly", ExpiresDateMS: msString(future), IsTrialPeriod: "false"},
	}))
	defer prod.Close()

	ps, ur := newTestPremium(t, prod.URL, "http://unused.invalid", now)
	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionFree}

	status, err := ps.Purchase(context.Background(), user, "base64-receipt")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if !status.IsPremium || status.ProductID != "premium_monthly" {
		t.Fatalf("got premium=%v product=%q", status.IsPremium, status.ProductID)
	}
	if ur.saved == nil || ur.saved.SubscriptionType != types.SubscriptionPremium {
		t.Fatalf("user not saved as premium: %+v", ur.saved)
	}
	if !ur.saved.SubscriptionExpires.Equal(future) {
		t.Fatalf("got expiry %v, want %v", ur.saved.SubscriptionExpires, future)
	}
}

func TestPurchaseRetriesSandboxOn21007(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 7)

	prod := httptest.NewServer(verifyHandler(t, appleStatusSandboxReceipt, nil))
	defer prod.Close()
	sandbox := httptest.NewServer(verifyHandler(t, 0, []appleReceiptEntry{
		{ProductID: "premium_weekly", ExpiresDateMS: msString(future), IsTrialPeriod: "true"},
	}))
	defer sandbox.Close()

	ps, _ := newTestPremium(t, prod.URL, sandbox.URL, now)
	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionFree}

	status, err := ps.Purchase(context.Background(), user, "sandbox-receipt")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if !status.IsPremium || !status.IsTrial {
		t.Fatalf("got premium=%v trial=%v, want true/true", status.IsPremium, status.IsTrial)
	}
}

func TestPurchaseRejectsBadReceiptStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	prod := httptest.NewServer(verifyHandler(t, 21002, nil))
	defer prod.Close()

	ps, _ := newTestPremium(t, prod.URL, "http://unused.invalid", now)
	user := &types.User{ID: uuid.New()}

	if _, err := ps.Purchase(context.Background(), user, "bad"); err == nil {
		t.Fatalf("expected error for status 21002")
	}
}

func TestPurchaseExpiredReceiptDowngrades(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	prod := httptest.NewServer(verifyHandler(t, 0, []appleReceiptEntry{
		{ProductID: "premium_monthly", ExpiresDateMS: msString(past), IsTrialPeriod: "false"},
	}))
	defer prod.Close()

	ps, ur := newTestPremium(t, prod.URL, "http://unused.invalid", now)
	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionPremium}

	status, err := ps.Purchase(context.Background(), user, "expired")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if status.IsPremium {
		t.Fatalf("expired subscription reported premium")
	}
	if ur.saved.SubscriptionType != types.SubscriptionFree {
		t.Fatalf("got type=%q, want free", ur.saved.SubscriptionType)
	}
}

func TestLatestSubscriptionPicksGreatestExpiry(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	expiry, trial, productID, ok := latestSubscription([]appleReceiptEntry{
		{ProductID: "old", ExpiresDateMS: msString(early), IsTrialPeriod: "true"},
		{ProductID: "new", ExpiresDateMS: msString(late), IsTrialPeriod: "false"},
		{ProductID: "broken", ExpiresDateMS: "not-a-number"},
	})
	if !ok {
		t.Fatalf("expected a subscription entry")
	}
	if productID != "new" || trial || !expiry.Equal(late) {
		t.Fatalf("got product=%q trial=%v expiry=%v", productID, trial, expiry)
	}
}

func TestStatusForExpiredPremiumReportsFree(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ps, _ := newTestPremium(t, "http://unused.invalid", "http://unused.invalid", now)

	past := now.AddDate(0, -1, 0)
	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionPremium, SubscriptionExpires: &past}

	status := ps.Status(context.Background(), user)
	if status.IsPremium || status.SubscriptionType != types.SubscriptionFree {
		t.Fatalf("got %+v, want free", status)
	}
}

func TestTrialStatusCountsRemainingDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ps, _ := newTestPremium(t, "http://unused.invalid", "http://unused.invalid", now)

	// Signed up a day and a half ago: a day and a half left, rounded up to 2.
	user := &types.User{ID: uuid.New(), CreatedAt: now.Add(-36 * time.Hour)}

	status := ps.TrialStatus(context.Background(), user)
	if !status.IsTrialActive || status.DaysLeft != 2 {
		t.Fatalf("got active=%v days=%d, want true/2", status.IsTrialActive, status.DaysLeft)
	}
	if want := user.CreatedAt.Add(72 * time.Hour); !status.ExpiryDate.Equal(want) {
		t.Fatalf("got expiry %v, want %v", status.ExpiryDate, want)
	}
}

func TestTrialStatusExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ps, _ := newTestPremium(t, "http://unused.invalid", "http://unused.invalid", now)

	user := &types.User{ID: uuid.New(), CreatedAt: now.Add(-96 * time.Hour)}

	status := ps.TrialStatus(context.Background(), user)
	if status.IsTrialActive || status.DaysLeft != 0 {
		t.Fatalf("got active=%v days=%d, want false/0", status.IsTrialActive, status.DaysLeft)
	}
}

func TestRestoreWithReceiptReactivatesPremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)

	prod := httptest.NewServer(verifyHandler(t, 0, []appleReceiptEntry{
		{ProductID: "premium_monthly", ExpiresDateMS: msString(future), IsTrialPeriod: "false"},
	}))
	defer prod.Close()

	ps, ur := newTestPremium(t, prod.URL, "http://unused.invalid", now)
	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionFree}

	result, err := ps.Restore(context.Background(), user, "base64-receipt")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !result.Success || result.Status == nil || !result.Status.IsPremium {
		t.Fatalf("got %+v, want successful premium restore", result)
	}
	if ur.saved == nil || ur.saved.SubscriptionType != types.SubscriptionPremium {
		t.Fatalf("user not saved as premium: %+v", ur.saved)
	}
}

func TestRestoreWithoutSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ps, ur := newTestPremium(t, "http://unused.invalid", "http://unused.invalid", now)

	user := &types.User{ID: uuid.New(), SubscriptionType: types.SubscriptionFree}

	result, err := ps.Restore(context.Background(), user, "")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.Success {
		t.Fatalf("restore reported success without a subscription")
	}
	if result.Message != "No active subscription to restore." {
		t.Fatalf("got message %q", result.Message)
	}
	if ur.saved != nil {
		t.Fatalf("restore without receipt should not write the user")
	}
}

func msString(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
