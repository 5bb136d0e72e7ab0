package fraud

import (
	"context"
	"time"

	"dayliz/internal/models"
)

// HistoryProvider supplies the per-user transaction history the engine
// scores against. Backed by the order repository in production; tests plug
// in fakes.
type HistoryProvider interface {
	AverageOrderPaise(ctx context.Context, userID uint) (int64, error)
	RecentTransactions(ctx context.Context, userID uint, since time.Time) ([]TxnSummary, error)
	AccountAgeDays(ctx context.Context, userID uint, now time.Time) (int, error)
	TotalOrders(ctx context.Context, userID uint) (int64, error)
	RecentFailedPayments(ctx context.Context, userID uint, since time.Time) (int64, error)
	CODReturnRate(ctx context.Context, userID uint) (float64, error)
	LastTransactionAt(ctx context.Context, userID uint) (*time.Time, error)
}

// TxnSummary is the slice of an order the velocity checks need.
type TxnSummary struct {
	AmountPaise int64
	CreatedAt   time.Time
}

// IPIntel answers reputation questions about a caller's IP. The production
// thresholds for these signals are not yet calibrated; deployments plug in a
// real provider, everything else gets the conservative no-op default.
type IPIntel interface {
	IsHighRisk(ctx context.Context, ip string) bool
	IsVPNOrProxy(ctx context.Context, ip string) bool
	// DistanceKm returns the distance between the IP's geolocation and the
	// delivery address; ok=false when no location is available.
	DistanceKm(ctx context.Context, ip string, addr *models.Address) (float64, bool)
}

// PincodeIntel answers risk and serviceability questions about a pincode.
type PincodeIntel interface {
	IsHighRisk(pincode string) bool
	IsServiceable(pincode string) bool
}

// NoopIPIntel flags nothing. Default until an IP reputation feed is wired.
type NoopIPIntel struct{}

func (NoopIPIntel) IsHighRisk(context.Context, string) bool    { return false }
func (NoopIPIntel) IsVPNOrProxy(context.Context, string) bool  { return false }
func (NoopIPIntel) DistanceKm(context.Context, string, *models.Address) (float64, bool) {
	return 0, false
}

// DefaultPincodeIntel accepts every well-formed Indian pincode as
// serviceable and flags none as high risk.
type DefaultPincodeIntel struct{}

func (DefaultPincodeIntel) IsHighRisk(string) bool { return false }
func (DefaultPincodeIntel) IsServiceable(pincode string) bool {
	return models.ValidPincode(pincode)
}
