package fraud

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"dayliz/config"
	"dayliz/internal/domain"
	"dayliz/internal/models"
)

// Tier buckets a numeric risk score.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Score is the ephemeral result of one fraud analysis. Computed fresh per
// request and never persisted; only its summary goes to the audit log.
type Score struct {
	Score           int      `json:"score"`
	Tier            Tier     `json:"tier"`
	Reasons         []string `json:"reasons"`
	Recommendations []string `json:"recommendations"`
}

// Input is one transaction to be scored.
type Input struct {
	UserID      uint
	AmountPaise int64
	Method      domain.PaymentMethod
	IP          string
	UserAgent   string
	Address     *models.Address
	Items       []ItemInput
}

type ItemInput struct {
	Name       string
	Quantity   int
	PricePaise int64
}

// Amounts just below common limits, and repeated-digit amounts, in paise.
var suspiciousAmounts = map[int64]struct{}{
	9_999_00:  {},
	19_999_00: {},
	49_999_00: {},
	1111_11:   {},
	2222_22:   {},
	3333_33:   {},
}

var botAgents = []string{"bot", "crawler", "spider", "scraper", "automated"}
var mobileAgents = []string{"mobile", "android", "iphone"}

// Engine scores transactions across independent risk dimensions and gates
// COD eligibility. On any internal failure it fails closed to a critical
// score rather than propagating the error, so a scoring bug can never
// approve a risky order.
type Engine struct {
	cfg      *config.Config
	history  HistoryProvider
	ipIntel  IPIntel
	pincodes PincodeIntel
	now      func() time.Time
}

func NewEngine(cfg *config.Config, history HistoryProvider, ipIntel IPIntel, pincodes PincodeIntel) *Engine {
	if ipIntel == nil {
		ipIntel = NoopIPIntel{}
	}
	if pincodes == nil {
		pincodes = DefaultPincodeIntel{}
	}
	return &Engine{cfg: cfg, history: history, ipIntel: ipIntel, pincodes: pincodes, now: time.Now}
}

// Analyze runs every dimension, sums the partial scores and caps at 100.
func (e *Engine) Analyze(ctx context.Context, in Input) (result Score) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FRAUD] analysis panic user_id=%d: %v", in.UserID, r)
			result = failClosed()
		}
	}()

	score, err := e.analyze(ctx, in)
	if err != nil {
		log.Printf("[FRAUD] analysis failed user_id=%d: %v", in.UserID, err)
		return failClosed()
	}
	return score
}

func failClosed() Score {
	return Score{
		Score:           90,
		Tier:            TierCritical,
		Reasons:         []string{"Fraud analysis system error"},
		Recommendations: []string{"Manual review required"},
	}
}

func (e *Engine) analyze(ctx context.Context, in Input) (Score, error) {
	total := 0
	var reasons []string

	dims := []func(context.Context, Input) (int, []string, error){
		e.amountRisk,
		e.velocityRisk,
		e.geographicRisk,
		e.behaviorRisk,
		e.deviceRisk,
		e.orderPatternRisk,
		e.temporalRisk,
	}
	for _, dim := range dims {
		s, r, err := dim(ctx, in)
		if err != nil {
			return Score{}, err
		}
		total += s
		reasons = append(reasons, r...)
	}
	if total > 100 {
		total = 100
	}

	tier, recs := e.classify(total)
	log.Printf("[FRAUD] analysis user_id=%d amount_paise=%d score=%d tier=%s", in.UserID, in.AmountPaise, total, tier)
	return Score{Score: total, Tier: tier, Reasons: reasons, Recommendations: recs}, nil
}

func (e *Engine) classify(score int) (Tier, []string) {
	f := e.cfg.Fraud
	switch {
	case score < f.LowThreshold:
		return TierLow, []string{"Transaction approved - low risk"}
	case score < f.MediumThreshold:
		return TierMedium, []string{"Additional verification recommended", "Monitor transaction closely"}
	case score < f.HighThreshold:
		return TierHigh, []string{"Manual review required", "Consider additional authentication", "Limit transaction amount"}
	default:
		return TierCritical, []string{"Block transaction", "Require manual approval", "Investigate user account"}
	}
}

func (e *Engine) amountRisk(ctx context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string

	if _, ok := suspiciousAmounts[in.AmountPaise]; ok {
		score += 25
		reasons = append(reasons, fmt.Sprintf("Suspicious amount pattern: ₹%.2f", paiseToRupees(in.AmountPaise)))
	}
	// Round thousands of ₹10,000 or more look like card testing.
	if in.AmountPaise%100_000 == 0 && in.AmountPaise >= 10_000_00 {
		score += 10
		reasons = append(reasons, "Large round number amount")
	}

	avg, err := e.history.AverageOrderPaise(ctx, in.UserID)
	if err != nil {
		return 0, nil, err
	}
	if avg > 0 {
		switch {
		case in.AmountPaise > avg*5:
			score += 20
			reasons = append(reasons, "Amount significantly higher than user average")
		case in.AmountPaise > avg*3:
			score += 10
			reasons = append(reasons, "Amount moderately higher than user average")
		}
	}

	switch {
	case in.AmountPaise > 100_000_00:
		score += 15
		reasons = append(reasons, "Very high transaction amount")
	case in.AmountPaise > 50_000_00:
		score += 8
		reasons = append(reasons, "High transaction amount")
	}
	return score, reasons, nil
}

func (e *Engine) velocityRisk(ctx context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string
	f := e.cfg.Fraud
	now := e.now()

	hourly, err := e.history.RecentTransactions(ctx, in.UserID, now.Add(-time.Hour))
	if err != nil {
		return 0, nil, err
	}
	daily, err := e.history.RecentTransactions(ctx, in.UserID, now.Add(-24*time.Hour))
	if err != nil {
		return 0, nil, err
	}

	switch {
	case len(hourly) >= f.MaxTxnPerHour:
		score += 30
		reasons = append(reasons, fmt.Sprintf("Too many transactions in last hour: %d", len(hourly)))
	case len(hourly) >= f.MaxTxnPerHour-1:
		score += 15
		reasons = append(reasons, "High transaction frequency in last hour")
	}
	if len(daily) >= f.MaxTxnPerDay {
		score += 25
		reasons = append(reasons, fmt.Sprintf("Too many transactions today: %d", len(daily)))
	}

	hourlyPaise := in.AmountPaise
	for _, t := range hourly {
		hourlyPaise += t.AmountPaise
	}
	dailyPaise := in.AmountPaise
	for _, t := range daily {
		dailyPaise += t.AmountPaise
	}
	if hourlyPaise > f.HourlyAmountPaise {
		score += 25
		reasons = append(reasons, fmt.Sprintf("Hourly amount limit exceeded: ₹%.0f", paiseToRupees(hourlyPaise)))
	}
	if dailyPaise > f.DailyAmountPaise {
		score += 20
		reasons = append(reasons, fmt.Sprintf("Daily amount limit exceeded: ₹%.0f", paiseToRupees(dailyPaise)))
	}
	return score, reasons, nil
}

func (e *Engine) geographicRisk(ctx context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string

	if e.ipIntel.IsHighRisk(ctx, in.IP) {
		score += 30
		reasons = append(reasons, "High-risk IP address detected")
	}
	if e.ipIntel.IsVPNOrProxy(ctx, in.IP) {
		score += 20
		reasons = append(reasons, "VPN or proxy usage detected")
	}

	pincode := ""
	if in.Address != nil {
		pincode = in.Address.Pincode
	}
	if !models.ValidPincode(pincode) {
		score += 15
		reasons = append(reasons, "Invalid Indian pincode format")
	}
	if e.pincodes.IsHighRisk(pincode) {
		score += 10
		reasons = append(reasons, "Delivery to high-risk area")
	}

	if dist, ok := e.ipIntel.DistanceKm(ctx, in.IP, in.Address); ok && dist > 500 {
		score += 15
		reasons = append(reasons, "Large distance between IP location and delivery address")
	}
	return score, reasons, nil
}

func (e *Engine) behaviorRisk(ctx context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string
	now := e.now()

	ageDays, err := e.history.AccountAgeDays(ctx, in.UserID, now)
	if err != nil {
		return 0, nil, err
	}
	switch {
	case ageDays < 1:
		score += 25
		reasons = append(reasons, "Very new account (less than 1 day)")
	case ageDays < 7:
		score += 15
		reasons = append(reasons, "New account (less than 1 week)")
	case ageDays < 30:
		score += 5
		reasons = append(reasons, "Relatively new account")
	}

	total, err := e.history.TotalOrders(ctx, in.UserID)
	if err != nil {
		return 0, nil, err
	}
	switch {
	case total == 0:
		score += 20
		reasons = append(reasons, "First-time customer")
	case total < 3:
		score += 10
		reasons = append(reasons, "Limited order history")
	}

	failed, err := e.history.RecentFailedPayments(ctx, in.UserID, now.Add(-7*24*time.Hour))
	if err != nil {
		return 0, nil, err
	}
	switch {
	case failed > 3:
		score += 20
		reasons = append(reasons, fmt.Sprintf("Multiple recent failed payments: %d", failed))
	case failed > 1:
		score += 10
		reasons = append(reasons, "Recent failed payment attempts")
	}

	if in.Method == domain.MethodCOD {
		rate, err := e.history.CODReturnRate(ctx, in.UserID)
		if err != nil {
			return 0, nil, err
		}
		switch {
		case rate > 0.5:
			score += 25
			reasons = append(reasons, "High COD return rate")
		case rate > 0.3:
			score += 15
			reasons = append(reasons, "Elevated COD return rate")
		}
	}
	return score, reasons, nil
}

func (e *Engine) deviceRisk(_ context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string
	ua := strings.ToLower(in.UserAgent)

	if len(in.UserAgent) < 10 {
		score += 15
		reasons = append(reasons, "Missing or suspicious user agent")
	}
	for _, bot := range botAgents {
		if strings.Contains(ua, bot) {
			score += 25
			reasons = append(reasons, "Automated tool detected")
			break
		}
	}
	mobile := false
	for _, m := range mobileAgents {
		if strings.Contains(ua, m) {
			mobile = true
			break
		}
	}
	if !mobile {
		score += 5
		reasons = append(reasons, "Desktop browser usage (mobile app expected)")
	}
	return score, reasons, nil
}

func (e *Engine) orderPatternRisk(_ context.Context, in Input) (int, []string, error) {
	if len(in.Items) == 0 {
		return 0, nil, nil
	}
	score := 0
	var reasons []string

	totalQty := 0
	highValue := 0
	for _, item := range in.Items {
		totalQty += item.Quantity
		if item.PricePaise > 5_000_00 {
			highValue++
		}
		if item.Quantity > 10 {
			score += 8
			reasons = append(reasons, fmt.Sprintf("Large quantity of single item: %s", item.Name))
		}
	}
	if totalQty > 50 {
		score += 15
		reasons = append(reasons, fmt.Sprintf("Unusually large total quantity: %d", totalQty))
	}
	if highValue > 3 {
		score += 10
		reasons = append(reasons, "Multiple high-value items")
	}
	return score, reasons, nil
}

func (e *Engine) temporalRisk(ctx context.Context, in Input) (int, []string, error) {
	score := 0
	var reasons []string
	now := e.now()

	if hour := now.Hour(); hour < 6 || hour > 23 {
		score += 10
		reasons = append(reasons, "Transaction during unusual hours")
	}

	last, err := e.history.LastTransactionAt(ctx, in.UserID)
	if err != nil {
		return 0, nil, err
	}
	if last != nil {
		gap := now.Sub(*last)
		switch {
		case gap < time.Minute:
			score += 20
			reasons = append(reasons, "Very rapid successive transaction")
		case gap < 5*time.Minute:
			score += 10
			reasons = append(reasons, "Rapid successive transaction")
		}
	}
	return score, reasons, nil
}

func paiseToRupees(p int64) float64 {
	return float64(p) / 100
}
