package fraud

import (
	"context"
	"fmt"
	"time"
)

// CODDecision is the outcome of a cash-on-delivery eligibility check.
type CODDecision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Score    *Score `json:"risk,omitempty"`
}

// ValidateCODEligibility gates COD orders. Checks run cheapest-first and the
// first failure wins; the fraud score is only computed when the amount and
// address checks pass.
func (e *Engine) ValidateCODEligibility(ctx context.Context, in Input) CODDecision {
	f := e.cfg.Fraud
	p := e.cfg.Payment

	if in.AmountPaise > p.CODMaxPaise {
		return CODDecision{
			Eligible: false,
			Reason:   fmt.Sprintf("COD amount exceeds ₹%d limit as per RBI guidelines", p.CODMaxPaise/100),
		}
	}

	if in.Address == nil || !in.Address.ValidIndian() {
		return CODDecision{
			Eligible: false,
			Reason:   "Invalid or incomplete delivery address",
		}
	}

	score := e.Analyze(ctx, in)
	if score.Score >= f.CODRiskCutoff {
		return CODDecision{
			Eligible: false,
			Reason:   "COD not available due to account verification requirements",
			Score:    &score,
		}
	}

	recent, err := e.history.RecentTransactions(ctx, in.UserID, e.now().Add(-time.Hour))
	if err != nil || len(recent) >= f.MaxTxnPerHour {
		return CODDecision{
			Eligible: false,
			Reason:   "Too many orders placed recently. Please try again later.",
			Score:    &score,
		}
	}

	pincode := ""
	if in.Address != nil {
		pincode = in.Address.Pincode
	}
	if !e.pincodes.IsServiceable(pincode) {
		return CODDecision{
			Eligible: false,
			Reason:   "COD not available in your area",
			Score:    &score,
		}
	}

	return CODDecision{Eligible: true, Score: &score}
}
