package jobs

import (
	"context"
	"log"

	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PendingPayoutReport struct {
	Count   int
	Total   decimal.Decimal
	ByTutor map[uuid.UUID]decimal.Decimal
}

func BuildPendingPayoutReport(ctx context.Context, payouts *services.PayoutService) (*PendingPayoutReport, error) {
	pending, err := payouts.GetPendingPayouts(ctx)
	if err != nil {
		return nil, err
	}

	r := &PendingPayoutReport{Total: decimal.Zero, ByTutor: make(map[uuid.UUID]decimal.Decimal)}
	for _, p := range pending {
		r.Count++
		r.Total = r.Total.Add(p.Amount)
		r.ByTutor[p.TutorID] = r.ByTutor[p.TutorID].Add(p.Amount)
	}
	return r, nil
}

// ReportPendingPayouts logs the backlog of payouts waiting to be processed.
func ReportPendingPayouts(ctx context.Context, payouts *services.PayoutService) func() {
	return func() {
		log.Println("Running job: ReportPendingPayouts...")

		r, err := BuildPendingPayoutReport(ctx, payouts)
		if err != nil {
			log.Printf("Error building pending payout report: %v", err)
			return
		}
		log.Printf("Pending payouts: %d totalling %s across %d tutor(s).", r.Count, r.Total.StringFixed(2), len(r.ByTutor))
	}
}
