package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/fadilmartias/hireprep/internal/service"
	"github.com/google/uuid"
)

const backfillBatchSize = 200

type BackfillReport struct {
	Succeeded int
	Failed    int
	// analyses whose model has no known price
	Skipped int
}

func (r BackfillReport) String() string {
	return fmt.Sprintf("succeeded=%d failed=%d skipped=%d", r.Succeeded, r.Failed, r.Skipped)
}

type CostBackfillUsecase struct {
	analyses AnalysisRepository
}

func NewCostBackfillUsecase(analyses AnalysisRepository) *CostBackfillUsecase {
	return &CostBackfillUsecase{analyses: analyses}
}

// Run prices every analysis that recorded tokens but no cost. A failing row is counted
// and skipped; only a failure to list rows aborts the run.
func (uc *CostBackfillUsecase) Run(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport
	after := uuid.Nil
	for {
		batch, err := uc.analyses.ListUnpriced(ctx, after, backfillBatchSize)
		if err != nil {
			return report, fmt.Errorf("list unpriced analyses: %w", err)
		}
		if len(batch) == 0 {
			return report, nil
		}
		for _, a := range batch {
			after = a.ID
			cost, known := service.CalculateCost(a.Model, a.InputTokens, a.OutputTokens)
			if !known || cost == 0 {
				report.Skipped++
				continue
			}
			if err := uc.analyses.UpdateCost(ctx, a.ID, cost); err != nil {
				log.Printf("analysis %s: update cost: %v", a.ID, err)
				report.Failed++
				continue
			}
			report.Succeeded++
		}
		if len(batch) < backfillBatchSize {
			return report, nil
		}
	}
}
