package transaction

import (
	"github.com/google/uuid"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Restate reconciles freshly generated candidates against transactions
// already billed for the same licence in earlier batches. Keys that
// match are already correctly billed and produce nothing; billed keys
// no longer generated are reversed with credits; new keys stay as
// debits. This is how a supplementary batch restates a licence after a
// mid-year charge-version change without re-billing unchanged charges.
func Restate(candidates, billed []*model.Transaction) []*model.Transaction {
	billedKeys := make(map[string]*model.Transaction, len(billed))
	for _, b := range billed {
		billedKeys[b.TransactionKey] = b
	}
	candidateKeys := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		candidateKeys[c.TransactionKey] = true
	}

	var out []*model.Transaction
	for _, c := range candidates {
		if _, alreadyBilled := billedKeys[c.TransactionKey]; !alreadyBilled {
			out = append(out, c)
		}
	}
	for _, b := range billed {
		if !candidateKeys[b.TransactionKey] {
			out = append(out, creditOf(b))
		}
	}
	return out
}

// creditOf clones a billed transaction as its reversing credit. The
// clone is a fresh candidate: the engine id, value and key all belong
// to the new credit, not the original debit.
func creditOf(billed *model.Transaction) *model.Transaction {
	credit := *billed
	credit.ID = uuid.New()
	credit.IsCredit = true
	credit.Status = model.TransactionStatusCandidate
	credit.ExternalID = ""
	credit.Value = nil
	credit.IsDeMinimis = false
	credit.TransactionKey = Key(&credit)
	return &credit
}
