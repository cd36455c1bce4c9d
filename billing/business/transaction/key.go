package transaction

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Key derives the stable transaction key: an md5 digest over the
// transaction's defining attributes, serialized as sorted key:value
// pairs. Identical inputs always produce the identical key regardless
// of run order, which idempotent re-runs and reconciliation depend on.
// The key is computed once at generation time and never recomputed.
func Key(t *model.Transaction) string {
	parts := []string{
		"chargeElementId:" + t.ChargeElementID.String(),
		"isCompensationCharge:" + strconv.FormatBool(t.IsCompensationCharge),
		"isCredit:" + strconv.FormatBool(t.IsCredit),
		"isTwoPartTariffSupplementary:" + strconv.FormatBool(t.IsTwoPartTariffSupplementary),
		"loss:" + t.Loss,
		"periodEnd:" + t.ChargePeriod.EndDate.Format(model.DateFormat),
		"periodStart:" + t.ChargePeriod.StartDate.Format(model.DateFormat),
		"season:" + t.Season,
		"source:" + t.Source,
	}
	sort.Strings(parts)

	digest := md5.Sum([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(digest[:])
}
