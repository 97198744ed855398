/*
Copyright 2025 PayGrab Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package paygrab

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/config"
	"github.com/segunla/paygrab/model"
)

// Priority weights for the ranking signals. History dominates locality;
// the fallback tier carries no priority at all.
const (
	historyPriorityBonus  = 1000
	localityPriorityBonus = 500
)

// RankCandidates computes the ordered notification plan for one order:
// which payees hear about it and after what delay. Only payees holding
// an active receiving code for the order's payment method are
// considered; each surviving payee is scored by two additive signals
// evaluated in fixed order, and then dropped outright if its remaining
// daily quota cannot cover the order amount.
//
//   - history: the payee has previously settled a repayment for this
//     customer — large bonus, immediate notification.
//   - locality: the payee's address exactly matches the customer's —
//     medium bonus, short delay unless history already zeroed it.
//   - neither: no bonus, the long default delay.
//
// Ties keep insertion order. An empty result is not an error; the order
// simply waits out its expiry window unannounced.
func (l *PayGrab) RankCandidates(ctx context.Context, ord *model.Order, customerAddress string) ([]model.Candidate, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	localityDelay := time.Duration(cfg.Dispatch.LocalityDelaySec) * time.Second
	fallbackDelay := time.Duration(cfg.Dispatch.FallbackDelaySec) * time.Second

	payees, err := l.datasource.GetPayeesByMethod(ctx, ord.PaymentMethod)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var candidates []model.Candidate
	for i := range payees {
		p := payees[i]
		if !p.SupportsMethod(ord.PaymentMethod) {
			continue
		}

		priority := 0
		delay := time.Duration(-1)

		hasHistory, err := l.datasource.HasSettledForCustomer(ctx, p.PayeeID, ord.CustomerID)
		if err != nil {
			return nil, err
		}
		if hasHistory {
			priority += historyPriorityBonus
			delay = 0
		}

		if customerAddress != "" && p.Address == customerAddress {
			priority += localityPriorityBonus
			if delay < 0 {
				delay = localityDelay
			}
		}

		if delay < 0 {
			delay = fallbackDelay
		}

		remaining, err := l.remainingQuota(ctx, &p, now)
		if err != nil {
			return nil, err
		}
		// quota is absolute: no amount of priority rescues a payee that
		// cannot cover the order today
		if remaining.LessThan(ord.Amount) {
			continue
		}

		candidates = append(candidates, model.Candidate{
			Payee:          p,
			Priority:       priority,
			Delay:          delay,
			RemainingQuota: remaining,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	return candidates, nil
}

// remainingQuota computes what a payee may still receive today: the
// configured daily limit minus everything assigned to it since local
// midnight. The aggregation always hits the durable store so concurrent
// dispatchers see one truth.
func (l *PayGrab) remainingQuota(ctx context.Context, payee *model.Payee, at time.Time) (decimal.Decimal, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return decimal.Zero, err
	}
	dayStart, dayEnd := dayBounds(at, cfg.Dispatch.Location())
	received, err := l.datasource.SumReceivedForDay(ctx, payee.PayeeID, dayStart, dayEnd)
	if err != nil {
		return decimal.Zero, err
	}
	return payee.DailyLimit.Sub(received), nil
}

// dayBounds returns [midnight, next midnight) around at in the given
// zone. Every quota computation uses this one boundary convention.
func dayBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
