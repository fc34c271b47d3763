// Package tranche provides an embeddable token distribution and
// vesting ledger for Go applications.
//
// Tranche is designed as a library, not a service. Import it directly
// into your Go application and wire it to your own storage and asset
// services. It provides:
//
//   - A reward allocation ledger with running-total and one-shot
//     categories, backed at credit time by the custody balance
//   - A subscription gate with stacking renewals and fee collection
//   - A lot-based presale with dual capacity caps
//   - A cliff-plus-linear vesting schedule with exact integer math
//   - A transfer executor that commits ledger state before settlement
//     and rejects reentrant calls from asset callbacks
//   - Lifecycle hooks for audit trails and metrics
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/tranche"
//	    "github.com/xraph/tranche/store/sqlite"
//	)
//
//	store, err := sqlite.New("tranche.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := tranche.New(store,
//	    tranche.WithOwner(owner),
//	    tranche.WithToken(tokenSvc, custody),
//	    tranche.WithPaymentToken(paymentSvc),
//	    tranche.WithSaleTerms(terms),
//	)
//
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Allocations are per (account, category) records. Running categories
// (referral, swap) accrue credited amounts that accounts drain with
// ClaimReward; the wallet category is a one-shot fixed reward gated by
// an eligibility flag. The swap category additionally requires an
// active subscription to credit or claim.
//
// The presale sells fixed-size lots against a payment asset. Once every
// lot is sold the owner schedules the launch, which starts the vesting
// clock: 10% of each position unlocks at launch, the rest streams
// linearly over twelve 30-day months after a 30-day cliff.
//
// All fund movement follows one discipline: ledger state is committed
// before the external transfer is issued, the transfer context carries
// a reentry marker that every entry point rejects, and a failed
// transfer rolls the commit back.
//
// # Stores
//
// Two store implementations ship with the module: store/memory for
// tests and embedded use, store/sqlite for durable single-node
// deployments. Any type implementing store.Store can be injected.
package tranche
