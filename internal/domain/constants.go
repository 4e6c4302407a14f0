package domain

import "github.com/shopspring/decimal"

// MaxDirectReferrals caps how many users a single referrer can sign up directly.
const MaxDirectReferrals = 8

const (
	LevelDirect      = 1
	LevelGrandparent = 2
)

// Commission rates are exact decimals, never binary floats.
var (
	DirectRate      = decimal.New(5, -2) // 5%
	GrandparentRate = decimal.New(1, -2) // 1%
)

// MinPurchaseAmount is the smallest purchase that qualifies for distribution.
var MinPurchaseAmount = decimal.NewFromInt(1000)
