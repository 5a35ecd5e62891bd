package service

import "strings"

type PromoKind string

const (
	PromoPercent PromoKind = "percent"
	PromoFlat    PromoKind = "flat"
)

type Promotion struct {
	Code    string    `json:"code"`
	Kind    PromoKind `json:"kind"`
	Percent int       `json:"percent,omitempty"`
	Amount  int64     `json:"amount,omitempty"`
}

// PromoCatalog maps a code to its promotion. Codes are case sensitive.
type PromoCatalog map[string]Promotion

func DefaultPromoCatalog() PromoCatalog {
	return PromoCatalog{
		"HUONGQUE10":  {Code: "HUONGQUE10", Kind: PromoPercent, Percent: 10},
		"HUONGQUE50K": {Code: "HUONGQUE50K", Kind: PromoFlat, Amount: 50000},
		"WELCOME15":   {Code: "WELCOME15", Kind: PromoPercent, Percent: 15},
	}
}

func (c PromoCatalog) Lookup(code string) (Promotion, bool) {
	promo, ok := c[strings.TrimSpace(code)]
	return promo, ok
}
