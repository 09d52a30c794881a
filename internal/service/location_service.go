// FILE: internal/service/location_service.go
package service

import (
	"strings"

	"ai-studyassistant-be/internal/entity"
)

// BillingRegion is the provider/currency routing decision for a country plus
// the continent code used when resolving continent-scoped prices.
type BillingRegion struct {
	Provider  entity.PaymentProvider
	Currency  string
	Continent string
}

// europeanCountries covers the EU members plus the UK and EEA/EFTA states we
// price in GBP.
var europeanCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,
	"GB": true, "UK": true, "IS": true, "LI": true, "NO": true, "CH": true,
}

// ResolveBillingRegion routes a country to a payment provider and charge
// currency. Nigeria goes to Paystack in NGN; Europe to Stripe in GBP;
// everywhere else to Stripe in USD.
func ResolveBillingRegion(countryCode string) BillingRegion {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	switch {
	case code == "NG":
		return BillingRegion{Provider: entity.ProviderPaystack, Currency: "NGN", Continent: "AF"}
	case europeanCountries[code]:
		return BillingRegion{Provider: entity.ProviderStripe, Currency: "GBP", Continent: "EU"}
	default:
		return BillingRegion{Provider: entity.ProviderStripe, Currency: "USD"}
	}
}

// PickPrice applies the scope preference country > continent > global over
// the active price rows for one provider/currency/interval tuple.
func PickPrice(prices []*entity.PlanPrice, countryCode, continent string) *entity.PlanPrice {
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	var continentMatch, globalMatch *entity.PlanPrice
	for _, price := range prices {
		switch price.ScopeType {
		case entity.PriceScopeCountry:
			if strings.EqualFold(price.ScopeValue, code) {
				return price
			}
		case entity.PriceScopeContinent:
			if continentMatch == nil && continent != "" && strings.EqualFold(price.ScopeValue, continent) {
				continentMatch = price
			}
		case entity.PriceScopeGlobal:
			if globalMatch == nil {
				globalMatch = price
			}
		}
	}
	if continentMatch != nil {
		return continentMatch
	}
	return globalMatch
}
