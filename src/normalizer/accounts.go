package normalizer

// NormalizeAccounts extracts AccountListResponse.Accounts.Account as a list.
// Account objects are passed through untouched.
func NormalizeAccounts(raw Raw) []interface{} {
	accounts := getMap(getMap(raw, "AccountListResponse"), "Accounts")
	return EnsureList(accounts["Account"])
}

// NormalizeBalance returns the BalanceResponse object, or an empty object
// when the broker sent nothing.
func NormalizeBalance(raw Raw) Raw {
	if len(raw) == 0 {
		return Raw{}
	}

	return getMap(raw, "BalanceResponse")
}
