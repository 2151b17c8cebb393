package repository

// Repositories holds all repository instances
type Repositories struct {
	Account     AccountRepository
	Beneficiary BeneficiaryRepository
	Transaction TransactionRepository
	Cache       CacheRepository
}

// NewRepositories creates a repository collection
func NewRepositories(
	account AccountRepository,
	beneficiary BeneficiaryRepository,
	transaction TransactionRepository,
	cache CacheRepository,
) *Repositories {
	return &Repositories{
		Account:     account,
		Beneficiary: beneficiary,
		Transaction: transaction,
		Cache:       cache,
	}
}
