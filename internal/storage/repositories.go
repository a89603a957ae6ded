package storage

import (
	"context"
)

// Repositories bundles all repositories together.
type Repositories struct {
	Products            *ProductRepository
	Subproducts         *SubproductRepository
	TacticTypes         *TacticTypeRepository
	Extractors          *ExtractorRepository
	Benchmarks          *BenchmarkRepository
	Sections            *SectionRepository
	ProductOverrides    *OverrideRepository
	SubproductOverrides *OverrideRepository
	Settings            *SettingRepository
	TestConfigs         *TestConfigRepository
	Versions            *VersionRepository
	Campaigns           *CampaignRepository
	Analyses            *AnalysisRepository
}

// NewRepositories creates all repositories with the given database handle.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Products:            &ProductRepository{db: db},
		Subproducts:         &SubproductRepository{db: db},
		TacticTypes:         &TacticTypeRepository{db: db},
		Extractors:          &ExtractorRepository{db: db},
		Benchmarks:          &BenchmarkRepository{db: db},
		Sections:            &SectionRepository{db: db},
		ProductOverrides:    newOverrideRepository(db, ScopeProduct),
		SubproductOverrides: newOverrideRepository(db, ScopeSubproduct),
		Settings:            &SettingRepository{db: db},
		TestConfigs:         &TestConfigRepository{db: db},
		Versions:            &VersionRepository{db: db},
		Campaigns:           &CampaignRepository{db: db},
		Analyses:            &AnalysisRepository{db: db},
	}
}

// Overrides returns the override repository for scope.
func (r *Repositories) Overrides(scope OverrideScope) *OverrideRepository {
	if scope == ScopeSubproduct {
		return r.SubproductOverrides
	}
	return r.ProductOverrides
}

func insertReturningID(ctx context.Context, db DB, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func getOne(ctx context.Context, db DB, dest interface{}, query string, args ...interface{}) error {
	return classify(db.GetContext(ctx, dest, db.Rebind(query), args...))
}

func selectAll(ctx context.Context, db DB, dest interface{}, query string, args ...interface{}) error {
	return classify(db.SelectContext(ctx, dest, db.Rebind(query), args...))
}

func execOne(ctx context.Context, db DB, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return classify(err)
	}
	return expectAffected(result)
}

func execCount(ctx context.Context, db DB, query string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return result.RowsAffected()
}
