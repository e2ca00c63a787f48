// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/api_client.go -destination=api_client_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/people_repository.go -destination=people_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/adapters/apiclient/client.go -destination=doer_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/report_store.go -destination=report_store_mock.go -package=mocks
