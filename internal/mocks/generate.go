// Package mocks provides mock implementations for testing the ticketmint service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository
// and client interfaces. The mocks are generated using go:generate directives and provide a
// fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockTicketRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(ticket, nil)
package mocks

// Generate mock for EventRepository interface from internal/core package.
// This creates MockEventRepository with methods for all EventRepository interface methods:
// Create, GetByID, List, UpdateMintConfig
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/ticketmint/ticketmint/internal/core EventRepository

// Generate mock for TicketRepository interface from internal/core package.
// This creates MockTicketRepository with methods for all TicketRepository interface methods:
// IssueBatch, GetByID, ListByEvent, ListByIDs, RecordMintResults, MarkMintFailed, Delete, DeleteByEvent, CountsByMintStatus
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ticket_repository_mock.go github.com/ticketmint/ticketmint/internal/core TicketRepository

// Generate mock for MintJobRepository interface from internal/core package.
// This creates MockMintJobRepository with methods for all MintJobRepository interface methods:
// Enqueue, GetByID, ListByEvent, MarkProcessing, ClaimNext, MarkMinted, MarkFailed, ResetFailed, FailStale
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mint_job_repository_mock.go github.com/ticketmint/ticketmint/internal/core MintJobRepository

// Generate mock for ChainClient interface from internal/core package.
// This creates MockChainClient with methods for all ChainClient interface methods:
// BatchMint, Mint, WaitForConfirmation
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=chain_client_mock.go github.com/ticketmint/ticketmint/internal/core ChainClient

// Generate mock for MetadataStore interface from internal/core package.
// This creates MockMetadataStore with methods for all MetadataStore interface methods:
// Upload
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=metadata_store_mock.go github.com/ticketmint/ticketmint/internal/core MetadataStore

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/ticketmint/ticketmint/internal/core CacheRepository
