// Package model defines the core data types for the ticketmint NFT ticketing system.
package model

import (
	"errors"
	"strings"
	"time"
)

// MintMode controls how a ticket batch reaches the chain.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type MintMode string

const (
	// MintModeQueued enqueues a mint job drained by the mint worker. Default.
	MintModeQueued MintMode = "queued"
	// MintModeImmediate invokes the minter synchronously at issuance time.
	MintModeImmediate MintMode = "immediate"
)

// Valid returns true if the MintMode is valid.
func (m MintMode) Valid() bool {
	return m == MintModeQueued || m == MintModeImmediate
}

// UnmarshalText implements encoding.TextUnmarshaler for MintMode to allow env parsing.
func (m *MintMode) UnmarshalText(text []byte) error {
	v := MintMode(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return errors.New("invalid MintMode: " + string(text))
	}
	*m = v
	return nil
}

// Event represents an event with its NFT minting configuration.
// The per-event contract address is authoritative for every ticket minted
// under the event.
type Event struct {
	ID              string    `json:"id"                         db:"id"`
	Name            string    `json:"name"                       db:"name"`
	Venue           string    `json:"venue,omitempty"            db:"venue"`
	StartsAt        time.Time `json:"starts_at"                  db:"starts_at"`
	ContractAddress string    `json:"nft_contract_address"       db:"nft_contract_address"`
	AdminWallet     string    `json:"admin_wallet_address"       db:"admin_wallet_address"`
	MintMode        MintMode  `json:"mint_mode"                  db:"mint_mode"`
	CreatedAt       time.Time `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"                 db:"updated_at"`
}

// MintConfigured reports whether the event can mint tickets: it needs a
// contract to mint against and an admin wallet to receive the tokens.
func (e *Event) MintConfigured() bool {
	return strings.TrimSpace(e.ContractAddress) != "" && strings.TrimSpace(e.AdminWallet) != ""
}

// CreateEventRequest represents a request to create a new event.
type CreateEventRequest struct {
	Name            string    `json:"name"`
	Venue           string    `json:"venue,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	ContractAddress string    `json:"nft_contract_address,omitempty"`
	AdminWallet     string    `json:"admin_wallet_address,omitempty"`
	MintMode        MintMode  `json:"mint_mode,omitempty"`
}

// Validate validates the CreateEventRequest fields.
func (r *CreateEventRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("event name is required")
	}
	if r.MintMode != "" && !r.MintMode.Valid() {
		return errors.New("invalid mint mode")
	}
	return nil
}

// UpdateEventMintConfigRequest updates the minting configuration of an event.
type UpdateEventMintConfigRequest struct {
	ContractAddress string   `json:"nft_contract_address"`
	AdminWallet     string   `json:"admin_wallet_address"`
	MintMode        MintMode `json:"mint_mode,omitempty"`
}

// Validate validates the UpdateEventMintConfigRequest fields.
func (r *UpdateEventMintConfigRequest) Validate() error {
	if strings.TrimSpace(r.ContractAddress) == "" {
		return errors.New("contract address is required")
	}
	if strings.TrimSpace(r.AdminWallet) == "" {
		return errors.New("admin wallet address is required")
	}
	if r.MintMode != "" && !r.MintMode.Valid() {
		return errors.New("invalid mint mode")
	}
	return nil
}
