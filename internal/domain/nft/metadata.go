// Package nft builds deterministic NFT metadata documents for tickets.
package nft

import (
	"fmt"
	"strings"
	"time"

	"github.com/ticketmint/ticketmint/internal/domain/model"
)

// Trait names used in ticket metadata. Ticket Number and Total Supply are
// always present; the rest appear only when the source field is set.
const (
	TraitTicketNumber = "Ticket Number"
	TraitTotalSupply  = "Total Supply"
	TraitTicketType   = "Ticket Type"
	TraitEvent        = "Event"
	TraitVenue        = "Venue"
	TraitEventDate    = "Event Date"
)

// BuildInput carries everything the builder needs. The same input always
// produces the same document.
type BuildInput struct {
	TicketName   string
	TicketNumber int64
	TotalSupply  int
	Description  string
	ImageURL     string
	TicketType   string
	Event        *model.Event
}

// Build produces the metadata document for one ticket.
//
// The document name is "<ticket name> #<number>". Attribute order is fixed:
// Ticket Number, Total Supply, then the optional traits in declaration order.
// Ordering matters because the document is content-addressed; a reordered
// attribute list would produce a different URI for identical ticket data.
func Build(in BuildInput) model.NFTMetadata {
	name := fmt.Sprintf("%s #%d", strings.TrimSpace(in.TicketName), in.TicketNumber)

	attrs := []model.MetadataAttribute{
		{TraitType: TraitTicketNumber, Value: in.TicketNumber},
		{TraitType: TraitTotalSupply, Value: in.TotalSupply},
	}
	if t := strings.TrimSpace(in.TicketType); t != "" {
		attrs = append(attrs, model.MetadataAttribute{TraitType: TraitTicketType, Value: t})
	}
	if in.Event != nil {
		if n := strings.TrimSpace(in.Event.Name); n != "" {
			attrs = append(attrs, model.MetadataAttribute{TraitType: TraitEvent, Value: n})
		}
		if v := strings.TrimSpace(in.Event.Venue); v != "" {
			attrs = append(attrs, model.MetadataAttribute{TraitType: TraitVenue, Value: v})
		}
		if !in.Event.StartsAt.IsZero() {
			attrs = append(attrs, model.MetadataAttribute{
				TraitType: TraitEventDate,
				Value:     in.Event.StartsAt.UTC().Format(time.RFC3339),
			})
		}
	}

	return model.NFTMetadata{
		Name:        name,
		Description: buildDescription(in),
		Image:       strings.TrimSpace(in.ImageURL),
		Attributes:  attrs,
	}
}

func buildDescription(in BuildInput) string {
	if d := strings.TrimSpace(in.Description); d != "" {
		return d
	}
	if in.Event != nil && strings.TrimSpace(in.Event.Name) != "" {
		return fmt.Sprintf("Admission ticket for %s", strings.TrimSpace(in.Event.Name))
	}
	return "Admission ticket"
}
