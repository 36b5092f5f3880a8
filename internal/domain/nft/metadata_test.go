package nft

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketmint/ticketmint/internal/domain/model"
)

func testEvent() *model.Event {
	return &model.Event{
		ID:       "evt-1",
		Name:     "Mekong Sessions",
		Venue:    "Riverside Hall",
		StartsAt: time.Date(2026, 11, 20, 19, 30, 0, 0, time.UTC),
	}
}

func TestBuildRequiredAttributes(t *testing.T) {
	doc := Build(BuildInput{
		TicketName:   "GA",
		TicketNumber: 7,
		TotalSupply:  100,
	})

	assert.Equal(t, "GA #7", doc.Name)

	num, ok := doc.Attribute(TraitTicketNumber)
	require.True(t, ok)
	assert.Equal(t, int64(7), num)

	supply, ok := doc.Attribute(TraitTotalSupply)
	require.True(t, ok)
	assert.Equal(t, 100, supply)
}

func TestBuildAttributeOrder(t *testing.T) {
	doc := Build(BuildInput{
		TicketName:   "VIP",
		TicketNumber: 1,
		TotalSupply:  10,
		TicketType:   "vip",
		Event:        testEvent(),
	})

	traits := make([]string, 0, len(doc.Attributes))
	for _, a := range doc.Attributes {
		traits = append(traits, a.TraitType)
	}
	assert.Equal(t, []string{
		TraitTicketNumber,
		TraitTotalSupply,
		TraitTicketType,
		TraitEvent,
		TraitVenue,
		TraitEventDate,
	}, traits)
}

func TestBuildDeterministic(t *testing.T) {
	in := BuildInput{
		TicketName:   "GA",
		TicketNumber: 42,
		TotalSupply:  500,
		Description:  "Row A",
		ImageURL:     "https://cdn.example.com/ga.png",
		TicketType:   "general",
		Event:        testEvent(),
	}

	first, err := json.Marshal(Build(in))
	require.NoError(t, err)
	second, err := json.Marshal(Build(in))
	require.NoError(t, err)

	// Content-addressed uploads depend on byte-identical documents.
	assert.Equal(t, first, second)
}

func TestBuildDescriptionFallbacks(t *testing.T) {
	t.Run("explicit description wins", func(t *testing.T) {
		doc := Build(BuildInput{TicketName: "GA", TicketNumber: 1, TotalSupply: 1, Description: "Front row", Event: testEvent()})
		assert.Equal(t, "Front row", doc.Description)
	})

	t.Run("event name fallback", func(t *testing.T) {
		doc := Build(BuildInput{TicketName: "GA", TicketNumber: 1, TotalSupply: 1, Event: testEvent()})
		assert.Equal(t, "Admission ticket for Mekong Sessions", doc.Description)
	})

	t.Run("generic fallback", func(t *testing.T) {
		doc := Build(BuildInput{TicketName: "GA", TicketNumber: 1, TotalSupply: 1})
		assert.Equal(t, "Admission ticket", doc.Description)
	})
}

func TestBuildOmitsEmptyOptionalTraits(t *testing.T) {
	doc := Build(BuildInput{
		TicketName:   "GA",
		TicketNumber: 3,
		TotalSupply:  3,
		Event:        &model.Event{Name: "  "},
	})

	_, hasType := doc.Attribute(TraitTicketType)
	assert.False(t, hasType)
	_, hasEvent := doc.Attribute(TraitEvent)
	assert.False(t, hasEvent)
	_, hasDate := doc.Attribute(TraitEventDate)
	assert.False(t, hasDate)
}

func TestBuildEventDateIsUTC(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	ev := testEvent()
	ev.StartsAt = time.Date(2026, 11, 21, 2, 30, 0, 0, loc)

	doc := Build(BuildInput{TicketName: "GA", TicketNumber: 1, TotalSupply: 1, Event: ev})

	date, ok := doc.Attribute(TraitEventDate)
	require.True(t, ok)
	assert.Equal(t, "2026-11-20T19:30:00Z", date)
}
