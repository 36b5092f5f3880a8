package model

// MetadataAttribute is one trait of an NFT metadata document.
// Attribute order is significant and preserved through serialization.
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// NFTMetadata is the metadata document uploaded to content-addressed storage
// and referenced by the minted token's URI. The shape follows the common
// ERC-721 metadata convention.
type NFTMetadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Attributes  []MetadataAttribute `json:"attributes"`
}

// Attribute returns the value of the named trait and whether it is present.
func (m *NFTMetadata) Attribute(traitType string) (any, bool) {
	for _, a := range m.Attributes {
		if a.TraitType == traitType {
			return a.Value, true
		}
	}
	return nil, false
}
