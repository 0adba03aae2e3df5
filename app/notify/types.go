package notify

const (
	DefaultMaxItems = 10

	EmbedTitle = "📦 Product Changes"
	EmbedColor = 0x00FF00
)

// Payload is the JSON body accepted by Discord-compatible webhooks.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}
