package api

// Values fixed by the Eagle message endpoint.
const (
	ChannelWebsites = "websites"
	TypeTeam        = "team"
)

// Persona is a sending identity. Only organisation personas are eligible
// for publishing; the hash is what the message endpoint actually keys on.
type Persona struct {
	Name           string
	Handle         string
	Hash           string
	IsOrganisation bool
}

// Team is a publish destination as returned by the teams endpoint.
// RawName is the untouched platform name; display labels are derived
// on render via the teamname package.
type Team struct {
	ID      string
	RawName string
}

// PublishRequest is the wire body for POST /messages. Field names and the
// 0/1 draft flag are part of the remote contract.
type PublishRequest struct {
	Persona   string   `json:"persona"`
	Channel   string   `json:"channel"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Body      string   `json:"body"`
	Assets    []string `json:"assets"`
	Sentiment string   `json:"sentiment"`
	TeamID    string   `json:"team_id"`
	Type      string   `json:"type"`
	IsDraft   int      `json:"isDraft"`
}

// PublishResult records the outcome of one publish call. StatusCode is 0
// when the request never reached the network layer.
type PublishResult struct {
	TeamID      string
	OK          bool
	StatusCode  int
	ErrorDetail string
}
