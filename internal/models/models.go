package models

// JoinStatusApproved is the only status a JoinRecord ever carries: every
// join request the bot sees is approved.
const JoinStatusApproved = "approved"

// PrivateUsername is stored in ChannelInfo.Username for channels that have
// no public @username.
const PrivateUsername = "Private"

// JoinRecord is one entry in the append-only join log.
//
// Username is optional on the platform side. An empty value is stored as
// empty and rendered as "No username" by the message templates.
type JoinRecord struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	FirstName   string    `json:"first_name"`
	ChannelID   int64     `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	Timestamp   Timestamp `json:"timestamp"`
	Status      string    `json:"status"`
}

// ContentRequest is a free-text submission collected through the two-step
// request flow.
//
// ID is 1-based and derived from the log length at insert time. The log is
// append-only, so IDs stay unique.
type ContentRequest struct {
	ID        int       `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	Request   string    `json:"request"`
	Timestamp Timestamp `json:"timestamp"`
}

// ChannelInfo is the metadata kept per channel, keyed by the channel id
// rendered as a decimal string.
//
// JoinRequests is the cumulative approval counter. The JSON keys match the
// files written by earlier versions of the bot.
type ChannelInfo struct {
	Title        string `json:"title"`
	Username     string `json:"username"`
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	JoinRequests int    `json:"join_requests"`
}

// IsPublic reports whether the channel has a public @username.
func (c ChannelInfo) IsPublic() bool {
	return c.Username != "" && c.Username != PrivateUsername
}

// Snapshot is the whole persisted document. It is always read and written in
// full.
type Snapshot struct {
	JoinRequests    []JoinRecord           `json:"join_requests"`
	ContentRequests []ContentRequest       `json:"content_requests"`
	Users           []int64                `json:"users"`
	Channels        map[string]ChannelInfo `json:"channels"`
}

// Stats is the aggregate view used by /stats, /admin and GET /v1/stats.
type Stats struct {
	Users           int           `json:"users"`
	Approvals       int           `json:"approvals"`
	ContentRequests int           `json:"content_requests"`
	Channels        []ChannelInfo `json:"channels"`
}
