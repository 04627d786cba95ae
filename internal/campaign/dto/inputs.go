package dto

import "time"

// CreateCampaignRequest is the new-campaign form
type CreateCampaignRequest struct {
	Name            string     `json:"name" validate:"required,max=120" minLength:"1" maxLength:"120" doc:"Campaign name"`
	Description     string     `json:"description,omitempty" validate:"max=5000" maxLength:"5000" doc:"Campaign description"`
	NextSessionDate *time.Time `json:"nextSessionDate,omitempty" doc:"First scheduled session"`
}

// UpdateCampaignRequest is a partial update. Omitted fields are unchanged.
type UpdateCampaignRequest struct {
	Name                 *string    `json:"name,omitempty" validate:"omitempty,min=1,max=120" maxLength:"120" doc:"Campaign name"`
	Description          *string    `json:"description,omitempty" validate:"omitempty,max=5000" maxLength:"5000" doc:"Campaign description"`
	Status               *string    `json:"status,omitempty" validate:"omitempty,campaign_status" enum:"active,paused,completed" doc:"Campaign status"`
	NextSessionDate      *time.Time `json:"nextSessionDate,omitempty" doc:"Next scheduled session"`
	ClearNextSessionDate bool       `json:"clearNextSessionDate,omitempty" doc:"Remove the scheduled session"`
	Files                []string   `json:"files,omitempty" validate:"omitempty,dive,url" doc:"Replace the campaign files"`
}

// ChatMessageRequest is a chat line
type ChatMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000" minLength:"1" maxLength:"2000" doc:"Message text"`
}

// JoinCampaignRequest joins a campaign through its invite token
type JoinCampaignRequest struct {
	Token       string `json:"token" validate:"required" minLength:"1" doc:"Invite token or full access link"`
	CharacterID string `json:"characterId,omitempty" doc:"Character the player joins with"`
}

// StatusRequest sets the campaign status
type StatusRequest struct {
	Status string `json:"status" validate:"required,campaign_status" enum:"active,paused,completed" doc:"Campaign status"`
}

// ScheduleRequest sets or clears the next session
type ScheduleRequest struct {
	NextSessionDate *time.Time `json:"nextSessionDate,omitempty" doc:"Next session; omit to clear"`
}

// FileRequest attaches a file link
type FileRequest struct {
	URL string `json:"url" validate:"required,url" format:"uri" doc:"File URL"`
}

// CampaignIDInput addresses one campaign
type CampaignIDInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
}

// ListCampaignsInput lists the caller's campaigns
type ListCampaignsInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

// CreateCampaignInput creates a campaign
type CreateCampaignInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Body          CreateCampaignRequest
}

// UpdateCampaignInput patches a campaign
type UpdateCampaignInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	Body          UpdateCampaignRequest
}

// ChatMessageInput posts a chat line
type ChatMessageInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	Body          ChatMessageRequest
}

// AccessLinkInput resolves an invite token
type AccessLinkInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Token         string `path:"token" doc:"Invite token"`
}

// JoinCampaignInput joins a campaign
type JoinCampaignInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Body          JoinCampaignRequest
}

// RemovePlayerInput removes a player from a campaign
type RemovePlayerInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	UserID        string `path:"user_id" doc:"Player user ID"`
}

// StatusInput sets a campaign status
type StatusInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	Body          StatusRequest
}

// ScheduleInput schedules the next session
type ScheduleInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	Body          ScheduleRequest
}

// FileInput attaches a file
type FileInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Campaign ID"`
	Body          FileRequest
}

// SessionCacheInput addresses the caller's session cache
type SessionCacheInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}
