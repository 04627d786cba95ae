package dto

import "stormbringer/internal/campaign/models"

// CampaignOutput wraps a campaign
type CampaignOutput struct {
	Body models.Campaign
}

// CampaignListResponse lists campaigns
type CampaignListResponse struct {
	Campaigns []models.Campaign `json:"campaigns"`
	Total     int               `json:"total"`
}

// CampaignListOutput wraps a campaign list
type CampaignListOutput struct {
	Body CampaignListResponse
}

// PatchOutput wraps the merged shape of a partial update
type PatchOutput struct {
	Body models.Patch
}

// ChatMessageOutput wraps a posted chat line
type ChatMessageOutput struct {
	Body models.ChatMessage
}

// ChatListResponse lists a campaign chat
type ChatListResponse struct {
	Messages []models.ChatMessage `json:"messages"`
	Total    int                  `json:"total"`
}

// ChatListOutput wraps a chat list
type ChatListOutput struct {
	Body ChatListResponse
}

// StatusResponse is a plain acknowledgement
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusOutput wraps an acknowledgement
type StatusOutput struct {
	Body StatusResponse
}
