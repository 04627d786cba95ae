package models

import "time"

// CampaignsCollection holds campaign documents
const CampaignsCollection = "campaigns"

// AccessLinkPrefix is the path every invite link starts with
const AccessLinkPrefix = "/campaigns/join/"

// Status of a campaign. Every transition is allowed.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// ChatMessage is one immutable entry of a campaign chat
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Campaign is the campaign aggregate. Players always contains DMID, the
// access link never changes after creation and Chats is append-only.
type Campaign struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	DMID             string            `json:"dmId"`
	Players          []string          `json:"players"`
	Status           Status            `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	NextSessionDate  *time.Time        `json:"nextSessionDate,omitempty"`
	Files            []string          `json:"files"`
	Chats            []ChatMessage     `json:"chats"`
	AccessLink       string            `json:"accessLink,omitempty"`
	PlayerCharacters map[string]string `json:"playerCharacters"`
	LastReminderAt   *time.Time        `json:"lastReminderAt,omitempty"`
}

// HasPlayer reports whether userID is on the roster
func (c *Campaign) HasPlayer(userID string) bool {
	for _, p := range c.Players {
		if p == userID {
			return true
		}
	}
	return false
}

// IsDM reports whether userID runs the campaign
func (c *Campaign) IsDM(userID string) bool {
	return c.DMID == userID
}

// Patch is a partial campaign update. Nil fields are left untouched.
// ClearNextSessionDate removes the scheduled session.
type Patch struct {
	ID                   string     `json:"id"`
	Name                 *string    `json:"name,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Status               *Status    `json:"status,omitempty"`
	NextSessionDate      *time.Time `json:"nextSessionDate,omitempty"`
	ClearNextSessionDate bool       `json:"-"`
	Files                []string   `json:"files,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// touchesSchedule reports whether the patch changes the next session
func (p *Patch) touchesSchedule() bool {
	return p.NextSessionDate != nil || p.ClearNextSessionDate
}

// Fields returns the store fields the patch writes. Rescheduling also resets
// the reminder marker so the new session is announced.
func (p *Patch) Fields() map[string]any {
	fields := map[string]any{"updatedAt": p.UpdatedAt}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Files != nil {
		fields["files"] = p.Files
	}
	if p.touchesSchedule() {
		if p.ClearNextSessionDate {
			fields["nextSessionDate"] = nil
		} else {
			fields["nextSessionDate"] = p.NextSessionDate.UTC()
		}
		fields["lastReminderAt"] = nil
	}
	return fields
}

// ApplyTo merges the patch into c
func (p *Patch) ApplyTo(c *Campaign) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Files != nil {
		c.Files = p.Files
	}
	if p.touchesSchedule() {
		if p.ClearNextSessionDate {
			c.NextSessionDate = nil
		} else {
			t := p.NextSessionDate.UTC()
			c.NextSessionDate = &t
		}
		c.LastReminderAt = nil
	}
	c.UpdatedAt = p.UpdatedAt
}
